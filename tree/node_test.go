package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dacapoday/share/rc"
)

type tracked struct {
	id    int
	drops map[int]int
}

func (v *tracked) Drop() { v.drops[v.id]++ }

func TestLeafAndBranch(t *testing.T) {
	leaf := New(3)
	_, ok := leaf.Deref().Parent()
	require.False(t, ok)

	branch := New(5)
	require.NoError(t, AddChild(branch, leaf))
	require.Equal(t, 2, leaf.StrongCount())
	require.Equal(t, 1, branch.StrongCount())
	require.Equal(t, 1, branch.WeakCount())

	p, ok := leaf.Deref().Parent()
	require.True(t, ok)
	require.Equal(t, 5, p.Deref().Value)
	p.Drop()

	children := branch.Deref().Children()
	require.Len(t, children, 1)
	require.True(t, rc.PtrEq(children[0], leaf))
	for _, c := range children {
		c.Drop()
	}
	require.Equal(t, 1, branch.Deref().Len())

	branch.Drop()
	_, ok = leaf.Deref().Parent()
	require.False(t, ok)
	require.Equal(t, 1, leaf.StrongCount())
	leaf.Drop()
}

func TestCycleRejected(t *testing.T) {
	a := New("a")
	b := New("b")
	c := New("c")
	require.NoError(t, AddChild(a, b))
	require.NoError(t, AddChild(b, c))

	require.ErrorIs(t, AddChild(c, a), ErrCycle)
	require.ErrorIs(t, AddChild(c, b), ErrCycle)
	require.ErrorIs(t, AddChild(a, a), ErrCycle)
	require.Equal(t, 0, c.Deref().Len())
	require.Equal(t, 1, a.StrongCount())

	b.Drop()
	c.Drop()
	a.Drop()
}

func TestDeepTreeFinalizedOnce(t *testing.T) {
	const depth = 1000
	drops := map[int]int{}

	root := New(&tracked{id: 0, drops: drops})
	weaks := []*rc.Weak[Node[*tracked]]{root.Downgrade()}

	cur := root.Clone()
	for i := 1; i < depth; i++ {
		child := New(&tracked{id: i, drops: drops})
		require.NoError(t, AddChild(cur, child))
		weaks = append(weaks, child.Downgrade())
		cur.Drop()
		cur = child
	}
	cur.Drop()

	count := 0
	maxDepth := 0
	root.Deref().Walk(func(depth int, n *Node[*tracked]) bool {
		require.Equal(t, count, n.Value.id)
		count++
		maxDepth = max(maxDepth, depth)
		return true
	})
	require.Equal(t, depth, count)
	require.Equal(t, depth-1, maxDepth)
	require.Empty(t, drops)

	root.Drop()

	require.Len(t, drops, depth)
	for id := range depth {
		require.Equal(t, 1, drops[id], "node %d", id)
	}
	for _, w := range weaks {
		_, ok := w.Upgrade()
		require.False(t, ok)
		require.Equal(t, 0, w.StrongCount())
		w.Drop()
	}
}

func TestWideTree(t *testing.T) {
	drops := map[int]int{}
	root := New(&tracked{id: -1, drops: drops})

	for i := range 10 {
		branch := New(&tracked{id: i * 100, drops: drops})
		require.NoError(t, AddChild(root, branch))
		for j := 1; j <= 5; j++ {
			leaf := New(&tracked{id: i*100 + j, drops: drops})
			require.NoError(t, AddChild(branch, leaf))
			leaf.Drop()
		}
		branch.Drop()
	}
	require.Equal(t, 10, root.Deref().Len())

	var ids []int
	root.Deref().Walk(func(depth int, n *Node[*tracked]) bool {
		if depth == 1 {
			ids = append(ids, n.Value.id)
		}
		return n.Value.id < 300
	})
	require.Equal(t, []int{0, 100, 200, 300}, ids)

	root.Drop()
	require.Len(t, drops, 1+10*6)
	for id, n := range drops {
		require.Equal(t, 1, n, "node %d", id)
	}
}

func TestReparent(t *testing.T) {
	drops := map[int]int{}
	a := New(&tracked{id: 1, drops: drops})
	b := New(&tracked{id: 2, drops: drops})
	c := New(&tracked{id: 3, drops: drops})

	require.NoError(t, AddChild(a, c))
	require.NoError(t, AddChild(b, c))

	p, ok := c.Deref().Parent()
	require.True(t, ok)
	require.True(t, rc.PtrEq(p, b))
	p.Drop()
	require.Equal(t, 0, a.Deref().Len())
	require.Equal(t, 1, b.Deref().Len())
	require.Equal(t, 0, a.WeakCount())
	require.Equal(t, 2, c.StrongCount())

	// a is no longer an ancestor of c.
	require.NoError(t, AddChild(c, a))
	require.ErrorIs(t, AddChild(a, b), ErrCycle)

	a.Drop()
	c.Drop()
	require.Empty(t, drops)
	b.Drop()
	require.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, drops)
}

func TestAddChildTwice(t *testing.T) {
	drops := map[int]int{}
	p := New(&tracked{id: 1, drops: drops})
	c := New(&tracked{id: 2, drops: drops})

	require.NoError(t, AddChild(p, c))
	require.NoError(t, AddChild(p, c))
	require.Equal(t, 1, p.Deref().Len())
	require.Equal(t, 2, c.StrongCount())
	require.Equal(t, 1, p.WeakCount())

	c.Drop()
	p.Drop()
	require.Equal(t, map[int]int{1: 1, 2: 1}, drops)
}

func TestSubtreeOutlivesDroppedRoot(t *testing.T) {
	drops := map[int]int{}
	root := New(&tracked{id: 0, drops: drops})
	mid := New(&tracked{id: 1, drops: drops})
	leaf := New(&tracked{id: 2, drops: drops})
	require.NoError(t, AddChild(root, mid))
	require.NoError(t, AddChild(mid, leaf))
	leaf.Drop()

	root.Drop()
	require.Equal(t, map[int]int{0: 1}, drops)

	_, ok := mid.Deref().Parent()
	require.False(t, ok)
	require.Equal(t, 1, mid.Deref().Len())

	mid.Drop()
	require.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, drops)
}
