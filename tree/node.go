// Package tree builds parent/children trees on rc handles.
//
// A parent owns its children through strong handles; a child observes its
// parent through a weak handle. The ownership graph therefore has no
// cycle, and dropping the last handle to the root finalizes every node of
// the subtree exactly once.
//
// Not safe for concurrent use.
package tree

import (
	"errors"
	"slices"

	"github.com/dacapoday/share"
	"github.com/dacapoday/share/cell"
	"github.com/dacapoday/share/rc"
)

var ErrCycle = errors.New("tree: child is the parent or one of its ancestors")

// Node is a tree node holding Value.
type Node[T any] struct {
	Value T

	parent   cell.Cell[*rc.Weak[Node[T]]]
	children cell.Cell[[]*rc.Rc[Node[T]]]
}

// New returns the only strong handle onto a detached node.
func New[T any](value T) *rc.Rc[Node[T]] {
	return rc.New(Node[T]{Value: value})
}

// AddChild makes parent own a new strong handle onto child and points the
// child's parent link at parent. The caller keeps its own child handle.
// A child attached elsewhere is first detached from its old parent; adding
// a child to the parent it already has is a no-op.
//
// It returns ErrCycle if child is parent or one of its ancestors, since
// the strong links would then form a cycle that is never finalized.
func AddChild[T any](parent, child *rc.Rc[Node[T]]) error {
	for cur := parent.Clone(); cur != nil; {
		if rc.PtrEq(cur, child) {
			cur.Drop()
			return ErrCycle
		}
		next, _ := cur.Deref().Parent()
		cur.Drop()
		cur = next
	}

	if old, ok := child.Deref().Parent(); ok {
		same := rc.PtrEq(old, parent)
		if !same {
			old.Deref().detach(child)
		}
		old.Drop()
		if same {
			return nil
		}
	}

	child.Deref().parent.Replace(parent.Downgrade()).Drop()

	parent.Deref().children.Update(func(children *[]*rc.Rc[Node[T]]) {
		*children = append(*children, child.Clone())
	})
	return nil
}

// detach drops n's strong handle onto child, if it holds one.
func (n *Node[T]) detach(child *rc.Rc[Node[T]]) {
	var removed *rc.Rc[Node[T]]
	n.children.Update(func(children *[]*rc.Rc[Node[T]]) {
		i := slices.IndexFunc(*children, func(c *rc.Rc[Node[T]]) bool {
			return rc.PtrEq(c, child)
		})
		if i < 0 {
			return
		}
		removed = (*children)[i]
		*children = slices.Delete(*children, i, i+1)
	})
	removed.Drop()
}

// Parent returns a strong handle onto the parent, or false if the node is
// a root or the parent was already dropped.
func (n *Node[T]) Parent() (*rc.Rc[Node[T]], bool) {
	w := n.parent.Get()
	if w == nil {
		return nil, false
	}
	return w.Upgrade()
}

// Children returns new strong handles onto the children.
// The caller must drop each of them.
func (n *Node[T]) Children() []*rc.Rc[Node[T]] {
	ref := n.children.Borrow()
	defer ref.Release()

	children := make([]*rc.Rc[Node[T]], len(*ref.Deref()))
	for i, c := range *ref.Deref() {
		children[i] = c.Clone()
	}
	return children
}

// Len returns the number of children.
func (n *Node[T]) Len() int {
	ref := n.children.Borrow()
	defer ref.Release()
	return len(*ref.Deref())
}

// Walk visits n and its descendants depth first, parents before
// children. The tree must not be modified during the walk.
func (n *Node[T]) Walk(yield func(depth int, node *Node[T]) bool) {
	type frame struct {
		depth int
		node  *Node[T]
	}
	stack := []frame{{0, n}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !yield(f.depth, f.node) {
			return
		}

		ref := f.node.children.Borrow()
		children := *ref.Deref()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.depth + 1, children[i].Deref()})
		}
		ref.Release()
	}
}

// Drop releases the node's children and parent link, then finalizes
// Value. It is called once by rc when the last strong handle goes away.
func (n *Node[T]) Drop() {
	for _, c := range n.children.Take() {
		c.Drop()
	}
	n.parent.Take().Drop()
	share.Drop(&n.Value)
}
