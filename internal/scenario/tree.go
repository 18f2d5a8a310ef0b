package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/dacapoday/share/internal/config"
	"github.com/dacapoday/share/rc"
	"github.com/dacapoday/share/tree"
)

// TreeResult reports the outcome of Tree.
type TreeResult struct {
	Nodes     int
	Finalized int
	Dangling  int
}

type leaf struct {
	id    int
	drops []int
}

func (l *leaf) Drop() { l.drops[l.id]++ }

// Tree builds a chain of cfg.Depth nodes, each with cfg.Fanout extra
// leaves, drops the root and checks every node was finalized once and no
// weak handle can still reach one.
func Tree(ctx context.Context, cfg config.Tree, log *slog.Logger) (res TreeResult, err error) {
	total := cfg.Depth * (1 + cfg.Fanout)
	drops := make([]int, total)
	weaks := make([]*rc.Weak[tree.Node[*leaf]], 0, total)

	next := 0
	node := func() *rc.Rc[tree.Node[*leaf]] {
		n := tree.New(&leaf{id: next, drops: drops})
		weaks = append(weaks, n.Downgrade())
		next++
		return n
	}

	root := node()
	cur := root.Clone()
	for depth := 0; depth < cfg.Depth; depth++ {
		if err = ctx.Err(); err != nil {
			cur.Drop()
			root.Drop()
			return
		}
		for range cfg.Fanout {
			l := node()
			if err = tree.AddChild(cur, l); err != nil {
				return
			}
			l.Drop()
		}
		if depth == cfg.Depth-1 {
			break
		}
		child := node()
		if err = tree.AddChild(cur, child); err != nil {
			return
		}
		cur.Drop()
		cur = child
	}
	cur.Drop()
	res.Nodes = next
	log.Debug("tree built", slog.Int("nodes", res.Nodes), slog.Int("depth", cfg.Depth))

	root.Drop()

	var merr error
	for id, n := range drops[:next] {
		switch {
		case n == 1:
			res.Finalized++
		default:
			merr = multierror.Append(merr, fmt.Errorf("node %d finalized %d times: %w", id, n, ErrMismatch))
		}
	}
	for _, w := range weaks {
		if s, ok := w.Upgrade(); ok {
			res.Dangling++
			s.Drop()
		}
		w.Drop()
	}
	if res.Dangling > 0 {
		merr = multierror.Append(merr, fmt.Errorf("%d nodes still reachable: %w", res.Dangling, ErrMismatch))
	}

	log.Info("tree dropped", slog.Int("finalized", res.Finalized))
	return res, merr
}
