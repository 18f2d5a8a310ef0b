package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dacapoday/share/arc"
	"github.com/dacapoday/share/internal/config"
	"github.com/dacapoday/share/lock"
	"github.com/dacapoday/share/thread"
)

// CounterResult reports the outcome of Counter.
type CounterResult struct {
	Want, Got int
}

// Counter has cfg.Threads goroutines each increment a mutex-guarded
// counter cfg.Iterations times and checks no update was lost.
func Counter(ctx context.Context, cfg config.Counter, log *slog.Logger) (res CounterResult, err error) {
	counter := arc.New(lock.New(0))
	defer counter.Drop()

	var g thread.Group
	for i := range cfg.Threads {
		c := counter.Clone()
		g.Go(func() error {
			defer c.Drop()
			m := *c.Deref()
			for range cfg.Iterations {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := m.With(func(n *int) error {
					*n++
					return nil
				}); err != nil {
					return fmt.Errorf("thread %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return
	}

	err = (*counter.Deref()).With(func(n *int) error {
		res.Got = *n
		return nil
	})
	if err != nil {
		return
	}
	res.Want = cfg.Threads * cfg.Iterations
	log.Info("counter done", slog.Int("want", res.Want), slog.Int("got", res.Got))

	if res.Got != res.Want {
		err = fmt.Errorf("counter %d, want %d: %w", res.Got, res.Want, ErrMismatch)
	}
	return
}
