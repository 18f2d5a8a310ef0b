package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/dacapoday/share/internal/config"
	"github.com/dacapoday/share/mpsc"
)

// PipelineResult reports the outcome of Pipeline.
type PipelineResult struct {
	Received  int
	PerSender []int
}

type message struct {
	sender, seq int
}

// Pipeline runs cfg.Producers cloned senders, each sending cfg.Messages
// messages, and checks the receiver saw every message with each sender's
// messages in order.
func Pipeline(ctx context.Context, cfg config.Pipeline, log *slog.Logger) (res PipelineResult, err error) {
	tx, rx := mpsc.Channel[message]()
	defer rx.Drop()

	g, gctx := errgroup.WithContext(ctx)
	for p := range cfg.Producers {
		s := tx.Clone()
		g.Go(func() error {
			defer s.Drop()
			for i := range cfg.Messages {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := s.Send(message{sender: p, seq: i}); err != nil {
					return fmt.Errorf("producer %d: %w", p, err)
				}
			}
			return nil
		})
	}
	tx.Drop()

	var merr error
	res.PerSender = make([]int, cfg.Producers)
	for msg := range rx.All() {
		if want := res.PerSender[msg.sender]; msg.seq != want {
			merr = multierror.Append(merr, fmt.Errorf("producer %d: got seq %d, want %d: %w", msg.sender, msg.seq, want, ErrMismatch))
		}
		res.PerSender[msg.sender]++
		res.Received++
	}
	if err = g.Wait(); err != nil {
		return
	}
	log.Info("pipeline drained", slog.Int("received", res.Received))

	if want := cfg.Producers * cfg.Messages; res.Received != want {
		merr = multierror.Append(merr, fmt.Errorf("received %d, want %d: %w", res.Received, want, ErrMismatch))
	}
	return res, merr
}
