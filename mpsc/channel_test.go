package mpsc

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSendRecvInOrder(t *testing.T) {
	tx, rx := Channel[int]()

	for _, v := range []int{1, 2, 3} {
		require.NoError(t, tx.Send(v))
	}

	var got []int
	for range 3 {
		v, err := rx.Recv()
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Equal(t, []int{1, 2, 3}, got)

	tx.Drop()
	_, err := rx.Recv()
	require.ErrorIs(t, err, ErrClosed)
}

func TestQueuedValuesSurviveSenderDrop(t *testing.T) {
	tx, rx := Channel[string]()
	require.NoError(t, tx.Send("hi"))
	tx.Drop()
	tx.Drop()

	v, err := rx.Recv()
	require.NoError(t, err)
	require.Equal(t, "hi", v)

	_, err = rx.Recv()
	require.ErrorIs(t, err, ErrClosed)
	_, err = rx.TryRecv()
	require.ErrorIs(t, err, ErrClosed)
}

func TestTryRecv(t *testing.T) {
	tx, rx := Channel[int]()

	_, err := rx.TryRecv()
	require.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, tx.Send(7))
	require.Equal(t, 1, rx.Len())
	v, err := rx.TryRecv()
	require.NoError(t, err)
	require.Equal(t, 7, v)

	tx.Drop()
	_, err = rx.TryRecv()
	require.ErrorIs(t, err, ErrClosed)
}

func TestRecvBlocksUntilSend(t *testing.T) {
	tx, rx := Channel[string]()

	got := make(chan string)
	go func() {
		v, err := rx.Recv()
		assert.NoError(t, err)
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("Recv returned before Send")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, tx.Send("hi"))
	require.Equal(t, "hi", <-got)
	tx.Drop()
}

func TestRecvWokenByLastSenderDrop(t *testing.T) {
	tx, rx := Channel[int]()
	tx2 := tx.Clone()

	done := make(chan error)
	go func() {
		_, err := rx.Recv()
		done <- err
	}()

	tx.Drop()
	select {
	case <-done:
		t.Fatal("Recv returned while a sender is alive")
	case <-time.After(20 * time.Millisecond):
	}

	tx2.Drop()
	require.ErrorIs(t, <-done, ErrClosed)
}

func TestSendAfterReceiverDrop(t *testing.T) {
	tx, rx := Channel[int]()
	rx.Drop()
	rx.Drop()

	require.ErrorIs(t, tx.Send(1), ErrClosed)
	require.ErrorIs(t, tx.Clone().Send(2), ErrClosed)

	_, err := rx.Recv()
	require.ErrorIs(t, err, ErrClosed)
	require.Zero(t, rx.Len())
}

func TestSendOnDroppedSender(t *testing.T) {
	tx, rx := Channel[int]()
	tx.Drop()
	require.ErrorIs(t, tx.Send(1), ErrClosed)
	require.Panics(t, func() { tx.Clone() })
	rx.Drop()
}

type resource struct {
	drops *int
}

func (r resource) Drop() { *r.drops++ }

func TestReceiverDropFinalizesQueued(t *testing.T) {
	drops := 0
	tx, rx := Channel[resource]()
	for range 3 {
		require.NoError(t, tx.Send(resource{drops: &drops}))
	}

	v, err := rx.Recv()
	require.NoError(t, err)
	v.Drop()

	rx.Drop()
	require.Equal(t, 3, drops)
	tx.Drop()
}

func TestAll(t *testing.T) {
	tx, rx := Channel[string]()

	go func() {
		defer tx.Drop()
		for _, v := range []string{"hi", "from", "the", "thread"} {
			if err := tx.Send(v); err != nil {
				return
			}
		}
	}()

	var got []string
	for v := range rx.All() {
		got = append(got, v)
	}
	require.Equal(t, []string{"hi", "from", "the", "thread"}, got)
}

func TestAllStopsEarly(t *testing.T) {
	tx, rx := Channel[int]()
	for i := range 5 {
		require.NoError(t, tx.Send(i))
	}

	for v := range rx.All() {
		if v == 1 {
			break
		}
	}
	require.Equal(t, 3, rx.Len())
	tx.Drop()
	rx.Drop()
}

type message struct {
	sender, seq int
}

func TestManyProducers(t *testing.T) {
	tests := map[string]struct {
		producers, messages int
	}{
		"single":   {producers: 1, messages: 1000},
		"few":      {producers: 4, messages: 500},
		"many":     {producers: 32, messages: 100},
		"no sends": {producers: 8, messages: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tx, rx := Channel[message]()
			g, _ := errgroup.WithContext(context.Background())
			for p := range tc.producers {
				s := tx.Clone()
				g.Go(func() error {
					defer s.Drop()
					for i := range tc.messages {
						if err := s.Send(message{sender: p, seq: i}); err != nil {
							return fmt.Errorf("producer %d: %w", p, err)
						}
					}
					return nil
				})
			}
			tx.Drop()

			next := make([]int, tc.producers)
			total := 0
			for msg := range rx.All() {
				require.Equal(t, next[msg.sender], msg.seq, "sender %d out of order", msg.sender)
				next[msg.sender]++
				total++
			}
			require.NoError(t, g.Wait())
			require.Equal(t, tc.producers*tc.messages, total)
		})
	}
}

func TestConcurrentSendersAndReceiverDrop(t *testing.T) {
	tx, rx := Channel[int]()

	var wg sync.WaitGroup
	for range 4 {
		s := tx.Clone()
		wg.Go(func() {
			defer s.Drop()
			for i := 0; ; i++ {
				if err := s.Send(i); err != nil {
					assert.ErrorIs(t, err, ErrClosed)
					return
				}
			}
		})
	}
	tx.Drop()

	for range 100 {
		_, err := rx.Recv()
		require.NoError(t, err)
	}
	rx.Drop()
	wg.Wait()
}
