// Package social fans new ads out to social channels without ever affecting
// the request that created them.
package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/classifieds-api/internal/domain"
	"github.com/classifieds-api/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcome is the settled result of one channel delivery.
type Outcome struct {
	Channel string
	Err     error
}

// Notifier delivers payloads to every channel concurrently and logs each outcome.
type Notifier struct {
	channels []Channel
	timeout  time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending int
	idle    chan struct{} // closed when pending drops back to zero
}

// NewNotifier creates a Notifier. timeout bounds each detached fan-out.
func NewNotifier(channels []Channel, timeout time.Duration, log *zap.Logger) *Notifier {
	return &Notifier{channels: channels, timeout: timeout, log: logger.OrNop(log)}
}

// Share summarises ad and broadcasts it in the background. It returns immediately;
// failures and panics are logged only.
func (n *Notifier) Share(ad *domain.Ad, author *domain.Author) {
	if ad == nil || len(n.channels) == 0 {
		return
	}
	p := NewPayload(ad, author)
	n.begin()
	go func() {
		defer n.end()
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("social fan-out panicked", zap.String("ad_id", p.ID), zap.Any("panic", r))
			}
		}()
		ctx := context.Background()
		if n.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, n.timeout)
			defer cancel()
		}
		n.Broadcast(ctx, p)
	}()
}

// Broadcast sends p to every channel concurrently and waits for all of them.
// One channel failing never cancels the others.
func (n *Notifier) Broadcast(ctx context.Context, p Payload) []Outcome {
	outcomes := make([]Outcome, len(n.channels))
	var g errgroup.Group
	for i, ch := range n.channels {
		g.Go(func() error {
			err := n.send(ctx, ch, p)
			outcomes[i] = Outcome{Channel: ch.Name(), Err: err}
			if err != nil {
				n.log.Error("failed to share ad", zap.String("channel", ch.Name()), zap.String("ad_id", p.ID), zap.Error(err))
			} else {
				n.log.Info("shared ad", zap.String("channel", ch.Name()), zap.String("ad_id", p.ID))
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (n *Notifier) send(ctx context.Context, ch Channel, p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
	}()
	return ch.Send(ctx, p)
}

func (n *Notifier) begin() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending == 0 {
		n.idle = make(chan struct{})
	}
	n.pending++
}

func (n *Notifier) end() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending--
	if n.pending == 0 {
		close(n.idle)
	}
}

// Wait blocks until in-flight fan-outs finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	n.mu.Lock()
	if n.pending == 0 {
		n.mu.Unlock()
		return nil
	}
	idle := n.idle
	n.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
