// Package eventbus delivers CommentCreated events to subscribers.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/runoshun/crewboard/internal/domain"
)

// Ensure Bus implements domain.CommentPublisher.
var _ domain.CommentPublisher = (*Bus)(nil)

type envelope struct {
	ctx context.Context
	evt domain.CommentCreated
}

// Bus fans out CommentCreated events.
// With a queue size of 0, Publish runs subscribers inline and returns their errors.
// Otherwise events are queued and handled by a single worker in publish order.
// Fields are ordered to minimize memory padding.
type Bus struct {
	logger   domain.Logger
	queue    chan envelope
	done     chan struct{}
	handlers []domain.CommentHandler
	mu       sync.RWMutex // Guards closed and sends on queue
	hmu      sync.Mutex   // Guards handlers
	closed   bool
}

// New creates a Bus. logger receives errors from queued handlers.
func New(queueSize int, logger domain.Logger) *Bus {
	b := &Bus{logger: logger}
	if queueSize > 0 {
		b.queue = make(chan envelope, queueSize)
		b.done = make(chan struct{})
		go b.run()
	}
	return b
}

// Subscribe registers a handler. Handlers run in registration order.
func (b *Bus) Subscribe(h domain.CommentHandler) {
	b.hmu.Lock()
	defer b.hmu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers evt to all subscribers.
func (b *Bus) Publish(ctx context.Context, evt domain.CommentCreated) error {
	if b.queue == nil {
		b.mu.RLock()
		closed := b.closed
		b.mu.RUnlock()
		if closed {
			return domain.ErrBusClosed
		}
		return b.dispatch(ctx, evt)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return domain.ErrBusClosed
	}

	select {
	case b.queue <- envelope{ctx: context.WithoutCancel(ctx), evt: evt}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish comment %s: %w", evt.Comment.ID, ctx.Err())
	}
}

// Close stops accepting events and waits for queued events to be handled.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	if b.queue != nil {
		close(b.queue)
	}
	b.mu.Unlock()

	if b.done != nil {
		<-b.done
	}
	return nil
}

func (b *Bus) run() {
	defer close(b.done)
	for env := range b.queue {
		if err := b.dispatch(env.ctx, env.evt); err != nil && b.logger != nil {
			b.logger.Error(env.evt.Comment.TaskID, "eventbus", err.Error())
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, evt domain.CommentCreated) error {
	b.hmu.Lock()
	handlers := append([]domain.CommentHandler(nil), b.handlers...)
	b.hmu.Unlock()

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
