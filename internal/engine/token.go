package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ldellis/rolo/internal/errs"
)

// Token is the cooperative cancellation handle for one batch
// operation. It is created fresh per operation and shared with the
// store call and the UI cancel affordance; cancellation is a one-way
// transition. The flag is atomic so a cancel from the UI goroutine is
// visible to the operation without locking.
type Token struct {
	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once
}

// NewToken returns an uncancelled token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel marks the token cancelled. Idempotent.
func (t *Token) Cancel() {
	t.once.Do(func() {
		t.cancelled.Store(true)
		close(t.done)
	})
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Done returns a channel closed when the token is cancelled.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// Err returns the cancelled-kind error when the token has been
// cancelled, nil otherwise. Long-running operations call this at
// suspension points to abort cooperatively.
func (t *Token) Err() error {
	if t.Cancelled() {
		return errs.Errorf(errs.ECANCELLED, "operation cancelled")
	}
	return nil
}

// Context derives a context from parent that is cancelled when the
// token fires. The returned cancel func releases the watcher and must
// be called when the operation ends.
func (t *Token) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-t.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
