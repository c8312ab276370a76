// Package txn defines the transaction contract the domain services program
// against: an explicit run-in-transaction wrapper plus post-outcome hooks.
// Side effects that must follow the database outcome (media-file cleanup,
// cache invalidation) are queued on the context and flushed exactly once by
// the manager after the transaction resolves.
package txn

import "context"

// Manager runs fn inside a database transaction. The context passed to fn
// carries the transaction and a hook queue. If fn returns an error the
// transaction is rolled back and rollback hooks fire; otherwise it is
// committed and commit hooks fire. Hooks run synchronously before
// RunInTransaction returns.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type hooksKey struct{}

// Hooks collects callbacks to run after the enclosing transaction resolves.
type Hooks struct {
	commit   []func()
	rollback []func()
	done     bool
}

// WithHooks attaches a fresh hook queue to ctx. Managers call this when
// opening a transaction.
func WithHooks(ctx context.Context) (context.Context, *Hooks) {
	h := &Hooks{}
	return context.WithValue(ctx, hooksKey{}, h), h
}

// HooksFrom returns the hook queue carried by ctx, or nil outside a
// transaction.
func HooksFrom(ctx context.Context) *Hooks {
	h, _ := ctx.Value(hooksKey{}).(*Hooks)
	return h
}

// OnCommit queues fn to run after the enclosing transaction commits. Outside
// a transaction fn runs immediately.
func OnCommit(ctx context.Context, fn func()) {
	if h := HooksFrom(ctx); h != nil {
		h.commit = append(h.commit, fn)
		return
	}
	fn()
}

// OnRollback queues fn to run if the enclosing transaction rolls back.
// Outside a transaction fn is dropped: there is nothing to undo.
func OnRollback(ctx context.Context, fn func()) {
	if h := HooksFrom(ctx); h != nil {
		h.rollback = append(h.rollback, fn)
	}
}

// ResolveCommit fires the commit hooks in registration order. It is a no-op
// after the queue has resolved once.
func (h *Hooks) ResolveCommit() {
	if h == nil || h.done {
		return
	}
	h.done = true
	for _, fn := range h.commit {
		fn()
	}
}

// ResolveRollback fires the rollback hooks in registration order. It is a
// no-op after the queue has resolved once.
func (h *Hooks) ResolveRollback() {
	if h == nil || h.done {
		return
	}
	h.done = true
	for _, fn := range h.rollback {
		fn()
	}
}
