package queue

//go:generate mockgen -source=interfaces.go -destination=../mock/outbox_mock.go -package=mock

import (
	"context"

	"github.com/mvoronkov/go-ledger-sync/models"
)

// Outbox is the durable queue of locally originated changes awaiting relay
// acknowledgment. It is a single-writer (the mutation path calling Enqueue)
// single-reader (the sync client) structure, so transactional durability is
// the only locking it needs.
//
// Ordering: changes to the same entity are returned in enqueue order,
// always. Cross-entity order is unconstrained and batches interleave
// entities freely.
//
// A change leaves the outbox in exactly one of two ways: Acknowledge after
// the relay confirmed receipt, or Quarantine for permanently rejected
// envelopes. Relay acknowledgment says nothing about remote merging: that
// happens on the pulling side.
type Outbox interface {
	// Enqueue persists a change. The write is transactional: after Enqueue
	// returns nil the change survives a crash; on error nothing was written.
	Enqueue(ctx context.Context, change models.Change) error

	// NextBatch returns up to maxSize pending changes in sequence order.
	// Failed changes whose retry backoff has not elapsed are skipped along
	// with every later change of the same entity, preserving per-entity FIFO.
	NextBatch(ctx context.Context, maxSize int) ([]models.Change, error)

	// Acknowledge removes relay-confirmed changes from the outbox.
	Acknowledge(ctx context.Context, changeIDs []string) error

	// MarkFailed records a transient send failure; the change stays queued
	// and becomes eligible again after a backoff interval.
	MarkFailed(ctx context.Context, changeID string, reason string) error

	// MarkThrottled delays a change the relay turned away for quota
	// reasons. The wait is much longer than the MarkFailed backoff and the
	// attempt counter is untouched: being throttled says nothing about
	// the change itself, so it must never park it as exhausted.
	MarkThrottled(ctx context.Context, changeID string, reason string) error

	// Quarantine permanently parks a change the relay rejected as
	// malformed. Quarantined changes are never retried but are kept for
	// inspection rather than dropped.
	Quarantine(ctx context.Context, changeID string, reason string) error

	// PendingCount reports how many changes are awaiting transmission.
	PendingCount(ctx context.Context) (int, error)

	// Exhausted returns changes that have used up every retry attempt.
	// They stay in the outbox, so local failures never lose data, but are
	// no longer sent until the caller intervenes (explicit re-sync).
	Exhausted(ctx context.Context) ([]models.Change, error)

	// Close releases the underlying database handle.
	Close() error
}
