package service

import (
	"context"
	"time"

	"github.com/mvoronkov/go-ledger-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// ChangeService is the local mutation entry point. Every edit to a ledger
// entity goes through Record, which bumps the entity's version vector,
// seals the new state, applies it to the local store, and queues the
// sealed change for the relay.
type ChangeService interface {
	// Record creates, applies, and queues one change to the given entity.
	// For creates the entity must not exist yet; for updates and deletes
	// it must. The returned change is already durable in the outbox.
	Record(ctx context.Context, entityID string, op models.Operation, state models.EntityState) (models.Change, error)
}

// TokenSource produces a fresh device bearer token. The sync client pulls a
// new token once per auth failure before giving up on the device.
type TokenSource interface {
	DeviceToken(ctx context.Context) (string, error)
}

// ClientSyncService drives one device's exchange with the relay.
//
// Push and Pull are never concurrent on one device: the background job and
// any manual trigger funnel through FullSync, which serializes them.
type ClientSyncService interface {
	// Push drains the outbox in batches. Accepted changes leave the
	// outbox; permanently rejected ones are quarantined; transport
	// failures leave the batch queued with a backoff.
	Push(ctx context.Context) error

	// Pull pages through the company's remote changes after the local
	// cursor, merging each page completely before advancing the cursor
	// and acknowledging the relay.
	Pull(ctx context.Context) error

	// FullSync is one push followed by a pull loop to drain. Auth
	// failures refresh the device token and retry once before
	// surfacing ErrDeviceRevoked.
	FullSync(ctx context.Context) error

	// Resync discards the pull cursor and replays the full remote log.
	// Merge idempotence makes the replay safe.
	Resync(ctx context.Context) error
}

// ClientSyncJob is the background worker that periodically calls FullSync.
type ClientSyncJob interface {
	// Start launches the background sync goroutine. It syncs every
	// interval, defaulting to 5 minutes if interval is zero or negative.
	// Any previously running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it
	// has fully terminated.
	Stop()
}
