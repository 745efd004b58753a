package store

import (
	"context"
	"time"

	"github.com/mvoronkov/go-ledger-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_store.go -package=mock

// ChangeLog is the relay-side persistent log of sealed changes for all
// companies. Changes are append-only and ordered by a relay-assigned
// monotonic offset; the relay never reads past the envelope.
type ChangeLog interface {
	// SaveChanges appends the batch for the given company in request order,
	// skipping changes whose ChangeID the log has already seen. It returns
	// the ChangeIDs that were newly persisted and those that were detected
	// as duplicates; a duplicate is not an error.
	SaveChanges(ctx context.Context, companyID string, changes []models.Change) (accepted []string, duplicates []string, err error)

	// ChangesSince returns up to limit changes for the company with offset
	// strictly greater than sinceOffset, excluding changes that originated
	// on excludeDevice, in ascending offset order. hasMore reports whether
	// further matching changes exist beyond the returned page.
	ChangesSince(ctx context.Context, companyID, excludeDevice string, sinceOffset int64, limit int) (changes []models.RelayChange, hasMore bool, err error)

	// RecordAck moves the device's high-water mark forward. A mark lower
	// than the stored one is ignored.
	RecordAck(ctx context.Context, companyID, deviceID string, ackedOffset int64, seenAt time.Time) error

	// MinAckedOffset returns the lowest high-water mark across the
	// company's registered devices. ok is false when the company has no
	// registered devices, in which case nothing may be purged.
	MinAckedOffset(ctx context.Context, companyID string) (offset int64, ok bool, err error)

	// PurgeAcknowledged deletes changes every device has acknowledged,
	// but never changes received after the retention cutoff. It returns
	// the number of rows removed.
	PurgeAcknowledged(ctx context.Context, companyID string, upTo int64, receivedBefore time.Time) (int64, error)

	// Companies lists the company IDs present in the log.
	Companies(ctx context.Context) ([]string, error)
}

// LocalStore is the device-local current-state store the merge engine
// writes into. A merge is complete only when the entity row and its audit
// entry are committed in the same transaction.
type LocalStore interface {
	// GetEntity returns the record for entityID, or ErrEntityNotFound.
	// Tombstoned entities are returned like any other record.
	GetEntity(ctx context.Context, entityID string) (*models.EntityRecord, error)

	// ApplyMerge persists one merge outcome atomically: the entity row is
	// upserted (when record is non-nil) and the audit entry appended in
	// the same transaction. A nil record means the merge changed nothing
	// and only the audit trail grows.
	ApplyMerge(ctx context.Context, record *models.EntityRecord, audit models.AuditEntry) error

	// GetCursor returns the pull cursor for companyID, or ErrCursorNotFound
	// when the device has never completed a pull for that company.
	GetCursor(ctx context.Context, companyID string) (models.SyncCursor, error)

	// SaveCursor stores the cursor, replacing any previous value.
	SaveCursor(ctx context.Context, cursor models.SyncCursor) error

	// ResetCursor removes the cursor so the next pull replays the full
	// remote log. Merge idempotence makes the replay safe.
	ResetCursor(ctx context.Context, companyID string) error

	// Quarantine parks an undecodable or malformed remote change for
	// operator review. Quarantined changes never block the cursor.
	Quarantine(ctx context.Context, change models.RelayChange, reason string) error

	// QuarantinedChanges lists parked changes in arrival order.
	QuarantinedChanges(ctx context.Context, limit int) ([]QuarantinedChange, error)

	// AuditSince returns audit entries resolved at or after since, oldest
	// first, up to limit.
	AuditSince(ctx context.Context, since time.Time, limit int) ([]models.AuditEntry, error)

	Close() error
}

// QuarantinedChange is one parked remote change with the reason it could
// not be applied.
type QuarantinedChange struct {
	Change     models.RelayChange
	Reason     string
	ReceivedAt time.Time
}
