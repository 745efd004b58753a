package merge

//go:generate mockgen -source=interfaces.go -destination=../mock/merge_engine_mock.go -package=mock

import (
	"time"

	"github.com/mvoronkov/go-ledger-sync/models"
)

// IncomingChange is a pulled change after its payload has been opened by the
// codec. The engine never sees ciphertext.
type IncomingChange struct {
	ChangeID   string
	EntityID   string
	EntityType models.EntityType
	Operation  models.Operation

	// State is the decrypted entity state. Ignored for deletes.
	State models.EntityState

	Vector    models.VersionVector
	DeviceID  string
	CreatedAt time.Time
}

// Outcome is one resolved merge. Record is the post-merge row to persist,
// or nil when local state is untouched (discard, superseded delete). The
// audit entry must be appended in the same transaction as the row write;
// the merge is not complete until both are durable.
type Outcome struct {
	Action models.MergeAction
	Record *models.EntityRecord
	Audit  models.AuditEntry
}

// Engine resolves an incoming change against the local record for the same
// entity. Resolve is pure: it mutates neither input and performs no I/O, so
// every conflict case is testable without a store.
//
// Resolution is commutative and idempotent: two devices that have seen the
// same set of changes hold identical records regardless of arrival order.
type Engine interface {
	Resolve(local *models.EntityRecord, incoming IncomingChange) (Outcome, error)
}
