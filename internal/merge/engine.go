package merge

import (
	"fmt"
	"time"

	"dario.cat/mergo"

	"github.com/mvoronkov/go-ledger-sync/models"
)

// engine is the concrete implementation of [Engine]. It is stateless: the
// whole resolution is a function of the two inputs, so no storage layer or
// logger is required.
type engine struct{}

// NewEngine constructs an [Engine] ready for use.
func NewEngine() Engine {
	return &engine{}
}

// Resolve implements [Engine].
//
// The decision tree follows the causal order established by the version
// vectors:
//
//  1. incoming happens-after local  → fast-forward, apply directly;
//  2. incoming happens-before or equals local → stale or duplicate, discard;
//  3. concurrent → last-write-wins by origin wall clock, device ID breaking
//     exact ties, with delete-vs-update handled by the tombstone rules.
//
// In every branch the stored vector becomes the component-wise maximum of
// both vectors, and an audit entry capturing pre- and post-merge state is
// produced for the caller to persist alongside the row.
func (e *engine) Resolve(local *models.EntityRecord, incoming IncomingChange) (Outcome, error) {
	if !incoming.Operation.Valid() || !incoming.EntityType.Valid() || len(incoming.Vector) == 0 {
		return Outcome{}, ErrMalformedChange
	}
	if local != nil && local.EntityType != incoming.EntityType {
		return Outcome{}, fmt.Errorf("%w: entity %s is %q, change says %q",
			ErrEntityTypeMismatch, incoming.EntityID, local.EntityType, incoming.EntityType)
	}

	if local == nil {
		record := recordFromIncoming(incoming, incoming.Vector.Clone())
		return outcome(models.MergeFastForward, nil, record, incoming, false), nil
	}

	switch local.Vector.Compare(incoming.Vector) {
	case models.OrderBefore:
		record := recordFromIncoming(incoming, local.Vector.Merge(incoming.Vector))
		if incoming.Operation == models.OperationDelete {
			// Tombstones keep the last known state for the audit trail.
			record.State = local.State.Clone()
		}
		return outcome(models.MergeFastForward, local, record, incoming, false), nil

	case models.OrderAfter, models.OrderEqual:
		// Stale or duplicate delivery. Idempotent no-op.
		return outcome(models.MergeDiscard, local, nil, incoming, false), nil
	}

	return e.resolveConcurrent(local, incoming)
}

// resolveConcurrent applies the field-level policy for the conflict case.
func (e *engine) resolveConcurrent(local *models.EntityRecord, incoming IncomingChange) (Outcome, error) {
	mergedVector := local.Vector.Merge(incoming.Vector)
	incomingDelete := incoming.Operation == models.OperationDelete

	switch {
	case incomingDelete && local.Deleted:
		// Both sides deleted concurrently; keep the later timestamp.
		record := local.Clone()
		record.Vector = mergedVector
		if incoming.CreatedAt.After(record.UpdatedAt) {
			record.UpdatedAt = incoming.CreatedAt
			record.LastDevice = incoming.DeviceID
		}
		return outcome(models.MergeConcurrent, local, record, incoming, false), nil

	case incomingDelete:
		// Delete vs live update: the delete wins only when its timestamp is
		// not earlier than the update's.
		if !incoming.CreatedAt.Before(local.UpdatedAt) {
			record := local.Clone()
			record.Deleted = true
			record.Vector = mergedVector
			record.UpdatedAt = incoming.CreatedAt
			record.LastDevice = incoming.DeviceID
			return outcome(models.MergeConcurrent, local, record, incoming, false), nil
		}
		// The update is later: the delete is superseded. Only the vector
		// advances; the superseded delete stays visible in the audit trail.
		record := local.Clone()
		record.Vector = mergedVector
		return outcome(models.MergeConcurrent, local, record, incoming, true), nil

	case local.Deleted:
		// Update vs tombstone: the update resurrects the entity only when
		// it is strictly later than the delete.
		if incoming.CreatedAt.After(local.UpdatedAt) {
			record := recordFromIncoming(incoming, mergedVector)
			return outcome(models.MergeResurrect, local, record, incoming, false), nil
		}
		record := local.Clone()
		record.Vector = mergedVector
		return outcome(models.MergeConcurrent, local, record, incoming, false), nil
	}

	// Two concurrent live writes: overlay the winner's fields on the
	// loser's state.
	incomingWins := lastWriteWins(incoming.CreatedAt, incoming.DeviceID, local.UpdatedAt, local.LastDevice)

	var state models.EntityState
	var err error
	if incomingWins {
		state, err = overlayState(local.State, incoming.State)
	} else {
		state, err = overlayState(incoming.State, local.State)
	}
	if err != nil {
		return Outcome{}, err
	}

	record := local.Clone()
	record.State = state
	record.Vector = mergedVector
	if incomingWins {
		record.UpdatedAt = incoming.CreatedAt
		record.LastDevice = incoming.DeviceID
	}
	return outcome(models.MergeConcurrent, local, record, incoming, false), nil
}

// lastWriteWins reports whether writer a beats writer b: later wall clock
// first, greater device ID on exact timestamp ties. Deterministic on every
// device regardless of arrival order.
func lastWriteWins(aAt time.Time, aDevice string, bAt time.Time, bDevice string) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return aDevice > bDevice
}

// overlayState lays the winner's non-zero fields over the loser's state, so
// a field only one side touched survives from whichever side set it.
func overlayState(loser, winner models.EntityState) (models.EntityState, error) {
	merged := loser.Clone()

	var err error
	switch {
	case merged.Account != nil && winner.Account != nil:
		err = mergo.Merge(merged.Account, *winner.Account, mergo.WithOverride)
	case merged.Transaction != nil && winner.Transaction != nil:
		err = mergo.Merge(merged.Transaction, *winner.Transaction, mergo.WithOverride)
	case merged.Invoice != nil && winner.Invoice != nil:
		err = mergo.Merge(merged.Invoice, *winner.Invoice, mergo.WithOverride)
	case merged.Contact != nil && winner.Contact != nil:
		err = mergo.Merge(merged.Contact, *winner.Contact, mergo.WithOverride)
	default:
		// One side carries no state branch (e.g. create racing a bare
		// tombstoneless shape); the winner's state stands alone.
		merged = winner.Clone()
	}
	if err != nil {
		return models.EntityState{}, fmt.Errorf("overlay states: %w", err)
	}

	return merged, nil
}

func recordFromIncoming(incoming IncomingChange, vector models.VersionVector) *models.EntityRecord {
	state := incoming.State.Clone()
	if incoming.Operation == models.OperationDelete && state.Type == "" {
		state.Type = incoming.EntityType
	}
	return &models.EntityRecord{
		EntityID:   incoming.EntityID,
		EntityType: incoming.EntityType,
		State:      state,
		Vector:     vector,
		Deleted:    incoming.Operation == models.OperationDelete,
		UpdatedAt:  incoming.CreatedAt,
		LastDevice: incoming.DeviceID,
	}
}

func outcome(action models.MergeAction, before *models.EntityRecord, after *models.EntityRecord, incoming IncomingChange, deleteSuperseded bool) Outcome {
	audit := models.AuditEntry{
		EntityID:         incoming.EntityID,
		EntityType:       incoming.EntityType,
		ChangeID:         incoming.ChangeID,
		Action:           action,
		DeleteSuperseded: deleteSuperseded,
		ResolvedAt:       time.Now().UTC(),
	}
	if before != nil {
		b := before.Clone()
		audit.Before = b
	}
	if after != nil {
		a := after.Clone()
		audit.After = a
	}
	return Outcome{Action: action, Record: after, Audit: audit}
}
