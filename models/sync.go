package models

import "time"

// SyncCursor tracks how far a device has read a company's change feed on
// the relay. RemoteOffset is the relay-assigned monotonic offset of the last
// change fully merged locally; it only moves forward, except on an explicit
// re-sync which resets it to zero.
type SyncCursor struct {
	CompanyID    string    `json:"company_id"`
	RemoteOffset int64     `json:"remote_offset"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MergeAction names the resolution the merge engine chose for one incoming
// change.
type MergeAction string

const (
	// MergeFastForward: the incoming change strictly supersedes the local
	// state and was applied directly.
	MergeFastForward MergeAction = "fast_forward"

	// MergeDiscard: the incoming change is stale or a duplicate; local
	// state is untouched.
	MergeDiscard MergeAction = "discard"

	// MergeConcurrent: the incoming change conflicted with local state and
	// the field-level policy produced the merged result.
	MergeConcurrent MergeAction = "concurrent"

	// MergeResurrect: an update superseded a causally concurrent delete
	// and brought the entity back from its tombstone.
	MergeResurrect MergeAction = "resurrect"
)

// AuditEntry records one merge resolution. Appending the entry durably, in
// the same transaction as the store write, is part of the merge itself: a
// resolution without its audit entry never happened.
type AuditEntry struct {
	EntityID   string      `json:"entity_id"`
	EntityType EntityType  `json:"entity_type"`
	ChangeID   string      `json:"change_id"`
	Action     MergeAction `json:"action"`

	// Before is the local record prior to the merge; nil when the entity
	// was absent. After is the post-merge record; nil on discard.
	Before *EntityRecord `json:"before,omitempty"`
	After  *EntityRecord `json:"after,omitempty"`

	// DeleteSuperseded is set when a concurrent delete lost to a later
	// update and was retained in the trail rather than applied.
	DeleteSuperseded bool `json:"delete_superseded,omitempty"`

	ResolvedAt time.Time `json:"resolved_at"`
}
