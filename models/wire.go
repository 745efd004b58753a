package models

import "time"

// ProtocolVersion is the current relay wire protocol version. The relay
// rejects requests carrying a different version outright; there is no
// negotiation.
const ProtocolVersion = 1

// RelayChange is a Change as stored and served by the relay, annotated with
// the relay-assigned monotonic offset that pull cursors are built on. The
// relay never inspects the payload beyond envelope shape.
type RelayChange struct {
	Change
	Offset int64 `json:"offset"`
}

// PushRequest is a batch of sealed changes sent by one device.
type PushRequest struct {
	ProtocolVersion int       `json:"protocol_version"`
	DeviceID        string    `json:"device_id"`
	CompanyID       string    `json:"company_id"`
	Timestamp       time.Time `json:"timestamp"`
	Changes         []Change  `json:"changes"`
}

// RejectedChange names one change from a push batch the relay refused, with
// a machine-readable reason.
type RejectedChange struct {
	ChangeID string `json:"change_id"`
	Reason   string `json:"reason"`
}

// Rejection reasons returned in PushResponse. Reasons are part of the wire
// protocol: the client decides requeue-vs-drop from them.
const (
	RejectReasonTooLarge      = "payload_too_large"
	RejectReasonMalformed     = "malformed_envelope"
	RejectReasonUnknownType   = "unknown_entity_type"
	RejectReasonBatchOverflow = "batch_limit_exceeded"
)

// PushResponse partitions the pushed batch into persisted and refused
// changes. A change the relay has already seen (same ChangeID) counts as
// accepted, which makes re-pushing after a cancelled or timed-out push
// idempotent.
type PushResponse struct {
	ProtocolVersion int              `json:"protocol_version"`
	Success         bool             `json:"success"`
	Accepted        []string         `json:"accepted"`
	Rejected        []RejectedChange `json:"rejected"`
	Timestamp       time.Time        `json:"timestamp"`
}

// PullRequest asks for the company's changes after SinceOffset, excluding
// the caller's own. SinceOffset is the relay-assigned offset from the
// previous PullResponse, not a wall-clock time.
type PullRequest struct {
	ProtocolVersion int    `json:"protocol_version"`
	DeviceID        string `json:"device_id"`
	CompanyID       string `json:"company_id"`
	SinceOffset     int64  `json:"since_offset"`
	Limit           int    `json:"limit,omitempty"`
}

// PullResponse carries one page of changes. NextOffset is the offset of the
// last returned change; the client persists it as its cursor only after the
// whole page has been merged.
type PullResponse struct {
	ProtocolVersion int           `json:"protocol_version"`
	Changes         []RelayChange `json:"changes"`
	HasMore         bool          `json:"has_more"`
	NextOffset      int64         `json:"next_offset"`
	Timestamp       time.Time     `json:"timestamp"`
}

// AckRequest advances the calling device's high-water mark on the relay.
// The relay uses the marks of all registered devices to decide which
// changes are safe to purge.
type AckRequest struct {
	ProtocolVersion int    `json:"protocol_version"`
	DeviceID        string `json:"device_id"`
	CompanyID       string `json:"company_id"`
	AckedOffset     int64  `json:"acked_offset"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Region    string    `json:"region"`
	Timestamp time.Time `json:"timestamp"`
}
