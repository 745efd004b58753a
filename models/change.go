package models

import "time"

// Operation classifies a change to an entity.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Valid reports whether op is one of the three known operations.
func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// EntityType tags a synchronizable business object. An entity ID is bound to
// a single type tag for its whole lifetime; a change arriving with a
// different tag for a known ID is quarantined, never merged.
type EntityType string

const (
	EntityAccount     EntityType = "account"
	EntityTransaction EntityType = "transaction"
	EntityInvoice     EntityType = "invoice"
	EntityContact     EntityType = "contact"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityAccount, EntityTransaction, EntityInvoice, EntityContact:
		return true
	}
	return false
}

// EncryptedPayload is the ciphertext envelope carried by a change. The relay
// stores it verbatim and never holds the key material to open it.
//
// Epoch names the key generation the payload was sealed under. A receiver
// always decrypts with the key for this epoch, never the latest one it
// knows, so pushes that were in flight during a rotation still open.
//
// Ciphertext is the AES-GCM blob in the usual nonce-prefixed form:
// nonce (12 bytes) ‖ ciphertext ‖ tag. It is base64-encoded on the wire.
type EncryptedPayload struct {
	Epoch      uint64 `json:"epoch"`
	Ciphertext []byte `json:"ciphertext"`
}

// Change is an immutable record of one mutation to one entity. A change is
// created on the originating device, sealed by the payload codec, queued in
// the local outbox until the relay acknowledges it, and merged independently
// on every pulling device.
type Change struct {
	// ChangeID is a client-generated UUID, unique across all devices.
	// The relay deduplicates re-pushed changes by this ID.
	ChangeID string `json:"change_id"`

	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	Operation  Operation  `json:"operation"`

	Payload EncryptedPayload `json:"encrypted_payload"`

	// Vector is the entity's version vector as of this change, already
	// incremented for the originating device.
	Vector VersionVector `json:"version_vector"`

	// DeviceID identifies the originating device.
	DeviceID string `json:"device_id"`

	// CreatedAt is the originating device's wall clock at mutation time.
	// It is only a tie-break for concurrent changes, never an ordering
	// source of truth.
	CreatedAt time.Time `json:"created_at"`
}
