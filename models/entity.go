package models

import (
	"fmt"
	"time"
)

// AccountState is the plaintext state of a ledger account.
type AccountState struct {
	Name     string `json:"name,omitempty"`
	Number   string `json:"number,omitempty"`
	Currency string `json:"currency,omitempty"`
	Kind     string `json:"kind,omitempty"` // asset, liability, income, expense
	Archived bool   `json:"archived,omitempty"`
}

// TransactionState is the plaintext state of a booked transaction.
type TransactionState struct {
	AccountID    string    `json:"account_id,omitempty"`
	ContraID     string    `json:"contra_id,omitempty"`
	AmountCents  int64     `json:"amount_cents,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	BookedAt     time.Time `json:"booked_at,omitzero"`
	Description  string    `json:"description,omitempty"`
	CategoryCode string    `json:"category_code,omitempty"`
}

// InvoiceState is the plaintext state of an issued invoice.
type InvoiceState struct {
	ContactID  string    `json:"contact_id,omitempty"`
	Number     string    `json:"number,omitempty"`
	TotalCents int64     `json:"total_cents,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	IssuedAt   time.Time `json:"issued_at,omitzero"`
	DueAt      time.Time `json:"due_at,omitzero"`
	Status     string    `json:"status,omitempty"` // draft, sent, paid, void
}

// ContactState is the plaintext state of a customer or supplier contact.
type ContactState struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
	Address string `json:"address,omitempty"`
}

// EntityState is the tagged union of all synchronizable plaintext states.
// Exactly one branch is non-nil and it must match Type; the payload codec
// rejects anything else before sealing, so the dynamic "opaque blob" shape
// of wire payloads never leaks past the encode/decode boundary.
type EntityState struct {
	Type EntityType `json:"type"`

	Account     *AccountState     `json:"account,omitempty"`
	Transaction *TransactionState `json:"transaction,omitempty"`
	Invoice     *InvoiceState     `json:"invoice,omitempty"`
	Contact     *ContactState     `json:"contact,omitempty"`
}

// Validate checks the union invariant: a known type tag with exactly the
// matching branch set.
func (s EntityState) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("unknown entity type %q", s.Type)
	}

	branches := 0
	var matched bool
	if s.Account != nil {
		branches++
		matched = matched || s.Type == EntityAccount
	}
	if s.Transaction != nil {
		branches++
		matched = matched || s.Type == EntityTransaction
	}
	if s.Invoice != nil {
		branches++
		matched = matched || s.Type == EntityInvoice
	}
	if s.Contact != nil {
		branches++
		matched = matched || s.Type == EntityContact
	}

	if branches != 1 || !matched {
		return fmt.Errorf("entity state for type %q must set exactly the matching branch", s.Type)
	}
	return nil
}

// Clone returns a deep copy of s.
func (s EntityState) Clone() EntityState {
	cloned := EntityState{Type: s.Type}
	if s.Account != nil {
		a := *s.Account
		cloned.Account = &a
	}
	if s.Transaction != nil {
		t := *s.Transaction
		cloned.Transaction = &t
	}
	if s.Invoice != nil {
		i := *s.Invoice
		cloned.Invoice = &i
	}
	if s.Contact != nil {
		c := *s.Contact
		cloned.Contact = &c
	}
	return cloned
}

// EntityRecord is the local store's current-state row for one entity. The
// store is mutated only by the merge engine, under a per-entity transaction.
type EntityRecord struct {
	EntityID   string        `json:"entity_id"`
	EntityType EntityType    `json:"entity_type"`
	State      EntityState   `json:"state"`
	Vector     VersionVector `json:"version_vector"`

	// Deleted marks a tombstone. The row is retained so that version-vector
	// comparison keeps working for late-arriving changes.
	Deleted bool `json:"deleted"`

	// UpdatedAt and LastDevice come from the change that last won a merge
	// on this entity. They are the tie-break inputs for later concurrent
	// merges: wall clock first, then device ID lexicographically.
	UpdatedAt  time.Time `json:"updated_at"`
	LastDevice string    `json:"last_device"`
}

// Clone returns a deep copy of the record.
func (r *EntityRecord) Clone() *EntityRecord {
	if r == nil {
		return nil
	}
	cloned := *r
	cloned.State = r.State.Clone()
	cloned.Vector = r.Vector.Clone()
	return &cloned
}
