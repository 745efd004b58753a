package crypto

import (
	"errors"
	"fmt"
)

// DecodeErrorKind classifies why a payload failed to open. All kinds are
// non-retryable for that specific change: the caller logs, records the
// failure, and moves on: a bad payload never crashes the sync loop.
type DecodeErrorKind string

const (
	// DecodeWrongKey: the payload was sealed under a different epoch than
	// the supplied key. Almost always a stale key after a rotation; the
	// caller should re-derive at the payload's epoch and retry once.
	DecodeWrongKey DecodeErrorKind = "wrong_key"

	// DecodeCorrupt: the envelope structure is malformed: truncated blob,
	// undecodable plaintext, or a broken entity-state union.
	DecodeCorrupt DecodeErrorKind = "corrupt"

	// DecodeTampered: the AEAD tag did not verify at the expected epoch.
	// Either the ciphertext or the associated data was altered.
	DecodeTampered DecodeErrorKind = "tampered"
)

// DecodeError is returned by [PayloadCodec.Decode].
type DecodeError struct {
	Kind DecodeErrorKind
	err  error
}

func (e *DecodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("decode payload: %s", e.Kind)
	}
	return fmt.Sprintf("decode payload: %s: %v", e.Kind, e.err)
}

func (e *DecodeError) Unwrap() error { return e.err }

// DecodeKind extracts the DecodeError kind from err, or "" when err is not
// a decode error.
func DecodeKind(err error) DecodeErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
