package merge

import "errors"

var (
	// ErrEntityTypeMismatch: the incoming change carries a different type
	// tag than the locally known entity with the same ID. One logical
	// entity is never owned by two type tags, so this cannot be resolved;
	// the caller quarantines the change instead of dropping it.
	ErrEntityTypeMismatch = errors.New("entity type mismatch")

	// ErrMalformedChange: the incoming change fails basic shape checks
	// (unknown operation or type, empty vector). Also a quarantine case.
	ErrMalformedChange = errors.New("malformed change")
)
