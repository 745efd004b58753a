package queue

import "errors"

var (
	// ErrDuplicateChange: a change with the same change ID is already in
	// the outbox. Enqueue is called once per locally originated change, so
	// hitting this means the caller's enqueue path re-ran after a partial
	// failure; the original row is authoritative.
	ErrDuplicateChange = errors.New("change already enqueued")

	// ErrChangeNotFound: the referenced change ID is not in the outbox.
	ErrChangeNotFound = errors.New("change not found in outbox")
)
