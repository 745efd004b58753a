package adapter

import "errors"

// Transport error taxonomy. The sync service decides retry-vs-surface from
// these: [ErrNetwork] and [ErrUnavailable] are retried with backoff,
// [ErrAuth] triggers key re-derivation and, if that fails too, surfaces as
// a revoked device, [ErrProtocol] and [ErrQuota] are surfaced immediately.
var (
	// ErrNetwork is returned when the relay cannot be reached at all:
	// dial failures, timeouts, connection resets.
	ErrNetwork = errors.New("relay unreachable")

	// ErrAuth is returned on 401 and 403 responses.
	ErrAuth = errors.New("relay rejected credentials")

	// ErrProtocol is returned on 400 and 422 responses, including protocol
	// version mismatches.
	ErrProtocol = errors.New("relay rejected request shape")

	// ErrQuota is returned on 413 and 429 responses.
	ErrQuota = errors.New("relay quota exceeded")

	// ErrUnavailable is returned on 5xx responses.
	ErrUnavailable = errors.New("relay temporarily unavailable")
)
