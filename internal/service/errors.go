package service

import "errors"

var (
	// ErrUnsupportedProtocol means the request carried a protocol version
	// the relay does not speak. There is no negotiation; the client must
	// upgrade or downgrade.
	ErrUnsupportedProtocol = errors.New("unsupported protocol version")

	// ErrInvalidRequest covers requests missing required identity fields.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTemporarilyUnavailable wraps retryable storage failures so the
	// transport layer can tell clients to back off and retry.
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")

	// ErrDeviceRevoked is surfaced by the sync client when authentication
	// keeps failing after a token refresh. The device no longer holds
	// valid credentials for the company.
	ErrDeviceRevoked = errors.New("device revoked")

	// ErrEntityAlreadyExists is returned on a create for an entity the
	// local store already holds live.
	ErrEntityAlreadyExists = errors.New("entity already exists")

	// ErrEntityTypeConflict is returned when a change carries a different
	// type tag than the one its entity was created with.
	ErrEntityTypeConflict = errors.New("entity type conflict")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
	ErrRegionIsNotSpecified  = errors.New("app region is not specified")
)
