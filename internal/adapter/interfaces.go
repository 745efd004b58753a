// Package adapter provides the transport layer for communicating with the
// sync relay.
//
// The primary abstraction is [RelayAdapter], which decouples the sync
// service from the underlying protocol. The package ships an HTTP/JSON
// implementation ([NewHTTPRelayAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrAuth] for 401/403, [ErrQuota] for 413/429).
package adapter

import (
	"context"

	"github.com/mvoronkov/go-ledger-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/relay_adapter_mock.go -package=mock

// RelayAdapter defines transport-agnostic communication with the relay.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type RelayAdapter interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or
	// an empty string if no token has been set yet.
	Token() string

	// Push uploads a batch of sealed changes. The response partitions the
	// batch into accepted and rejected IDs; a transport-level error means
	// nothing is known about the batch's fate and the outbox must keep it.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Pull fetches one page of changes after req.SinceOffset, excluding
	// the calling device's own.
	Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error)

	// Ack advances the device's high-water mark on the relay.
	Ack(ctx context.Context, req models.AckRequest) error

	// Health probes the relay. It requires no authentication.
	Health(ctx context.Context) (models.HealthResponse, error)
}
