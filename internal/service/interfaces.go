package service

import (
	"context"

	"github.com/mvoronkov/go-ledger-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/relay_service_mock.go -package=mock

// RelaySyncService is the relay's application layer. It validates envelope
// shape and protocol version, persists sealed changes, and serves the
// company change feed. It never decrypts payloads and never applies
// business rules to their contents.
type RelaySyncService interface {
	// AcceptPush validates and persists a pushed batch. The response
	// partitions the batch into accepted and rejected change IDs; a change
	// the log has already seen counts as accepted, so re-pushing after a
	// lost response is idempotent.
	AcceptPush(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// ReadSince returns one page of the company's changes after
	// req.SinceOffset, excluding those pushed by the requesting device.
	ReadSince(ctx context.Context, req models.PullRequest) (models.PullResponse, error)

	// Acknowledge advances the device's high-water mark.
	Acknowledge(ctx context.Context, req models.AckRequest) error

	// Purge removes changes every registered device of a company has
	// acknowledged, bounded by the retention floor. Returns the number of
	// changes removed across all companies.
	Purge(ctx context.Context) (int64, error)
}

// AppInfoService reports static application metadata for the health
// endpoint.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetRegion(ctx context.Context) string
}
