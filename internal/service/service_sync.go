package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
	"github.com/mvoronkov/go-ledger-sync/models"
)

const (
	// maxPushBatch caps how many changes one push request may carry.
	// Changes past the cap are rejected individually so the client can
	// requeue them into the next batch.
	maxPushBatch = 100

	// maxPayloadBytes caps one sealed payload. Entity states are small;
	// anything above this is a client bug or abuse.
	maxPayloadBytes = 1 << 20

	defaultPullLimit = 100
	maxPullLimit     = 500
)

// relaySyncService implements [RelaySyncService] on top of the change log.
// Validation here is envelope-shape only: required fields, known entity
// type, size caps. Payload contents stay sealed end to end.
type relaySyncService struct {
	changeLog store.ChangeLog
	db        *store.DB

	retention time.Duration

	logger *logger.Logger
}

func NewRelaySyncService(storages *store.Storages, cfg config.RelayWorkers, logger *logger.Logger) RelaySyncService {
	retentionDays := cfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}

	return &relaySyncService{
		changeLog: storages.ChangeLog,
		db:        storages.DB,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

func (s *relaySyncService) AcceptPush(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	log := logger.FromContext(ctx)

	if req.ProtocolVersion != models.ProtocolVersion {
		return models.PushResponse{}, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedProtocol, req.ProtocolVersion, models.ProtocolVersion)
	}
	if req.DeviceID == "" || req.CompanyID == "" {
		return models.PushResponse{}, fmt.Errorf("%w: device_id and company_id are required", ErrInvalidRequest)
	}

	rejected := make([]models.RejectedChange, 0)
	valid := make([]models.Change, 0, len(req.Changes))

	for i, change := range req.Changes {
		if i >= maxPushBatch {
			rejected = append(rejected, models.RejectedChange{
				ChangeID: change.ChangeID,
				Reason:   models.RejectReasonBatchOverflow,
			})
			continue
		}
		if reason := validateEnvelope(change); reason != "" {
			rejected = append(rejected, models.RejectedChange{ChangeID: change.ChangeID, Reason: reason})
			continue
		}
		valid = append(valid, change)
	}

	accepted := make([]string, 0, len(valid))
	if len(valid) > 0 {
		newlySaved, duplicates, err := s.changeLog.SaveChanges(ctx, req.CompanyID, valid)
		if err != nil {
			log.Err(err).
				Str("func", "relaySyncService.AcceptPush").
				Str("company_id", req.CompanyID).
				Str("device_id", req.DeviceID).
				Msg("failed to persist pushed batch")
			return models.PushResponse{}, s.storageError(err)
		}
		accepted = append(accepted, newlySaved...)
		// Re-pushed changes the log already holds are acknowledged like
		// fresh ones, so a client that lost the previous response can
		// drain its outbox.
		accepted = append(accepted, duplicates...)
	}

	// A push registers the device in the ack table even before its first
	// explicit ack, so purge decisions account for it.
	if err := s.changeLog.RecordAck(ctx, req.CompanyID, req.DeviceID, 0, time.Now()); err != nil {
		log.Err(err).
			Str("func", "relaySyncService.AcceptPush").
			Str("device_id", req.DeviceID).
			Msg("failed to record device last-seen")
		return models.PushResponse{}, s.storageError(err)
	}

	return models.PushResponse{
		ProtocolVersion: models.ProtocolVersion,
		Success:         len(rejected) == 0,
		Accepted:        accepted,
		Rejected:        rejected,
		Timestamp:       time.Now(),
	}, nil
}

func (s *relaySyncService) ReadSince(ctx context.Context, req models.PullRequest) (models.PullResponse, error) {
	log := logger.FromContext(ctx)

	if req.ProtocolVersion != models.ProtocolVersion {
		return models.PullResponse{}, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedProtocol, req.ProtocolVersion, models.ProtocolVersion)
	}
	if req.DeviceID == "" || req.CompanyID == "" {
		return models.PullResponse{}, fmt.Errorf("%w: device_id and company_id are required", ErrInvalidRequest)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPullLimit
	}
	if limit > maxPullLimit {
		limit = maxPullLimit
	}

	changes, hasMore, err := s.changeLog.ChangesSince(ctx, req.CompanyID, req.DeviceID, req.SinceOffset, limit)
	if err != nil {
		log.Err(err).
			Str("func", "relaySyncService.ReadSince").
			Str("company_id", req.CompanyID).
			Int64("since_offset", req.SinceOffset).
			Msg("failed to read change feed")
		return models.PullResponse{}, s.storageError(err)
	}

	nextOffset := req.SinceOffset
	if len(changes) > 0 {
		nextOffset = changes[len(changes)-1].Offset
	}

	if err = s.changeLog.RecordAck(ctx, req.CompanyID, req.DeviceID, 0, time.Now()); err != nil {
		log.Err(err).
			Str("func", "relaySyncService.ReadSince").
			Str("device_id", req.DeviceID).
			Msg("failed to record device last-seen")
		return models.PullResponse{}, s.storageError(err)
	}

	return models.PullResponse{
		ProtocolVersion: models.ProtocolVersion,
		Changes:         changes,
		HasMore:         hasMore,
		NextOffset:      nextOffset,
		Timestamp:       time.Now(),
	}, nil
}

func (s *relaySyncService) Acknowledge(ctx context.Context, req models.AckRequest) error {
	if req.ProtocolVersion != models.ProtocolVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedProtocol, req.ProtocolVersion, models.ProtocolVersion)
	}
	if req.DeviceID == "" || req.CompanyID == "" {
		return fmt.Errorf("%w: device_id and company_id are required", ErrInvalidRequest)
	}
	if req.AckedOffset < 0 {
		return fmt.Errorf("%w: acked_offset must not be negative", ErrInvalidRequest)
	}

	if err := s.changeLog.RecordAck(ctx, req.CompanyID, req.DeviceID, req.AckedOffset, time.Now()); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "relaySyncService.Acknowledge").
			Str("company_id", req.CompanyID).
			Str("device_id", req.DeviceID).
			Msg("failed to record ack")
		return s.storageError(err)
	}
	return nil
}

// Purge walks every company and deletes changes all registered devices have
// acknowledged, except those still inside the retention window. A company
// without registered devices is skipped entirely.
func (s *relaySyncService) Purge(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	companies, err := s.changeLog.Companies(ctx)
	if err != nil {
		return 0, s.storageError(err)
	}

	cutoff := time.Now().Add(-s.retention)

	var total int64
	for _, companyID := range companies {
		minOffset, ok, minErr := s.changeLog.MinAckedOffset(ctx, companyID)
		if minErr != nil {
			return total, s.storageError(minErr)
		}
		if !ok {
			continue
		}

		purged, purgeErr := s.changeLog.PurgeAcknowledged(ctx, companyID, minOffset, cutoff)
		if purgeErr != nil {
			return total, s.storageError(purgeErr)
		}
		total += purged
	}

	if total > 0 {
		log.Info().
			Str("func", "relaySyncService.Purge").
			Int64("purged", total).
			Msg("purged acknowledged changes")
	}
	return total, nil
}

// storageError marks retryable database failures so the transport layer
// answers 503 instead of 500.
func (s *relaySyncService) storageError(err error) error {
	if s.db != nil && s.db.Classify(err) == store.Retryable {
		return fmt.Errorf("%w: %w", ErrTemporarilyUnavailable, err)
	}
	return err
}

// validateEnvelope checks one pushed change for shape only. It returns the
// wire rejection reason, or "" when the envelope is acceptable.
func validateEnvelope(change models.Change) string {
	if change.ChangeID == "" || change.EntityID == "" || change.DeviceID == "" {
		return models.RejectReasonMalformed
	}
	if !change.Operation.Valid() {
		return models.RejectReasonMalformed
	}
	if len(change.Vector) == 0 {
		return models.RejectReasonMalformed
	}
	if len(change.Payload.Ciphertext) == 0 {
		return models.RejectReasonMalformed
	}
	if !change.EntityType.Valid() {
		return models.RejectReasonUnknownType
	}
	if len(change.Payload.Ciphertext) > maxPayloadBytes {
		return models.RejectReasonTooLarge
	}
	return ""
}
