package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/adapter"
	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/crypto"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/merge"
	"github.com/mvoronkov/go-ledger-sync/internal/queue"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
	"github.com/mvoronkov/go-ledger-sync/models"
)

type clientSyncService struct {
	outbox  queue.Outbox
	relay   adapter.RelayAdapter
	local   store.LocalStore
	codec   crypto.PayloadCodec
	keyring *crypto.Keyring
	role    crypto.Role
	engine  merge.Engine
	tokens  TokenSource

	deviceID  string
	companyID string
	batchSize int

	// mu serializes push and pull on this device. Concurrent push and
	// pull would race on the outbox and the cursor.
	mu sync.Mutex

	logger *logger.Logger
}

func NewClientSyncService(
	outbox queue.Outbox,
	relay adapter.RelayAdapter,
	local store.LocalStore,
	codec crypto.PayloadCodec,
	keyring *crypto.Keyring,
	role crypto.Role,
	engine merge.Engine,
	tokens TokenSource,
	cfg config.ClientSync,
	logger *logger.Logger,
) ClientSyncService {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = maxPushBatch
	}

	return &clientSyncService{
		outbox:    outbox,
		relay:     relay,
		local:     local,
		codec:     codec,
		keyring:   keyring,
		role:      role,
		engine:    engine,
		tokens:    tokens,
		deviceID:  cfg.DeviceID,
		companyID: cfg.CompanyID,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (s *clientSyncService) Push(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withAuthRetry(ctx, s.push)
}

func (s *clientSyncService) Pull(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withAuthRetry(ctx, s.pull)
}

func (s *clientSyncService) FullSync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.withAuthRetry(ctx, s.push); err != nil {
		// Offline: pulling would fail the same way, stop here and let
		// the next tick retry.
		return err
	}
	return s.withAuthRetry(ctx, s.pull)
}

func (s *clientSyncService) Resync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.local.ResetCursor(ctx, s.companyID); err != nil {
		return fmt.Errorf("reset cursor: %w", err)
	}

	if err := s.withAuthRetry(ctx, s.push); err != nil {
		return err
	}
	return s.withAuthRetry(ctx, s.pull)
}

// withAuthRetry runs fn, refreshing the device token and retrying exactly
// once when the relay rejects authentication. A rejection of the fresh
// token means the device's credentials are gone for good.
func (s *clientSyncService) withAuthRetry(ctx context.Context, fn func(context.Context) error) error {
	if s.relay.Token() == "" {
		if err := s.refreshToken(ctx); err != nil {
			return err
		}
	}

	err := fn(ctx)
	if !errors.Is(err, adapter.ErrAuth) {
		return err
	}

	if err = s.refreshToken(ctx); err != nil {
		return err
	}

	err = fn(ctx)
	if errors.Is(err, adapter.ErrAuth) {
		return fmt.Errorf("%w: %w", ErrDeviceRevoked, err)
	}
	return err
}

func (s *clientSyncService) refreshToken(ctx context.Context) error {
	token, err := s.tokens.DeviceToken(ctx)
	if err != nil {
		return fmt.Errorf("refresh device token: %w", err)
	}
	s.relay.SetToken(token)
	return nil
}

// push drains the outbox. Each iteration sends one batch; the loop ends
// when the outbox has nothing eligible to send.
func (s *clientSyncService) push(ctx context.Context) error {
	log := logger.FromContext(ctx)

	for {
		batch, err := s.outbox.NextBatch(ctx, s.batchSize)
		if err != nil {
			return fmt.Errorf("read outbox batch: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		resp, err := s.relay.Push(ctx, models.PushRequest{
			ProtocolVersion: models.ProtocolVersion,
			DeviceID:        s.deviceID,
			CompanyID:       s.companyID,
			Timestamp:       time.Now(),
			Changes:         batch,
		})
		if err != nil {
			if errors.Is(err, adapter.ErrAuth) {
				// Leave the batch eligible so the token-refresh retry
				// resends it immediately.
				return err
			}

			// Quota pushback waits out the relay's window instead of
			// hammering it on the 1s-doubling schedule.
			markRetry := s.outbox.MarkFailed
			if errors.Is(err, adapter.ErrQuota) {
				markRetry = s.outbox.MarkThrottled
			}

			for _, change := range batch {
				if failErr := markRetry(ctx, change.ChangeID, err.Error()); failErr != nil {
					return fmt.Errorf("mark change failed: %w", failErr)
				}
			}
			return fmt.Errorf("push batch: %w", err)
		}

		if len(resp.Accepted) > 0 {
			if err = s.outbox.Acknowledge(ctx, resp.Accepted); err != nil {
				return fmt.Errorf("acknowledge pushed changes: %w", err)
			}
		}

		for _, rej := range resp.Rejected {
			if permanentRejection(rej.Reason) {
				log.Warn().
					Str("func", "clientSyncService.push").
					Str("change_id", rej.ChangeID).
					Str("reason", rej.Reason).
					Msg("change permanently rejected by relay")
				if err = s.outbox.Quarantine(ctx, rej.ChangeID, rej.Reason); err != nil {
					return fmt.Errorf("quarantine rejected change: %w", err)
				}
				continue
			}
			if err = s.outbox.MarkFailed(ctx, rej.ChangeID, rej.Reason); err != nil {
				return fmt.Errorf("mark change failed: %w", err)
			}
		}
	}
}

// pull pages the remote feed from the local cursor. The cursor moves only
// after every change of a page went through the merge engine and the
// store; a failure mid-page leaves the cursor where it was and the next
// pull replays the page, which the merge discards as duplicates.
func (s *clientSyncService) pull(ctx context.Context) error {
	log := logger.FromContext(ctx)

	offset := int64(0)
	cursor, err := s.local.GetCursor(ctx, s.companyID)
	if err == nil {
		offset = cursor.RemoteOffset
	} else if !errors.Is(err, store.ErrCursorNotFound) {
		return fmt.Errorf("load pull cursor: %w", err)
	}

	for {
		resp, err := s.relay.Pull(ctx, models.PullRequest{
			ProtocolVersion: models.ProtocolVersion,
			DeviceID:        s.deviceID,
			CompanyID:       s.companyID,
			SinceOffset:     offset,
			Limit:           s.batchSize,
		})
		if err != nil {
			return err
		}

		for _, remoteChange := range resp.Changes {
			if err = s.applyRemote(ctx, remoteChange); err != nil {
				return err
			}
		}

		if len(resp.Changes) > 0 {
			offset = resp.NextOffset
			err = s.local.SaveCursor(ctx, models.SyncCursor{
				CompanyID:    s.companyID,
				RemoteOffset: offset,
				UpdatedAt:    time.Now(),
			})
			if err != nil {
				return fmt.Errorf("save pull cursor: %w", err)
			}

			// A lost ack only delays the relay's purge; it never loses
			// data, so it does not fail the sync.
			ackErr := s.relay.Ack(ctx, models.AckRequest{
				ProtocolVersion: models.ProtocolVersion,
				DeviceID:        s.deviceID,
				CompanyID:       s.companyID,
				AckedOffset:     offset,
			})
			if ackErr != nil {
				log.Warn().Err(ackErr).
					Str("func", "clientSyncService.pull").
					Int64("acked_offset", offset).
					Msg("failed to ack pulled offset")
			}
		}

		if !resp.HasMore {
			return nil
		}
	}
}

// applyRemote opens one pulled change and feeds it to the merge engine.
// A change that cannot be opened or resolved is quarantined and the sync
// moves on; quarantine never blocks the cursor.
func (s *clientSyncService) applyRemote(ctx context.Context, remoteChange models.RelayChange) error {
	log := logger.FromContext(ctx)

	if remoteChange.EntityID == "" || !remoteChange.EntityType.Valid() || !remoteChange.Operation.Valid() {
		return s.local.Quarantine(ctx, remoteChange, models.RejectReasonMalformed)
	}

	// Rotations propagate through the feed itself: a payload sealed at a
	// newer epoch is the signal that the company rotated, so the keyring
	// advances before anything else. The next local Record then seals
	// under the new epoch.
	payloadEpoch := remoteChange.Payload.Epoch
	s.keyring.Advance(payloadEpoch)

	// Once the keyring has advanced, payloads sealed under epochs older
	// than the in-flight grace window are the output of a revoked key.
	// They are rejected without decrypting; a revoked device cannot keep
	// feeding data into the company by replaying its stale key.
	if s.keyring.Stale(payloadEpoch) {
		reason := string(crypto.DecodeWrongKey)
		log.Warn().
			Str("func", "clientSyncService.applyRemote").
			Str("change_id", remoteChange.ChangeID).
			Uint64("payload_epoch", payloadEpoch).
			Uint64("keyring_epoch", s.keyring.Epoch()).
			Msg("quarantining change sealed under revoked epoch")
		return s.local.Quarantine(ctx, remoteChange, reason)
	}

	// Decrypt with the key of the epoch the payload was sealed under,
	// never the newest known epoch. In-flight pushes from before a
	// rotation still open this way.
	key := s.keyring.KeyFor(s.role, payloadEpoch)
	state, err := s.codec.Decode(remoteChange.Payload, key, crypto.ChangeAAD{
		EntityID:  remoteChange.EntityID,
		Operation: remoteChange.Operation,
		Vector:    remoteChange.Vector,
	})
	if err != nil {
		reason := string(crypto.DecodeKind(err))
		if reason == "" {
			reason = "undecodable"
		}
		log.Warn().Err(err).
			Str("func", "clientSyncService.applyRemote").
			Str("change_id", remoteChange.ChangeID).
			Str("reason", reason).
			Msg("quarantining undecodable change")
		return s.local.Quarantine(ctx, remoteChange, reason)
	}

	local, err := s.local.GetEntity(ctx, remoteChange.EntityID)
	if err != nil && !errors.Is(err, store.ErrEntityNotFound) {
		return fmt.Errorf("load entity %s: %w", remoteChange.EntityID, err)
	}
	if local != nil && local.EntityType != remoteChange.EntityType {
		return s.local.Quarantine(ctx, remoteChange, "entity_type_conflict")
	}

	outcome, err := s.engine.Resolve(local, merge.IncomingChange{
		ChangeID:   remoteChange.ChangeID,
		EntityID:   remoteChange.EntityID,
		EntityType: remoteChange.EntityType,
		Operation:  remoteChange.Operation,
		State:      state,
		Vector:     remoteChange.Vector,
		DeviceID:   remoteChange.DeviceID,
		CreatedAt:  remoteChange.CreatedAt,
	})
	if err != nil {
		log.Warn().Err(err).
			Str("func", "clientSyncService.applyRemote").
			Str("change_id", remoteChange.ChangeID).
			Msg("quarantining unresolvable change")
		return s.local.Quarantine(ctx, remoteChange, "unresolvable_merge")
	}

	if err = s.local.ApplyMerge(ctx, outcome.Record, outcome.Audit); err != nil {
		return fmt.Errorf("apply merged change %s: %w", remoteChange.ChangeID, err)
	}
	return nil
}

// permanentRejection reports whether a relay rejection reason can never
// succeed on retry.
func permanentRejection(reason string) bool {
	switch reason {
	case models.RejectReasonMalformed, models.RejectReasonUnknownType, models.RejectReasonTooLarge:
		return true
	}
	return false
}
