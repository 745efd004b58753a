package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/crypto"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/merge"
	"github.com/mvoronkov/go-ledger-sync/internal/queue"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
	"github.com/mvoronkov/go-ledger-sync/internal/utils"
	"github.com/mvoronkov/go-ledger-sync/models"
)

type changeService struct {
	local   store.LocalStore
	outbox  queue.Outbox
	codec   crypto.PayloadCodec
	keyring *crypto.Keyring
	role    crypto.Role
	engine  merge.Engine

	deviceID string
	uuid     *utils.UUIDGenerator

	logger *logger.Logger
}

func NewChangeService(
	local store.LocalStore,
	outbox queue.Outbox,
	codec crypto.PayloadCodec,
	keyring *crypto.Keyring,
	role crypto.Role,
	engine merge.Engine,
	deviceID string,
	logger *logger.Logger,
) ChangeService {
	return &changeService{
		local:    local,
		outbox:   outbox,
		codec:    codec,
		keyring:  keyring,
		role:     role,
		engine:   engine,
		deviceID: deviceID,
		uuid:     utils.NewUUIDGenerator(),
		logger:   logger,
	}
}

// Record applies the mutation locally and queues the sealed change in that
// order. The local apply goes through the same merge engine as remote
// changes, so a locally originated change leaves the same audit trail as
// one pulled from a peer.
func (s *changeService) Record(ctx context.Context, entityID string, op models.Operation, state models.EntityState) (models.Change, error) {
	log := logger.FromContext(ctx)

	if entityID == "" {
		return models.Change{}, fmt.Errorf("%w: entity id is required", ErrInvalidRequest)
	}
	if !op.Valid() {
		return models.Change{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, op)
	}

	existing, err := s.local.GetEntity(ctx, entityID)
	if err != nil && !errors.Is(err, store.ErrEntityNotFound) {
		return models.Change{}, fmt.Errorf("load entity %s: %w", entityID, err)
	}

	switch op {
	case models.OperationCreate:
		if existing != nil && !existing.Deleted {
			return models.Change{}, fmt.Errorf("%w: %s", ErrEntityAlreadyExists, entityID)
		}
	case models.OperationUpdate, models.OperationDelete:
		if existing == nil {
			return models.Change{}, fmt.Errorf("%w: %s", store.ErrEntityNotFound, entityID)
		}
	}

	// A delete seals the last known state; the merge engine ignores the
	// state of a tombstone, the payload just has to open at the peers.
	if op == models.OperationDelete {
		state = existing.State
	}

	if err = state.Validate(); err != nil {
		return models.Change{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if existing != nil && existing.EntityType != state.Type {
		return models.Change{}, fmt.Errorf("%w: entity %s is %q, change says %q",
			ErrEntityTypeConflict, entityID, existing.EntityType, state.Type)
	}

	var base models.VersionVector
	if existing != nil {
		base = existing.Vector
	}
	vector := base.Increment(s.deviceID)

	key := s.keyring.Current(s.role)
	payload, err := s.codec.Encode(state, key, crypto.ChangeAAD{
		EntityID:  entityID,
		Operation: op,
		Vector:    vector,
	})
	if err != nil {
		return models.Change{}, fmt.Errorf("seal change payload: %w", err)
	}

	change := models.Change{
		ChangeID:   s.uuid.Generate(),
		EntityID:   entityID,
		EntityType: state.Type,
		Operation:  op,
		Payload:    payload,
		Vector:     vector,
		DeviceID:   s.deviceID,
		CreatedAt:  time.Now(),
	}

	outcome, err := s.engine.Resolve(existing, merge.IncomingChange{
		ChangeID:   change.ChangeID,
		EntityID:   change.EntityID,
		EntityType: change.EntityType,
		Operation:  change.Operation,
		State:      state,
		Vector:     change.Vector,
		DeviceID:   change.DeviceID,
		CreatedAt:  change.CreatedAt,
	})
	if err != nil {
		return models.Change{}, fmt.Errorf("resolve local change: %w", err)
	}

	if err = s.local.ApplyMerge(ctx, outcome.Record, outcome.Audit); err != nil {
		return models.Change{}, fmt.Errorf("apply local change: %w", err)
	}

	if err = s.outbox.Enqueue(ctx, change); err != nil {
		log.Err(err).
			Str("func", "changeService.Record").
			Str("change_id", change.ChangeID).
			Str("entity_id", entityID).
			Msg("change applied locally but not queued")
		return models.Change{}, fmt.Errorf("enqueue change: %w", err)
	}

	return change, nil
}
