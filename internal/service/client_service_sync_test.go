package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mvoronkov/go-ledger-sync/internal/adapter"
	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/crypto"
	"github.com/mvoronkov/go-ledger-sync/internal/merge"
	"github.com/mvoronkov/go-ledger-sync/internal/mock"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
	"github.com/mvoronkov/go-ledger-sync/models"
)

type syncMocks struct {
	outbox *mock.MockOutbox
	relay  *mock.MockRelayAdapter
	local  *mock.MockLocalStore
	codec  *mock.MockPayloadCodec
	engine *mock.MockEngine
	tokens *mock.MockTokenSource
}

func newTestSyncService(t *testing.T, ctrl *gomock.Controller) (*clientSyncService, syncMocks) {
	t.Helper()

	m := syncMocks{
		outbox: mock.NewMockOutbox(ctrl),
		relay:  mock.NewMockRelayAdapter(ctrl),
		local:  mock.NewMockLocalStore(ctrl),
		codec:  mock.NewMockPayloadCodec(ctrl),
		engine: mock.NewMockEngine(ctrl),
		tokens: mock.NewMockTokenSource(ctrl),
	}

	svc := NewClientSyncService(
		m.outbox, m.relay, m.local, m.codec, newTestKeyring(), crypto.RoleAccountant,
		m.engine, m.tokens,
		config.ClientSync{DeviceID: "device-a", CompanyID: "acme", BatchSize: 10},
		nil,
	).(*clientSyncService)

	return svc, m
}

func remoteChange(changeID, entityID, deviceID string, offset int64) models.RelayChange {
	return models.RelayChange{
		Change: models.Change{
			ChangeID:   changeID,
			EntityID:   entityID,
			EntityType: models.EntityTransaction,
			Operation:  models.OperationUpdate,
			Payload:    models.EncryptedPayload{Epoch: 1, Ciphertext: []byte("sealed")},
			Vector:     models.VersionVector{deviceID: 2},
			DeviceID:   deviceID,
			CreatedAt:  time.Now(),
		},
		Offset: offset,
	}
}

func fastForwardOutcome(incoming merge.IncomingChange) merge.Outcome {
	return merge.Outcome{
		Action: models.MergeFastForward,
		Record: &models.EntityRecord{
			EntityID:   incoming.EntityID,
			EntityType: incoming.EntityType,
			State:      incoming.State,
			Vector:     incoming.Vector,
		},
		Audit: models.AuditEntry{EntityID: incoming.EntityID, Action: models.MergeFastForward},
	}
}

// ── Push ────────────────────────────────────────────────────────────────────

func TestPush_DrainsOutbox(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	batch := []models.Change{
		pushedChange("c-1", "e-1", "device-a"),
		pushedChange("c-2", "e-2", "device-a"),
	}

	m.relay.EXPECT().Token().Return("device-token")
	gomock.InOrder(
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil),
		m.relay.EXPECT().Push(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.PushRequest) (models.PushResponse, error) {
				assert.Equal(t, models.ProtocolVersion, req.ProtocolVersion)
				assert.Equal(t, "device-a", req.DeviceID)
				assert.Equal(t, "acme", req.CompanyID)
				assert.Equal(t, batch, req.Changes)
				return models.PushResponse{
					Success:  true,
					Accepted: []string{"c-1", "c-2"},
				}, nil
			}),
		m.outbox.EXPECT().Acknowledge(ctx, []string{"c-1", "c-2"}).Return(nil),
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(nil, nil),
	)

	require.NoError(t, svc.Push(ctx))
}

func TestPush_PermanentRejectionQuarantines(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	batch := []models.Change{
		pushedChange("c-ok", "e-1", "device-a"),
		pushedChange("c-bad", "e-2", "device-a"),
		pushedChange("c-late", "e-3", "device-a"),
	}

	m.relay.EXPECT().Token().Return("device-token")
	gomock.InOrder(
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil),
		m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{
			Accepted: []string{"c-ok"},
			Rejected: []models.RejectedChange{
				{ChangeID: "c-bad", Reason: models.RejectReasonMalformed},
				{ChangeID: "c-late", Reason: models.RejectReasonBatchOverflow},
			},
		}, nil),
		m.outbox.EXPECT().Acknowledge(ctx, []string{"c-ok"}).Return(nil),
		m.outbox.EXPECT().Quarantine(ctx, "c-bad", models.RejectReasonMalformed).Return(nil),
		m.outbox.EXPECT().MarkFailed(ctx, "c-late", models.RejectReasonBatchOverflow).Return(nil),
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(nil, nil),
	)

	require.NoError(t, svc.Push(ctx))
}

func TestPush_NetworkErrorLeavesBatchQueued(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	batch := []models.Change{pushedChange("c-1", "e-1", "device-a")}
	netErr := adapter.ErrNetwork

	m.relay.EXPECT().Token().Return("device-token")
	m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil)
	m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{}, netErr)
	m.outbox.EXPECT().MarkFailed(ctx, "c-1", gomock.Any()).Return(nil)

	err := svc.Push(ctx)
	assert.ErrorIs(t, err, adapter.ErrNetwork)
}

func TestPush_QuotaRejectionThrottlesInsteadOfBackoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	batch := []models.Change{
		pushedChange("c-1", "e-1", "device-a"),
		pushedChange("c-2", "e-2", "device-a"),
	}
	quotaErr := fmt.Errorf("%w: 100 changes per window", adapter.ErrQuota)

	m.relay.EXPECT().Token().Return("device-token")
	m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil)
	m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{}, quotaErr)
	m.outbox.EXPECT().MarkThrottled(ctx, "c-1", gomock.Any()).Return(nil)
	m.outbox.EXPECT().MarkThrottled(ctx, "c-2", gomock.Any()).Return(nil)

	err := svc.Push(ctx)
	assert.ErrorIs(t, err, adapter.ErrQuota)
}

func TestPush_AuthRefreshAndRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	batch := []models.Change{pushedChange("c-1", "e-1", "device-a")}

	m.relay.EXPECT().Token().Return("stale-token")
	gomock.InOrder(
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil),
		m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{}, adapter.ErrAuth),
		m.tokens.EXPECT().DeviceToken(ctx).Return("fresh-token", nil),
		m.relay.EXPECT().SetToken("fresh-token"),
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil),
		m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{
			Accepted: []string{"c-1"},
		}, nil),
		m.outbox.EXPECT().Acknowledge(ctx, []string{"c-1"}).Return(nil),
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(nil, nil),
	)

	require.NoError(t, svc.Push(ctx))
}

func TestPush_SecondAuthFailureMeansRevoked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	batch := []models.Change{pushedChange("c-1", "e-1", "device-a")}

	m.relay.EXPECT().Token().Return("stale-token")
	gomock.InOrder(
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil),
		m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{}, adapter.ErrAuth),
		m.tokens.EXPECT().DeviceToken(ctx).Return("fresh-token", nil),
		m.relay.EXPECT().SetToken("fresh-token"),
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil),
		m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{}, adapter.ErrAuth),
	)

	err := svc.Push(ctx)
	assert.ErrorIs(t, err, ErrDeviceRevoked)
}

// ── Pull ────────────────────────────────────────────────────────────────────

func TestPull_MergesPageAndAdvancesCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	first := remoteChange("c-1", "e-1", "device-b", 6)
	second := remoteChange("c-2", "e-2", "device-b", 7)
	decoded := models.EntityState{
		Type:        models.EntityTransaction,
		Transaction: &models.TransactionState{AmountCents: 100},
	}

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{CompanyID: "acme", RemoteOffset: 5}, nil)
	m.relay.EXPECT().Pull(ctx, models.PullRequest{
		ProtocolVersion: models.ProtocolVersion,
		DeviceID:        "device-a",
		CompanyID:       "acme",
		SinceOffset:     5,
		Limit:           10,
	}).Return(models.PullResponse{
		Changes:    []models.RelayChange{first, second},
		HasMore:    false,
		NextOffset: 7,
	}, nil)

	for _, rc := range []models.RelayChange{first, second} {
		m.codec.EXPECT().Decode(rc.Payload, gomock.Any(), crypto.ChangeAAD{
			EntityID:  rc.EntityID,
			Operation: rc.Operation,
			Vector:    rc.Vector,
		}).Return(decoded, nil)
		m.local.EXPECT().GetEntity(ctx, rc.EntityID).Return(nil, store.ErrEntityNotFound)
		m.engine.EXPECT().Resolve(gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ *models.EntityRecord, incoming merge.IncomingChange) (merge.Outcome, error) {
				return fastForwardOutcome(incoming), nil
			})
		m.local.EXPECT().ApplyMerge(ctx, gomock.Any(), gomock.Any()).Return(nil)
	}

	m.local.EXPECT().SaveCursor(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, cursor models.SyncCursor) error {
			assert.Equal(t, "acme", cursor.CompanyID)
			assert.Equal(t, int64(7), cursor.RemoteOffset)
			return nil
		})
	m.relay.EXPECT().Ack(ctx, models.AckRequest{
		ProtocolVersion: models.ProtocolVersion,
		DeviceID:        "device-a",
		CompanyID:       "acme",
		AckedOffset:     7,
	}).Return(nil)

	require.NoError(t, svc.Pull(ctx))
}

func TestPull_FirstPullStartsAtZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{}, store.ErrCursorNotFound)
	m.relay.EXPECT().Pull(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.PullRequest) (models.PullResponse, error) {
			assert.Zero(t, req.SinceOffset)
			return models.PullResponse{}, nil
		})

	require.NoError(t, svc.Pull(ctx))
}

func TestPull_UndecodableChangeQuarantined(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	tampered := remoteChange("c-1", "e-1", "device-b", 6)

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{RemoteOffset: 5}, nil)
	m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{
		Changes:    []models.RelayChange{tampered},
		NextOffset: 6,
	}, nil)
	m.codec.EXPECT().Decode(tampered.Payload, gomock.Any(), gomock.Any()).
		Return(models.EntityState{}, &crypto.DecodeError{Kind: crypto.DecodeTampered})
	m.local.EXPECT().Quarantine(ctx, tampered, string(crypto.DecodeTampered)).Return(nil)
	m.local.EXPECT().SaveCursor(ctx, gomock.Any()).Return(nil)
	m.relay.EXPECT().Ack(ctx, gomock.Any()).Return(nil)

	require.NoError(t, svc.Pull(ctx))
}

func TestPull_NewerEpochAdvancesKeyring(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	rotated := remoteChange("c-1", "e-1", "device-b", 6)
	rotated.Payload.Epoch = 2

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{RemoteOffset: 5}, nil)
	m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{
		Changes:    []models.RelayChange{rotated},
		NextOffset: 6,
	}, nil)
	m.codec.EXPECT().Decode(rotated.Payload, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ models.EncryptedPayload, key crypto.KeyMaterial, _ crypto.ChangeAAD) (models.EntityState, error) {
			assert.Equal(t, uint64(2), key.Epoch)
			return models.EntityState{
				Type:        models.EntityTransaction,
				Transaction: &models.TransactionState{},
			}, nil
		})
	m.local.EXPECT().GetEntity(ctx, "e-1").Return(nil, store.ErrEntityNotFound)
	m.engine.EXPECT().Resolve(gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ *models.EntityRecord, incoming merge.IncomingChange) (merge.Outcome, error) {
			return fastForwardOutcome(incoming), nil
		})
	m.local.EXPECT().ApplyMerge(ctx, gomock.Any(), gomock.Any()).Return(nil)
	m.local.EXPECT().SaveCursor(ctx, gomock.Any()).Return(nil)
	m.relay.EXPECT().Ack(ctx, gomock.Any()).Return(nil)

	require.NoError(t, svc.Pull(ctx))

	// The rotation travels in-band: the next Record on this device seals
	// under the new epoch.
	assert.Equal(t, uint64(2), svc.keyring.Epoch())
	assert.Equal(t, uint64(2), svc.keyring.Current(crypto.RoleAccountant).Epoch)
}

func TestPull_RevokedEpochQuarantinedWithoutDecoding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	// Two rotations have happened since this payload's key was cut. A
	// revoked device replaying its old key lands here.
	svc.keyring.Advance(3)
	stale := remoteChange("c-1", "e-1", "device-b", 6)

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{RemoteOffset: 5}, nil)
	m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{
		Changes:    []models.RelayChange{stale},
		NextOffset: 6,
	}, nil)

	// No Decode expectation: the ciphertext is never opened.
	m.local.EXPECT().Quarantine(ctx, stale, string(crypto.DecodeWrongKey)).Return(nil)
	m.local.EXPECT().SaveCursor(ctx, gomock.Any()).Return(nil)
	m.relay.EXPECT().Ack(ctx, gomock.Any()).Return(nil)

	require.NoError(t, svc.Pull(ctx))
}

func TestPull_PreviousEpochStillDecodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	// One epoch behind is the in-flight window: a push sealed just before
	// the rotation still opens with the old key.
	svc.keyring.Advance(2)
	inFlight := remoteChange("c-1", "e-1", "device-b", 6)

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{RemoteOffset: 5}, nil)
	m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{
		Changes:    []models.RelayChange{inFlight},
		NextOffset: 6,
	}, nil)
	m.codec.EXPECT().Decode(inFlight.Payload, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ models.EncryptedPayload, key crypto.KeyMaterial, _ crypto.ChangeAAD) (models.EntityState, error) {
			assert.Equal(t, uint64(1), key.Epoch)
			return models.EntityState{
				Type:        models.EntityTransaction,
				Transaction: &models.TransactionState{},
			}, nil
		})
	m.local.EXPECT().GetEntity(ctx, "e-1").Return(nil, store.ErrEntityNotFound)
	m.engine.EXPECT().Resolve(gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ *models.EntityRecord, incoming merge.IncomingChange) (merge.Outcome, error) {
			return fastForwardOutcome(incoming), nil
		})
	m.local.EXPECT().ApplyMerge(ctx, gomock.Any(), gomock.Any()).Return(nil)
	m.local.EXPECT().SaveCursor(ctx, gomock.Any()).Return(nil)
	m.relay.EXPECT().Ack(ctx, gomock.Any()).Return(nil)

	require.NoError(t, svc.Pull(ctx))
}

func TestPull_EntityTypeConflictQuarantined(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	rc := remoteChange("c-1", "e-1", "device-b", 6)

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{RemoteOffset: 5}, nil)
	m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{
		Changes:    []models.RelayChange{rc},
		NextOffset: 6,
	}, nil)
	m.codec.EXPECT().Decode(rc.Payload, gomock.Any(), gomock.Any()).
		Return(models.EntityState{Type: models.EntityTransaction}, nil)
	m.local.EXPECT().GetEntity(ctx, "e-1").Return(&models.EntityRecord{
		EntityID:   "e-1",
		EntityType: models.EntityContact,
	}, nil)
	m.local.EXPECT().Quarantine(ctx, rc, "entity_type_conflict").Return(nil)
	m.local.EXPECT().SaveCursor(ctx, gomock.Any()).Return(nil)
	m.relay.EXPECT().Ack(ctx, gomock.Any()).Return(nil)

	require.NoError(t, svc.Pull(ctx))
}

func TestPull_ApplyFailureKeepsCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	rc := remoteChange("c-1", "e-1", "device-b", 6)

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{RemoteOffset: 5}, nil)
	m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{
		Changes:    []models.RelayChange{rc},
		NextOffset: 6,
	}, nil)
	m.codec.EXPECT().Decode(rc.Payload, gomock.Any(), gomock.Any()).
		Return(models.EntityState{Type: models.EntityTransaction, Transaction: &models.TransactionState{}}, nil)
	m.local.EXPECT().GetEntity(ctx, "e-1").Return(nil, store.ErrEntityNotFound)
	m.engine.EXPECT().Resolve(gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ *models.EntityRecord, incoming merge.IncomingChange) (merge.Outcome, error) {
			return fastForwardOutcome(incoming), nil
		})
	m.local.EXPECT().ApplyMerge(ctx, gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	// No SaveCursor, no Ack: the page replays on the next pull.
	err := svc.Pull(ctx)
	assert.Error(t, err)
}

func TestPull_PaginatesWhileHasMore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	firstPage := remoteChange("c-1", "e-1", "device-b", 6)
	secondPage := remoteChange("c-2", "e-2", "device-b", 7)
	decoded := models.EntityState{Type: models.EntityTransaction, Transaction: &models.TransactionState{}}

	m.relay.EXPECT().Token().Return("device-token")
	m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{RemoteOffset: 5}, nil)

	gomock.InOrder(
		m.relay.EXPECT().Pull(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.PullRequest) (models.PullResponse, error) {
				assert.Equal(t, int64(5), req.SinceOffset)
				return models.PullResponse{
					Changes:    []models.RelayChange{firstPage},
					HasMore:    true,
					NextOffset: 6,
				}, nil
			}),
		m.relay.EXPECT().Pull(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.PullRequest) (models.PullResponse, error) {
				assert.Equal(t, int64(6), req.SinceOffset)
				return models.PullResponse{
					Changes:    []models.RelayChange{secondPage},
					HasMore:    false,
					NextOffset: 7,
				}, nil
			}),
	)

	m.codec.EXPECT().Decode(gomock.Any(), gomock.Any(), gomock.Any()).Return(decoded, nil).Times(2)
	m.local.EXPECT().GetEntity(ctx, gomock.Any()).Return(nil, store.ErrEntityNotFound).Times(2)
	m.engine.EXPECT().Resolve(gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ *models.EntityRecord, incoming merge.IncomingChange) (merge.Outcome, error) {
			return fastForwardOutcome(incoming), nil
		}).Times(2)
	m.local.EXPECT().ApplyMerge(ctx, gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.local.EXPECT().SaveCursor(ctx, gomock.Any()).Return(nil).Times(2)
	m.relay.EXPECT().Ack(ctx, gomock.Any()).Return(nil).Times(2)

	require.NoError(t, svc.Pull(ctx))
}

// ── FullSync / Resync ───────────────────────────────────────────────────────

func TestFullSync_PushThenPull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	m.relay.EXPECT().Token().Return("device-token").Times(2)
	gomock.InOrder(
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(nil, nil),
		m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{}, store.ErrCursorNotFound),
		m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{}, nil),
	)

	require.NoError(t, svc.FullSync(ctx))
}

func TestFullSync_OfflineSkipsPull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	batch := []models.Change{pushedChange("c-1", "e-1", "device-a")}

	m.relay.EXPECT().Token().Return("device-token")
	m.outbox.EXPECT().NextBatch(ctx, 10).Return(batch, nil)
	m.relay.EXPECT().Push(ctx, gomock.Any()).Return(models.PushResponse{}, adapter.ErrNetwork)
	m.outbox.EXPECT().MarkFailed(ctx, "c-1", gomock.Any()).Return(nil)

	err := svc.FullSync(ctx)
	assert.ErrorIs(t, err, adapter.ErrNetwork)
}

func TestResync_ResetsCursorFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	m.relay.EXPECT().Token().Return("device-token").Times(2)
	gomock.InOrder(
		m.local.EXPECT().ResetCursor(ctx, "acme").Return(nil),
		m.outbox.EXPECT().NextBatch(ctx, 10).Return(nil, nil),
		m.local.EXPECT().GetCursor(ctx, "acme").Return(models.SyncCursor{}, store.ErrCursorNotFound),
		m.relay.EXPECT().Pull(ctx, gomock.Any()).Return(models.PullResponse{}, nil),
	)

	require.NoError(t, svc.Resync(ctx))
}

func TestWithAuthRetry_BootstrapsMissingToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newTestSyncService(t, ctrl)
	ctx := testContext()

	m.relay.EXPECT().Token().Return("")
	m.tokens.EXPECT().DeviceToken(ctx).Return("first-token", nil)
	m.relay.EXPECT().SetToken("first-token")
	m.outbox.EXPECT().NextBatch(ctx, 10).Return(nil, nil)

	require.NoError(t, svc.Push(ctx))
}
