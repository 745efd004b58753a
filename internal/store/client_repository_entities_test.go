package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/models"
)

func newTestLocalStore(t *testing.T) LocalStore {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// a second pool connection would see a fresh in-memory database
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	local, err := NewLocalStore(&DB{DB: conn, logger: logger.Nop()}, logger.Nop())
	require.NoError(t, err)

	return local
}

func testRecord(entityID string, amount int64) *models.EntityRecord {
	return &models.EntityRecord{
		EntityID:   entityID,
		EntityType: models.EntityTransaction,
		State: models.EntityState{
			Type: models.EntityTransaction,
			Transaction: &models.TransactionState{
				AccountID:   "acc-1",
				AmountCents: amount,
				Currency:    "EUR",
				Description: "office supplies",
			},
		},
		Vector:     models.VersionVector{"device-a": 1},
		UpdatedAt:  time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		LastDevice: "device-a",
	}
}

func testAudit(entityID, changeID string, action models.MergeAction, after *models.EntityRecord) models.AuditEntry {
	return models.AuditEntry{
		EntityID:   entityID,
		EntityType: models.EntityTransaction,
		ChangeID:   changeID,
		Action:     action,
		After:      after,
		ResolvedAt: time.Date(2026, 3, 14, 12, 0, 1, 0, time.UTC),
	}
}

func TestLocalStore_GetEntity_NotFound(t *testing.T) {
	local := newTestLocalStore(t)

	_, err := local.GetEntity(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestLocalStore_ApplyMerge_RoundTrip(t *testing.T) {
	local := newTestLocalStore(t)
	ctx := context.Background()

	record := testRecord("ent-1", 125_00)
	audit := testAudit("ent-1", "chg-1", models.MergeFastForward, record)

	require.NoError(t, local.ApplyMerge(ctx, record, audit))

	got, err := local.GetEntity(ctx, "ent-1")
	require.NoError(t, err)

	assert.Equal(t, record.EntityID, got.EntityID)
	assert.Equal(t, record.EntityType, got.EntityType)
	assert.Equal(t, record.Vector, got.Vector)
	assert.Equal(t, record.LastDevice, got.LastDevice)
	assert.False(t, got.Deleted)
	require.NotNil(t, got.State.Transaction)
	assert.Equal(t, int64(125_00), got.State.Transaction.AmountCents)
	assert.True(t, record.UpdatedAt.Equal(got.UpdatedAt))
}

func TestLocalStore_ApplyMerge_UpsertsExistingRow(t *testing.T) {
	local := newTestLocalStore(t)
	ctx := context.Background()

	first := testRecord("ent-1", 100_00)
	require.NoError(t, local.ApplyMerge(ctx, first, testAudit("ent-1", "chg-1", models.MergeFastForward, first)))

	second := testRecord("ent-1", 200_00)
	second.Vector = models.VersionVector{"device-a": 2}
	require.NoError(t, local.ApplyMerge(ctx, second, testAudit("ent-1", "chg-2", models.MergeFastForward, second)))

	got, err := local.GetEntity(ctx, "ent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200_00), got.State.Transaction.AmountCents)
	assert.Equal(t, models.VersionVector{"device-a": 2}, got.Vector)
}

func TestLocalStore_ApplyMerge_TombstoneRowIsReadable(t *testing.T) {
	local := newTestLocalStore(t)
	ctx := context.Background()

	record := testRecord("ent-1", 100_00)
	record.Deleted = true
	require.NoError(t, local.ApplyMerge(ctx, record, testAudit("ent-1", "chg-1", models.MergeFastForward, record)))

	got, err := local.GetEntity(ctx, "ent-1")
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Equal(t, record.Vector, got.Vector)
}

func TestLocalStore_ApplyMerge_AuditOnlyWhenDiscarded(t *testing.T) {
	local := newTestLocalStore(t)
	ctx := context.Background()

	audit := testAudit("ent-1", "chg-1", models.MergeDiscard, nil)
	require.NoError(t, local.ApplyMerge(ctx, nil, audit))

	// no entity row was written
	_, err := local.GetEntity(ctx, "ent-1")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	// but the trail records the discard
	entries, err := local.AuditSince(ctx, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.MergeDiscard, entries[0].Action)
	assert.Nil(t, entries[0].After)
}

func TestLocalStore_AuditSince_OrderAndFilter(t *testing.T) {
	local := newTestLocalStore(t)
	ctx := context.Background()

	for i, changeID := range []string{"chg-1", "chg-2", "chg-3"} {
		record := testRecord("ent-1", int64(i+1)*100)
		audit := testAudit("ent-1", changeID, models.MergeFastForward, record)
		audit.ResolvedAt = time.Date(2026, 3, 14, 12, i, 0, 0, time.UTC)
		require.NoError(t, local.ApplyMerge(ctx, record, audit))
	}

	entries, err := local.AuditSince(ctx, time.Date(2026, 3, 14, 12, 1, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "chg-2", entries[0].ChangeID)
	assert.Equal(t, "chg-3", entries[1].ChangeID)

	require.NotNil(t, entries[0].After)
	assert.Equal(t, int64(200), entries[0].After.State.Transaction.AmountCents)
}

func TestLocalStore_Cursor_Lifecycle(t *testing.T) {
	local := newTestLocalStore(t)
	ctx := context.Background()

	_, err := local.GetCursor(ctx, "acme")
	assert.ErrorIs(t, err, ErrCursorNotFound)

	cursor := models.SyncCursor{
		CompanyID:    "acme",
		RemoteOffset: 42,
		UpdatedAt:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, local.SaveCursor(ctx, cursor))

	got, err := local.GetCursor(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.RemoteOffset)

	cursor.RemoteOffset = 57
	require.NoError(t, local.SaveCursor(ctx, cursor))

	got, err = local.GetCursor(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(57), got.RemoteOffset)

	require.NoError(t, local.ResetCursor(ctx, "acme"))
	_, err = local.GetCursor(ctx, "acme")
	assert.ErrorIs(t, err, ErrCursorNotFound)
}

func TestLocalStore_Quarantine(t *testing.T) {
	local := newTestLocalStore(t)
	ctx := context.Background()

	change := models.RelayChange{
		Change: models.Change{
			ChangeID:   "chg-bad",
			EntityID:   "ent-1",
			EntityType: models.EntityTransaction,
			Operation:  models.OperationUpdate,
			Payload:    models.EncryptedPayload{Epoch: 3, Ciphertext: []byte("garbage")},
			Vector:     models.VersionVector{"device-b": 4},
			DeviceID:   "device-b",
			CreatedAt:  time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		},
		Offset: 99,
	}

	require.NoError(t, local.Quarantine(ctx, change, "payload tampered"))

	// quarantining the same change twice is a no-op
	require.NoError(t, local.Quarantine(ctx, change, "payload tampered"))

	parked, err := local.QuarantinedChanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, parked, 1)

	assert.Equal(t, "chg-bad", parked[0].Change.ChangeID)
	assert.Equal(t, int64(99), parked[0].Change.Offset)
	assert.Equal(t, "payload tampered", parked[0].Reason)
	assert.Equal(t, models.VersionVector{"device-b": 4}, parked[0].Change.Vector)
}
