package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}
}

func newTestChangeLog(t *testing.T, db *sql.DB) ChangeLog {
	t.Helper()
	return NewChangeLogRepository(newDBFromSQL(db), logger.Nop())
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func testChange(changeID, entityID, deviceID string, counter uint64) models.Change {
	return models.Change{
		ChangeID:   changeID,
		EntityID:   entityID,
		EntityType: models.EntityAccount,
		Operation:  models.OperationUpdate,
		Payload: models.EncryptedPayload{
			Epoch:      1,
			Ciphertext: []byte("sealed-" + changeID),
		},
		Vector:    models.VersionVector{deviceID: counter},
		DeviceID:  deviceID,
		CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func expectInsertChange(mock sqlmock.Sqlmock, companyID string, change models.Change) *sqlmock.ExpectedExec {
	vector, _ := json.Marshal(change.Vector)
	return mock.ExpectExec(regexp.QuoteMeta("INSERT INTO changes")).
		WithArgs(
			change.ChangeID,
			companyID,
			change.EntityID,
			string(change.EntityType),
			string(change.Operation),
			change.Payload.Epoch,
			change.Payload.Ciphertext,
			vector,
			change.DeviceID,
			change.CreatedAt,
		)
}

func TestSaveChanges_AllAccepted(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	first := testChange("chg-1", "ent-1", "device-a", 1)
	second := testChange("chg-2", "ent-2", "device-a", 1)

	expectInsertChange(mock, "acme", first).WillReturnResult(sqlmock.NewResult(0, 1))
	expectInsertChange(mock, "acme", second).WillReturnResult(sqlmock.NewResult(0, 1))

	accepted, duplicates, err := repo.SaveChanges(testContext(), "acme", []models.Change{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"chg-1", "chg-2"}, accepted)
	assert.Empty(t, duplicates)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChanges_DuplicateSkippedBatchContinues(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	dup := testChange("chg-dup", "ent-1", "device-a", 2)
	fresh := testChange("chg-new", "ent-2", "device-a", 1)

	expectInsertChange(mock, "acme", dup).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	expectInsertChange(mock, "acme", fresh).
		WillReturnResult(sqlmock.NewResult(0, 1))

	accepted, duplicates, err := repo.SaveChanges(testContext(), "acme", []models.Change{dup, fresh})
	require.NoError(t, err)
	assert.Equal(t, []string{"chg-new"}, accepted)
	assert.Equal(t, []string{"chg-dup"}, duplicates)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveChanges_ExecErrorStopsBatch(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	first := testChange("chg-1", "ent-1", "device-a", 1)
	second := testChange("chg-2", "ent-2", "device-a", 1)

	expectInsertChange(mock, "acme", first).WillReturnResult(sqlmock.NewResult(0, 1))
	expectInsertChange(mock, "acme", second).WillReturnError(errors.New("connection reset"))

	accepted, _, err := repo.SaveChanges(testContext(), "acme", []models.Change{first, second})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutingStatement)

	// the first change was persisted before the failure
	assert.Equal(t, []string{"chg-1"}, accepted)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChangesSince_PageAndHasMore(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	createdAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	vector, _ := json.Marshal(models.VersionVector{"device-b": 3})

	rows := sqlmock.NewRows(changeColumns)
	for offset := int64(41); offset <= 43; offset++ {
		rows.AddRow(
			offset,
			uuidLike(offset),
			"ent-1",
			"account",
			"update",
			int64(1),
			[]byte("sealed"),
			vector,
			"device-b",
			createdAt,
		)
	}

	query, _, err := buildSelectChangesQuery("acme", "device-a", 40, 2)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("acme", int64(40), "device-a").
		WillReturnRows(rows)

	changes, hasMore, err := repo.ChangesSince(testContext(), "acme", "device-a", 40, 2)
	require.NoError(t, err)

	assert.True(t, hasMore)
	require.Len(t, changes, 2)
	assert.Equal(t, int64(41), changes[0].Offset)
	assert.Equal(t, int64(42), changes[1].Offset)
	assert.Equal(t, models.EntityAccount, changes[0].EntityType)
	assert.Equal(t, models.OperationUpdate, changes[0].Operation)
	assert.Equal(t, models.VersionVector{"device-b": 3}, changes[0].Vector)
	assert.Equal(t, uint64(1), changes[0].Payload.Epoch)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChangesSince_EmptyLog(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	query, _, err := buildSelectChangesQuery("acme", "device-a", 0, 100)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("acme", int64(0), "device-a").
		WillReturnRows(sqlmock.NewRows(changeColumns))

	changes, hasMore, err := repo.ChangesSince(testContext(), "acme", "device-a", 0, 100)
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.False(t, hasMore)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAck(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	seenAt := time.Date(2026, 3, 14, 12, 5, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_acks")).
		WithArgs("acme", "device-a", int64(42), seenAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RecordAck(testContext(), "acme", "device-a", 42, seenAt)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMinAckedOffset(t *testing.T) {
	tests := []struct {
		name       string
		minOffset  any
		devices    int
		wantOffset int64
		wantOK     bool
	}{
		{
			name:       "two devices, min of marks",
			minOffset:  int64(37),
			devices:    2,
			wantOffset: 37,
			wantOK:     true,
		},
		{
			name:      "no registered devices",
			minOffset: nil,
			devices:   0,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			repo := newTestChangeLog(t, db)

			mock.ExpectQuery(regexp.QuoteMeta("SELECT MIN(acked_offset), COUNT(*)")).
				WithArgs("acme").
				WillReturnRows(sqlmock.NewRows([]string{"min", "count"}).AddRow(tt.minOffset, tt.devices))

			offset, ok, err := repo.MinAckedOffset(testContext(), "acme")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOffset, offset)

			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPurgeAcknowledged(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	cutoff := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)

	query, _, err := buildPurgeQuery("acme", 42, cutoff)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs("acme", int64(42), cutoff).
		WillReturnResult(sqlmock.NewResult(0, 17))

	purged, err := repo.PurgeAcknowledged(testContext(), "acme", 42, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(17), purged)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanies(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestChangeLog(t, db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT company_id FROM changes")).
		WillReturnRows(sqlmock.NewRows([]string{"company_id"}).AddRow("acme").AddRow("globex"))

	companies, err := repo.Companies(testContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, companies)

	require.NoError(t, mock.ExpectationsWereMet())
}

// uuidLike produces distinct change IDs for fixture rows.
func uuidLike(offset int64) string {
	return time.Date(2026, 3, 14, 0, 0, 0, int(offset), time.UTC).Format("20060102-150405.000000000")
}
