package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/models"
)

const (
	// retryBaseDelay through maxAttempts implement the send retry policy:
	// exponential backoff starting at one second, doubling per attempt,
	// capped, with at most five attempts before the change is parked as
	// exhausted.
	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
	maxAttempts    = 5

	// quotaRetryDelay is how long a quota-rejected change waits before it
	// becomes eligible again. Quota pressure clears on the relay's
	// schedule, not the client's, so the wait is flat and much longer
	// than the transient-failure backoff.
	quotaRetryDelay = 5 * time.Minute
)

// sqliteOutbox is the SQLite-backed implementation of [Outbox]. WAL mode
// keeps enqueue (writer) and batch reads (reader) from blocking each other.
type sqliteOutbox struct {
	db     *sql.DB
	logger *logger.Logger

	now func() time.Time
}

// NewOutbox opens (creating if needed) the outbox database at dbPath.
// Pass ":memory:" for an ephemeral outbox in tests.
func NewOutbox(dbPath string, log *logger.Logger) (Outbox, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open outbox database: %w", err)
	}

	if _, err = db.Exec(createOutboxSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init outbox schema: %w", err)
	}

	return &sqliteOutbox{db: db, logger: log, now: time.Now}, nil
}

// Enqueue implements [Outbox].
func (o *sqliteOutbox) Enqueue(ctx context.Context, change models.Change) error {
	vector, err := json.Marshal(change.Vector)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}

	_, err = o.db.ExecContext(ctx, insertChange,
		change.ChangeID,
		change.EntityID,
		string(change.EntityType),
		string(change.Operation),
		change.Payload.Epoch,
		change.Payload.Ciphertext,
		string(vector),
		change.DeviceID,
		change.CreatedAt.UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateChange, change.ChangeID)
		}
		return fmt.Errorf("enqueue change %s: %w", change.ChangeID, err)
	}

	o.logger.Debug().
		Str("change_id", change.ChangeID).
		Str("entity_id", change.EntityID).
		Str("operation", string(change.Operation)).
		Msg("change enqueued")

	return nil
}

// NextBatch implements [Outbox]. Rows are scanned in sequence order; a
// change that is not yet eligible (backoff pending or retries exhausted)
// blocks every later change of the same entity so per-entity FIFO is never
// violated, while other entities keep flowing.
func (o *sqliteOutbox) NextBatch(ctx context.Context, maxSize int) ([]models.Change, error) {
	if maxSize <= 0 {
		return nil, nil
	}

	rows, err := o.db.QueryContext(ctx, selectPending)
	if err != nil {
		return nil, fmt.Errorf("query pending changes: %w", err)
	}
	defer rows.Close()

	now := o.now().UTC()
	batch := make([]models.Change, 0, maxSize)
	blocked := make(map[string]struct{})

	for rows.Next() {
		var (
			change        models.Change
			entityType    string
			operation     string
			vectorJSON    string
			attempts      int
			nextAttemptAt time.Time
		)
		err = rows.Scan(
			&change.ChangeID, &change.EntityID, &entityType, &operation,
			&change.Payload.Epoch, &change.Payload.Ciphertext, &vectorJSON,
			&change.DeviceID, &change.CreatedAt,
			&attempts, &nextAttemptAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pending change: %w", err)
		}

		if _, isBlocked := blocked[change.EntityID]; isBlocked {
			continue
		}
		if attempts >= maxAttempts || nextAttemptAt.After(now) {
			blocked[change.EntityID] = struct{}{}
			continue
		}

		change.EntityType = models.EntityType(entityType)
		change.Operation = models.Operation(operation)
		if err = json.Unmarshal([]byte(vectorJSON), &change.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal vector of %s: %w", change.ChangeID, err)
		}

		batch = append(batch, change)
		if len(batch) == maxSize {
			break
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending changes: %w", err)
	}

	return batch, nil
}

// Acknowledge implements [Outbox]. All removals run in one transaction so a
// crash mid-acknowledge never leaves a half-confirmed batch.
func (o *sqliteOutbox) Acknowledge(ctx context.Context, changeIDs []string) error {
	if len(changeIDs) == 0 {
		return nil
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin acknowledge tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range changeIDs {
		if _, err = tx.ExecContext(ctx, deleteAcknowledged, id); err != nil {
			return fmt.Errorf("acknowledge change %s: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit acknowledge tx: %w", err)
	}

	o.logger.Debug().Int("count", len(changeIDs)).Msg("changes acknowledged")
	return nil
}

// MarkFailed implements [Outbox].
func (o *sqliteOutbox) MarkFailed(ctx context.Context, changeID string, reason string) error {
	attempts, err := o.attempts(ctx, changeID)
	if err != nil {
		return err
	}

	nextAttempt := o.now().UTC().Add(backoffDelay(attempts + 1))

	res, err := o.db.ExecContext(ctx, markAttemptFailed, nextAttempt, reason, changeID)
	if err != nil {
		return fmt.Errorf("mark change %s failed: %w", changeID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: %s", ErrChangeNotFound, changeID)
	}

	o.logger.Warn().
		Str("change_id", changeID).
		Int("attempts", attempts+1).
		Str("reason", reason).
		Msg("change send failed")

	return nil
}

// MarkThrottled implements [Outbox].
func (o *sqliteOutbox) MarkThrottled(ctx context.Context, changeID string, reason string) error {
	nextAttempt := o.now().UTC().Add(quotaRetryDelay)

	res, err := o.db.ExecContext(ctx, markAttemptThrottled, nextAttempt, reason, changeID)
	if err != nil {
		return fmt.Errorf("mark change %s throttled: %w", changeID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: %s", ErrChangeNotFound, changeID)
	}

	o.logger.Warn().
		Str("change_id", changeID).
		Str("reason", reason).
		Dur("retry_in", quotaRetryDelay).
		Msg("change throttled by relay quota")

	return nil
}

// Quarantine implements [Outbox].
func (o *sqliteOutbox) Quarantine(ctx context.Context, changeID string, reason string) error {
	res, err := o.db.ExecContext(ctx, markQuarantined, reason, changeID)
	if err != nil {
		return fmt.Errorf("quarantine change %s: %w", changeID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: %s", ErrChangeNotFound, changeID)
	}

	o.logger.Error().
		Str("change_id", changeID).
		Str("reason", reason).
		Msg("change quarantined")

	return nil
}

// PendingCount implements [Outbox].
func (o *sqliteOutbox) PendingCount(ctx context.Context) (int, error) {
	var count int
	if err := o.db.QueryRowContext(ctx, countPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending changes: %w", err)
	}
	return count, nil
}

// Exhausted implements [Outbox].
func (o *sqliteOutbox) Exhausted(ctx context.Context) ([]models.Change, error) {
	rows, err := o.db.QueryContext(ctx, selectExhausted, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("query exhausted changes: %w", err)
	}
	defer rows.Close()

	var changes []models.Change
	for rows.Next() {
		var (
			change     models.Change
			entityType string
			operation  string
			vectorJSON string
		)
		err = rows.Scan(
			&change.ChangeID, &change.EntityID, &entityType, &operation,
			&change.Payload.Epoch, &change.Payload.Ciphertext, &vectorJSON,
			&change.DeviceID, &change.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan exhausted change: %w", err)
		}
		change.EntityType = models.EntityType(entityType)
		change.Operation = models.Operation(operation)
		if err = json.Unmarshal([]byte(vectorJSON), &change.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal vector of %s: %w", change.ChangeID, err)
		}
		changes = append(changes, change)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exhausted changes: %w", err)
	}

	return changes, nil
}

// Close implements [Outbox].
func (o *sqliteOutbox) Close() error {
	return o.db.Close()
}

func (o *sqliteOutbox) attempts(ctx context.Context, changeID string) (int, error) {
	var attempts int
	err := o.db.QueryRowContext(ctx, `SELECT attempts FROM outbox WHERE change_id = ?;`, changeID).Scan(&attempts)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", ErrChangeNotFound, changeID)
	}
	if err != nil {
		return 0, fmt.Errorf("read attempts of %s: %w", changeID, err)
	}
	return attempts, nil
}

// backoffDelay returns the wait before the given (1-based) attempt:
// 1s, 2s, 4s, 8s, ... capped at retryMaxDelay.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}
