package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/models"
)

// localEntityRepository is the SQLite-backed implementation of [LocalStore].
// State on the device is plaintext: encryption exists for transport and
// relay storage, the local database is protected by the OS.
type localEntityRepository struct {
	*DB
	logger *logger.Logger
}

// NewLocalStore constructs a [LocalStore] on top of an open SQLite
// connection, creating the schema when it does not exist yet.
func NewLocalStore(db *DB, logger *logger.Logger) (LocalStore, error) {
	if _, err := db.Exec(createClientSchema); err != nil {
		logger.Err(err).Str("func", "NewLocalStore").Msg("failed to create local schema")
		return nil, fmt.Errorf("create local schema: %w", err)
	}

	return &localEntityRepository{
		DB:     db,
		logger: logger,
	}, nil
}

func (r *localEntityRepository) GetEntity(ctx context.Context, entityID string) (*models.EntityRecord, error) {
	log := logger.FromContext(ctx)

	row := r.DB.QueryRowContext(ctx, selectEntity, entityID)

	record, err := scanEntityRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}

		log.Err(err).
			Str("func", "localEntityRepository.GetEntity").
			Str("entity_id", entityID).
			Msg("failed to read entity record")
		return nil, err
	}

	return record, nil
}

// ApplyMerge writes the merge outcome in one transaction. The entity row
// and the audit entry commit together or not at all, so a crash between
// them cannot leave an applied change without a trail.
func (r *localEntityRepository) ApplyMerge(ctx context.Context, record *models.EntityRecord, audit models.AuditEntry) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.ApplyMerge").
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if record != nil {
		state, marshalErr := json.Marshal(record.State)
		if marshalErr != nil {
			return fmt.Errorf("%w: %w", ErrEncodingColumn, marshalErr)
		}
		vector, marshalErr := json.Marshal(record.Vector)
		if marshalErr != nil {
			return fmt.Errorf("%w: %w", ErrEncodingColumn, marshalErr)
		}

		_, execErr := tx.ExecContext(ctx, upsertEntity,
			record.EntityID,
			string(record.EntityType),
			string(state),
			string(vector),
			record.Deleted,
			record.UpdatedAt.UTC(),
			record.LastDevice,
		)
		if execErr != nil {
			log.Err(execErr).
				Str("func", "localEntityRepository.ApplyMerge").
				Str("entity_id", record.EntityID).
				Msg("failed to upsert entity record")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}
	}

	before, err := marshalRecordColumn(audit.Before)
	if err != nil {
		return err
	}
	after, err := marshalRecordColumn(audit.After)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, insertAuditEntry,
		audit.EntityID,
		string(audit.EntityType),
		audit.ChangeID,
		string(audit.Action),
		before,
		after,
		audit.DeleteSuperseded,
		audit.ResolvedAt.UTC(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.ApplyMerge").
			Str("entity_id", audit.EntityID).
			Str("change_id", audit.ChangeID).
			Msg("failed to append audit entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.ApplyMerge").
			Msg("failed to commit merge transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (r *localEntityRepository) GetCursor(ctx context.Context, companyID string) (models.SyncCursor, error) {
	log := logger.FromContext(ctx)

	var cursor models.SyncCursor

	err := r.DB.QueryRowContext(ctx, selectCursor, companyID).
		Scan(&cursor.CompanyID, &cursor.RemoteOffset, &cursor.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncCursor{}, ErrCursorNotFound
		}

		log.Err(err).
			Str("func", "localEntityRepository.GetCursor").
			Str("company_id", companyID).
			Msg("failed to read sync cursor")
		return models.SyncCursor{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return cursor, nil
}

func (r *localEntityRepository) SaveCursor(ctx context.Context, cursor models.SyncCursor) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertCursor, cursor.CompanyID, cursor.RemoteOffset, cursor.UpdatedAt.UTC())
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.SaveCursor").
			Str("company_id", cursor.CompanyID).
			Int64("remote_offset", cursor.RemoteOffset).
			Msg("failed to save sync cursor")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *localEntityRepository) ResetCursor(ctx context.Context, companyID string) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, deleteCursor, companyID)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.ResetCursor").
			Str("company_id", companyID).
			Msg("failed to reset sync cursor")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *localEntityRepository) Quarantine(ctx context.Context, change models.RelayChange, reason string) error {
	log := logger.FromContext(ctx)

	envelope, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingColumn, err)
	}

	_, err = r.DB.ExecContext(ctx, insertQuarantined,
		change.ChangeID,
		change.Offset,
		change.EntityID,
		string(change.EntityType),
		string(envelope),
		reason,
		time.Now().UTC(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.Quarantine").
			Str("change_id", change.ChangeID).
			Str("reason", reason).
			Msg("failed to quarantine change")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Warn().
		Str("func", "localEntityRepository.Quarantine").
		Str("change_id", change.ChangeID).
		Str("entity_id", change.EntityID).
		Str("reason", reason).
		Msg("change quarantined")

	return nil
}

func (r *localEntityRepository) QuarantinedChanges(ctx context.Context, limit int) ([]QuarantinedChange, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, selectQuarantined, limit)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.QuarantinedChanges").
			Msg("failed to list quarantined changes")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	parked := make([]QuarantinedChange, 0, limit)

	for rows.Next() {
		var (
			item     QuarantinedChange
			envelope string
		)

		if scanErr := rows.Scan(&envelope, &item.Reason, &item.ReceivedAt); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		if unmarshalErr := json.Unmarshal([]byte(envelope), &item.Change); unmarshalErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingColumn, unmarshalErr)
		}

		parked = append(parked, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return parked, nil
}

func (r *localEntityRepository) AuditSince(ctx context.Context, since time.Time, limit int) ([]models.AuditEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, selectAuditSince, since.UTC(), limit)
	if err != nil {
		log.Err(err).
			Str("func", "localEntityRepository.AuditSince").
			Msg("failed to query audit trail")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0, limit)

	for rows.Next() {
		var (
			entry      models.AuditEntry
			entityType string
			action     string
			before     sql.NullString
			after      sql.NullString
		)

		scanErr := rows.Scan(
			&entry.EntityID,
			&entityType,
			&entry.ChangeID,
			&action,
			&before,
			&after,
			&entry.DeleteSuperseded,
			&entry.ResolvedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		entry.EntityType = models.EntityType(entityType)
		entry.Action = models.MergeAction(action)

		if entry.Before, err = unmarshalRecordColumn(before); err != nil {
			return nil, err
		}
		if entry.After, err = unmarshalRecordColumn(after); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

func (r *localEntityRepository) Close() error {
	return r.DB.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntityRecord(row rowScanner) (*models.EntityRecord, error) {
	var (
		record     models.EntityRecord
		entityType string
		state      string
		vector     string
	)

	err := row.Scan(
		&record.EntityID,
		&entityType,
		&state,
		&vector,
		&record.Deleted,
		&record.UpdatedAt,
		&record.LastDevice,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	record.EntityType = models.EntityType(entityType)

	if err = json.Unmarshal([]byte(state), &record.State); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingColumn, err)
	}
	if err = json.Unmarshal([]byte(vector), &record.Vector); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingColumn, err)
	}

	return &record, nil
}

func marshalRecordColumn(record *models.EntityRecord) (sql.NullString, error) {
	if record == nil {
		return sql.NullString{}, nil
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("%w: %w", ErrEncodingColumn, err)
	}

	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalRecordColumn(column sql.NullString) (*models.EntityRecord, error) {
	if !column.Valid {
		return nil, nil
	}

	var record models.EntityRecord
	if err := json.Unmarshal([]byte(column.String), &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingColumn, err)
	}

	return &record, nil
}
