package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/models"
)

// changeLogRepository is the PostgreSQL-backed implementation of [ChangeLog].
// It treats ciphertext as opaque bytes: the only structured column is the
// version vector, stored as JSONB for operator inspection.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (company_id, device_id, offsets).
type changeLogRepository struct {
	*DB
	logger *logger.Logger
}

// NewChangeLogRepository constructs a [ChangeLog] backed by the provided
// database connection and logger.
func NewChangeLogRepository(db *DB, logger *logger.Logger) ChangeLog {
	return &changeLogRepository{
		DB:     db,
		logger: logger,
	}
}

// SaveChanges appends the batch change by change. Each insert autocommits,
// so a duplicate ChangeID aborts only its own statement: the unique
// violation is classified as a duplicate and the rest of the batch
// proceeds. Offsets are assigned by the changes table sequence in insert
// order.
func (r *changeLogRepository) SaveChanges(ctx context.Context, companyID string, changes []models.Change) ([]string, []string, error) {
	log := logger.FromContext(ctx)

	accepted := make([]string, 0, len(changes))
	duplicates := make([]string, 0)

	for _, change := range changes {
		vector, err := json.Marshal(change.Vector)
		if err != nil {
			log.Err(err).
				Str("func", "changeLogRepository.SaveChanges").
				Str("change_id", change.ChangeID).
				Msg("failed to encode version vector")
			return accepted, duplicates, fmt.Errorf("%w: %w", ErrEncodingColumn, err)
		}

		result, execErr := r.DB.ExecContext(ctx, insertChange,
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
		if execErr != nil {
			if isUniqueViolation(execErr) {
				log.Debug().
					Str("func", "changeLogRepository.SaveChanges").
					Str("change_id", change.ChangeID).
					Msg("duplicate change skipped")
				duplicates = append(duplicates, change.ChangeID)
				continue
			}

			log.Err(execErr).
				Str("func", "changeLogRepository.SaveChanges").
				Str("company_id", companyID).
				Str("change_id", change.ChangeID).
				Msg("failed to insert change")
			return accepted, duplicates, fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}

		if rows, _ := result.RowsAffected(); rows == 0 {
			return accepted, duplicates, ErrChangeNotSaved
		}

		accepted = append(accepted, change.ChangeID)
	}

	return accepted, duplicates, nil
}

// ChangesSince serves one pull page. It asks for one row past the limit to
// detect whether more pages exist without a second query.
func (r *changeLogRepository) ChangesSince(ctx context.Context, companyID, excludeDevice string, sinceOffset int64, limit int) ([]models.RelayChange, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectChangesQuery(companyID, excludeDevice, sinceOffset, limit)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.ChangesSince").
			Str("company_id", companyID).
			Msg("failed to build query")
		return nil, false, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.ChangesSince").
			Str("company_id", companyID).
			Int64("since_offset", sinceOffset).
			Msg("failed to execute query for reading changes")
		return nil, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	results := make([]models.RelayChange, 0, limit)

	for rows.Next() {
		var (
			item       models.RelayChange
			entityType string
			operation  string
			vector     []byte
		)

		scanErr := rows.Scan(
			&item.Offset,
			&item.ChangeID,
			&item.EntityID,
			&entityType,
			&operation,
			&item.Payload.Epoch,
			&item.Payload.Ciphertext,
			&vector,
			&item.DeviceID,
			&item.CreatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "changeLogRepository.ChangesSince").
				Str("company_id", companyID).
				Msg("failed to scan change row")
			return nil, false, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		item.EntityType = models.EntityType(entityType)
		item.Operation = models.Operation(operation)

		if unmarshalErr := json.Unmarshal(vector, &item.Vector); unmarshalErr != nil {
			log.Err(unmarshalErr).
				Str("func", "changeLogRepository.ChangesSince").
				Str("change_id", item.ChangeID).
				Msg("failed to decode version vector column")
			return nil, false, fmt.Errorf("%w: %w", ErrDecodingColumn, unmarshalErr)
		}

		results = append(results, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "changeLogRepository.ChangesSince").
			Str("company_id", companyID).
			Msg("error occurred during rows iteration")
		return nil, false, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	hasMore := len(results) > limit
	if hasMore {
		results = results[:limit]
	}

	return results, hasMore, nil
}

// RecordAck upserts the device high-water mark. GREATEST in the upsert
// keeps the stored mark monotonic even when acks arrive out of order.
func (r *changeLogRepository) RecordAck(ctx context.Context, companyID, deviceID string, ackedOffset int64, seenAt time.Time) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertDeviceAck, companyID, deviceID, ackedOffset, seenAt)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.RecordAck").
			Str("company_id", companyID).
			Str("device_id", deviceID).
			Int64("acked_offset", ackedOffset).
			Msg("failed to record device ack")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *changeLogRepository) MinAckedOffset(ctx context.Context, companyID string) (int64, bool, error) {
	log := logger.FromContext(ctx)

	var (
		minOffset sql.NullInt64
		devices   int
	)

	err := r.DB.QueryRowContext(ctx, selectMinAckedOffset, companyID).Scan(&minOffset, &devices)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.MinAckedOffset").
			Str("company_id", companyID).
			Msg("failed to query device acks")
		return 0, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if devices == 0 || !minOffset.Valid {
		return 0, false, nil
	}

	return minOffset.Int64, true, nil
}

func (r *changeLogRepository) PurgeAcknowledged(ctx context.Context, companyID string, upTo int64, receivedBefore time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildPurgeQuery(companyID, upTo, receivedBefore)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.PurgeAcknowledged").
			Str("company_id", companyID).
			Msg("failed to build purge query")
		return 0, err
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.PurgeAcknowledged").
			Str("company_id", companyID).
			Int64("up_to", upTo).
			Msg("failed to purge acknowledged changes")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if purged > 0 {
		log.Info().
			Str("func", "changeLogRepository.PurgeAcknowledged").
			Str("company_id", companyID).
			Int64("purged", purged).
			Msg("purged acknowledged changes")
	}

	return purged, nil
}

func (r *changeLogRepository) Companies(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, selectCompanies)
	if err != nil {
		log.Err(err).
			Str("func", "changeLogRepository.Companies").
			Msg("failed to list companies")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	companies := make([]string, 0)
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		companies = append(companies, id)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return companies, nil
}
