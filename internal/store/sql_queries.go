package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const (
	insertChange = `INSERT INTO changes (
			change_id,
			company_id,
			entity_id,
			entity_type,
			operation,
			key_epoch,
			ciphertext,
			version_vector,
			device_id,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	upsertDeviceAck = `INSERT INTO device_acks (company_id, device_id, acked_offset, last_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, device_id) DO UPDATE
		SET acked_offset = GREATEST(device_acks.acked_offset, EXCLUDED.acked_offset),
		    last_seen    = EXCLUDED.last_seen;`

	selectMinAckedOffset = `SELECT MIN(acked_offset), COUNT(*)
		FROM device_acks
		WHERE company_id = $1;`

	selectCompanies = `SELECT DISTINCT company_id FROM changes ORDER BY company_id;`
)

// changeColumns is the scan order shared by every SELECT over the changes
// table.
var changeColumns = []string{
	"change_offset",
	"change_id",
	"entity_id",
	"entity_type",
	"operation",
	"key_epoch",
	"ciphertext",
	"version_vector",
	"device_id",
	"created_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildSelectChangesQuery builds the paginated pull query: changes for one
// company strictly after sinceOffset, skipping the caller's own device, in
// ascending offset order. One extra row past limit is requested so the
// caller can tell whether more pages exist.
func buildSelectChangesQuery(companyID, excludeDevice string, sinceOffset int64, limit int) (string, []any, error) {
	builder := psql.
		Select(changeColumns...).
		From("changes").
		Where(sq.Eq{"company_id": companyID}).
		Where(sq.Gt{"change_offset": sinceOffset}).
		OrderBy("change_offset ASC").
		Limit(uint64(limit + 1))

	if excludeDevice != "" {
		builder = builder.Where(sq.NotEq{"device_id": excludeDevice})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildPurgeQuery builds the deletion of fully acknowledged changes. The
// retention cutoff is applied on top of the acknowledgement watermark so
// that recently received changes survive even a full ack.
func buildPurgeQuery(companyID string, upTo int64, receivedBefore time.Time) (string, []any, error) {
	query, args, err := psql.
		Delete("changes").
		Where(sq.Eq{"company_id": companyID}).
		Where(sq.LtOrEq{"change_offset": upTo}).
		Where(sq.Lt{"received_at": receivedBefore}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
