package queue

const createOutboxSchema = `
	CREATE TABLE IF NOT EXISTS outbox (
		seq             INTEGER PRIMARY KEY AUTOINCREMENT,
		change_id       TEXT NOT NULL UNIQUE,
		entity_id       TEXT NOT NULL,
		entity_type     TEXT NOT NULL,
		operation       TEXT NOT NULL,
		payload_epoch   INTEGER NOT NULL,
		payload_blob    BLOB NOT NULL,
		vector          TEXT NOT NULL,
		device_id       TEXT NOT NULL,
		created_at      DATETIME NOT NULL,
		status          TEXT NOT NULL DEFAULT 'pending',
		attempts        INTEGER NOT NULL DEFAULT 0,
		next_attempt_at DATETIME NOT NULL DEFAULT (datetime('now')),
		last_error      TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status);
	CREATE INDEX IF NOT EXISTS idx_outbox_entity ON outbox(entity_id);`

const (
	insertChange = `
		INSERT INTO outbox (
			change_id, entity_id, entity_type, operation,
			payload_epoch, payload_blob, vector, device_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	selectPending = `
		SELECT
			change_id, entity_id, entity_type, operation,
			payload_epoch, payload_blob, vector, device_id, created_at,
			attempts, next_attempt_at
		FROM outbox
		WHERE status = 'pending'
		ORDER BY seq ASC;`

	deleteAcknowledged = `
		DELETE FROM outbox WHERE change_id = ?;`

	markAttemptFailed = `
		UPDATE outbox SET
			attempts        = attempts + 1,
			next_attempt_at = ?,
			last_error      = ?
		WHERE change_id = ? AND status = 'pending';`

	markAttemptThrottled = `
		UPDATE outbox SET
			next_attempt_at = ?,
			last_error      = ?
		WHERE change_id = ? AND status = 'pending';`

	markQuarantined = `
		UPDATE outbox SET
			status     = 'quarantined',
			last_error = ?
		WHERE change_id = ?;`

	countPending = `
		SELECT COUNT(*) FROM outbox WHERE status = 'pending';`

	selectExhausted = `
		SELECT
			change_id, entity_id, entity_type, operation,
			payload_epoch, payload_blob, vector, device_id, created_at
		FROM outbox
		WHERE status = 'pending' AND attempts >= ?
		ORDER BY seq ASC;`
)
