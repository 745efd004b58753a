package store

const (
	createClientSchema = `
		CREATE TABLE IF NOT EXISTS entities (
			entity_id      TEXT PRIMARY KEY,
			entity_type    TEXT NOT NULL,
			state          TEXT NOT NULL,
			version_vector TEXT NOT NULL,
			deleted        INTEGER NOT NULL DEFAULT 0,
			updated_at     DATETIME NOT NULL,
			last_device    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sync_cursors (
			company_id    TEXT PRIMARY KEY,
			remote_offset INTEGER NOT NULL,
			updated_at    DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS merge_audit (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id         TEXT NOT NULL,
			entity_type       TEXT NOT NULL,
			change_id         TEXT NOT NULL,
			action            TEXT NOT NULL,
			before_record     TEXT,
			after_record      TEXT,
			delete_superseded INTEGER NOT NULL DEFAULT 0,
			resolved_at       DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_merge_audit_resolved_at
			ON merge_audit (resolved_at);

		CREATE TABLE IF NOT EXISTS quarantine (
			change_id     TEXT PRIMARY KEY,
			remote_offset INTEGER NOT NULL,
			entity_id     TEXT NOT NULL,
			entity_type   TEXT NOT NULL,
			envelope      TEXT NOT NULL,
			reason        TEXT NOT NULL,
			received_at   DATETIME NOT NULL
		);`

	selectEntity = `
		SELECT entity_id, entity_type, state, version_vector, deleted, updated_at, last_device
		FROM entities
		WHERE entity_id = ?;`

	upsertEntity = `
		INSERT INTO entities (entity_id, entity_type, state, version_vector, deleted, updated_at, last_device)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entity_id) DO UPDATE SET
			entity_type    = excluded.entity_type,
			state          = excluded.state,
			version_vector = excluded.version_vector,
			deleted        = excluded.deleted,
			updated_at     = excluded.updated_at,
			last_device    = excluded.last_device;`

	insertAuditEntry = `
		INSERT INTO merge_audit (entity_id, entity_type, change_id, action, before_record, after_record, delete_superseded, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	selectAuditSince = `
		SELECT entity_id, entity_type, change_id, action, before_record, after_record, delete_superseded, resolved_at
		FROM merge_audit
		WHERE resolved_at >= ?
		ORDER BY id ASC
		LIMIT ?;`

	selectCursor = `
		SELECT company_id, remote_offset, updated_at
		FROM sync_cursors
		WHERE company_id = ?;`

	upsertCursor = `
		INSERT INTO sync_cursors (company_id, remote_offset, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (company_id) DO UPDATE SET
			remote_offset = excluded.remote_offset,
			updated_at    = excluded.updated_at;`

	deleteCursor = `DELETE FROM sync_cursors WHERE company_id = ?;`

	insertQuarantined = `
		INSERT OR IGNORE INTO quarantine (change_id, remote_offset, entity_id, entity_type, envelope, reason, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);`

	selectQuarantined = `
		SELECT envelope, reason, received_at
		FROM quarantine
		ORDER BY received_at ASC, change_id ASC
		LIMIT ?;`
)
