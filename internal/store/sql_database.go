package store

import "github.com/mvoronkov/go-ledger-sync/migrations"

func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// Classify exposes the attached [ErrorClassificator] so that callers above
// the repository layer can decide between retry and rejection.
func (db *DB) Classify(err error) ErrorClassification {
	if db.errorClassificator == nil {
		return NonRetryable
	}
	return db.errorClassificator.Classify(err)
}
