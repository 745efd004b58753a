package store

import (
	"context"
	"fmt"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
)

// Storages groups the relay-side repositories into a single value that can
// be passed around the service layer.
type Storages struct {
	// ChangeLog is the PostgreSQL-backed append-only log of sealed changes.
	ChangeLog ChangeLog

	// DB is the underlying connection, exposed for health checks and error
	// classification.
	DB *DB
}

// NewStorages initialises the relay storage layer: it connects to
// PostgreSQL, runs pending goose migrations, and wires the change log
// repository.
func NewStorages(cfg config.DBConfig, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		ChangeLog: NewChangeLogRepository(db, logger),
		DB:        db,
	}, nil
}
