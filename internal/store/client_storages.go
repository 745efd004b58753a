package store

import (
	"context"
	"fmt"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
)

// ClientStorages groups the device-local repositories into a single value
// that can be passed around the sync service. The outbox keeps its own
// connection and is wired separately.
type ClientStorages struct {
	// Entities is the SQLite-backed current-state store written by the
	// merge engine.
	Entities LocalStore
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Creates the local schema when missing.
//  3. Constructs and returns a [ClientStorages] value wired to a fresh
//     [LocalStore].
//
// Returns an error if the database connection cannot be established or if
// schema creation fails.
func NewClientStorages(cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	entities, err := NewLocalStore(db, logger)
	if err != nil {
		return nil, fmt.Errorf("local store init failed: %w", err)
	}

	return &ClientStorages{
		Entities: entities,
	}, nil
}
