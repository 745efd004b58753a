package service

import (
	"github.com/mvoronkov/go-ledger-sync/internal/adapter"
	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/crypto"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/merge"
	"github.com/mvoronkov/go-ledger-sync/internal/queue"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
)

type ClientServices struct {
	ChangeService ChangeService
	SyncService   ClientSyncService
	SyncJob       ClientSyncJob
}

func NewClientServices(
	storages *store.ClientStorages,
	outbox queue.Outbox,
	relay adapter.RelayAdapter,
	keyring *crypto.Keyring,
	role crypto.Role,
	cfg config.AgentConfig,
	logger *logger.Logger,
) *ClientServices {
	codec := crypto.NewPayloadCodec()
	engine := merge.NewEngine()
	tokens := NewJWTTokenSource(cfg.App, cfg.Sync)

	syncService := NewClientSyncService(
		outbox, relay, storages.Entities, codec, keyring, role, engine, tokens, cfg.Sync, logger,
	)

	return &ClientServices{
		ChangeService: NewChangeService(
			storages.Entities, outbox, codec, keyring, role, engine, cfg.Sync.DeviceID, logger,
		),
		SyncService: syncService,
		SyncJob:     NewClientSyncJob(syncService),
	}
}
