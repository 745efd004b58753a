package service

import (
	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
)

type Services struct {
	SyncService    RelaySyncService
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg config.RelayConfig, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		SyncService:    NewRelaySyncService(storages, cfg.Workers, logger),
		AppInfoService: appInfoService,
	}, nil
}
