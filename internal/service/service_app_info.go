package service

import (
	"context"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
)

type appInfoService struct {
	appVersion string
	region     string

	logger *logger.Logger
}

func NewAppInfoService(cfg config.RelayApp, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}
	if cfg.Region == "" {
		return nil, ErrRegionIsNotSpecified
	}

	return &appInfoService{
		appVersion: cfg.Version,
		region:     cfg.Region,
		logger:     logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}

func (s *appInfoService) GetRegion(ctx context.Context) string {
	return s.region
}
