package config

import "strings"

func (cfg *AgentConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}
	if cfg.Storage.Outbox.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Relay.BaseURL == "" || cfg.Relay.RequestTimeout == 0 {
		return ErrInvalidRelayConfigs
	}

	if cfg.Sync.DeviceID == "" || cfg.Sync.CompanyID == "" {
		return ErrInvalidSyncConfigs
	}

	if cfg.Crypto.Passphrase == "" || cfg.Crypto.Salt == "" || cfg.Crypto.Role == "" {
		return ErrInvalidCryptoConfigs
	}

	if cfg.Workers.SyncInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *RelayConfig) validate() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.TokenSignKey == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
