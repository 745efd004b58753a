package config

import (
	"fmt"
	"time"
)

// ClientApp holds agent-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// TokenSignKey is the key the agent signs its device JWT with.
	TokenSignKey string
	// TokenIssuer is the "iss" claim expected by the relay.
	TokenIssuer string
	// TokenDuration is the lifetime of a freshly signed device token.
	TokenDuration time.Duration
}

// ClientRelay holds network settings used by the agent transport layer.
type ClientRelay struct {
	// BaseURL is the relay endpoint the agent pushes to and pulls from.
	BaseURL string
	// RequestTimeout is the default timeout for outbound relay requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the agent.
type ClientDB struct {
	// DSN is the SQLite file path backing the local entity store.
	DSN string
}

// ClientOutbox contains the durable outbox database settings.
type ClientOutbox struct {
	// Path is the SQLite file path backing the outbox.
	Path string
}

// ClientStorage groups agent storage backend settings.
type ClientStorage struct {
	// DB holds local entity store settings.
	DB ClientDB
	// Outbox holds the outbox database settings.
	Outbox ClientOutbox
}

// ClientSync holds the agent's sync identity and batching settings.
type ClientSync struct {
	// DeviceID is this device's stable identifier.
	DeviceID string
	// CompanyID scopes all pushed and pulled changes.
	CompanyID string
	// BatchSize caps how many changes one push or pull carries.
	BatchSize int
}

// ClientCrypto holds the agent's key derivation inputs.
type ClientCrypto struct {
	// Passphrase is the user passphrase the master key is derived from.
	Passphrase string
	// Salt is the base64-encoded Argon2id salt.
	Salt string
	// KeyEpoch is the current key rotation epoch.
	KeyEpoch uint64
	// Role selects which access level's key material this device derives.
	Role string
}

// ClientWorkers contains agent background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the periodic sync job runs.
	SyncInterval time.Duration
}

// AgentConfig is the top-level agent configuration assembled from
// [StructuredConfig].
type AgentConfig struct {
	// App contains application-level agent settings.
	App ClientApp
	// Relay contains the relay endpoint and timeouts.
	Relay ClientRelay
	// Storage contains agent storage settings.
	Storage ClientStorage
	// Sync contains the agent's identity and batching settings.
	Sync ClientSync
	// Crypto contains the agent's key derivation inputs.
	Crypto ClientCrypto
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetAgentConfig builds and validates an agent-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the agent runtime, and validates the resulting [AgentConfig].
func GetAgentConfig() (*AgentConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	agentCfg := &AgentConfig{
		App: ClientApp{
			TokenSignKey:  cfg.App.TokenSignKey,
			TokenIssuer:   cfg.App.TokenIssuer,
			TokenDuration: cfg.App.TokenDuration,
		},
		Relay: ClientRelay{
			BaseURL:        cfg.Relay.BaseURL,
			RequestTimeout: cfg.Relay.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
			Outbox: ClientOutbox{
				Path: cfg.Storage.Outbox.Path,
			},
		},
		Sync: ClientSync{
			DeviceID:  cfg.Sync.DeviceID,
			CompanyID: cfg.Sync.CompanyID,
			BatchSize: cfg.Sync.BatchSize,
		},
		Crypto: ClientCrypto{
			Passphrase: cfg.Crypto.Passphrase,
			Salt:       cfg.Crypto.Salt,
			KeyEpoch:   cfg.Crypto.KeyEpoch,
			Role:       cfg.Crypto.Role,
		},
		Workers: ClientWorkers{SyncInterval: cfg.Workers.SyncInterval},
	}

	return agentCfg, agentCfg.validate()
}
