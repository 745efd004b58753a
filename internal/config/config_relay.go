package config

import (
	"fmt"
	"time"
)

// RelayApp holds relay-side application settings.
type RelayApp struct {
	// TokenSignKey is the key device JWTs are verified with.
	TokenSignKey string
	// TokenIssuer is the expected "iss" claim of device tokens.
	TokenIssuer string
	// Region is the region label reported by GET /health.
	Region string
	// Version is the running relay version.
	Version string
}

// RelayServer holds the relay's inbound transport settings.
type RelayServer struct {
	// HTTPAddress is the listen address in "host:port" format.
	HTTPAddress string
	// RequestTimeout bounds the handling of one inbound request.
	RequestTimeout time.Duration
}

// RelayStorage groups the relay's persistence settings.
type RelayStorage struct {
	// DB holds the PostgreSQL connection settings for the change log.
	DB DBConfig
}

// DBConfig holds connection settings for the relay database.
type DBConfig struct {
	// DSN is the PostgreSQL Data Source Name.
	DSN string
}

// RelayWorkers holds the purge worker settings.
type RelayWorkers struct {
	// PurgeInterval defines how often the purge worker runs.
	PurgeInterval time.Duration
	// RetentionDays is the floor on how long a change is kept after the
	// relay received it, regardless of acknowledgements.
	RetentionDays int
}

// RelayConfig is the top-level relay configuration assembled from
// [StructuredConfig].
type RelayConfig struct {
	// App contains application-level relay settings.
	App RelayApp
	// Server contains the inbound HTTP settings.
	Server RelayServer
	// Storage contains the change log database settings.
	Storage RelayStorage
	// Workers contains the purge worker settings.
	Workers RelayWorkers
}

// GetRelayConfig builds and validates a relay-specific config view from the
// merged structured configuration.
func GetRelayConfig() (*RelayConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	relayCfg := &RelayConfig{
		App: RelayApp{
			TokenSignKey: cfg.App.TokenSignKey,
			TokenIssuer:  cfg.App.TokenIssuer,
			Region:       cfg.App.Region,
			Version:      cfg.App.Version,
		},
		Server: RelayServer{
			HTTPAddress:    cfg.Server.HTTPAddress,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		Storage: RelayStorage{
			DB: DBConfig{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: RelayWorkers{
			PurgeInterval: cfg.Workers.PurgeInterval,
			RetentionDays: cfg.Workers.RetentionDays,
		},
	}

	return relayCfg, relayCfg.validate()
}
