package main

import (
	"encoding/base64"
	"fmt"

	"github.com/mvoronkov/go-ledger-sync/internal/adapter"
	"github.com/mvoronkov/go-ledger-sync/internal/client"
	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/crypto"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/queue"
	"github.com/mvoronkov/go-ledger-sync/internal/service"
	"github.com/mvoronkov/go-ledger-sync/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewAgentLogger("ledger-sync-agent")
	cfg, err := config.GetAgentConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	relay, err := adapter.NewHTTPRelayAdapter(cfg.Relay, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create relay adapter")
	}

	localStorage, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	outbox, err := queue.NewOutbox(cfg.Storage.Outbox.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create outbox")
	}

	keyring, role, err := buildKeyring(cfg.Crypto)
	if err != nil {
		log.Fatal().Err(err).Msg("build keyring")
	}
	defer keyring.Zeroize()

	services := service.NewClientServices(localStorage, outbox, relay, keyring, role, *cfg, log)

	app, err := client.NewApp(services, cfg.Workers, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init agent app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("agent run error")
	}
}

// buildKeyring derives the device's key material from the configured
// passphrase and salt.
func buildKeyring(cfg config.ClientCrypto) (*crypto.Keyring, crypto.Role, error) {
	role := crypto.Role(cfg.Role)
	switch role {
	case crypto.RoleOwner, crypto.RoleAccountant, crypto.RoleViewer:
	default:
		return nil, "", fmt.Errorf("unknown key role %q", cfg.Role)
	}

	salt, err := base64.StdEncoding.DecodeString(cfg.Salt)
	if err != nil {
		return nil, "", fmt.Errorf("decode salt: %w", err)
	}

	svc := crypto.NewKeyService()
	master := svc.DeriveMasterKey(cfg.Passphrase, salt)

	return crypto.NewKeyring(svc, master, cfg.KeyEpoch), role, nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
