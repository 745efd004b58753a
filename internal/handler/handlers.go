package handler

import (
	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/handler/http"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/service"
)

// Handlers groups the relay's transport handlers. The sync protocol is
// served over HTTP only.
type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, cfg config.RelayConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, cfg.App, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
