package client

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/service"
)

// App is the headless agent runtime. It owns the process lifecycle around
// the client services: one full sync on startup, then the periodic sync job
// until a termination signal arrives.
type App struct {
	services *service.ClientServices
	workers  config.ClientWorkers
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, workers config.ClientWorkers, logger *logger.Logger) (*App, error) {
	if services == nil {
		return nil, errNoServicesProvided
	}

	return &App{
		services: services,
		workers:  workers,
		logger:   logger,
	}, nil
}

// Run blocks until the process receives a termination signal. The startup
// sync failing is logged but not fatal; the periodic job retries on its
// next tick.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if err := a.services.SyncService.FullSync(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("startup sync failed")
	}

	a.services.SyncJob.Start(ctx, a.workers.SyncInterval)
	defer a.services.SyncJob.Stop()

	a.logger.Info().Msg("sync agent started")

	<-ctx.Done()
	a.logger.Info().Msg("sync agent shutting down")

	return nil
}
