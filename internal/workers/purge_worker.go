package workers

import (
	"context"
	"time"

	"github.com/mvoronkov/go-ledger-sync/internal/config"
	"github.com/mvoronkov/go-ledger-sync/internal/logger"
	"github.com/mvoronkov/go-ledger-sync/internal/service"
)

const defaultPurgeInterval = time.Hour

// purgeWorker periodically deletes relay changes that every registered
// device has acknowledged and that have outlived the retention window.
type purgeWorker struct {
	syncService service.RelaySyncService
	interval    time.Duration
	logger      *logger.Logger
}

func NewPurgeWorker(syncService service.RelaySyncService, cfg config.RelayWorkers, logger *logger.Logger) Worker {
	interval := cfg.PurgeInterval
	if interval <= 0 {
		interval = defaultPurgeInterval
	}

	return &purgeWorker{
		syncService: syncService,
		interval:    interval,
		logger:      logger,
	}
}

// Run starts the purge loop in a background goroutine and returns
// immediately. The loop lives for the lifetime of the process.
func (w *purgeWorker) Run() {
	w.logger.Info().
		Str("func", "*purgeWorker.Run").
		Dur("interval", w.interval).
		Msg("purge worker started")

	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for range ticker.C {
			purged, err := w.syncService.Purge(context.Background())
			if err != nil {
				w.logger.Error().Err(err).Str("func", "*purgeWorker.Run").Msg("purge run failed")
				continue
			}

			w.logger.Debug().
				Str("func", "*purgeWorker.Run").
				Int64("purged", purged).
				Msg("purge run finished")
		}
	}()
}
