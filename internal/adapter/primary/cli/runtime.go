package cli

import (
	"context"
	"errors"
	"time"

	"pomotimer/internal/adapter/secondary/notify"
	"pomotimer/internal/adapter/secondary/repository"
	"pomotimer/internal/adapter/secondary/shared"
	"pomotimer/internal/adapter/secondary/sqlite"
	"pomotimer/internal/config"
	"pomotimer/internal/domain"
	"pomotimer/internal/logging"
	"pomotimer/internal/usecase"
)

type runtimeMode int

const (
	// liveRuntime ticks, raises notifications and stays up until closed.
	liveRuntime runtimeMode = iota
	// oneShotRuntime recovers, applies one command and exits, like a relaunch.
	oneShotRuntime
)

// runtime wires the secondary adapters to one session controller.
type runtime struct {
	cfg        config.Config
	db         *sqlite.DB
	stats      *usecase.StatisticsService
	recorder   *usecase.AsyncRecorder
	controller *usecase.SessionController
	cancel     context.CancelFunc
}

func openRuntime(cfg config.Config, mode runtimeMode) (*runtime, error) {
	snapshots, err := repository.NewFileRepository(cfg.SnapshotPath())
	if err != nil {
		return nil, err
	}
	store, err := shared.NewFileStore(cfg.StatePath())
	if err != nil {
		return nil, err
	}
	db, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	stats := usecase.NewStatisticsService(db, time.Now)
	recorder := usecase.NewAsyncRecorder(stats, 0)
	recorder.Start(ctx)

	// A one-shot process is gone long before the interval ends, so only live
	// hosts arm notifications.
	var notifier domain.Notifier
	if mode == liveRuntime && cfg.Notifications {
		notifier = notify.NewAlarm(notify.NewSystemSender())
	}

	controller, err := usecase.NewSessionController(usecase.Dependencies{
		Snapshots:  snapshots,
		Notifier:   notifier,
		Statistics: recorder,
		Sink:       usecase.NewPublicationSink(snapshots, store),
	}, cfg.Settings(), usecase.Config{
		TickInterval: cfg.TickInterval,
		ManualTick:   mode == oneShotRuntime,
	})
	if err != nil {
		recorder.Close()
		cancel()
		return nil, errors.Join(err, db.Close())
	}
	controller.Start(ctx)
	logging.Debugf("runtime opened (data dir %s)", cfg.DataDir)

	return &runtime{
		cfg:        cfg,
		db:         db,
		stats:      stats,
		recorder:   recorder,
		controller: controller,
		cancel:     cancel,
	}, nil
}

// watchConfig applies settings edits to the running controller.
func (r *runtime) watchConfig(path string) {
	config.Watch(path, func(cfg config.Config) {
		if err := r.controller.UpdateSettings(cfg.Settings()); err != nil {
			logging.Warnf("settings not applied: %v", err)
		}
	})
}

// Close writes the final state out and releases everything in reverse order.
func (r *runtime) Close() error {
	r.controller.Background()
	r.controller.Close()
	r.recorder.Close()
	r.cancel()
	return r.db.Close()
}
