package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pomotimer/internal/adapter/primary/tui"
	"pomotimer/internal/adapter/primary/web"
	"pomotimer/internal/adapter/secondary/shared"
	"pomotimer/internal/config"
	"pomotimer/internal/logging"
	"pomotimer/internal/pubsub"
	"pomotimer/internal/usecase"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "タイマー + Web UI + APIを起動",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(true)
		},
	}
}

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "タイマーとAPIのみを起動（Web UIなし）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(false)
		},
	}
}

// listen binds the API address. The bound port doubles as the guard that
// keeps a second live host from writing the same snapshot.
func listen(addr string) (net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s を使用できません（既に起動済みですか？）: %w", addr, err)
	}
	return listener, nil
}

func runHost(ui bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	listener, err := listen(cfg.Addr)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cfg, liveRuntime)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logging.Warnf("close runtime: %v", err)
		}
	}()
	rt.watchConfig(cfgPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go logSignals(ctx, rt.controller)

	srv := web.NewServer(rt.controller, web.Options{
		Addr:       cfg.Addr,
		UI:         ui,
		Statistics: rt.stats,
		Tasks:      rt.db,
	})
	if ui {
		fmt.Printf("Pomotimer UI running at http://%s\n", cfg.Addr)
	} else {
		fmt.Printf("Pomotimer daemon started (API: http://%s)\n", cfg.Addr)
	}
	logging.Infof("listening on %s (ui=%t)", cfg.Addr, ui)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	fmt.Println("Shutting down...")
	return nil
}

// logSignals reports completed intervals until ctx ends.
func logSignals(ctx context.Context, uc usecase.SessionUseCase) {
	for ev := range uc.Subscribe(ctx) {
		switch ev.Type {
		case pubsub.SessionFinishedEvent:
			logging.Infof("%s finished; next: %s", ev.Payload.Completed.DisplayName(), ev.Payload.State.ModeName)
		case pubsub.CycleCompleteEvent:
			logging.Infof("cycle complete")
		}
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "タイマーの状態をターミナルで表示（読み取り専用）",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			store, err := shared.NewFileStore(cfg.StatePath())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var changes <-chan struct{}
			if watcher, err := shared.NewWatcher(store.Path(), shared.DefaultDebounce); err != nil {
				logging.Warnf("live refresh disabled: %v", err)
			} else if changes, err = watcher.Start(ctx); err != nil {
				logging.Warnf("live refresh disabled: %v", err)
			}

			// The full-screen view owns the terminal, so logs go to a file.
			logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "watch.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				logging.SetOutput(logFile)
				defer func() {
					logging.SetOutput(os.Stderr)
					_ = logFile.Close()
				}()
			}

			_, err = tea.NewProgram(tui.New(store, changes, time.Now), tea.WithAltScreen()).Run()
			return err
		},
	}
}
