package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pomotimer/internal/adapter/primary/tui"
	"pomotimer/internal/adapter/primary/web"
	"pomotimer/internal/config"
	"pomotimer/internal/domain"
	"pomotimer/internal/logging"
	"pomotimer/internal/usecase"
)

// activeRuntime is set while the interactive shell hosts the session itself.
var activeRuntime *runtime

func newActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, action, false)
		},
	}
}

func newBreakCmd() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "break",
		Short: "休憩を開始（--long で長い休憩）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, "break", long)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "長い休憩を開始")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "現在のタイマー状態を表示",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			view, err := dispatch(cmd.Context(), cfg, "status", false)
			if err != nil {
				return err
			}
			if asJSON {
				out, _ := json.MarshalIndent(view, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			printState(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "JSONで出力")
	return cmd
}

func runAction(cmd *cobra.Command, action string, long bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	view, err := dispatch(cmd.Context(), cfg, action, long)
	if err != nil {
		return err
	}
	printState(cmd.OutOrStdout(), view)
	return nil
}

// dispatch runs action against whichever process owns the session: the shell's
// own runtime, a running server, or else a short-lived local runtime.
func dispatch(ctx context.Context, cfg config.Config, action string, long bool) (web.StateView, error) {
	if activeRuntime != nil {
		applyAction(activeRuntime.controller, action, long)
		return web.StateViewOf(activeRuntime.controller.State(), time.Now()), nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	client := web.NewClient(cfg.Addr)
	var (
		view web.StateView
		err  error
	)
	if action == "status" {
		view, err = client.State(ctx)
	} else {
		view, err = client.Do(ctx, action, long)
	}
	if err == nil {
		return view, nil
	}
	if !isUnreachable(err) {
		return web.StateView{}, err
	}
	logging.Debugf("no server at %s, running locally", cfg.Addr)

	rt, err := openRuntime(cfg, oneShotRuntime)
	if err != nil {
		return web.StateView{}, err
	}
	applyAction(rt.controller, action, long)
	view = web.StateViewOf(rt.controller.State(), time.Now())
	return view, rt.Close()
}

func applyAction(uc usecase.SessionUseCase, action string, long bool) {
	switch action {
	case "focus":
		uc.StartFocus()
	case "break":
		uc.StartBreak(long)
	case "pause":
		uc.Pause()
	case "resume":
		uc.Resume()
	case "stop":
		uc.Stop()
	case "skip":
		uc.Skip()
	}
}

// isUnreachable reports whether nothing is listening, as opposed to a server
// that answered with an error.
func isUnreachable(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func printState(w io.Writer, view web.StateView) {
	remaining := time.Duration(view.Remaining * float64(time.Second))
	fmt.Fprintf(w, "%s (%s) %s %s %3.0f%%\n",
		view.ModeName, tui.StatusLabel(view.Status), tui.FormatClock(remaining),
		progressBar(view.FractionCompleted, 20), view.FractionCompleted*100)
	fmt.Fprintf(w, "セッション: %d / %d\n", view.SessionCount, view.TotalSessions)
	switch {
	case view.Status == domain.StatusPaused:
		fmt.Fprintln(w, "一時停止中（resume で再開）")
	case view.IsRunning:
		fmt.Fprintf(w, "終了予定: %s\n", view.Timer().CompletionDate().Local().Format("15:04:05"))
	}
}

func progressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
