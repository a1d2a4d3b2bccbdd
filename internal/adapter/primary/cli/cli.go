package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pomotimer/internal/adapter/primary/web"
	"pomotimer/internal/config"
	"pomotimer/internal/logging"
	"pomotimer/internal/pubsub"
)

var (
	cfgPath   string
	verbosity int
)

// NewRootCmd creates the root CLI command.
// This is the primary adapter that translates CLI inputs to use case calls.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pomotimer",
		Short:         "ポモドーロタイマー（CLI / Web UI / ターミナル表示）",
		Long:          "集中と休憩の区間を計測し、再起動しても正しい残り時間から復帰するポモドーロタイマー",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultCfg := config.DefaultPath()
	cmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "設定ファイルのパス")
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "ロギングを詳細化 (-v, -vv, ... 最大4回)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.SetVerbosity(verbosity)
	}

	cmd.AddCommand(
		newServeCmd(),
		newDaemonCmd(),
		newActionCmd("focus", "集中セッションを開始"),
		newBreakCmd(),
		newActionCmd("pause", "一時停止"),
		newActionCmd("resume", "一時停止から再開"),
		newActionCmd("stop", "区間を破棄して待機に戻る"),
		newActionCmd("skip", "現在の区間を飛ばして次へ"),
		newStatusCmd(),
		newWatchCmd(),
		newStatsCmd(),
		newTaskCmd(),
		newConfigCmd(),
		newShellCmd(),
	)

	return cmd
}

func newShellCmd() *cobra.Command {
	var prompt string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "タイマーを保持したまま対話的にコマンドを実行するシェルを起動",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveShell(prompt)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "pomo> ", "シェルのプロンプト文字列")
	return cmd
}

func runInteractiveShell(prompt string) error {
	historyFile := filepath.Join(os.TempDir(), "pomotimer-shell.history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	closeHost, err := hostShellSession(cfg, rl.Stdout())
	if err != nil {
		return err
	}
	defer closeHost()

	sessionVerbosity := verbosity
	fmt.Println("対話型シェルを開始します。'help' で使い方、'exit' で終了。")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println()
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "exit", "quit":
			fmt.Println("Bye!")
			return nil
		case "help":
			printShellHelp()
			continue
		}
		tokens, err := shlex.Split(line)
		if err != nil {
			fmt.Printf("Parse error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == "log" {
			if err := handleShellLog(tokens[1:], &sessionVerbosity); err != nil {
				fmt.Printf("log: %v\n", err)
			}
			continue
		}
		switch tokens[0] {
		case "shell":
			fmt.Println("すでにシェル内です。他のコマンドを入力するか 'exit' で終了してください。")
			continue
		case "serve", "daemon", "watch":
			fmt.Printf("%s はシェルの外で実行してください。\n", tokens[0])
			continue
		}

		verbosity = sessionVerbosity
		if err := executeArgs(tokens); err != nil {
			fmt.Printf("command error: %v\n", err)
		}
		sessionVerbosity = verbosity
	}
}

// hostShellSession makes the shell the live host when no server owns the
// session: it binds the API address, keeps a ticking controller and prints
// interval changes. When a server is already up, commands go to it instead.
func hostShellSession(cfg config.Config, out io.Writer) (func(), error) {
	listener, err := listen(cfg.Addr)
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, stateErr := web.NewClient(cfg.Addr).State(ctx); stateErr != nil {
			return nil, err
		}
		fmt.Fprintf(out, "起動中のサーバー (http://%s) に接続します。\n", cfg.Addr)
		return func() {}, nil
	}

	rt, err := openRuntime(cfg, liveRuntime)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	rt.watchConfig(cfgPath)
	activeRuntime = rt

	ctx, cancel := context.WithCancel(context.Background())
	srv := web.NewServer(rt.controller, web.Options{
		Addr:       cfg.Addr,
		Statistics: rt.stats,
		Tasks:      rt.db,
	})
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warnf("shell API: %v", err)
		}
	}()
	go func() {
		for ev := range rt.controller.Subscribe(ctx) {
			switch ev.Type {
			case pubsub.SessionFinishedEvent:
				fmt.Fprintf(out, "\n%s が終了しました。次: %s\n", ev.Payload.Completed.DisplayName(), ev.Payload.State.ModeName)
			case pubsub.CycleCompleteEvent:
				fmt.Fprintln(out, "1サイクル完了！長い休憩をどうぞ。")
			}
		}
	}()

	return func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
		cancel()
		activeRuntime = nil
		if err := rt.Close(); err != nil {
			logging.Warnf("close runtime: %v", err)
		}
	}, nil
}

func executeArgs(args []string) error {
	if len(args) == 0 {
		return nil
	}
	// A fresh root resets --config to its default; keep the shell's file.
	if !hasFlag(args, "--config") {
		args = append(args, "--config", cfgPath)
	}
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name || strings.HasPrefix(arg, name+"=") {
			return true
		}
	}
	return false
}

func handleShellLog(args []string, sessionVerbosity *int) error {
	fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var vcount int
	var level string
	var show bool
	fs.CountVarP(&vcount, "verbose", "v", "Increase verbosity (-v... up to 4)")
	fs.StringVar(&level, "level", "", "指定レベル(error|warn|info|debug|trace)")
	fs.BoolVarP(&show, "show", "s", false, "現在のレベルを表示")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case show && vcount == 0 && level == "":
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	case level != "":
		_, count, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		*sessionVerbosity = count
	case vcount > 0:
		*sessionVerbosity = vcount
	default:
		fmt.Printf("log level: %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
		return nil
	}

	verbosity = *sessionVerbosity
	logging.SetVerbosity(*sessionVerbosity)
	fmt.Printf("log level set to %s (-v x%d)\n", logging.LevelName(), logging.Verbosity())
	return nil
}

func printShellHelp() {
	fmt.Println(`利用可能な入力例:
  focus                       # 集中セッションを開始
  break --long                # 長い休憩を開始
  pause / resume              # 一時停止・再開
  skip / stop                 # 次の区間へ・待機に戻る
  status                      # 現在の状態を表示
  stats --days 7              # 直近7日間の統計
  task add 資料を書く          # タスクを追加
  task list                   # タスク一覧
  config set --focus 50m      # 設定を更新
  log -vv                     # ログ出力を詳細化
  log --show                  # 現在のログレベルを確認
  exit / quit                 # シェル終了`)
}
