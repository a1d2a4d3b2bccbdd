package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pomotimer/internal/adapter/secondary/sqlite"
	"pomotimer/internal/config"
	"pomotimer/internal/domain"
	"pomotimer/internal/usecase"
)

// openDatabase opens the statistics and task store. SQLite serializes
// writers across processes, so this is safe while a server is running.
func openDatabase() (*sqlite.DB, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.DatabasePath())
}

func newStatsCmd() *cobra.Command {
	var (
		days int
		day  string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "集中セッションの統計を表示",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			svc := usecase.NewStatisticsService(db, time.Now)
			out := cmd.OutOrStdout()

			if day != "" {
				stats, err := svc.Day(day)
				if err != nil {
					return err
				}
				printDay(out, stats)
				records, err := db.FocusSessions(stats.Day)
				if err != nil {
					return err
				}
				for _, rec := range records {
					fmt.Fprintf(out, "  %s  %s\n", rec.CompletedAt.Local().Format("15:04"), rec.Duration)
				}
				return nil
			}

			today, err := svc.Today()
			if err != nil {
				return err
			}
			fmt.Fprint(out, "今日: ")
			printDay(out, today)

			summary, err := svc.Summary(days)
			if err != nil {
				return err
			}
			printSummary(out, summary)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "直近N日間を集計")
	cmd.Flags().StringVar(&day, "day", "", "指定日(YYYY-MM-DD)の内訳を表示")
	return cmd
}

func printDay(w io.Writer, stats domain.DayStats) {
	fmt.Fprintf(w, "%s  集中 %d回 (%s)  休憩 %d回\n",
		stats.Day, stats.FocusSessions, stats.FocusTime, stats.Breaks)
}

func printSummary(w io.Writer, summary usecase.Summary) {
	fmt.Fprintf(w, "%s 〜 %s\n", summary.From, summary.To)
	if len(summary.Days) == 0 {
		fmt.Fprintln(w, "  記録はありません")
	}
	for _, day := range summary.Days {
		fmt.Fprint(w, "  ")
		printDay(w, day)
	}
	fmt.Fprintf(w, "合計: 集中 %d回 (%s)  休憩 %d回  連続 %d日\n",
		summary.FocusSessions, summary.FocusTime, summary.Breaks, summary.Streak)
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "タスクの追加・一覧・更新を行うサブコマンド",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <title>",
			Short: "タスクを追加",
			Args:  cobra.MinimumNArgs(1),
			RunE: withTasks(func(cmd *cobra.Command, args []string, tasks domain.TaskRepository) error {
				task, err := tasks.Add(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "追加しました: #%d %s\n", task.ID, task.Title)
				return nil
			}),
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "タスク一覧を表示",
			Args:    cobra.NoArgs,
			RunE: withTasks(func(cmd *cobra.Command, args []string, tasks domain.TaskRepository) error {
				list, err := tasks.List()
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "タスクはありません")
				}
				for _, task := range list {
					mark := " "
					if task.Done {
						mark = "x"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] #%d %s\n", mark, task.ID, task.Title)
				}
				return nil
			}),
		},
		newTaskDoneCmd("done", "タスクを完了にする", true),
		newTaskDoneCmd("undo", "タスクを未完了に戻す", false),
		&cobra.Command{
			Use:   "rename <id> <title>",
			Short: "タスク名を変更",
			Args:  cobra.MinimumNArgs(2),
			RunE: withTasks(func(cmd *cobra.Command, args []string, tasks domain.TaskRepository) error {
				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}
				task, err := tasks.Rename(id, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "変更しました: #%d %s\n", task.ID, task.Title)
				return nil
			}),
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "タスクを削除",
			Args:    cobra.ExactArgs(1),
			RunE: withTasks(func(cmd *cobra.Command, args []string, tasks domain.TaskRepository) error {
				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}
				if err := tasks.Delete(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "削除しました: #%d\n", id)
				return nil
			}),
		},
	)
	return cmd
}

func newTaskDoneCmd(use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withTasks(func(cmd *cobra.Command, args []string, tasks domain.TaskRepository) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			task, err := tasks.SetDone(id, done)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "更新しました: #%d %s (done=%t)\n", task.ID, task.Title, task.Done)
			return nil
		}),
	}
}

type taskFunc func(cmd *cobra.Command, args []string, tasks domain.TaskRepository) error

func withTasks(fn taskFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cmd, args, db)
	}
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("タスクIDが不正です: %q", raw)
	}
	return id, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "設定の取得・更新を行うサブコマンド",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "現在の設定(JSON)を表示",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			display := map[string]interface{}{
				"focus":                   cfg.Focus.String(),
				"shortBreak":              cfg.ShortBreak.String(),
				"longBreak":               cfg.LongBreak.String(),
				"sessionsBeforeLongBreak": cfg.SessionsBeforeLongBreak,
				"continuous":              cfg.Continuous,
				"notifications":           cfg.Notifications,
				"dataDir":                 cfg.DataDir,
				"addr":                    cfg.Addr,
				"tickInterval":            cfg.TickInterval.String(),
			}
			out, _ := json.MarshalIndent(display, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		focus, shortBreak, longBreak, tick time.Duration
		sessions                           int
		continuous, notifications          string
		addr, dataDir                      string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "設定を書き換え（起動中のタイマーにも反映）",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("focus") {
				cfg.Focus = focus
			}
			if flags.Changed("short-break") {
				cfg.ShortBreak = shortBreak
			}
			if flags.Changed("long-break") {
				cfg.LongBreak = longBreak
			}
			if flags.Changed("sessions") {
				cfg.SessionsBeforeLongBreak = sessions
			}
			if flags.Changed("tick") {
				cfg.TickInterval = tick
			}
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if flags.Changed("continuous") {
				if cfg.Continuous, err = parseSwitch("continuous", continuous); err != nil {
					return err
				}
			}
			if flags.Changed("notifications") {
				if cfg.Notifications, err = parseSwitch("notifications", notifications); err != nil {
					return err
				}
			}

			if err := config.Save(cfgPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "保存しました: focus=%s short=%s long=%s sessions=%d continuous=%t\n",
				cfg.Focus, cfg.ShortBreak, cfg.LongBreak, cfg.SessionsBeforeLongBreak, cfg.Continuous)
			if activeRuntime != nil {
				if err := activeRuntime.controller.UpdateSettings(cfg.Settings()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&focus, "focus", 25*time.Minute, "集中時間 例:25m")
	cmd.Flags().DurationVar(&shortBreak, "short-break", 5*time.Minute, "短い休憩 例:5m")
	cmd.Flags().DurationVar(&longBreak, "long-break", 15*time.Minute, "長い休憩 例:15m")
	cmd.Flags().IntVar(&sessions, "sessions", 4, "長い休憩までの集中セッション数")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "表示更新間隔")
	cmd.Flags().StringVar(&continuous, "continuous", "", "true/false 終了後に次の区間を自動開始")
	cmd.Flags().StringVar(&notifications, "notifications", "", "true/false 終了時に通知")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTPサーバーのアドレス:ポート")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "スナップショットとDBの保存先")
	return cmd
}

func parseSwitch(name, value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.New("--" + name + " には true/false を指定してください")
	}
}
