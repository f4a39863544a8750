package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nse-profiler/internal/errors"
	"nse-profiler/internal/scheduler"
)

// addRunCommand registers the long-running scheduler command.
func addRunCommand(rootCmd *cobra.Command, app *App) {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daily profile scheduler",
		Long: `Run the cron scheduler in the foreground. On each trigger (after
market close by default) every watchlist symbol's intraday candles are
fetched, the day's profile is computed and persisted.

Stops cleanly on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(cmd, app)
		},
	}
	runCmd.Flags().Bool("once", false, "run one batch immediately and exit")
	runCmd.Flags().String("date", "", "trading date for --once (YYYY-MM-DD, default: last trading day)")

	rootCmd.AddCommand(runCmd)
}

func runScheduler(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)

	if app.Store == nil {
		return errors.ErrDatabaseError
	}

	sched := scheduler.New(app.Builder, app.Source, app.Store, app.Cache, app.Logger, app.Config.Schedule.Workers)

	once, _ := cmd.Flags().GetBool("once")
	if once {
		day, err := resolveDate(cmd)
		if err != nil {
			return err
		}
		sched.RunDailyBatch(cmd.Context(), day)
		return nil
	}

	if err := sched.Register(app.Config.Schedule.DailyCron); err != nil {
		return errors.Wrapf(err, "invalid cron spec %q", app.Config.Schedule.DailyCron)
	}

	sched.Start()
	output.Info("Scheduler running (cron %q), press Ctrl+C to stop", app.Config.Schedule.DailyCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-cmd.Context().Done():
	}

	sched.Stop()
	return nil
}
