package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nse-profiler/internal/errors"
	"nse-profiler/internal/feed"
	"nse-profiler/internal/models"
	"nse-profiler/pkg/utils"
)

// addDataCommands registers the data import/fetch commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Import and fetch market data",
	}

	importCmd := &cobra.Command{
		Use:   "import <bhavcopy.csv>",
		Short: "Import an NSE bhavcopy file",
		Long: `Import daily OHLCV rows from an NSE equity bhavcopy CSV.

Each EQ-series row becomes a single daily candle. Daily candles still
produce a profile: the row's volume spreads evenly across the bins the
day's range covers.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, app, args[0])
		},
	}
	importCmd.Flags().StringSlice("symbols", nil, "only import these symbols (default: all)")

	fetchCmd := &cobra.Command{
		Use:   "fetch <symbol>",
		Short: "Fetch and store intraday candles for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, app, args[0])
		},
	}
	fetchCmd.Flags().String("date", "", "trading date (YYYY-MM-DD, default: last trading day)")

	dataCmd.AddCommand(importCmd)
	dataCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(dataCmd)
}

func runImport(cmd *cobra.Command, app *App, path string) error {
	output := NewOutput(cmd)
	ctx := cmd.Context()

	if app.Store == nil {
		return errors.ErrDatabaseError
	}

	entries, err := feed.LoadBhavcopy(path)
	if err != nil {
		return err
	}

	only, _ := cmd.Flags().GetStringSlice("symbols")
	wanted := make(map[string]bool, len(only))
	for _, s := range only {
		wanted[strings.ToUpper(s)] = true
	}

	var imported, skipped int
	for _, entry := range entries {
		if len(wanted) > 0 && !wanted[entry.Symbol] {
			skipped++
			continue
		}
		if err := app.Store.SaveCandles(ctx, entry.Symbol, models.Timeframe1Day, []models.Candle{entry.Candle}); err != nil {
			output.Warning("%s: %v", entry.Symbol, err)
			continue
		}
		imported++
	}

	if output.IsJSON() {
		return output.JSON(map[string]int{"imported": imported, "skipped": skipped})
	}
	output.Success("Imported %d rows from %s", imported, path)
	if skipped > 0 {
		output.Dim("%d rows skipped by symbol filter", skipped)
	}
	return nil
}

func runFetch(cmd *cobra.Command, app *App, symbolArg string) error {
	output := NewOutput(cmd)
	ctx := cmd.Context()

	symbol := strings.ToUpper(symbolArg)
	day, err := resolveDate(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	candles, err := app.Source.FetchIntraday(ctx, symbol, day, utils.MarketClose(day), models.Timeframe1Min)
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return errors.Wrapf(errors.ErrDataNotFound, "no candles for %s on %s", symbol, FormatDate(day))
	}

	if app.Store != nil {
		if err := app.Store.SaveCandles(ctx, symbol, models.Timeframe1Min, candles); err != nil {
			return err
		}
	}

	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"symbol":  symbol,
			"date":    FormatDate(day),
			"candles": len(candles),
		})
	}
	output.Success("Fetched %d candles for %s (%s) in %s",
		len(candles), symbol, FormatDate(day), time.Since(start).Round(time.Millisecond))
	return nil
}
