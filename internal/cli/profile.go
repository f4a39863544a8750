package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nse-profiler/internal/errors"
	"nse-profiler/internal/feed"
	"nse-profiler/internal/models"
	"nse-profiler/internal/profile"
	"nse-profiler/pkg/utils"
)

const histogramWidth = 40

// addProfileCommands registers profile, history and watch commands.
func addProfileCommands(rootCmd *cobra.Command, app *App) {
	profileCmd := &cobra.Command{
		Use:   "profile <symbol>",
		Short: "Compute a volume profile for a symbol",
		Long: `Compute the volume-at-price profile for one trading day.

Candles come from the local store when available, otherwise they are
fetched from the configured source and persisted. The rendered profile
marks the VPOC row and the value area.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd, app, args[0])
		},
	}
	profileCmd.Flags().String("date", "", "trading date (YYYY-MM-DD, default: last trading day)")
	profileCmd.Flags().Int("bins", 0, "override number of price bins")
	profileCmd.Flags().Float64("value-area", 0, "override value area percentage")
	profileCmd.Flags().Bool("refresh", false, "ignore cached profile and recompute")

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Compute profiles for every watchlist symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileBatch(cmd, app)
		},
	}
	batchCmd.Flags().String("date", "", "trading date (YYYY-MM-DD, default: last trading day)")
	profileCmd.AddCommand(batchCmd)

	historyCmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Show stored profile history for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, app, args[0])
		},
	}
	historyCmd.Flags().Int("days", 30, "number of calendar days to look back")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the batch watchlist",
	}
	watchCmd.AddCommand(&cobra.Command{
		Use:   "add <symbol>",
		Short: "Add a symbol to the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}
			symbol := strings.ToUpper(args[0])
			if err := app.Store.AddToWatchlist(cmd.Context(), symbol); err != nil {
				return err
			}
			output.Success("Added %s to watchlist", symbol)
			return nil
		},
	})
	watchCmd.AddCommand(&cobra.Command{
		Use:   "remove <symbol>",
		Short: "Remove a symbol from the watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}
			symbol := strings.ToUpper(args[0])
			if err := app.Store.RemoveFromWatchlist(cmd.Context(), symbol); err != nil {
				return err
			}
			output.Success("Removed %s from watchlist", symbol)
			return nil
		},
	})
	watchCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List watchlist symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return errors.ErrDatabaseError
			}
			symbols, err := app.Store.GetWatchlist(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(symbols)
			}
			if len(symbols) == 0 {
				output.Dim("Watchlist is empty")
				return nil
			}
			for _, s := range symbols {
				output.Println(s)
			}
			return nil
		},
	})

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
}

func runProfile(cmd *cobra.Command, app *App, symbolArg string) error {
	output := NewOutput(cmd)
	ctx := cmd.Context()

	symbol := strings.ToUpper(symbolArg)
	day, err := resolveDate(cmd)
	if err != nil {
		return err
	}

	builder := app.Builder
	bins, _ := cmd.Flags().GetInt("bins")
	valueArea, _ := cmd.Flags().GetFloat64("value-area")
	overridden := bins > 0 || valueArea > 0
	if overridden {
		cfg := profile.Config{
			NumBins:      app.Config.Profile.NumBins,
			ValueAreaPct: app.Config.Profile.ValueAreaPct,
		}
		if bins > 0 {
			cfg.NumBins = bins
		}
		if valueArea > 0 {
			cfg.ValueAreaPct = valueArea
		}
		builder, err = profile.NewBuilder(cfg)
		if err != nil {
			return err
		}
	}

	refresh, _ := cmd.Flags().GetBool("refresh")
	if !refresh && !overridden && app.Cache != nil {
		if cached, err := app.Cache.Get(ctx, symbol, day); err == nil {
			app.Logger.Debug().Str("symbol", symbol).Msg("Profile served from cache")
			return renderProfile(output, cached)
		}
	}

	candles, err := loadCandles(ctx, app, symbol, day)
	if err != nil {
		return err
	}

	session := sessionForDay(symbol, day, candles)
	if len(session.Candles) == 0 {
		return errors.Wrapf(errors.ErrDataNotFound, "no candles for %s on %s", symbol, FormatDate(day))
	}

	result, err := builder.Calculate(session)
	if err != nil {
		return err
	}

	if app.Store != nil && !overridden {
		if err := app.Store.SaveProfile(ctx, result); err != nil {
			app.Logger.Warn().Err(err).Str("symbol", symbol).Msg("Profile persistence failed")
		}
	}
	if app.Cache != nil && !overridden {
		if err := app.Cache.Put(ctx, result); err != nil {
			app.Logger.Debug().Err(err).Str("symbol", symbol).Msg("Cache write failed")
		}
	}

	return renderProfile(output, result)
}

func runProfileBatch(cmd *cobra.Command, app *App) error {
	output := NewOutput(cmd)
	ctx := cmd.Context()

	if app.Store == nil {
		return errors.ErrDatabaseError
	}

	day, err := resolveDate(cmd)
	if err != nil {
		return err
	}

	symbols, err := app.Store.GetWatchlist(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		output.Warning("Watchlist is empty, add symbols with 'profiler watch add'")
		return nil
	}

	var sessions []models.Session
	for _, symbol := range symbols {
		candles, err := loadCandles(ctx, app, symbol, day)
		if err != nil {
			output.Warning("%s: %v", symbol, err)
			continue
		}
		session := sessionForDay(symbol, day, candles)
		if len(session.Candles) == 0 {
			output.Warning("%s: no candles on %s", symbol, FormatDate(day))
			continue
		}
		sessions = append(sessions, session)
	}

	results := app.Builder.CalculateBatch(ctx, sessions, app.Config.Schedule.Workers)

	if output.IsJSON() {
		return output.JSON(results)
	}

	table := NewTable(output, "SYMBOL", "DATE", "VPOC", "VAH", "VAL", "VOLUME")
	for _, r := range results {
		if r.Err != nil {
			output.Warning("%s: %v", r.Symbol, r.Err)
			continue
		}
		if app.Store != nil {
			if err := app.Store.SaveProfile(ctx, r.Profile); err != nil {
				app.Logger.Warn().Err(err).Str("symbol", r.Symbol).Msg("Profile persistence failed")
			}
		}
		table.AddRow(
			r.Symbol,
			FormatDate(r.Date),
			FormatPrice(r.Profile.VPOC),
			FormatPrice(r.Profile.VAH),
			FormatPrice(r.Profile.VAL),
			FormatVolume(r.Profile.TotalVolume),
		)
	}
	table.Render()
	return nil
}

func runHistory(cmd *cobra.Command, app *App, symbolArg string) error {
	output := NewOutput(cmd)
	ctx := cmd.Context()

	if app.Store == nil {
		return errors.ErrDatabaseError
	}

	symbol := strings.ToUpper(symbolArg)
	days, _ := cmd.Flags().GetInt("days")
	to := utils.TradingDate(time.Now())
	from := to.AddDate(0, 0, -days)

	history, err := app.Store.GetProfileHistory(ctx, symbol, from, to)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(history)
	}
	if len(history) == 0 {
		output.Dim("No stored profiles for %s in the last %d days", symbol, days)
		return nil
	}

	output.Bold("%s profile history", symbol)
	table := NewTable(output, "DATE", "VPOC", "VAH", "VAL", "CLOSE", "VOLUME")
	for _, p := range history {
		table.AddRow(
			FormatDate(p.Date),
			FormatPrice(p.VPOC),
			FormatPrice(p.VAH),
			FormatPrice(p.VAL),
			FormatPrice(p.ClosePrice),
			FormatVolume(p.TotalVolume),
		)
	}
	table.Render()
	return nil
}

// loadCandles returns the day's intraday candles, preferring the local
// store and falling back to the configured source.
func loadCandles(ctx context.Context, app *App, symbol string, day time.Time) ([]models.Candle, error) {
	marketClose := utils.MarketClose(day)

	if app.Store != nil {
		candles, err := app.Store.GetCandles(ctx, symbol, models.Timeframe1Min, day, marketClose)
		if err == nil && len(candles) > 0 {
			return candles, nil
		}
	}

	candles, err := app.Source.FetchIntraday(ctx, symbol, day, marketClose, models.Timeframe1Min)
	if err != nil {
		return nil, err
	}
	if app.Store != nil && len(candles) > 0 {
		if err := app.Store.SaveCandles(ctx, symbol, models.Timeframe1Min, candles); err != nil {
			app.Logger.Warn().Err(err).Str("symbol", symbol).Msg("Candle persistence failed")
		}
	}
	return candles, nil
}

func sessionForDay(symbol string, day time.Time, candles []models.Candle) models.Session {
	for _, session := range feed.GroupByDate(symbol, candles) {
		if session.Date.Equal(day) {
			return session
		}
	}
	return models.Session{Symbol: symbol, Date: day}
}

func resolveDate(cmd *cobra.Command) (time.Time, error) {
	dateStr, _ := cmd.Flags().GetString("date")
	if dateStr == "" {
		now := time.Now().In(utils.IndiaLocation)
		day := utils.TradingDate(now)
		if !utils.IsTradingDay(day) || now.Before(utils.MarketClose(day)) {
			day = utils.PreviousTradingDay(now)
		}
		return day, nil
	}
	day, err := time.ParseInLocation("2006-01-02", dateStr, utils.IndiaLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	return day, nil
}

// renderProfile prints the profile as a horizontal histogram, top bin
// first, with VPOC and value area rows marked.
func renderProfile(output *Output, p *models.VolumeProfile) error {
	if output.IsJSON() {
		return output.JSON(p)
	}

	output.Bold("%s  %s", p.Symbol, FormatDate(p.Date))
	output.Printf("O %s  H %s  L %s  C %s  Vol %s\n",
		FormatPrice(p.OpenPrice), FormatPrice(p.HighPrice),
		FormatPrice(p.LowPrice), FormatPrice(p.ClosePrice),
		FormatVolume(p.TotalVolume))
	output.Println()
	output.Printf("VPOC %s   VAH %s   VAL %s\n",
		output.BoldText(FormatPrice(p.VPOC)),
		output.Yellow(FormatPrice(p.VAH)),
		output.Yellow(FormatPrice(p.VAL)))
	output.Println()

	var maxVolume float64
	for _, v := range p.VolumeAtPrice {
		if v > maxVolume {
			maxVolume = v
		}
	}

	for i := len(p.PriceLevels) - 1; i >= 0; i-- {
		level := p.PriceLevels[i]
		bar := volumeBar(p.VolumeAtPrice[i], maxVolume, histogramWidth)

		marker := " "
		switch {
		case level == p.VPOC:
			marker = output.Red("◀ VPOC")
		case level >= p.VAL && level <= p.VAH:
			marker = output.DimText("· VA")
		}

		output.Printf("%9s │%s│ %10s %s\n",
			FormatPrice(level), bar, FormatVolume(p.VolumeAtPrice[i]), marker)
	}

	return nil
}
