// Package feed supplies OHLCV candles from external sources and groups
// them into per-day trading sessions.
package feed

import (
	"context"
	"sort"
	"time"

	"nse-profiler/internal/models"
	"nse-profiler/pkg/utils"
)

// Source fetches intraday candles for a symbol.
type Source interface {
	Name() string
	FetchIntraday(ctx context.Context, symbol string, from, to time.Time, timeframe models.Timeframe) ([]models.Candle, error)
}

// GroupByDate splits candles into per-day sessions on IST calendar
// dates. Candles inside each session keep ascending timestamp order;
// sessions come back ordered by date. Days with no candles simply do
// not appear, so callers never feed an empty session downstream.
func GroupByDate(symbol string, candles []models.Candle) []models.Session {
	if len(candles) == 0 {
		return nil
	}

	sorted := make([]models.Candle, len(candles))
	copy(sorted, candles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sessions []models.Session
	var current *models.Session
	for _, c := range sorted {
		date := utils.TradingDate(c.Timestamp)
		if current == nil || !current.Date.Equal(date) {
			sessions = append(sessions, models.Session{Symbol: symbol, Date: date})
			current = &sessions[len(sessions)-1]
		}
		current.Candles = append(current.Candles, c)
	}

	return sessions
}
