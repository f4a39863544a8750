// Package scheduler runs the daily profile batch after market close.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"nse-profiler/internal/cache"
	"nse-profiler/internal/feed"
	"nse-profiler/internal/logging"
	"nse-profiler/internal/models"
	"nse-profiler/internal/profile"
	"nse-profiler/internal/store"
	"nse-profiler/pkg/utils"
)

// Scheduler manages the cron-driven daily batch: fetch intraday candles
// for every watched symbol, compute the day's profile, persist and
// cache it.
type Scheduler struct {
	cron    *cron.Cron
	builder *profile.Builder
	source  feed.Source
	store   store.DataStore
	cache   *cache.ProfileCache // nil when caching is disabled
	logger  zerolog.Logger
	workers int
}

// New creates a Scheduler. cache may be nil.
func New(builder *profile.Builder, source feed.Source, dataStore store.DataStore, profileCache *cache.ProfileCache, logger zerolog.Logger, workers int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		builder: builder,
		source:  source,
		store:   dataStore,
		cache:   profileCache,
		logger:  logger,
		workers: workers,
	}
}

// Register schedules the daily batch with the given cron spec
// (e.g. "45 15 * * 1-5" for 15:45 IST on weekdays).
func (s *Scheduler) Register(dailySpec string) error {
	_, err := s.cron.AddFunc(dailySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		s.RunDailyBatch(ctx, time.Now())
	})
	return err
}

// Start begins cron processing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop stops cron processing and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunDailyBatch computes and persists profiles for every watched symbol
// for the trading day containing now. Failures on one symbol do not
// stop the rest.
func (s *Scheduler) RunDailyBatch(ctx context.Context, now time.Time) {
	logger := logging.WithOperation(s.logger, "daily_batch")

	day := utils.TradingDate(now)
	if !utils.IsTradingDay(day) {
		logger.Debug().Msg("Not a trading day, skipping batch")
		return
	}

	symbols, err := s.store.GetWatchlist(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load watchlist")
		return
	}
	if len(symbols) == 0 {
		logger.Info().Msg("Watchlist empty, nothing to do")
		return
	}

	sessions := s.collectSessions(ctx, logger, symbols, day)
	results := s.builder.CalculateBatch(ctx, sessions, s.workers)

	var saved, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Warn().Err(r.Err).Str("symbol", r.Symbol).Msg("Profile calculation failed")
			continue
		}
		if err := s.persist(ctx, r.Profile); err != nil {
			failed++
			logger.Error().Err(err).Str("symbol", r.Symbol).Msg("Profile persistence failed")
			continue
		}
		saved++
		logging.LogProfile(logger, r.Symbol, r.Date, r.Profile.VPOC, r.Profile.VAH, r.Profile.VAL, r.Profile.TotalVolume)
	}

	logger.Info().
		Str("date", day.Format("2006-01-02")).
		Int("symbols", len(symbols)).
		Int("saved", saved).
		Int("failed", failed).
		Msg("Daily batch complete")
}

// collectSessions fetches each symbol's intraday candles for the day
// and groups them into sessions. Symbols with no data are skipped with
// a warning rather than producing an empty session.
func (s *Scheduler) collectSessions(ctx context.Context, logger zerolog.Logger, symbols []string, day time.Time) []models.Session {
	sessions := make([]models.Session, 0, len(symbols))
	for _, symbol := range symbols {
		start := time.Now()
		candles, err := s.source.FetchIntraday(ctx, symbol, day, utils.MarketClose(day), models.Timeframe1Min)
		logging.LogFetch(logger, s.source.Name(), symbol, len(candles), time.Since(start), err)
		if err != nil {
			continue
		}

		if err := s.store.SaveCandles(ctx, symbol, models.Timeframe1Min, candles); err != nil {
			logger.Warn().Err(err).Str("symbol", symbol).Msg("Candle persistence failed")
		}

		for _, session := range feed.GroupByDate(symbol, candles) {
			if session.Date.Equal(day) {
				sessions = append(sessions, session)
			}
		}
	}
	return sessions
}

func (s *Scheduler) persist(ctx context.Context, p *models.VolumeProfile) error {
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, p); err != nil {
			// cache is best effort, the store already has the profile
			s.logger.Debug().Err(err).Str("symbol", p.Symbol).Msg("Cache write failed")
		}
	}
	return nil
}
