// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"nse-profiler/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol string, timeframe models.Timeframe, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, from, to time.Time) ([]models.Candle, error)

	// Volume profile summaries (VPOC/VAH/VAL history per symbol)
	SaveProfile(ctx context.Context, profile *models.VolumeProfile) error
	GetProfile(ctx context.Context, symbol string, date time.Time) (*models.VolumeProfile, error)
	GetProfileHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.VolumeProfile, error)

	// Watchlist for the scheduled batch run
	AddToWatchlist(ctx context.Context, symbol string) error
	RemoveFromWatchlist(ctx context.Context, symbol string) error
	GetWatchlist(ctx context.Context) ([]string, error)

	// Lifecycle
	Close() error
}
