// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nse-profiler/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Candles table for historical OHLCV data
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, timeframe, timestamp)
	);

	CREATE INDEX IF NOT EXISTS idx_candles_lookup
		ON candles(symbol, timeframe, timestamp);

	-- Per-day volume profile summaries
	CREATE TABLE IF NOT EXISTS volume_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATE NOT NULL,
		vpoc REAL NOT NULL,
		vah REAL NOT NULL,
		val REAL NOT NULL,
		total_volume REAL NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		tick_size REAL NOT NULL,
		num_bins INTEGER NOT NULL,
		price_levels TEXT NOT NULL,
		volume_at_price TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_symbol_date
		ON volume_profiles(symbol, date);

	-- Watchlist for the scheduled batch run
	CREATE TABLE IF NOT EXISTS watchlist (
		symbol TEXT PRIMARY KEY,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveCandles upserts a batch of candles inside one transaction.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, timeframe models.Timeframe, candles []models.Candle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candles (symbol, timeframe, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, timeframe, timestamp) DO UPDATE SET
			open = excluded.open, high = excluded.high,
			low = excluded.low, close = excluded.close,
			volume = excluded.volume`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, symbol, string(timeframe), c.Timestamp.UTC(),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return fmt.Errorf("insert candle: %w", err)
		}
	}

	return tx.Commit()
}

// GetCandles returns candles for a symbol in [from, to], ordered by timestamp.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, timeframe models.Timeframe, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timeframe = ? AND timestamp BETWEEN ? AND ?
		ORDER BY timestamp`, symbol, string(timeframe), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		candles = append(candles, c)
	}

	return candles, rows.Err()
}

// SaveProfile upserts one day's profile summary.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *models.VolumeProfile) error {
	levels, err := json.Marshal(p.PriceLevels)
	if err != nil {
		return fmt.Errorf("marshal price levels: %w", err)
	}
	volumes, err := json.Marshal(p.VolumeAtPrice)
	if err != nil {
		return fmt.Errorf("marshal volumes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO volume_profiles
			(symbol, date, vpoc, vah, val, total_volume,
			 open, high, low, close, tick_size, num_bins,
			 price_levels, volume_at_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			vpoc = excluded.vpoc, vah = excluded.vah, val = excluded.val,
			total_volume = excluded.total_volume,
			open = excluded.open, high = excluded.high,
			low = excluded.low, close = excluded.close,
			tick_size = excluded.tick_size, num_bins = excluded.num_bins,
			price_levels = excluded.price_levels,
			volume_at_price = excluded.volume_at_price`,
		p.Symbol, p.Date.Format("2006-01-02"), p.VPOC, p.VAH, p.VAL, p.TotalVolume,
		p.OpenPrice, p.HighPrice, p.LowPrice, p.ClosePrice, p.TickSize, p.NumBins,
		string(levels), string(volumes))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return nil
}

// GetProfile returns the stored profile for one symbol-date, or
// sql.ErrNoRows if none exists.
func (s *SQLiteStore) GetProfile(ctx context.Context, symbol string, date time.Time) (*models.VolumeProfile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT symbol, date, vpoc, vah, val, total_volume,
		       open, high, low, close, tick_size, num_bins,
		       price_levels, volume_at_price
		FROM volume_profiles
		WHERE symbol = ? AND date = ?`, symbol, date.Format("2006-01-02"))

	return scanProfile(row)
}

// GetProfileHistory returns stored profiles for a symbol in [from, to],
// ordered by date.
func (s *SQLiteStore) GetProfileHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.VolumeProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, date, vpoc, vah, val, total_volume,
		       open, high, low, close, tick_size, num_bins,
		       price_levels, volume_at_price
		FROM volume_profiles
		WHERE symbol = ? AND date BETWEEN ? AND ?
		ORDER BY date`, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.VolumeProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}

	return profiles, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row scanner) (*models.VolumeProfile, error) {
	var p models.VolumeProfile
	var dateStr, levels, volumes string

	if err := row.Scan(&p.Symbol, &dateStr, &p.VPOC, &p.VAH, &p.VAL, &p.TotalVolume,
		&p.OpenPrice, &p.HighPrice, &p.LowPrice, &p.ClosePrice, &p.TickSize, &p.NumBins,
		&levels, &volumes); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse profile date: %w", err)
	}
	p.Date = date

	if err := json.Unmarshal([]byte(levels), &p.PriceLevels); err != nil {
		return nil, fmt.Errorf("unmarshal price levels: %w", err)
	}
	if err := json.Unmarshal([]byte(volumes), &p.VolumeAtPrice); err != nil {
		return nil, fmt.Errorf("unmarshal volumes: %w", err)
	}

	return &p, nil
}

// AddToWatchlist adds a symbol to the watchlist.
func (s *SQLiteStore) AddToWatchlist(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlist (symbol) VALUES (?)`, symbol)
	return err
}

// RemoveFromWatchlist removes a symbol from the watchlist.
func (s *SQLiteStore) RemoveFromWatchlist(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE symbol = ?`, symbol)
	return err
}

// GetWatchlist returns all watched symbols in insertion order.
func (s *SQLiteStore) GetWatchlist(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol FROM watchlist ORDER BY added_at, symbol`)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
