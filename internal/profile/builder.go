package profile

import (
	"nse-profiler/internal/models"
)

// Config holds profile calculation settings.
type Config struct {
	NumBins      int
	ValueAreaPct float64
}

// DefaultConfig returns the default profile configuration.
func DefaultConfig() Config {
	return Config{
		NumBins:      50,
		ValueAreaPct: 70.0,
	}
}

// Validate checks configuration bounds. Out-of-range values fail
// immediately, they are never clamped.
func (c Config) Validate() error {
	if c.NumBins <= 0 {
		return ErrInvalidNumBins
	}
	if c.ValueAreaPct <= 0 || c.ValueAreaPct > 100 {
		return ErrInvalidValueAreaPct
	}
	return nil
}

// Builder orchestrates binning, distribution, VPOC and value area for
// one trading session. A Builder is safe for concurrent use: every
// Calculate call works on a fresh accumulator.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder, validating the configuration up front.
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// Config returns the builder's configuration.
func (b *Builder) Config() Config {
	return b.cfg
}

// Calculate computes the volume profile for one session. The session
// must hold at least one candle; callers pre-group candles by trading
// date. The function is pure given its inputs.
func (b *Builder) Calculate(session models.Session) (*models.VolumeProfile, error) {
	candles := session.Candles
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}

	dayOpen := candles[0].Open
	dayClose := candles[len(candles)-1].Close
	dayHigh := candles[0].High
	dayLow := candles[0].Low
	for _, c := range candles[1:] {
		if c.High > dayHigh {
			dayHigh = c.High
		}
		if c.Low < dayLow {
			dayLow = c.Low
		}
	}

	binner, err := NewPriceBinner(dayLow, dayHigh, b.cfg.NumBins)
	if err != nil {
		return nil, err
	}

	volumeAtPrice := NewVolumeDistributor(binner).Distribute(candles)

	var totalVolume float64
	for _, vol := range volumeAtPrice {
		totalVolume += vol
	}

	centers := binner.Centers()
	vpocIdx := VPOCIndex(volumeAtPrice)

	var vah, val float64
	if totalVolume == 0 {
		// no traded volume: the value area degenerates to the full
		// (possibly nudged) range
		val = binner.PriceLow
		vah = binner.PriceHigh
	} else {
		va := ExpandValueArea(volumeAtPrice, vpocIdx, b.cfg.ValueAreaPct)
		val = centers[va.LowIdx]
		vah = centers[va.HighIdx]
	}

	return &models.VolumeProfile{
		Symbol:        session.Symbol,
		Date:          session.Date,
		PriceLevels:   centers,
		VolumeAtPrice: volumeAtPrice,
		VPOC:          centers[vpocIdx],
		VAH:           vah,
		VAL:           val,
		TotalVolume:   totalVolume,
		OpenPrice:     dayOpen,
		HighPrice:     binner.PriceHigh,
		LowPrice:      binner.PriceLow,
		ClosePrice:    dayClose,
		TickSize:      binner.TickSize,
		NumBins:       b.cfg.NumBins,
	}, nil
}
