// Package profile computes per-day volume-at-price profiles: price
// binning, volume distribution, VPOC and value area.
package profile

import (
	"errors"
)

var (
	// ErrNoCandles is returned when a session has no candles.
	ErrNoCandles = errors.New("no candles supplied for session")
	// ErrInvalidNumBins is returned when the bin count is not positive.
	ErrInvalidNumBins = errors.New("num bins must be positive")
	// ErrInvalidValueAreaPct is returned when the value area percent is outside (0, 100].
	ErrInvalidValueAreaPct = errors.New("value area percent must be in (0, 100]")
	// ErrInvertedRange is returned when the price high is below the price low.
	ErrInvertedRange = errors.New("price high below price low")
)

// degenerateNudge widens a zero-width day range (high == low) by a small
// relative amount so bins keep a non-zero width. A single-tick day is
// valid market data, not an error.
const degenerateNudge = 0.001

// PriceBinner converts a day's [low, high] range into evenly spaced
// price bins of width TickSize.
type PriceBinner struct {
	PriceLow  float64
	PriceHigh float64
	NumBins   int
	TickSize  float64
}

// NewPriceBinner creates a binner over [priceLow, priceHigh] with
// numBins bins. A degenerate range is nudged upward before binning.
func NewPriceBinner(priceLow, priceHigh float64, numBins int) (*PriceBinner, error) {
	if numBins <= 0 {
		return nil, ErrInvalidNumBins
	}
	if priceHigh < priceLow {
		return nil, ErrInvertedRange
	}
	if priceHigh == priceLow {
		priceHigh = priceLow + abs(priceLow)*degenerateNudge
		if priceHigh == priceLow {
			// priceLow == 0: relative nudge collapses, use an absolute one
			priceHigh = priceLow + degenerateNudge
		}
	}

	return &PriceBinner{
		PriceLow:  priceLow,
		PriceHigh: priceHigh,
		NumBins:   numBins,
		TickSize:  (priceHigh - priceLow) / float64(numBins),
	}, nil
}

// Edges returns the NumBins+1 bin edges, from PriceLow to PriceHigh.
func (b *PriceBinner) Edges() []float64 {
	edges := make([]float64, b.NumBins+1)
	for i := 0; i <= b.NumBins; i++ {
		edges[i] = b.PriceLow + float64(i)*b.TickSize
	}
	return edges
}

// Centers returns the NumBins bin-center prices, strictly increasing
// and evenly spaced by TickSize.
func (b *PriceBinner) Centers() []float64 {
	centers := make([]float64, b.NumBins)
	for i := 0; i < b.NumBins; i++ {
		centers[i] = b.PriceLow + float64(i)*b.TickSize + b.TickSize/2
	}
	return centers
}

// BinIndex returns the bin containing price, clamped into
// [0, NumBins-1] so out-of-range prices land in the edge bins.
func (b *PriceBinner) BinIndex(price float64) int {
	idx := int((price - b.PriceLow) / b.TickSize)
	if idx < 0 {
		return 0
	}
	if idx >= b.NumBins {
		return b.NumBins - 1
	}
	return idx
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
