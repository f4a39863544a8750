package profile

import (
	"math"

	"nse-profiler/internal/models"
)

// VolumeDistributor allocates each candle's volume across the bins its
// [low, high] range touches.
type VolumeDistributor struct {
	binner *PriceBinner
}

// NewVolumeDistributor creates a distributor over the given binner.
func NewVolumeDistributor(binner *PriceBinner) *VolumeDistributor {
	return &VolumeDistributor{binner: binner}
}

// Distribute accumulates all candle volumes into a fresh
// volume-at-price slice of length NumBins. The slice is owned by the
// caller; no state is shared across calls.
func (d *VolumeDistributor) Distribute(candles []models.Candle) []float64 {
	volumeAtPrice := make([]float64, d.binner.NumBins)
	for _, c := range candles {
		d.Add(volumeAtPrice, c)
	}
	return volumeAtPrice
}

// Add spreads one candle's volume evenly across every bin in its
// [low, high] range. Treating the volume as uniformly traded across the
// candle's range is a known approximation: intraday bars carry no
// time-at-price detail.
func (d *VolumeDistributor) Add(volumeAtPrice []float64, c models.Candle) {
	if c.Volume <= 0 {
		return
	}
	if math.IsNaN(c.Low) || math.IsNaN(c.High) {
		return
	}

	lowBin := d.binner.BinIndex(c.Low)
	highBin := d.binner.BinIndex(c.High)
	if lowBin > highBin {
		// candle entirely outside the binned range; clamping should
		// prevent this when the range came from the same session
		return
	}

	perBin := float64(c.Volume) / float64(highBin-lowBin+1)
	for i := lowBin; i <= highBin; i++ {
		volumeAtPrice[i] += perBin
	}
}
