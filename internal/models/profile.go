package models

import (
	"time"
)

// VolumeProfile holds the volume-at-price distribution for one trading day.
// PriceLevels are bin centers, strictly increasing and evenly spaced by
// TickSize. VolumeAtPrice runs parallel to PriceLevels. Instances are
// immutable after construction.
type VolumeProfile struct {
	Symbol        string    `json:"symbol"`
	Date          time.Time `json:"date"`
	PriceLevels   []float64 `json:"price_levels"`
	VolumeAtPrice []float64 `json:"volume_at_price"`
	VPOC          float64   `json:"vpoc"`
	VAH           float64   `json:"vah"`
	VAL           float64   `json:"val"`
	TotalVolume   float64   `json:"total_volume"`
	OpenPrice     float64   `json:"open_price"`
	HighPrice     float64   `json:"high_price"`
	LowPrice      float64   `json:"low_price"`
	ClosePrice    float64   `json:"close_price"`
	TickSize      float64   `json:"tick_size"`
	NumBins       int       `json:"num_bins"`
}

// ValueAreaVolume returns the volume accumulated in bins whose centers
// fall within [VAL, VAH].
func (p *VolumeProfile) ValueAreaVolume() float64 {
	var total float64
	for i, level := range p.PriceLevels {
		if level >= p.VAL && level <= p.VAH {
			total += p.VolumeAtPrice[i]
		}
	}
	return total
}
