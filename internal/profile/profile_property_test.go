package profile

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"nse-profiler/internal/models"
)

// Properties validated here:
// - Volume conservation: binning reallocates volume, never creates or
//   destroys it.
// - Boundedness: low <= VAL <= VPOC <= VAH <= high for every input.
// - Value area floor: the window holds the target share of volume
//   unless it already spans the whole range.
// - Idempotence: no hidden randomness or time dependence.

// intradayCandleGen generates valid intraday candles with realistic
// OHLCV values.
func intradayCandleGen() gopter.Gen {
	return gen.Struct(reflect.TypeOf(models.Candle{}), map[string]gopter.Gen{
		"Timestamp": gen.TimeRange(time.Now().Add(-365*24*time.Hour), time.Hour),
		"Open":      gen.Float64Range(100.0, 1000.0),
		"High":      gen.Float64Range(100.0, 1000.0),
		"Low":       gen.Float64Range(100.0, 1000.0),
		"Close":     gen.Float64Range(100.0, 1000.0),
		"Volume":    gen.Int64Range(0, 10000000),
	}).Map(func(c models.Candle) models.Candle {
		// Ensure OHLC constraints: High >= max(Open, Close) and Low <= min(Open, Close)
		c.High = math.Max(c.High, math.Max(c.Open, c.Close))
		c.Low = math.Min(c.Low, math.Min(c.Open, c.Close))
		if c.Low > c.High {
			c.Low, c.High = c.High, c.Low
		}
		return c
	})
}

// sessionGen generates a one-day session with minLen..maxLen candles.
func sessionGen(minLen, maxLen int) gopter.Gen {
	return gen.SliceOfN(maxLen, intradayCandleGen()).Map(func(candles []models.Candle) models.Session {
		if len(candles) < minLen {
			for len(candles) < minLen {
				candles = append(candles, candles[len(candles)-1])
			}
		}
		date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		for i := range candles {
			candles[i].Timestamp = date.Add(time.Duration(i) * time.Minute)
		}
		return models.Session{Symbol: "TEST", Date: date, Candles: candles}
	})
}

func TestProperty_VolumeConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("sum of binned volume equals sum of candle volume", prop.ForAll(
		func(session models.Session) bool {
			builder, err := NewBuilder(DefaultConfig())
			if err != nil {
				return false
			}
			p, err := builder.Calculate(session)
			if err != nil {
				return false
			}

			var candleTotal float64
			for _, c := range session.Candles {
				if c.Volume > 0 {
					candleTotal += float64(c.Volume)
				}
			}
			var binTotal float64
			for _, v := range p.VolumeAtPrice {
				binTotal += v
			}

			// float division and re-summation accumulates rounding; the
			// tolerance is relative to the day's volume
			tolerance := math.Max(1e-6, candleTotal*1e-9)
			return math.Abs(binTotal-candleTotal) <= tolerance &&
				math.Abs(p.TotalVolume-candleTotal) <= tolerance
		},
		sessionGen(1, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_ValueAreaContainment(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("low <= VAL <= VPOC <= VAH <= high", prop.ForAll(
		func(session models.Session) bool {
			builder, err := NewBuilder(DefaultConfig())
			if err != nil {
				return false
			}
			p, err := builder.Calculate(session)
			if err != nil {
				return false
			}

			return p.LowPrice <= p.VAL &&
				p.VAL <= p.VPOC &&
				p.VPOC <= p.VAH &&
				p.VAH <= p.HighPrice
		},
		sessionGen(1, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_ValueAreaVolumeFloor(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("value area holds >= target volume unless it spans the whole range", prop.ForAll(
		func(session models.Session) bool {
			cfg := DefaultConfig()
			builder, err := NewBuilder(cfg)
			if err != nil {
				return false
			}
			p, err := builder.Calculate(session)
			if err != nil {
				return false
			}
			if p.TotalVolume == 0 {
				// degenerate day: value area spans the full range
				return p.VAL == p.LowPrice && p.VAH == p.HighPrice
			}

			target := p.TotalVolume * cfg.ValueAreaPct / 100
			spansAll := p.VAL <= p.PriceLevels[0] && p.VAH >= p.PriceLevels[len(p.PriceLevels)-1]
			return spansAll || p.ValueAreaVolume() >= target-1e-6
		},
		sessionGen(1, 100),
	))

	properties.TestingRun(t)
}

func TestProperty_PriceLevelsStrictlyIncreasing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("price levels are strictly increasing and evenly spaced", prop.ForAll(
		func(session models.Session) bool {
			builder, err := NewBuilder(DefaultConfig())
			if err != nil {
				return false
			}
			p, err := builder.Calculate(session)
			if err != nil {
				return false
			}

			for i := 1; i < len(p.PriceLevels); i++ {
				step := p.PriceLevels[i] - p.PriceLevels[i-1]
				if step <= 0 {
					return false
				}
				if math.Abs(step-p.TickSize) > p.TickSize*1e-6 {
					return false
				}
			}
			return len(p.PriceLevels) == p.NumBins &&
				len(p.VolumeAtPrice) == p.NumBins
		},
		sessionGen(1, 60),
	))

	properties.TestingRun(t)
}

func TestProperty_CalculateIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("identical input yields identical profiles", prop.ForAll(
		func(session models.Session) bool {
			builder, err := NewBuilder(DefaultConfig())
			if err != nil {
				return false
			}
			first, err1 := builder.Calculate(session)
			second, err2 := builder.Calculate(session)
			if err1 != nil || err2 != nil {
				return err1 == err2
			}
			return reflect.DeepEqual(first, second)
		},
		sessionGen(1, 60),
	))

	properties.TestingRun(t)
}
