package profile

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"nse-profiler/internal/models"
)

const floatTolerance = 1e-6

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sessionOf(date time.Time, candles ...models.Candle) models.Session {
	return models.Session{Symbol: "RELIANCE", Date: date, Candles: candles}
}

func candle(low, high float64, volume int64) models.Candle {
	return models.Candle{
		Open:   low,
		High:   high,
		Low:    low,
		Close:  high,
		Volume: volume,
	}
}

func TestCalculateThreeCandleScenario(t *testing.T) {
	builder, err := NewBuilder(Config{NumBins: 4, ValueAreaPct: 70.0})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	session := sessionOf(day(2024, 3, 1),
		candle(100, 102, 1000),
		candle(101, 103, 3000),
		candle(102, 104, 500),
	)

	p, err := builder.Calculate(session)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if p.LowPrice != 100 || p.HighPrice != 104 {
		t.Errorf("bin range = [%v, %v], want [100, 104]", p.LowPrice, p.HighPrice)
	}
	if p.TickSize != 1.0 {
		t.Errorf("tick size = %v, want 1.0", p.TickSize)
	}
	if math.Abs(p.TotalVolume-4500) > floatTolerance {
		t.Errorf("total volume = %v, want 4500", p.TotalVolume)
	}

	// A spreads 1000 over bins 0-2, B spreads 3000 over bins 1-3, C
	// spreads 500 over bins 2-3.
	want := []float64{
		1000.0 / 3,
		1000.0/3 + 1000,
		1000.0/3 + 1000 + 250,
		1000 + 250,
	}
	for i, v := range p.VolumeAtPrice {
		if math.Abs(v-want[i]) > floatTolerance {
			t.Errorf("volume_at_price[%d] = %v, want %v", i, v, want[i])
		}
	}

	// bin 2 (center 102.5) carries the most volume
	if p.VPOC != 102.5 {
		t.Errorf("vpoc = %v, want 102.5", p.VPOC)
	}
	if p.VPOC < 101 || p.VPOC > 103 {
		t.Errorf("vpoc = %v, want within [101, 103]", p.VPOC)
	}

	// expansion: bin 2, then down to bin 1 (1333 > 1250), then up to
	// bin 3, reaching 4166.67 >= 3150
	if p.VAL != 101.5 {
		t.Errorf("val = %v, want 101.5", p.VAL)
	}
	if p.VAH != 103.5 {
		t.Errorf("vah = %v, want 103.5", p.VAH)
	}
	if got := p.ValueAreaVolume(); got < 4500*0.7 {
		t.Errorf("value area volume = %v, want >= %v", got, 4500*0.7)
	}
}

func TestCalculateEmptySession(t *testing.T) {
	builder, _ := NewBuilder(DefaultConfig())

	_, err := builder.Calculate(sessionOf(day(2024, 3, 1)))
	if err != ErrNoCandles {
		t.Errorf("err = %v, want ErrNoCandles", err)
	}
}

func TestCalculateZeroVolumeDay(t *testing.T) {
	builder, _ := NewBuilder(DefaultConfig())

	session := sessionOf(day(2024, 3, 1),
		candle(100, 105, 0),
		candle(101, 104, 0),
	)

	p, err := builder.Calculate(session)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if p.TotalVolume != 0 {
		t.Errorf("total volume = %v, want 0", p.TotalVolume)
	}
	if p.VAL != p.LowPrice || p.VAH != p.HighPrice {
		t.Errorf("value area = [%v, %v], want full range [%v, %v]", p.VAL, p.VAH, p.LowPrice, p.HighPrice)
	}
	// argmax over all-zero bins lands on the lowest bin
	if p.VPOC != p.PriceLevels[0] {
		t.Errorf("vpoc = %v, want %v", p.VPOC, p.PriceLevels[0])
	}
}

func TestCalculateSingleCandleDay(t *testing.T) {
	builder, _ := NewBuilder(Config{NumBins: 10, ValueAreaPct: 70.0})

	c := candle(250, 260, 50000)
	p, err := builder.Calculate(sessionOf(day(2024, 3, 1), c))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if p.VPOC < c.Low || p.VPOC > c.High {
		t.Errorf("vpoc = %v, want within candle range [%v, %v]", p.VPOC, c.Low, c.High)
	}
	if math.Abs(p.TotalVolume-50000) > floatTolerance {
		t.Errorf("total volume = %v, want 50000", p.TotalVolume)
	}
	// uniform distribution puts no volume outside the candle's range
	for i, v := range p.VolumeAtPrice {
		if v < 0 {
			t.Errorf("volume_at_price[%d] = %v, negative", i, v)
		}
	}
}

func TestCalculateDegenerateRange(t *testing.T) {
	builder, _ := NewBuilder(DefaultConfig())

	// single tick day: every price identical
	c := models.Candle{Open: 500, High: 500, Low: 500, Close: 500, Volume: 1200}
	p, err := builder.Calculate(sessionOf(day(2024, 3, 1), c))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if p.TickSize <= 0 {
		t.Errorf("tick size = %v, want > 0 after nudge", p.TickSize)
	}
	if p.HighPrice <= p.LowPrice {
		t.Errorf("range [%v, %v] still degenerate after nudge", p.LowPrice, p.HighPrice)
	}
	if math.Abs(p.TotalVolume-1200) > floatTolerance {
		t.Errorf("total volume = %v, want 1200", p.TotalVolume)
	}
}

func TestCalculateSkipsInvalidCandles(t *testing.T) {
	builder, _ := NewBuilder(Config{NumBins: 8, ValueAreaPct: 70.0})

	session := sessionOf(day(2024, 3, 1),
		candle(100, 110, 4000),
		models.Candle{Open: 105, High: math.NaN(), Low: math.NaN(), Close: 105, Volume: 999},
		candle(102, 108, 0),
	)

	p, err := builder.Calculate(session)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if math.Abs(p.TotalVolume-4000) > floatTolerance {
		t.Errorf("total volume = %v, want 4000 (NaN and zero-volume candles skipped)", p.TotalVolume)
	}
}

func TestNewBuilderRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero bins", Config{NumBins: 0, ValueAreaPct: 70}, ErrInvalidNumBins},
		{"negative bins", Config{NumBins: -5, ValueAreaPct: 70}, ErrInvalidNumBins},
		{"zero pct", Config{NumBins: 50, ValueAreaPct: 0}, ErrInvalidValueAreaPct},
		{"pct above 100", Config{NumBins: 50, ValueAreaPct: 100.5}, ErrInvalidValueAreaPct},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewBuilder(tc.cfg); err != tc.want {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	builder, _ := NewBuilder(DefaultConfig())

	session := sessionOf(day(2024, 3, 1),
		candle(98.5, 101.25, 1500),
		candle(100, 103.4, 2750),
		candle(101.1, 102.9, 600),
	)

	first, err := builder.Calculate(session)
	if err != nil {
		t.Fatalf("first Calculate: %v", err)
	}
	second, err := builder.Calculate(session)
	if err != nil {
		t.Fatalf("second Calculate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different profiles")
	}
}

func TestCalculateBatchOrdersByDate(t *testing.T) {
	builder, _ := NewBuilder(DefaultConfig())

	sessions := []models.Session{
		sessionOf(day(2024, 3, 4), candle(100, 104, 900)),
		sessionOf(day(2024, 3, 1), candle(99, 103, 700)),
		{Symbol: "RELIANCE", Date: day(2024, 3, 5)}, // empty day
		sessionOf(day(2024, 3, 6), candle(101, 106, 1100)),
	}

	results := builder.CalculateBatch(context.Background(), sessions, 3)

	if len(results) != len(sessions) {
		t.Fatalf("got %d results, want %d", len(results), len(sessions))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Date.Before(results[i-1].Date) {
			t.Errorf("results out of order: %v before %v", results[i].Date, results[i-1].Date)
		}
	}
	for _, r := range results {
		if r.Date.Equal(day(2024, 3, 5)) {
			if r.Err != ErrNoCandles {
				t.Errorf("empty day err = %v, want ErrNoCandles", r.Err)
			}
			if r.Profile != nil {
				t.Error("empty day carried a profile")
			}
		} else {
			if r.Err != nil {
				t.Errorf("day %v failed: %v", r.Date, r.Err)
			}
			if r.Profile == nil {
				t.Errorf("day %v missing profile", r.Date)
			}
		}
	}
}

func TestValueAreaTieExpandsUpward(t *testing.T) {
	// symmetric neighbors around the VPOC: the tie goes to the upper bin
	volumes := []float64{100, 500, 1000, 500, 100}
	va := ExpandValueArea(volumes, 2, 70.0)

	// target 1540: vpoc 1000, tie at 500/500 expands up, then down
	if va.LowIdx != 1 || va.HighIdx != 3 {
		t.Errorf("value area = [%d, %d], want [1, 3]", va.LowIdx, va.HighIdx)
	}
	if math.Abs(va.Volume-2000) > floatTolerance {
		t.Errorf("value area volume = %v, want 2000", va.Volume)
	}
}

func TestValueAreaBoundaryExhaustion(t *testing.T) {
	// vpoc at the top edge: only downward expansion is possible
	volumes := []float64{100, 200, 300, 400}
	va := ExpandValueArea(volumes, 3, 95.0)

	if va.HighIdx != 3 {
		t.Errorf("high idx = %d, want 3", va.HighIdx)
	}
	if va.LowIdx != 0 {
		t.Errorf("low idx = %d, want 0 (expansion forced downward)", va.LowIdx)
	}
}

func TestValueAreaCrossesEmptyBins(t *testing.T) {
	// a zero gap between the vpoc and a far cluster must not stop the
	// expansion short of the target
	volumes := []float64{600, 0, 0, 1000, 0}
	va := ExpandValueArea(volumes, 3, 90.0)

	if va.LowIdx != 0 {
		t.Errorf("low idx = %d, want 0 (window walks through the gap)", va.LowIdx)
	}
	if math.Abs(va.Volume-1600) > floatTolerance {
		t.Errorf("value area volume = %v, want 1600", va.Volume)
	}
}
