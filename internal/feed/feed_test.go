package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nse-profiler/internal/models"
	"nse-profiler/pkg/utils"
)

func TestGroupByDate(t *testing.T) {
	ist := utils.IndiaLocation
	candles := []models.Candle{
		{Timestamp: time.Date(2024, 3, 4, 9, 30, 0, 0, ist), Close: 101, Volume: 10},
		{Timestamp: time.Date(2024, 3, 1, 9, 15, 0, 0, ist), Close: 100, Volume: 5},
		{Timestamp: time.Date(2024, 3, 1, 15, 29, 0, 0, ist), Close: 102, Volume: 7},
		{Timestamp: time.Date(2024, 3, 4, 9, 15, 0, 0, ist), Close: 99, Volume: 3},
	}

	sessions := GroupByDate("INFY", candles)

	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if !sessions[0].Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, ist)) {
		t.Errorf("first session date = %v, want 2024-03-01", sessions[0].Date)
	}
	if len(sessions[0].Candles) != 2 || len(sessions[1].Candles) != 2 {
		t.Errorf("session sizes = %d, %d, want 2, 2", len(sessions[0].Candles), len(sessions[1].Candles))
	}
	// candles inside a session stay in ascending timestamp order
	if sessions[1].Candles[0].Close != 99 {
		t.Errorf("first candle of second session close = %v, want 99", sessions[1].Candles[0].Close)
	}
	for _, s := range sessions {
		if s.Symbol != "INFY" {
			t.Errorf("session symbol = %q, want INFY", s.Symbol)
		}
	}
}

func TestGroupByDateEmpty(t *testing.T) {
	if sessions := GroupByDate("INFY", nil); sessions != nil {
		t.Errorf("got %v, want nil", sessions)
	}
}

func TestLoadBhavcopy(t *testing.T) {
	csv := `SYMBOL,SERIES,OPEN,HIGH,LOW,CLOSE,LAST,PREVCLOSE,TOTTRDQTY,TOTTRDVAL,TIMESTAMP,TOTALTRADES,ISIN
RELIANCE,EQ,2900.00,2950.50,2890.10,2940.25,2940.00,2895.00,5214300,15300000000.00,01-MAR-2024,125000,INE002A01018
RELIANCE,BE,2900.00,2950.50,2890.10,2940.25,2940.00,2895.00,100,290000.00,01-MAR-2024,10,INE002A01018
INFY,EQ,1650.00,1672.40,1644.80,1668.90,1669.00,1648.00,3120400,5180000000.00,01-MAR-2024,98000,INE009A01021
`
	path := filepath.Join(t.TempDir(), "cm01MAR2024bhav.csv")
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadBhavcopy(path)
	if err != nil {
		t.Fatalf("LoadBhavcopy: %v", err)
	}

	// the BE-series row is filtered out
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	rel := entries[0]
	if rel.Symbol != "RELIANCE" {
		t.Errorf("symbol = %q, want RELIANCE", rel.Symbol)
	}
	if rel.Candle.High != 2950.50 || rel.Candle.Low != 2890.10 {
		t.Errorf("high/low = %v/%v, want 2950.50/2890.10", rel.Candle.High, rel.Candle.Low)
	}
	if rel.Candle.Volume != 5214300 {
		t.Errorf("volume = %d, want 5214300", rel.Candle.Volume)
	}

	wantDate := time.Date(2024, 3, 1, 0, 0, 0, 0, utils.IndiaLocation)
	if !rel.Candle.Timestamp.Equal(wantDate) {
		t.Errorf("timestamp = %v, want %v", rel.Candle.Timestamp, wantDate)
	}
}

func TestLoadBhavcopyMissingFile(t *testing.T) {
	if _, err := LoadBhavcopy("/nonexistent/bhav.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalizeBhavDate(t *testing.T) {
	cases := map[string]string{
		"01-MAR-2024": "01-Mar-2024",
		"15-jan-2023": "15-Jan-2023",
		" 01-MAR-2024 ": "01-Mar-2024",
		"garbage":     "garbage",
	}
	for in, want := range cases {
		if got := normalizeBhavDate(in); got != want {
			t.Errorf("normalizeBhavDate(%q) = %q, want %q", in, got, want)
		}
	}
}
