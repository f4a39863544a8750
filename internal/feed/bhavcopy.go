package feed

import (
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"nse-profiler/internal/errors"
	"nse-profiler/internal/models"
	"nse-profiler/pkg/utils"
)

// bhavcopyRow mirrors one row of an NSE equity bhavcopy CSV.
type bhavcopyRow struct {
	Symbol      string  `csv:"SYMBOL"`
	Series      string  `csv:"SERIES"`
	Open        float64 `csv:"OPEN"`
	High        float64 `csv:"HIGH"`
	Low         float64 `csv:"LOW"`
	Close       float64 `csv:"CLOSE"`
	Last        float64 `csv:"LAST"`
	PrevClose   float64 `csv:"PREVCLOSE"`
	TotTrdQty   int64   `csv:"TOTTRDQTY"`
	TotTrdVal   float64 `csv:"TOTTRDVAL"`
	Timestamp   string  `csv:"TIMESTAMP"`
	TotalTrades int64   `csv:"TOTALTRADES"`
	ISIN        string  `csv:"ISIN"`
}

// bhavcopyDateLayout matches the bhavcopy TIMESTAMP column, e.g. "01-MAR-2024".
const bhavcopyDateLayout = "02-Jan-2006"

// BhavcopyEntry is one symbol's daily bar parsed from a bhavcopy file.
type BhavcopyEntry struct {
	Symbol string
	Series string
	Candle models.Candle
}

// LoadBhavcopy parses an NSE bhavcopy CSV file. Only EQ-series rows are
// kept; rows with an unparseable date are reported, not skipped
// silently.
func LoadBhavcopy(path string) ([]BhavcopyEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("bhavcopy", "", "opening file", err)
	}
	defer f.Close()

	var rows []*bhavcopyRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewDataError("bhavcopy", "", "parsing csv", err)
	}

	entries := make([]BhavcopyEntry, 0, len(rows))
	for _, row := range rows {
		if !strings.EqualFold(row.Series, "EQ") {
			continue
		}

		ts, err := time.ParseInLocation(bhavcopyDateLayout, normalizeBhavDate(row.Timestamp), utils.IndiaLocation)
		if err != nil {
			return nil, errors.NewDataError("bhavcopy", row.Symbol, "parsing timestamp "+row.Timestamp, err)
		}

		entries = append(entries, BhavcopyEntry{
			Symbol: row.Symbol,
			Series: row.Series,
			Candle: models.Candle{
				Timestamp: ts,
				Open:      row.Open,
				High:      row.High,
				Low:       row.Low,
				Close:     row.Close,
				Volume:    row.TotTrdQty,
			},
		})
	}

	return entries, nil
}

// normalizeBhavDate converts "01-MAR-2024" into the mixed case Go's
// reference layout expects.
func normalizeBhavDate(s string) string {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[1]) != 3 {
		return s
	}
	month := strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:])
	return parts[0] + "-" + month + "-" + parts[2]
}
