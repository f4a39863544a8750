package utils

import (
	"time"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// IsTradingDay returns true if the date falls on a weekday. Exchange
// holidays are not tracked; the bhavcopy simply has no file on those
// days.
func IsTradingDay(t time.Time) bool {
	wd := t.In(IndiaLocation).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// TradingDate truncates a timestamp to its IST calendar date.
func TradingDate(t time.Time) time.Time {
	local := t.In(IndiaLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, IndiaLocation)
}

// MarketClose returns the market close time (15:30 IST) for the given date.
func MarketClose(date time.Time) time.Time {
	local := date.In(IndiaLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 15, 30, 0, 0, IndiaLocation)
}

// PreviousTradingDay returns the last weekday strictly before the given date.
func PreviousTradingDay(t time.Time) time.Time {
	day := TradingDate(t).AddDate(0, 0, -1)
	for !IsTradingDay(day) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
