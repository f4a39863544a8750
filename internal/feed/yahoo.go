package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"nse-profiler/internal/errors"
	"nse-profiler/internal/models"
	"nse-profiler/pkg/utils"
)

// YahooSource implements Source using the Yahoo Finance chart API. NSE
// symbols map to their ".NS" Yahoo tickers.
type YahooSource struct {
	client  *http.Client
	baseURL string
	retry   utils.RetryConfig
}

// NewYahooSource creates a Yahoo Finance source.
func NewYahooSource() *YahooSource {
	return &YahooSource{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://query1.finance.yahoo.com/v8/finance/chart",
		retry:   utils.DefaultRetryConfig(),
	}
}

func (s *YahooSource) Name() string { return "yahoo" }

// yahooTicker maps an NSE symbol to its Yahoo ticker.
func yahooTicker(symbol string) string {
	return symbol + ".NS"
}

// yahooChart is the response structure from the Yahoo Finance chart API.
// Null entries appear in the quote arrays for bars with no trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchIntraday fetches intraday candles for symbol between from and to.
func (s *YahooSource) FetchIntraday(ctx context.Context, symbol string, from, to time.Time, timeframe models.Timeframe) ([]models.Candle, error) {
	interval, err := yahooInterval(timeframe)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	params.Set("period2", fmt.Sprintf("%d", to.Unix()))
	params.Set("interval", interval)

	endpoint := fmt.Sprintf("%s/%s?%s", s.baseURL, url.PathEscape(yahooTicker(symbol)), params.Encode())

	body, err := utils.RetryWithResult(ctx, s.retry, func() ([]byte, error) {
		return s.get(ctx, endpoint)
	})
	if err != nil {
		return nil, errors.NewDataError("yahoo", symbol, "fetching chart", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, errors.NewDataError("yahoo", symbol, "decoding chart", err)
	}
	if chart.Chart.Error != nil {
		return nil, errors.NewDataError("yahoo", symbol, chart.Chart.Error.Description, errors.ErrFetchFailed)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.NewDataError("yahoo", symbol, "empty chart result", errors.ErrDataNotFound)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		// bars with no trades come back as nulls
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		var volume int64
		if quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0).In(utils.IndiaLocation),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    volume,
		})
	}

	return candles, nil
}

func (s *YahooSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; nse-profiler)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart API returned %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func yahooInterval(timeframe models.Timeframe) (string, error) {
	switch timeframe {
	case models.Timeframe1Min:
		return "1m", nil
	case models.Timeframe5Min:
		return "5m", nil
	case models.Timeframe15Min:
		return "15m", nil
	case models.Timeframe1Day:
		return "1d", nil
	default:
		return "", errors.NewValidationError("timeframe", timeframe, "unsupported interval")
	}
}
