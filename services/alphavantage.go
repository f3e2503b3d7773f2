package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"trade-signals/models"
)

// AlphaVantageService retrieves daily stock series from Alpha Vantage
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	retry      RetryConfig
	now        func() time.Time
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(apiKey string, timeout time.Duration) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		baseURL:    "https://www.alphavantage.co/query",
		retry:      DefaultRetryConfig,
		now:        time.Now,
	}
}

// DailySeriesResponse represents the TIME_SERIES_DAILY response from Alpha Vantage
type DailySeriesResponse struct {
	TimeSeries map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// GetDailySeries returns daily candles covering the last N calendar days
func (s *AlphaVantageService) GetDailySeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("apikey", s.apiKey)
	// compact holds the latest 100 trading days
	if days > 140 {
		params.Set("outputsize", "full")
	} else {
		params.Set("outputsize", "compact")
	}

	done := observeCall(BreakerAlphaVantage, "daily")
	resp, err := WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*DailySeriesResponse, error) {
		var out DailySeriesResponse
		err := WithRetry(ctx, s.retry, func() error {
			if err := getJSON(ctx, s.httpClient, BreakerAlphaVantage, s.baseURL+"?"+params.Encode(), nil, &out); err != nil {
				return err
			}
			// Alpha Vantage reports throttling in the body with a 200 status.
			if out.Note != "" || (out.Information != "" && out.TimeSeries == nil) {
				return &StatusError{Service: BreakerAlphaVantage, StatusCode: http.StatusTooManyRequests, Body: out.Note + out.Information}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily series for %s: %w", symbol, err)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage rejected %s: %s", symbol, resp.ErrorMessage)
	}

	return s.toSeries(symbol, resp, days)
}

func (s *AlphaVantageService) toSeries(symbol string, resp *DailySeriesResponse, days int) (*models.PriceSeries, error) {
	cutoff := s.now().AddDate(0, 0, -days)

	points := make([]models.PricePoint, 0, len(resp.TimeSeries))
	for date, candle := range resp.TimeSeries {
		ts, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in series for %s: %w", date, symbol, err)
		}
		if ts.Before(cutoff) {
			continue
		}
		open, err := strconv.ParseFloat(candle.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("bad open %q for %s: %w", candle.Open, symbol, err)
		}
		closePrice, err := strconv.ParseFloat(candle.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("bad close %q for %s: %w", candle.Close, symbol, err)
		}
		volume, err := strconv.ParseFloat(candle.Volume, 64)
		if err != nil {
			return nil, fmt.Errorf("bad volume %q for %s: %w", candle.Volume, symbol, err)
		}
		points = append(points, models.PricePoint{Timestamp: ts, Open: open, Close: closePrice, Volume: volume})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })

	return &models.PriceSeries{Symbol: symbol, AssetClass: models.AssetClassStock, Points: points}, nil
}
