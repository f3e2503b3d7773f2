package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trade-signals/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// alpacaBarsClient is the subset of the Alpaca market data client we use (for testing)
type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaService retrieves daily stock bars from Alpaca market data
type AlpacaService struct {
	dataClient alpacaBarsClient
	timeout    time.Duration
	now        func() time.Time
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret, baseURL string, timeout time.Duration) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})

	return newAlpacaServiceWithClient(dataClient, timeout)
}

// newAlpacaServiceWithClient creates an AlpacaService with a custom client (for testing)
func newAlpacaServiceWithClient(client alpacaBarsClient, timeout time.Duration) *AlpacaService {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AlpacaService{
		dataClient: client,
		timeout:    timeout,
		now:        time.Now,
	}
}

// GetDailySeries returns daily bars covering the last N calendar days
func (s *AlpacaService) GetDailySeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	symbol = strings.ToUpper(symbol)
	end := s.now()
	start := end.AddDate(0, 0, -days)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := observeCall(BreakerAlpaca, "bars")
	bars, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() ([]marketdata.Bar, error) {
		return runWithContext(ctx, func() ([]marketdata.Bar, error) {
			return s.dataClient.GetBars(symbol, marketdata.GetBarsRequest{
				TimeFrame: marketdata.OneDay,
				Start:     start,
				End:       end,
				Feed:      marketdata.IEX,
			})
		})
	})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}

	series := &models.PriceSeries{
		Symbol:     symbol,
		AssetClass: models.AssetClassStock,
		Points:     make([]models.PricePoint, 0, len(bars)),
	}
	for _, bar := range bars {
		series.Points = append(series.Points, models.PricePoint{
			Timestamp: bar.Timestamp,
			Open:      bar.Open,
			Close:     bar.Close,
			Volume:    float64(bar.Volume),
		})
	}

	return series, nil
}
