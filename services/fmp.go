package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FMPService handles communication with Financial Modeling Prep API
type FMPService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	retry      RetryConfig
}

// NewFMPService creates a new FMPService instance
func NewFMPService(apiKey string, timeout time.Duration) *FMPService {
	return &FMPService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		baseURL:    "https://financialmodelingprep.com/api/v3",
		retry:      DefaultRetryConfig,
	}
}

// fmpMoverResponse is one row of the most-actives list
type fmpMoverResponse struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Change            float64 `json:"change"`
	Price             float64 `json:"price"`
	ChangesPercentage float64 `json:"changesPercentage"`
}

// TopSymbols returns the most actively traded US stocks
func (s *FMPService) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("apikey", s.apiKey)
	reqURL := s.baseURL + "/stock_market/actives?" + params.Encode()

	done := observeCall(BreakerFMP, "actives")
	rows, err := WithCircuitBreaker(ctx, BreakerFMP, func() ([]fmpMoverResponse, error) {
		var out []fmpMoverResponse
		err := WithRetry(ctx, s.retry, func() error {
			return getJSON(ctx, s.httpClient, BreakerFMP, reqURL, nil, &out)
		})
		return out, err
	})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch most active stocks: %w", err)
	}

	symbols := make([]string, 0, len(rows))
	for _, r := range rows {
		sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
		// skip preferred shares and warrants such as BAC-PL
		if sym == "" || strings.ContainsAny(sym, "-.^") {
			continue
		}
		symbols = append(symbols, sym)
		if limit > 0 && len(symbols) == limit {
			break
		}
	}
	return symbols, nil
}
