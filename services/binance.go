package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"trade-signals/models"
)

// quoteAsset is the pair suffix used for every crypto symbol
const quoteAsset = "USDT"

// BinanceService retrieves public crypto market data from Binance
type BinanceService struct {
	httpClient *http.Client
	baseURL    string
	retry      RetryConfig
}

// NewBinanceService creates a new BinanceService instance
func NewBinanceService(baseURL string, timeout time.Duration) *BinanceService {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	return &BinanceService{
		httpClient: newHTTPClient(timeout),
		baseURL:    strings.TrimRight(baseURL, "/"),
		retry:      DefaultRetryConfig,
	}
}

// Ticker24h is one entry of the 24hr ticker statistics
type Ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// PairSymbol maps a base asset such as BTC onto its USDT trading pair
func PairSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.HasSuffix(symbol, quoteAsset) {
		return symbol
	}
	return symbol + quoteAsset
}

// GetDailySeries returns the latest N daily klines for a base asset
func (s *BinanceService) GetDailySeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	if days <= 0 || days > 1000 {
		days = 120
	}

	params := url.Values{}
	params.Set("symbol", PairSymbol(symbol))
	params.Set("interval", "1d")
	params.Set("limit", strconv.Itoa(days))

	done := observeCall(BreakerBinance, "klines")
	rows, err := WithCircuitBreaker(ctx, BreakerBinance, func() ([][]json.RawMessage, error) {
		var out [][]json.RawMessage
		err := WithRetry(ctx, s.retry, func() error {
			return getJSON(ctx, s.httpClient, BreakerBinance, s.baseURL+"/api/v3/klines?"+params.Encode(), nil, &out)
		})
		return out, err
	})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}

	series := &models.PriceSeries{
		Symbol:     strings.ToUpper(symbol),
		AssetClass: models.AssetClassCrypto,
		Points:     make([]models.PricePoint, 0, len(rows)),
	}
	for i, row := range rows {
		p, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d for %s: %w", i, symbol, err)
		}
		series.Points = append(series.Points, p)
	}

	return series, nil
}

// parseKline decodes [openTime, open, high, low, close, volume, ...]
func parseKline(row []json.RawMessage) (models.PricePoint, error) {
	if len(row) < 6 {
		return models.PricePoint{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return models.PricePoint{}, fmt.Errorf("open time: %w", err)
	}

	fields := make([]float64, 0, 3)
	for _, idx := range []int{1, 4, 5} {
		var raw string
		if err := json.Unmarshal(row[idx], &raw); err != nil {
			return models.PricePoint{}, fmt.Errorf("field %d: %w", idx, err)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.PricePoint{}, fmt.Errorf("field %d: %w", idx, err)
		}
		fields = append(fields, v)
	}

	return models.PricePoint{
		Timestamp: time.UnixMilli(openTime).UTC(),
		Open:      fields[0],
		Close:     fields[1],
		Volume:    fields[2],
	}, nil
}

// TopSymbols returns the base assets of the USDT pairs with the highest 24h quote volume
func (s *BinanceService) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 30
	}

	done := observeCall(BreakerBinance, "ticker_24hr")
	tickers, err := WithCircuitBreaker(ctx, BreakerBinance, func() ([]Ticker24h, error) {
		var out []Ticker24h
		err := WithRetry(ctx, s.retry, func() error {
			return getJSON(ctx, s.httpClient, BreakerBinance, s.baseURL+"/api/v3/ticker/24hr", nil, &out)
		})
		return out, err
	})
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get 24hr tickers: %w", err)
	}

	type pair struct {
		base   string
		volume float64
	}
	pairs := make([]pair, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, quoteAsset) || t.Symbol == quoteAsset {
			continue
		}
		base := strings.TrimSuffix(t.Symbol, quoteAsset)
		vol, err := strconv.ParseFloat(t.QuoteVolume, 64)
		if err != nil {
			continue
		}
		pairs = append(pairs, pair{base: base, volume: vol})
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].volume > pairs[j].volume })

	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.base
	}
	return out, nil
}
