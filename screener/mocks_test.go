package screener

import (
	"context"
	"errors"
	"sync"
	"time"

	"trade-signals/agents"
	"trade-signals/config"
	"trade-signals/models"
)

// mockEngine returns canned signals per symbol and tracks concurrency
type mockEngine struct {
	signals map[string]*models.StrategySignal
	errs    map[string]error
	delay   time.Duration
	block   map[string]bool

	mu       sync.Mutex
	inFlight int
	maxSeen  int
	calls    []string
}

func (m *mockEngine) ComputeSignal(ctx context.Context, symbol string, class models.AssetClass) (*models.StrategySignal, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxSeen {
		m.maxSeen = m.inFlight
	}
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.block[symbol] {
		<-ctx.Done()
		return nil, models.NewFetchError("test", symbol, ctx.Err())
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if err := m.errs[symbol]; err != nil {
		return nil, err
	}
	sig, ok := m.signals[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	out := *sig
	return &out, nil
}

type mockSeriesSource struct {
	series  map[string]*models.PriceSeries
	errs    map[string]error
	profile agents.AssetProfile
}

func (m *mockSeriesSource) Series(ctx context.Context, symbol string, class models.AssetClass) (*models.PriceSeries, error) {
	if err := m.errs[symbol]; err != nil {
		return nil, models.NewFetchError(string(class)+"_prices", symbol, err)
	}
	if s, ok := m.series[symbol]; ok {
		return s, nil
	}
	return &models.PriceSeries{Symbol: symbol}, nil
}

func (m *mockSeriesSource) Profile(class models.AssetClass) agents.AssetProfile {
	return m.profile
}

type mockSymbolSource struct {
	symbols []string
	err     error
}

func (m *mockSymbolSource) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	return m.symbols, m.err
}

var testProfile = agents.AssetProfile{
	RSIPeriod:     14,
	ShortMAWindow: 5,
	LongMAWindow:  10,
	VolumeWindow:  5,
	LookbackDays:  30,
	Oversold:      30,
	Overbought:    70,
}

func signal(symbol string, final models.Signal, positive float64) *models.StrategySignal {
	rsi := 50.0
	return &models.StrategySignal{
		Symbol:            symbol,
		FinalSignal:       final,
		PositiveSentiment: positive,
		NegativeSentiment: 1 - positive,
		TechnicalIndicators: models.TechnicalIndicators{
			Symbol:        symbol,
			RSI:           &rsi,
			ShortMA:       105,
			LongMA:        100,
			ShortWindow:   20,
			LongWindow:    50,
			LatestClose:   110,
			PreviousClose: 100,
		},
	}
}

func newTestRanker(engine *mockEngine, series *mockSeriesSource, stock []string) *Ranker {
	cfg := config.NewTestConfig()
	cfg.Ranker.DefaultCount = 10
	cfg.Ranker.MaxConcurrent = 3
	cfg.Ranker.StockFallback = []string{"AAPL", "MSFT", "NVDA"}
	cfg.Ranker.StockIndices = []string{"SPY", "QQQ", "DIA"}
	cfg.Ranker.CryptoMajors = []string{"BTC", "ETH"}
	if series == nil {
		series = &mockSeriesSource{profile: testProfile}
	}
	return NewRanker(engine, series, StaticUniverse(stock), StaticUniverse{"BTC", "ETH"}, cfg)
}

func candles(closes ...float64) *models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		points[i] = models.PricePoint{Timestamp: start.AddDate(0, 0, i), Open: open, Close: c, Volume: 1000}
	}
	return &models.PriceSeries{Points: points}
}

func steps(n int, from, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}
