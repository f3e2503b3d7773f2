package agents

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"trade-signals/config"
	"trade-signals/models"
)

// AssetProfile holds the indicator windows and RSI bands for one asset class
type AssetProfile struct {
	RSIPeriod     int
	ShortMAWindow int
	LongMAWindow  int
	VolumeWindow  int
	LookbackDays  int
	Oversold      float64
	Overbought    float64
}

// ProfileFromConfig converts the configured windows into an AssetProfile
func ProfileFromConfig(c config.AssetProfileConfig) AssetProfile {
	return AssetProfile{
		RSIPeriod:     c.RSIPeriod,
		ShortMAWindow: c.ShortMAWindow,
		LongMAWindow:  c.LongMAWindow,
		VolumeWindow:  c.VolumeWindow,
		LookbackDays:  c.LookbackDays,
		Oversold:      c.Oversold,
		Overbought:    c.Overbought,
	}
}

// RequiredPoints is the shortest series every indicator in the profile can be computed on
func (p AssetProfile) RequiredPoints() int {
	return max(p.RSIPeriod+1, p.ShortMAWindow, p.LongMAWindow, p.VolumeWindow+1)
}

// Evaluate computes RSI, both moving averages and the volume baseline for series.
// A series shorter than RequiredPoints yields ErrInsufficientData and no partial result.
func Evaluate(series *models.PriceSeries, p AssetProfile) (*models.TechnicalIndicators, error) {
	n := series.Len()
	required := p.RequiredPoints()
	if n < required {
		return nil, fmt.Errorf("%s: %w: have %d candles, need %d", series.Symbol, models.ErrInsufficientData, n, required)
	}

	closes := series.Closes()
	volumes := series.Volumes()

	rsi := LatestRSI(closes, p.RSIPeriod)
	shortMA := talib.Sma(closes, p.ShortMAWindow)[n-1]
	longMA := talib.Sma(closes, p.LongMAWindow)[n-1]

	// baseline excludes the latest candle so a spike is measured against prior activity
	avgVolume := stat.Mean(volumes[n-1-p.VolumeWindow:n-1], nil)

	return &models.TechnicalIndicators{
		Symbol:        series.Symbol,
		RSI:           rsi,
		ShortMA:       shortMA,
		LongMA:        longMA,
		ShortWindow:   p.ShortMAWindow,
		LongWindow:    p.LongMAWindow,
		LatestVolume:  volumes[n-1],
		AverageVolume: avgVolume,
		LatestClose:   closes[n-1],
		PreviousClose: closes[n-2],
		ComputedAt:    time.Now(),
	}, nil
}

// LatestRSI returns the Wilder RSI of the last close. A series without a single
// price move has no defined gain/loss ratio and is reported as neutral 50.
func LatestRSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) <= period {
		return nil
	}
	if !hasPriceMoves(closes) {
		neutral := 50.0
		return &neutral
	}

	v := talib.Rsi(closes, period)[len(closes)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	v = math.Max(0, math.Min(100, v))
	return &v
}

func hasPriceMoves(closes []float64) bool {
	for i := 1; i < len(closes); i++ {
		if closes[i] != closes[i-1] {
			return true
		}
	}
	return false
}

// TechnicalEvaluator fetches price series per asset class and evaluates them
type TechnicalEvaluator struct {
	providers map[models.AssetClass]PriceProvider
	profiles  map[models.AssetClass]AssetProfile
}

// NewTechnicalEvaluator creates a TechnicalEvaluator with one provider and profile per asset class
func NewTechnicalEvaluator(stock, crypto PriceProvider, cfg *config.Config) *TechnicalEvaluator {
	return &TechnicalEvaluator{
		providers: map[models.AssetClass]PriceProvider{
			models.AssetClassStock:  stock,
			models.AssetClassCrypto: crypto,
		},
		profiles: map[models.AssetClass]AssetProfile{
			models.AssetClassStock:  ProfileFromConfig(cfg.Strategy.Stock),
			models.AssetClassCrypto: ProfileFromConfig(cfg.Strategy.Crypto),
		},
	}
}

// Profile returns the indicator profile for class
func (e *TechnicalEvaluator) Profile(class models.AssetClass) AssetProfile {
	return e.profiles[class]
}

// Series fetches the lookback window of daily candles for symbol.
// Upstream failures are returned as *models.FetchError.
func (e *TechnicalEvaluator) Series(ctx context.Context, symbol string, class models.AssetClass) (*models.PriceSeries, error) {
	provider, ok := e.providers[class]
	if !ok || provider == nil {
		return nil, fmt.Errorf("%s prices: %w", class, models.ErrNotConfigured)
	}

	series, err := provider.GetDailySeries(ctx, symbol, e.profiles[class].LookbackDays)
	if err != nil {
		return nil, models.NewFetchError(string(class)+"_prices", symbol, err)
	}
	return series, nil
}

// EvaluateSymbol fetches and evaluates symbol's price series
func (e *TechnicalEvaluator) EvaluateSymbol(ctx context.Context, symbol string, class models.AssetClass) (*models.TechnicalIndicators, error) {
	series, err := e.Series(ctx, symbol, class)
	if err != nil {
		return nil, err
	}

	return Evaluate(series, e.profiles[class])
}
