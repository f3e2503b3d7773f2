package screener

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"trade-signals/models"
	"trade-signals/observability"
)

// MarketOverview reports the latest daily move of the stock index proxies and crypto majors
func (r *Ranker) MarketOverview(ctx context.Context) *models.MarketOverview {
	var wg sync.WaitGroup
	var stock, crypto models.MarketTrend

	wg.Add(2)
	go func() {
		defer wg.Done()
		stock = r.marketTrend(ctx, models.AssetClassStock, r.indices)
	}()
	go func() {
		defer wg.Done()
		crypto = r.marketTrend(ctx, models.AssetClassCrypto, r.majors)
	}()
	wg.Wait()

	return &models.MarketOverview{
		Stock:       stock,
		Crypto:      crypto,
		GeneratedAt: time.Now(),
	}
}

func (r *Ranker) marketTrend(ctx context.Context, class models.AssetClass, symbols []string) models.MarketTrend {
	trend := models.MarketTrend{
		Instruments: make(map[string]models.InstrumentTrend, len(symbols)),
		AvgTrend:    decimal.Zero,
	}

	var sum decimal.Decimal
	counted := 0
	for _, sym := range symbols {
		it := r.instrumentTrend(ctx, class, sym)
		trend.Instruments[sym] = it
		if it.Error == "" {
			sum = sum.Add(it.ChangePercent)
			counted++
		}
	}

	if counted > 0 {
		trend.AvgTrend = sum.Div(decimal.NewFromInt(int64(counted))).Round(2)
	}
	return trend
}

// instrumentTrend measures the latest candle from open to close
func (r *Ranker) instrumentTrend(ctx context.Context, class models.AssetClass, symbol string) models.InstrumentTrend {
	symbolCtx, cancel := context.WithTimeout(ctx, r.symbolTimeout)
	defer cancel()

	it := models.InstrumentTrend{Symbol: symbol}
	series, err := r.series.Series(symbolCtx, symbol, class)
	if err != nil {
		observability.Warn("market overview fetch failed", "symbol", symbol, "error", err)
		it.Error = err.Error()
		return it
	}

	latest, ok := series.Latest()
	if !ok {
		it.Error = models.ErrInsufficientData.Error()
		return it
	}

	closePrice := decimal.NewFromFloat(latest.Close)
	it.Price = closePrice.Round(2)
	it.ChangePercent = percentChange(decimal.NewFromFloat(latest.Open), closePrice)
	return it
}
