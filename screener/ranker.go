package screener

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"trade-signals/agents"
	"trade-signals/config"
	"trade-signals/models"
	"trade-signals/observability"
)

// SignalEngine computes the fused strategy signal for one symbol
type SignalEngine interface {
	ComputeSignal(ctx context.Context, symbol string, class models.AssetClass) (*models.StrategySignal, error)
}

// SeriesSource fetches price series and exposes the indicator profile per asset class
type SeriesSource interface {
	Series(ctx context.Context, symbol string, class models.AssetClass) (*models.PriceSeries, error)
	Profile(class models.AssetClass) agents.AssetProfile
}

// Ranker turns a universe of symbols into recommendation lists
type Ranker struct {
	engine        SignalEngine
	series        SeriesSource
	universes     map[models.AssetClass]UniverseProvider
	fallbacks     map[models.AssetClass][]string
	indices       []string
	majors        []string
	defaultCount  int
	maxConcurrent int
	symbolTimeout time.Duration
}

// NewRanker creates a Ranker
func NewRanker(engine SignalEngine, series SeriesSource, stock, crypto UniverseProvider, cfg *config.Config) *Ranker {
	rc := cfg.Ranker
	count := rc.DefaultCount
	if count <= 0 {
		count = 10
	}
	concurrent := rc.MaxConcurrent
	if concurrent <= 0 {
		concurrent = 1
	}
	timeout := time.Duration(rc.SymbolTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &Ranker{
		engine: engine,
		series: series,
		universes: map[models.AssetClass]UniverseProvider{
			models.AssetClassStock:  stock,
			models.AssetClassCrypto: crypto,
		},
		fallbacks: map[models.AssetClass][]string{
			models.AssetClassStock:  rc.StockFallback,
			models.AssetClassCrypto: rc.CryptoFallback,
		},
		indices:       rc.StockIndices,
		majors:        rc.CryptoMajors,
		defaultCount:  count,
		maxConcurrent: concurrent,
		symbolTimeout: timeout,
	}
}

// Rank dispatches to the Buy-only or score-ranked mode
func (r *Ranker) Rank(ctx context.Context, class models.AssetClass, mode models.RankMode, n int) (*models.RecommendationList, error) {
	switch mode {
	case models.RankModeBuy:
		return r.RankBuySignals(ctx, class, n)
	case models.RankModeRanked:
		return r.RankByScore(ctx, class, n)
	default:
		return nil, fmt.Errorf("unknown recommendation mode %q", mode)
	}
}

// RankBuySignals returns up to n Buy signals in universe order. When the universe
// yields none, an indicator-only list over the class's fallback symbols is returned
// and the list is marked degraded.
func (r *Ranker) RankBuySignals(ctx context.Context, class models.AssetClass, n int) (*models.RecommendationList, error) {
	universe, err := r.universe(class)
	if err != nil {
		return nil, err
	}
	n = r.count(n)

	list := models.NewRecommendationList(class, models.RankModeBuy)
	signals, skipped := r.evaluateInParallel(ctx, class, universe.Symbols(ctx))
	list.Skipped = skipped

	for _, sig := range signals {
		if sig == nil || sig.FinalSignal != models.SignalBuy {
			continue
		}
		list.Signals = append(list.Signals, *sig)
		if len(list.Signals) == n {
			break
		}
	}

	if len(list.Signals) == 0 {
		observability.Info("no buy signals found, using indicator fallback", "asset_class", class)
		list.Fallback = r.fallback(ctx, class, n)
		list.Degraded = true
	}

	observability.GetMetrics().RecordRankerRun(string(class), string(list.Mode), list.Degraded)
	return list, nil
}

// RankByScore returns the top n symbols by Score, ties broken by symbol
func (r *Ranker) RankByScore(ctx context.Context, class models.AssetClass, n int) (*models.RecommendationList, error) {
	universe, err := r.universe(class)
	if err != nil {
		return nil, err
	}
	n = r.count(n)

	list := models.NewRecommendationList(class, models.RankModeRanked)
	signals, skipped := r.evaluateInParallel(ctx, class, universe.Symbols(ctx))
	list.Skipped = skipped

	ranked := make([]models.RankedRecommendation, 0, len(signals))
	for _, sig := range signals {
		if sig == nil {
			continue
		}
		ranked = append(ranked, toRanked(sig))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	list.Ranked = ranked

	observability.GetMetrics().RecordRankerRun(string(class), string(list.Mode), list.Degraded)
	return list, nil
}

// Score combines sentiment and signal strength into [0, 100]
func Score(sig *models.StrategySignal) float64 {
	return 50*sig.PositiveSentiment + 50*sig.FinalSignal.Strength()
}

func toRanked(sig *models.StrategySignal) models.RankedRecommendation {
	ind := sig.TechnicalIndicators
	price := decimal.NewFromFloat(ind.LatestClose)

	return models.RankedRecommendation{
		Symbol:            sig.Symbol,
		Score:             Score(sig),
		Price:             price.Round(2),
		ChangePercent:     percentChange(decimal.NewFromFloat(ind.PreviousClose), price),
		FinalSignal:       sig.FinalSignal,
		PositiveSentiment: sig.PositiveSentiment,
		TechnicalSummary:  technicalSummary(ind),
	}
}

// percentChange returns (to - from) / from in percent, rounded to 2 places; zero when from is zero
func percentChange(from, to decimal.Decimal) decimal.Decimal {
	if from.IsZero() {
		return decimal.Zero
	}
	return to.Sub(from).Div(from).Mul(decimal.NewFromInt(100)).Round(2)
}

func technicalSummary(ind models.TechnicalIndicators) string {
	rsi := "n/a"
	if ind.RSI != nil {
		rsi = fmt.Sprintf("%.1f", *ind.RSI)
	}
	return fmt.Sprintf("RSI %s, MA%d %.2f vs MA%d %.2f", rsi, ind.ShortWindow, ind.ShortMA, ind.LongWindow, ind.LongMA)
}

// evaluateInParallel computes signals concurrently with a semaphore limit. The result
// keeps universe order; failed symbols are nil and counted as skipped.
func (r *Ranker) evaluateInParallel(ctx context.Context, class models.AssetClass, symbols []string) ([]*models.StrategySignal, int) {
	type evalResult struct {
		index  int
		signal *models.StrategySignal
		err    error
	}

	results := make(chan evalResult, len(symbols))
	sem := make(chan struct{}, r.maxConcurrent)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		wg.Add(1)
		go func(idx int, sym string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- evalResult{index: idx, err: ctx.Err()}
				return
			}

			symbolCtx, cancel := context.WithTimeout(ctx, r.symbolTimeout)
			defer cancel()

			sig, err := r.engine.ComputeSignal(symbolCtx, sym, class)
			if err == nil && sig == nil {
				err = fmt.Errorf("%s: empty signal", sym)
			}
			if err != nil {
				observability.Warn("skipping symbol",
					"symbol", sym,
					"asset_class", class,
					"error", err)
			}
			results <- evalResult{index: idx, signal: sig, err: err}
		}(i, symbol)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	signals := make([]*models.StrategySignal, len(symbols))
	skipped := 0
	metrics := observability.GetMetrics()
	for result := range results {
		if result.err != nil {
			skipped++
			metrics.RecordRankerSkip(string(class), models.ErrorKind(result.err))
			continue
		}
		signals[result.index] = result.signal
	}

	return signals, skipped
}

// fallback derives a stance from indicators alone for each fallback symbol, up to n
func (r *Ranker) fallback(ctx context.Context, class models.AssetClass, n int) []models.FallbackRecommendation {
	symbols := r.fallbacks[class]
	if len(symbols) > n {
		symbols = symbols[:n]
	}
	profile := r.series.Profile(class)

	out := make([]models.FallbackRecommendation, 0, len(symbols))
	for _, sym := range symbols {
		symbolCtx, cancel := context.WithTimeout(ctx, r.symbolTimeout)
		series, err := r.series.Series(symbolCtx, sym, class)
		cancel()
		if err != nil {
			out = append(out, models.FallbackRecommendation{
				Symbol:      sym,
				FinalSignal: models.SignalHold,
				Reason:      err.Error(),
			})
			continue
		}
		out = append(out, FallbackSignal(sym, series, profile))
	}
	return out
}

// FallbackSignal computes whichever of RSI, long MA and latest volume the series allows and
// derives a stance: RSI bands first, then close against the long MA.
func FallbackSignal(symbol string, series *models.PriceSeries, p agents.AssetProfile) models.FallbackRecommendation {
	rec := models.FallbackRecommendation{Symbol: symbol, FinalSignal: models.SignalHold}

	latest, ok := series.Latest()
	if !ok {
		rec.Reason = models.ErrInsufficientData.Error()
		return rec
	}
	rec.Available = true

	closes := series.Closes()
	volume := latest.Volume
	rec.Volume = &volume
	rec.RSI = agents.LatestRSI(closes, p.RSIPeriod)

	if w := p.LongMAWindow; w > 0 && len(closes) >= w {
		ma := stat.Mean(closes[len(closes)-w:], nil)
		rec.LongMA = &ma
	}

	switch {
	case rec.RSI != nil && *rec.RSI < p.Oversold:
		rec.FinalSignal = models.SignalBuy
	case rec.RSI != nil && *rec.RSI > p.Overbought:
		rec.FinalSignal = models.SignalSell
	case rec.LongMA != nil && latest.Close > *rec.LongMA:
		rec.FinalSignal = models.SignalBuy
	}
	return rec
}

func (r *Ranker) universe(class models.AssetClass) (UniverseProvider, error) {
	u, ok := r.universes[class]
	if !ok || u == nil {
		return nil, fmt.Errorf("no universe for asset class %q", class)
	}
	return u, nil
}

func (r *Ranker) count(n int) int {
	if n <= 0 {
		return r.defaultCount
	}
	return n
}
