package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trade-signals/agents"
	"trade-signals/cache"
	"trade-signals/config"
	"trade-signals/models"
	"trade-signals/observability"
	"trade-signals/repository"
	"trade-signals/screener"
	"trade-signals/services"
)

// App owns the long-lived components and exposes the operations served over HTTP
type App struct {
	cfg             *config.Config
	store           repository.Store
	newsCache       *cache.Cache
	commentaryCache *cache.Cache
	budget          *cache.Budget
	news            services.NewsProvider
	technical       *agents.TechnicalEvaluator
	engine          *agents.Engine
	fuser           *agents.SentimentFuser
	ranker          *screener.Ranker
	storeHealth     *cache.HealthCache
	upstreams       map[string]bool
	analysisSem     chan struct{}
}

// New assembles an App and restores the caches and call budget from the store.
// A nil store keeps everything in memory.
func New(ctx context.Context, cfg *config.Config, c *Components) (*App, error) {
	if c == nil {
		c = &Components{}
	}
	store := c.Store
	if store == nil {
		mem, err := repository.NewFileStore("")
		if err != nil {
			return nil, err
		}
		store = mem
	}

	s := cfg.Sentiment
	newsCache := cache.New(cache.NamespaceNews, time.Duration(s.BundleTTLMinutes)*time.Minute, store)
	commentaryCache := cache.New(cache.NamespaceCommentary, time.Duration(s.CommentaryTTLMinutes)*time.Minute, store)
	budget := cache.NewBudget(time.Duration(s.CooldownSeconds)*time.Second, s.MaxCallsPerDay, cfg.Location(), store)

	for _, cc := range []*cache.Cache{newsCache, commentaryCache} {
		if err := cc.Load(ctx); err != nil {
			return nil, fmt.Errorf("restore %s cache: %w", cc.Namespace(), err)
		}
	}
	if err := budget.Load(ctx); err != nil {
		return nil, err
	}

	technical := agents.NewTechnicalEvaluator(c.StockPrices, c.CryptoPrices, cfg)
	fuser := agents.NewSentimentFuser(c.Classifier, c.Commentary, newsCache, commentaryCache, budget, cfg)
	engine := agents.NewEngine(technical, c.News, fuser, cfg)

	stockUniverse := universe("fmp", c.StockSymbols, len(cfg.Ranker.StockUniverse), cfg.Ranker.StockUniverse)
	cryptoUniverse := universe("binance", c.CryptoSymbols, cfg.MarketData.CryptoUniverseLimit, cfg.Ranker.CryptoUniverse)
	ranker := screener.NewRanker(engine, technical, stockUniverse, cryptoUniverse, cfg)

	limit := cfg.HTTP.MaxConcurrentSignals
	if limit <= 0 {
		limit = 1
	}

	observability.Info("application assembled",
		"store", store.Backend(),
		"news_entries", newsCache.Len(),
		"commentary_entries", commentaryCache.Len(),
		"budget_remaining", budget.Remaining())

	return &App{
		cfg:             cfg,
		store:           store,
		newsCache:       newsCache,
		commentaryCache: commentaryCache,
		budget:          budget,
		news:            c.News,
		technical:       technical,
		engine:          engine,
		fuser:           fuser,
		ranker:          ranker,
		storeHealth:     cache.NewHealthCache(cache.DefaultHealthCacheTTL),
		upstreams: map[string]bool{
			"stock_prices":  c.StockPrices != nil,
			"crypto_prices": c.CryptoPrices != nil,
			"news":          c.News != nil,
			"classifier":    c.Classifier != nil,
			"commentary":    c.Commentary != nil,
		},
		analysisSem: make(chan struct{}, limit),
	}, nil
}

func universe(name string, source services.SymbolSource, limit int, list []string) screener.UniverseProvider {
	if source == nil {
		return screener.StaticUniverse(list)
	}
	return screener.NewDynamicUniverse(name, source, limit, list)
}

// Config returns the configuration the App was built with
func (a *App) Config() *config.Config {
	return a.cfg
}

// Close releases the store
func (a *App) Close() error {
	return a.store.Close()
}

// Signal computes the fused strategy signal for symbol. Requests beyond the
// concurrency limit are rejected with ErrBusy rather than queued.
func (a *App) Signal(ctx context.Context, symbol string, class models.AssetClass) (*models.StrategySignal, error) {
	select {
	case a.analysisSem <- struct{}{}:
		defer func() { <-a.analysisSem }()
	default:
		return nil, models.ErrBusy
	}

	return a.engine.ComputeSignal(ctx, symbol, class)
}

// Technical evaluates the indicators for symbol without touching news
func (a *App) Technical(ctx context.Context, symbol string, class models.AssetClass) (*models.TechnicalIndicators, error) {
	return a.technical.EvaluateSymbol(ctx, strings.ToUpper(strings.TrimSpace(symbol)), class)
}

// NewsSentiment fuses sentiment over the current business (stock) or crypto headlines
func (a *App) NewsSentiment(ctx context.Context, class models.AssetClass) (*models.SentimentReport, error) {
	if a.news == nil {
		return nil, fmt.Errorf("news: %w", models.ErrNotConfigured)
	}

	limit := a.cfg.Sentiment.HeadlinesLimit
	var (
		query    string
		articles []models.NewsArticle
		err      error
	)
	switch class {
	case models.AssetClassCrypto:
		query = "crypto"
		articles, err = a.news.GetNews(ctx, query, limit)
	default:
		query = "business"
		articles, err = a.news.GetHeadlines(ctx, "", limit)
	}
	if err != nil {
		return nil, models.NewFetchError("news", query, err)
	}

	return a.fuser.Fuse(ctx, query, articles)
}

// QuickStrategy maps a sentiment label and RSI reading onto a signal
func (a *App) QuickStrategy(sentiment string, rsi float64) models.Signal {
	return agents.QuickStrategy(sentiment, rsi)
}

// Recommend ranks the class's universe in the given mode
func (a *App) Recommend(ctx context.Context, class models.AssetClass, mode models.RankMode, n int) (*models.RecommendationList, error) {
	return a.ranker.Rank(ctx, class, mode, n)
}

// Market returns the index and crypto majors overview
func (a *App) Market(ctx context.Context) *models.MarketOverview {
	return a.ranker.MarketOverview(ctx)
}

// PruneCaches drops expired entries from both caches and the store
func (a *App) PruneCaches(ctx context.Context) (int, error) {
	now := time.Now()
	total := 0
	for _, cc := range []*cache.Cache{a.newsCache, a.commentaryCache} {
		n, err := cc.Prune(ctx, now)
		total += n
		if err != nil {
			return total, fmt.Errorf("prune %s cache: %w", cc.Namespace(), err)
		}
	}
	return total, nil
}

// BudgetStatus is the commentary budget as reported by the health endpoint
type BudgetStatus struct {
	models.CallBudget
	MaxCallsPerDay int `json:"max_calls_per_day"`
	Remaining      int `json:"remaining"`
}

// HealthReport summarises store, upstream and budget state
type HealthReport struct {
	Status          string                                   `json:"status"`
	Store           map[string]string                        `json:"store"`
	Upstreams       map[string]bool                          `json:"upstreams"`
	CircuitBreakers map[string]services.CircuitBreakerStatus `json:"circuit_breakers"`
	Budget          BudgetStatus                             `json:"budget"`
	CacheEntries    map[string]int                           `json:"cache_entries"`
}

// Health reports component status. The store probe is cached briefly.
func (a *App) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Status:          "ok",
		Store:           map[string]string{"backend": a.store.Backend(), "status": "connected"},
		Upstreams:       a.upstreams,
		CircuitBreakers: services.GetGlobalRegistry().Status(),
		Budget: BudgetStatus{
			CallBudget:     a.budget.Snapshot(),
			MaxCallsPerDay: a.cfg.Sentiment.MaxCallsPerDay,
			Remaining:      a.budget.Remaining(),
		},
		CacheEntries: map[string]int{
			a.newsCache.Namespace():       a.newsCache.Len(),
			a.commentaryCache.Namespace(): a.commentaryCache.Len(),
		},
	}

	if err := a.storeHealth.Check(func() error { return a.store.Health(ctx) }); err != nil {
		report.Store["status"] = "disconnected"
		report.Store["error"] = err.Error()
		report.Status = "degraded"
	}

	for _, cb := range report.CircuitBreakers {
		if cb.State == "open" {
			report.Status = "degraded"
			break
		}
	}

	return report
}
