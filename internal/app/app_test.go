package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trade-signals/config"
	"trade-signals/models"
	"trade-signals/repository"
	"trade-signals/services"
)

type stubPrices struct {
	series *models.PriceSeries
	err    error
}

func (s *stubPrices) GetDailySeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.series
	out.Symbol = symbol
	return &out, nil
}

type stubNews struct {
	articles     []models.NewsArticle
	err          error
	newsQuery    string
	headlineCall bool
}

func (s *stubNews) GetNews(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	s.newsQuery = query
	return s.articles, s.err
}

func (s *stubNews) GetHeadlines(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	s.headlineCall = true
	return s.articles, s.err
}

type stubClassifier struct{}

func (stubClassifier) Classify(ctx context.Context, texts []string) ([]models.ClassifierSentiment, error) {
	out := make([]models.ClassifierSentiment, len(texts))
	for i := range out {
		out[i] = models.ClassifierSentiment{Label: "positive"}
	}
	return out, nil
}

type unhealthyStore struct {
	repository.Store
}

func (unhealthyStore) Health(ctx context.Context) error {
	return errors.New("disk unavailable")
}

func risingSeries(n int) *models.PriceSeries {
	points := make([]models.PricePoint, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range points {
		c := 100 + float64(i)
		points[i] = models.PricePoint{Timestamp: start.AddDate(0, 0, i), Open: c - 0.5, Close: c, Volume: 1000}
	}
	return &models.PriceSeries{Points: points}
}

func testApp(t *testing.T, c *Components) *App {
	t.Helper()
	a, err := New(context.Background(), config.NewTestConfig(), c)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_InMemoryDefaults(t *testing.T) {
	a := testApp(t, nil)

	report := a.Health(context.Background())
	if report.Status != "ok" {
		t.Errorf("status = %s, want ok", report.Status)
	}
	if report.Store["backend"] != repository.BackendFile {
		t.Errorf("backend = %s, want file", report.Store["backend"])
	}
	if report.Upstreams["news"] || report.Upstreams["stock_prices"] {
		t.Error("no upstreams should be reported without components")
	}
	if report.Budget.Remaining != a.Config().Sentiment.MaxCallsPerDay {
		t.Errorf("remaining = %d, want %d", report.Budget.Remaining, a.Config().Sentiment.MaxCallsPerDay)
	}
}

func TestBuildComponents_NoCredentials(t *testing.T) {
	c, err := BuildComponents(context.Background(), config.NewTestConfig())
	if err != nil {
		t.Fatalf("BuildComponents() error: %v", err)
	}
	defer c.Store.Close()

	if c.CryptoPrices == nil {
		t.Error("public crypto prices should always be available")
	}
	if c.StockPrices != nil || c.News != nil || c.Classifier != nil || c.Commentary != nil {
		t.Error("credentialed upstreams should be nil without keys")
	}
	if c.StockSymbols != nil || c.CryptoSymbols != nil {
		t.Error("dynamic universes should be off without keys")
	}
}

func TestBuildComponents_WithCredentials(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.MarketData.StockProvider = "alphavantage"
	cfg.AlphaVantage.APIKey = "av"
	cfg.Alpaca.APIKey = "key"
	cfg.Alpaca.APISecret = "secret"
	cfg.NewsAPI.APIKey = "news"
	cfg.Classifier.Endpoint = "https://example.cognitiveservices.azure.com"
	cfg.Classifier.APIKey = "cls"
	cfg.FMP.APIKey = "fmp"
	cfg.MarketData.CryptoUniverseSource = "binance"
	cfg.LLM.Provider = "openai"
	cfg.OpenAI.APIKey = "sk-test"

	c, err := BuildComponents(context.Background(), cfg)
	if err != nil {
		t.Fatalf("BuildComponents() error: %v", err)
	}
	defer c.Store.Close()

	if _, ok := c.StockPrices.(*services.AlphaVantageService); !ok {
		t.Errorf("stock prices = %T, want AlphaVantageService", c.StockPrices)
	}
	if _, ok := c.StockSymbols.(*services.FMPService); !ok {
		t.Errorf("stock symbols = %T, want FMPService", c.StockSymbols)
	}
	if _, ok := c.CryptoSymbols.(*services.BinanceService); !ok {
		t.Errorf("crypto symbols = %T, want BinanceService", c.CryptoSymbols)
	}
	if _, ok := c.Commentary.(*services.OpenAIService); !ok {
		t.Errorf("commentary = %T, want OpenAIService", c.Commentary)
	}
	if c.News == nil || c.Classifier == nil {
		t.Error("news and classifier should be configured")
	}

	cfg.MarketData.StockProvider = "alpaca"
	c2, err := BuildComponents(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Store.Close()
	if _, ok := c2.StockPrices.(*services.AlpacaService); !ok {
		t.Errorf("stock prices = %T, want AlpacaService", c2.StockPrices)
	}
}

func TestApp_Signal(t *testing.T) {
	news := &stubNews{articles: []models.NewsArticle{{Title: "Shares climb"}, {Title: "Outlook raised"}}}
	a := testApp(t, &Components{
		StockPrices: &stubPrices{series: risingSeries(60)},
		News:        news,
		Classifier:  stubClassifier{},
	})

	sig, err := a.Signal(context.Background(), "msft", models.AssetClassStock)
	if err != nil {
		t.Fatalf("Signal() error: %v", err)
	}
	if sig.Symbol != "MSFT" || sig.PositiveSentiment != 1 {
		t.Errorf("unexpected signal: %+v", sig)
	}
	if news.newsQuery != "MSFT stock" {
		t.Errorf("news query = %q", news.newsQuery)
	}
}

func TestApp_Signal_Busy(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.HTTP.MaxConcurrentSignals = 1
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	a.analysisSem <- struct{}{}
	defer func() { <-a.analysisSem }()

	if _, err := a.Signal(context.Background(), "AAPL", models.AssetClassStock); !errors.Is(err, models.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestApp_Signal_NotConfigured(t *testing.T) {
	a := testApp(t, nil)

	_, err := a.Signal(context.Background(), "AAPL", models.AssetClassStock)
	if !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestApp_NewsSentiment(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		a := testApp(t, nil)
		if _, err := a.NewsSentiment(ctx, models.AssetClassStock); !errors.Is(err, models.ErrNotConfigured) {
			t.Errorf("expected ErrNotConfigured, got %v", err)
		}
	})

	t.Run("business headlines", func(t *testing.T) {
		news := &stubNews{articles: []models.NewsArticle{{Title: "Markets rally"}}}
		a := testApp(t, &Components{News: news, Classifier: stubClassifier{}})

		report, err := a.NewsSentiment(ctx, models.AssetClassStock)
		if err != nil {
			t.Fatal(err)
		}
		if !news.headlineCall || report.Query != "business" {
			t.Errorf("expected top headlines for business, got query %q", report.Query)
		}
		if report.CommentaryStatus != models.CommentaryDisabled {
			t.Errorf("status = %v, want disabled", report.CommentaryStatus)
		}
	})

	t.Run("crypto news", func(t *testing.T) {
		news := &stubNews{articles: []models.NewsArticle{{Title: "Bitcoin jumps"}}}
		a := testApp(t, &Components{News: news, Classifier: stubClassifier{}})

		if _, err := a.NewsSentiment(ctx, models.AssetClassCrypto); err != nil {
			t.Fatal(err)
		}
		if news.newsQuery != "crypto" {
			t.Errorf("query = %q, want crypto", news.newsQuery)
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		a := testApp(t, &Components{News: &stubNews{err: errors.New("503")}, Classifier: stubClassifier{}})

		_, err := a.NewsSentiment(ctx, models.AssetClassStock)
		var fe *models.FetchError
		if !errors.As(err, &fe) {
			t.Errorf("expected FetchError, got %v", err)
		}
	})
}

func TestApp_RestoresStateAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	cfg := config.NewTestConfig()

	open := func() *App {
		store, err := repository.NewFileStore(path)
		if err != nil {
			t.Fatal(err)
		}
		a, err := New(ctx, cfg, &Components{Store: store})
		if err != nil {
			t.Fatal(err)
		}
		return a
	}

	first := open()
	if err := first.budget.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := first.newsCache.SetJSON(ctx, "key", map[string]string{"a": "b"}); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second := open()
	defer second.Close()

	report := second.Health(ctx)
	if report.Budget.CallsToday != 1 {
		t.Errorf("calls today = %d, want 1", report.Budget.CallsToday)
	}
	if report.CacheEntries["news"] != 1 {
		t.Errorf("news entries = %d, want 1", report.CacheEntries["news"])
	}
}

func TestApp_PruneCaches(t *testing.T) {
	ctx := context.Background()
	a := testApp(t, nil)

	past := time.Now().Add(-7 * time.Hour)
	a.newsCache.WithClock(func() time.Time { return past })
	if err := a.newsCache.SetJSON(ctx, "stale", "x"); err != nil {
		t.Fatal(err)
	}
	a.newsCache.WithClock(time.Now)
	if err := a.newsCache.SetJSON(ctx, "fresh", "y"); err != nil {
		t.Fatal(err)
	}

	n, err := a.PruneCaches(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || a.newsCache.Len() != 1 {
		t.Errorf("pruned %d, left %d; want 1 and 1", n, a.newsCache.Len())
	}
}

func TestApp_Health_StoreDown(t *testing.T) {
	mem, err := repository.NewFileStore("")
	if err != nil {
		t.Fatal(err)
	}
	a := testApp(t, &Components{Store: unhealthyStore{Store: mem}})

	report := a.Health(context.Background())
	if report.Status != "degraded" || report.Store["status"] != "disconnected" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestApp_QuickStrategy(t *testing.T) {
	a := testApp(t, nil)
	if got := a.QuickStrategy("positive", 20); got != models.SignalBuy {
		t.Errorf("QuickStrategy() = %v, want Buy", got)
	}
}
