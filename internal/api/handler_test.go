package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trade-signals/config"
	"trade-signals/internal/app"
	"trade-signals/models"
)

type stubPrices struct {
	points int
	err    error
}

func (s stubPrices) GetDailySeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	if s.err != nil {
		return nil, s.err
	}
	points := make([]models.PricePoint, s.points)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range points {
		c := 100 + float64(i)
		points[i] = models.PricePoint{Timestamp: start.AddDate(0, 0, i), Open: c - 1, Close: c, Volume: 1000}
	}
	return &models.PriceSeries{Symbol: symbol, Points: points}, nil
}

type stubNews struct {
	titles []string
}

func (s stubNews) articles() []models.NewsArticle {
	out := make([]models.NewsArticle, len(s.titles))
	for i, title := range s.titles {
		out[i] = models.NewsArticle{Title: title}
	}
	return out
}

func (s stubNews) GetNews(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	return s.articles(), nil
}

func (s stubNews) GetHeadlines(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	return s.articles(), nil
}

type stubClassifier struct{}

func (stubClassifier) Classify(ctx context.Context, texts []string) ([]models.ClassifierSentiment, error) {
	out := make([]models.ClassifierSentiment, len(texts))
	for i, text := range texts {
		label := "positive"
		if strings.Contains(strings.ToLower(text), "slump") {
			label = "negative"
		}
		out[i] = models.ClassifierSentiment{Label: label}
	}
	return out, nil
}

func testApp(t *testing.T, c *app.Components) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), config.NewTestConfig(), c)
	if err != nil {
		t.Fatalf("app.New() error: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func configuredApp(t *testing.T) *app.App {
	return testApp(t, &app.Components{
		StockPrices:  stubPrices{points: 60},
		CryptoPrices: stubPrices{points: 130},
		News:         stubNews{titles: []string{"Shares climb", "Outlook raised", "Sales slump"}},
		Classifier:   stubClassifier{},
	})
}

// testRouter creates a Chi router with test config for testing
func testRouter(application *app.App) http.Handler {
	cfg := application.Config()
	return NewRouter(NewHandler(application, cfg), cfg)
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}

func TestHandler_Index(t *testing.T) {
	router := testRouter(testApp(t, nil))

	w := serve(t, router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Welcome") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}

	if w := serve(t, router, http.MethodPost, "/", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestHandler_Health(t *testing.T) {
	router := testRouter(testApp(t, nil))

	w := serve(t, router, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var report app.HealthReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.Status != "ok" {
		t.Errorf("status = %s, want ok", report.Status)
	}
	if report.Store["status"] != "connected" {
		t.Errorf("store status = %s", report.Store["status"])
	}
	if report.Budget.MaxCallsPerDay == 0 {
		t.Error("expected budget limit in health report")
	}
}

func TestHandler_News(t *testing.T) {
	router := testRouter(configuredApp(t))

	for _, path := range []string{"/api/news", "/api/news/crypto"} {
		t.Run(path, func(t *testing.T) {
			w := serve(t, router, http.MethodGet, path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}

			var report models.SentimentReport
			if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
				t.Fatal(err)
			}
			if len(report.Articles) != 3 {
				t.Errorf("articles = %d, want 3", len(report.Articles))
			}
			if report.Summary.SampleSize != 3 {
				t.Errorf("sample size = %d, want 3", report.Summary.SampleSize)
			}
		})
	}
}

func TestHandler_Strategy(t *testing.T) {
	router := testRouter(configuredApp(t))

	w := serve(t, router, http.MethodGet, "/api/strategy/stock/aapl", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var sig models.StrategySignal
	if err := json.NewDecoder(w.Body).Decode(&sig); err != nil {
		t.Fatal(err)
	}
	if sig.Symbol != "AAPL" || sig.AssetClass != models.AssetClassStock {
		t.Errorf("unexpected signal identity: %s %s", sig.Symbol, sig.AssetClass)
	}
	if sig.FinalSignal == "" || len(sig.Reasons) == 0 {
		t.Errorf("expected a final signal with reasons, got %+v", sig)
	}
}

func TestHandler_Technical(t *testing.T) {
	router := testRouter(configuredApp(t))

	w := serve(t, router, http.MethodGet, "/api/technical/crypto/BTC", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var ind models.TechnicalIndicators
	if err := json.NewDecoder(w.Body).Decode(&ind); err != nil {
		t.Fatal(err)
	}
	if ind.RSI == nil {
		t.Error("expected RSI to be computed")
	}
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		components *app.Components
		method     string
		path       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{
			name:       "unknown asset class",
			method:     http.MethodGet,
			path:       "/api/technical/forex/EURUSD",
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
		{
			name:       "invalid symbol",
			method:     http.MethodGet,
			path:       "/api/strategy/stock/AA$PL",
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
		{
			name:       "symbol too long",
			method:     http.MethodGet,
			path:       "/api/strategy/stock/ABCDEFGHIJKLMNOPQ",
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
		{
			name:       "prices not configured",
			method:     http.MethodGet,
			path:       "/api/technical/stock/AAPL",
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   "not_configured",
		},
		{
			name:       "news not configured",
			method:     http.MethodGet,
			path:       "/api/news",
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   "not_configured",
		},
		{
			name:       "insufficient data",
			components: &app.Components{StockPrices: stubPrices{points: 10}},
			method:     http.MethodGet,
			path:       "/api/technical/stock/AAPL",
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "insufficient_data",
		},
		{
			name:       "upstream failure",
			components: &app.Components{StockPrices: stubPrices{err: errors.New("connection reset")}},
			method:     http.MethodGet,
			path:       "/api/technical/stock/AAPL",
			wantStatus: http.StatusBadGateway,
			wantKind:   "fetch_failed",
		},
		{
			name: "no news for symbol",
			components: &app.Components{
				StockPrices: stubPrices{points: 60},
				News:        stubNews{},
				Classifier:  stubClassifier{},
			},
			method:     http.MethodGet,
			path:       "/api/strategy/stock/AAPL",
			wantStatus: http.StatusNotFound,
			wantKind:   "no_sentiment_data",
		},
		{
			name:       "empty headlines",
			components: &app.Components{News: stubNews{}, Classifier: stubClassifier{}},
			method:     http.MethodGet,
			path:       "/api/news",
			wantStatus: http.StatusNotFound,
			wantKind:   "no_articles",
		},
		{
			name:       "bad recommend mode",
			method:     http.MethodGet,
			path:       "/api/recommend/stock?mode=best",
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
		{
			name:       "bad recommend count",
			method:     http.MethodGet,
			path:       "/api/recommend/stock?count=ten",
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
		{
			name:       "quick strategy malformed body",
			method:     http.MethodPost,
			path:       "/api/strategy/quick",
			body:       `{"sentiment":`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
		{
			name:       "quick strategy missing rsi",
			method:     http.MethodPost,
			path:       "/api/strategy/quick",
			body:       `{"sentiment":"positive"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
		{
			name:       "quick strategy rsi out of range",
			method:     http.MethodPost,
			path:       "/api/strategy/quick",
			body:       `{"sentiment":"positive","rsi":140}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(testApp(t, tt.components))

			w := serve(t, router, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if resp := decodeError(t, w); resp.Kind != tt.wantKind || resp.Error == "" {
				t.Errorf("error body = %+v, want kind %s", resp, tt.wantKind)
			}
		})
	}
}

func TestHandler_QuickStrategy(t *testing.T) {
	router := testRouter(testApp(t, nil))

	tests := []struct {
		body string
		want models.Signal
	}{
		{`{"sentiment":"positive","rsi":25}`, models.SignalBuy},
		{`{"sentiment":"NEGATIVE","rsi":75}`, models.SignalSell},
		{`{"sentiment":"positive","rsi":0}`, models.SignalBuy},
		{`{"sentiment":"neutral","rsi":50}`, models.SignalHold},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := serve(t, router, http.MethodPost, "/api/strategy/quick", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp QuickStrategyResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Signal != tt.want {
				t.Errorf("signal = %s, want %s", resp.Signal, tt.want)
			}
		})
	}
}

func TestHandler_Recommend(t *testing.T) {
	router := testRouter(configuredApp(t))

	t.Run("ranked mode honours count", func(t *testing.T) {
		w := serve(t, router, http.MethodGet, "/api/recommend/stock?mode=ranked&count=3", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var list models.RecommendationList
		if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
			t.Fatal(err)
		}
		if list.Mode != models.RankModeRanked || list.AssetClass != models.AssetClassStock {
			t.Errorf("unexpected list header: %s %s", list.Mode, list.AssetClass)
		}
		if len(list.Ranked) != 3 {
			t.Errorf("ranked = %d, want 3", len(list.Ranked))
		}
	})

	t.Run("non-positive count uses the default", func(t *testing.T) {
		w := serve(t, router, http.MethodGet, "/api/recommend/stock?mode=ranked&count=0", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var list models.RecommendationList
		if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
			t.Fatal(err)
		}
		if len(list.Ranked) != 10 {
			t.Errorf("ranked = %d, want default 10", len(list.Ranked))
		}
	})

	t.Run("buy mode is the default", func(t *testing.T) {
		w := serve(t, router, http.MethodGet, "/api/recommend/crypto", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var list models.RecommendationList
		if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
			t.Fatal(err)
		}
		if list.Mode != models.RankModeBuy {
			t.Errorf("mode = %s, want buy", list.Mode)
		}
		if len(list.Signals) == 0 && !list.Degraded {
			t.Error("an empty buy list must be marked degraded")
		}
	})
}

func TestHandler_Market(t *testing.T) {
	router := testRouter(testApp(t, &app.Components{StockPrices: stubPrices{points: 5}}))

	w := serve(t, router, http.MethodGet, "/api/market", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var overview models.MarketOverview
	if err := json.NewDecoder(w.Body).Decode(&overview); err != nil {
		t.Fatal(err)
	}
	for _, symbol := range []string{"SPY", "QQQ", "DIA"} {
		trend, ok := overview.Stock.Instruments[symbol]
		if !ok || trend.Error != "" {
			t.Errorf("%s: expected a trend, got %+v", symbol, trend)
		}
	}
	for symbol, trend := range overview.Crypto.Instruments {
		if trend.Error == "" {
			t.Errorf("%s: expected an error without crypto prices", symbol)
		}
	}
}

func TestHandler_ParseCountParam(t *testing.T) {
	h := NewHandler(nil, config.NewTestConfig())

	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 10, false},
		{"count=4", 4, false},
		{"count=250", 250, false},
		{"count=0", 0, false},
		{"count=-1", -1, false},
		{"count=abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.query), func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/recommend/stock?"+tt.query, nil)
			got, err := h.ParseCountParam(r, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandler_ValidateSymbol(t *testing.T) {
	h := NewHandler(nil, config.NewTestConfig())

	for _, ok := range []string{"AAPL", "BRK.B", "BTC-USD", "BTC/USD", "BTCUSDT"} {
		if err := h.ValidateSymbol(ok); err != nil {
			t.Errorf("ValidateSymbol(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "AAPL!", "aapl", "ABCDEFGHIJKLMNOP"} {
		if err := h.ValidateSymbol(bad); err == nil {
			t.Errorf("ValidateSymbol(%q) should fail", bad)
		}
	}
}
