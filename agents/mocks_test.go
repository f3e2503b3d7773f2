package agents

import (
	"context"
	"sync"
	"testing"
	"time"

	"trade-signals/cache"
	"trade-signals/config"
	"trade-signals/models"
	"trade-signals/repository"
)

type mockPriceProvider struct {
	series map[string]*models.PriceSeries
	err    error
}

func (m *mockPriceProvider) GetDailySeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.series[symbol]
	if !ok {
		return &models.PriceSeries{Symbol: symbol}, nil
	}
	return s, nil
}

type mockNewsProvider struct {
	articles  []models.NewsArticle
	err       error
	lastQuery string
}

func (m *mockNewsProvider) GetNews(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.articles, nil
}

func (m *mockNewsProvider) GetHeadlines(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	return m.GetNews(ctx, query, limit)
}

// mockClassifier labels each text via labelFor, defaulting to positive
type mockClassifier struct {
	mu       sync.Mutex
	labelFor func(text string) models.ClassifierSentiment
	err      error
	batches  []int
}

func (m *mockClassifier) Classify(ctx context.Context, texts []string) ([]models.ClassifierSentiment, error) {
	m.mu.Lock()
	m.batches = append(m.batches, len(texts))
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.ClassifierSentiment, len(texts))
	for i, t := range texts {
		if m.labelFor != nil {
			out[i] = m.labelFor(t)
		} else {
			out[i] = models.ClassifierSentiment{Label: "positive"}
		}
	}
	return out, nil
}

func (m *mockClassifier) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

type mockCommentary struct {
	mu    sync.Mutex
	text  string
	err   error
	count int
}

func (m *mockCommentary) GenerateCommentary(ctx context.Context, headlines []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *mockCommentary) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// makeSeries builds a daily series from closes; volumes default to 1000
func makeSeries(symbol string, closes []float64, volumes []float64) *models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		v := 1000.0
		if volumes != nil {
			v = volumes[i]
		}
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		points[i] = models.PricePoint{Timestamp: start.AddDate(0, 0, i), Open: open, Close: c, Volume: v}
	}
	return &models.PriceSeries{Symbol: symbol, Points: points}
}

func rising(n int, from, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func articlesWithTitles(titles ...string) []models.NewsArticle {
	out := make([]models.NewsArticle, len(titles))
	for i, t := range titles {
		out[i] = models.NewsArticle{Title: t, Source: "test"}
	}
	return out
}

// fuserFixture bundles a fuser with its collaborators
type fuserFixture struct {
	fuser      *SentimentFuser
	classifier *mockClassifier
	commentary *mockCommentary
	budget     *cache.Budget
	bundles    *cache.Cache
	clock      *time.Time
}

func newFuserFixture(t *testing.T, commentary *mockCommentary, cooldown time.Duration, maxCalls int) *fuserFixture {
	t.Helper()

	store, err := repository.NewFileStore("")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := &now
	nowFn := func() time.Time { return *clock }

	cfg := config.NewTestConfig()
	bundles := cache.New(cache.NamespaceNews, 6*time.Hour, store).WithClock(nowFn)
	commentaryCache := cache.New(cache.NamespaceCommentary, 0, store).WithClock(nowFn)
	budget := cache.NewBudget(cooldown, maxCalls, time.UTC, store).WithClock(nowFn)
	classifier := &mockClassifier{}

	var gen CommentaryGenerator
	if commentary != nil {
		gen = commentary
	}
	fuser := NewSentimentFuser(classifier, gen, bundles, commentaryCache, budget, cfg)
	fuser.now = nowFn

	return &fuserFixture{
		fuser:      fuser,
		classifier: classifier,
		commentary: commentary,
		budget:     budget,
		bundles:    bundles,
		clock:      clock,
	}
}

func (f *fuserFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}
