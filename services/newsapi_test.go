package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"trade-signals/models"
)

const newsAPIFixture = `{
	"status": "ok",
	"totalResults": 3,
	"articles": [
		{
			"source": {"id": "reuters", "name": "Reuters"},
			"author": "Jane Doe",
			"title": "Apple beats earnings expectations",
			"description": "Strong iPhone sales",
			"url": "https://example.com/a",
			"urlToImage": "https://example.com/a.png",
			"publishedAt": "2024-05-02T20:30:00Z",
			"content": "Apple reported..."
		},
		{
			"source": {"id": null, "name": "Unknown"},
			"title": "[Removed]",
			"publishedAt": "2024-05-02T20:00:00Z"
		},
		{
			"source": {"id": null, "name": "Blog"},
			"title": "Apple supplier warns on demand",
			"publishedAt": "not-a-date"
		}
	]
}`

func newTestNewsAPIService(url string) *NewsAPIService {
	s := NewNewsAPIService("test-key", 0)
	s.baseURL = url
	s.retry = NoRetry
	return s
}

func TestNewsAPIService_GetNews(t *testing.T) {
	isolateBreakers(t)

	var gotPath, gotKey, gotQuery, gotPageSize string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.Query().Get("q")
		gotPageSize = r.URL.Query().Get("pageSize")
		w.Write([]byte(newsAPIFixture))
	}))
	defer server.Close()

	s := newTestNewsAPIService(server.URL)
	articles, err := s.GetNews(context.Background(), "AAPL stock", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/everything" {
		t.Errorf("expected /everything, got %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if gotQuery != "AAPL stock" {
		t.Errorf("expected query 'AAPL stock', got %q", gotQuery)
	}
	if gotPageSize != "5" {
		t.Errorf("expected pageSize 5, got %s", gotPageSize)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles (removed one skipped), got %d", len(articles))
	}
	first := articles[0]
	if first.Title != "Apple beats earnings expectations" || first.Source != "Reuters" || first.Author != "Jane Doe" {
		t.Errorf("unexpected first article: %+v", first)
	}
	if first.PublishedAt.Year() != 2024 {
		t.Errorf("expected parsed timestamp, got %v", first.PublishedAt)
	}
	if articles[1].PublishedAt.IsZero() {
		t.Error("unparseable timestamp should fall back to now")
	}
}

func TestNewsAPIService_GetHeadlines(t *testing.T) {
	isolateBreakers(t)

	var gotPath, gotCountry, gotCategory string
	var hasQuery bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCountry = r.URL.Query().Get("country")
		gotCategory = r.URL.Query().Get("category")
		_, hasQuery = r.URL.Query()["q"]
		w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	}))
	defer server.Close()

	s := newTestNewsAPIService(server.URL)
	articles, err := s.GetHeadlines(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Errorf("expected no articles, got %d", len(articles))
	}
	if gotPath != "/top-headlines" || gotCountry != "us" || gotCategory != "business" {
		t.Errorf("unexpected request: path=%s country=%s category=%s", gotPath, gotCountry, gotCategory)
	}
	if hasQuery {
		t.Error("empty query should not be sent")
	}
}

func TestNewsAPIService_Throttled(t *testing.T) {
	isolateBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"status":"error","code":"rateLimited"}`))
	}))
	defer server.Close()

	s := newTestNewsAPIService(server.URL)
	_, err := s.GetNews(context.Background(), "BTC crypto", 5)
	if !errors.Is(err, models.ErrThrottled) {
		t.Errorf("expected ErrThrottled, got %v", err)
	}
}

func TestClampPageSize(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 10},
		{5, 5},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		if got := clampPageSize(tt.in); got != tt.want {
			t.Errorf("clampPageSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
