package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trade-signals/models"
	"trade-signals/observability"
)

// NewsAPIService handles communication with NewsAPI.org
type NewsAPIService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	retry      RetryConfig
}

// NewNewsAPIService creates a new NewsAPIService instance
func NewNewsAPIService(apiKey string, timeout time.Duration) *NewsAPIService {
	return &NewsAPIService{
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		baseURL:    "https://newsapi.org/v2",
		retry:      DefaultRetryConfig,
	}
}

// NewsAPIResponse represents the response from NewsAPI
type NewsAPIResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// GetNews searches all articles for a query such as "AAPL stock"
func (s *NewsAPIService) GetNews(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(clampPageSize(limit)))

	return s.fetch(ctx, "everything", "/everything?"+params.Encode())
}

// GetHeadlines returns top US business headlines, optionally filtered by query
func (s *NewsAPIService) GetHeadlines(ctx context.Context, query string, limit int) ([]models.NewsArticle, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	params.Set("country", "us")
	params.Set("category", "business")
	params.Set("pageSize", strconv.Itoa(clampPageSize(limit)))

	return s.fetch(ctx, "top_headlines", "/top-headlines?"+params.Encode())
}

func (s *NewsAPIService) fetch(ctx context.Context, operation, path string) ([]models.NewsArticle, error) {
	done := observeCall(BreakerNewsAPI, operation)

	articles, err := WithCircuitBreaker(ctx, BreakerNewsAPI, func() ([]models.NewsArticle, error) {
		var newsResp NewsAPIResponse
		err := WithRetry(ctx, s.retry, func() error {
			return getJSON(ctx, s.httpClient, BreakerNewsAPI, s.baseURL+path,
				map[string]string{"X-Api-Key": s.apiKey}, &newsResp)
		})
		if err != nil {
			return nil, err
		}
		return convertNewsAPIArticles(newsResp), nil
	})

	done(err)
	return articles, err
}

func convertNewsAPIArticles(resp NewsAPIResponse) []models.NewsArticle {
	articles := make([]models.NewsArticle, 0, len(resp.Articles))
	for _, item := range resp.Articles {
		title := strings.TrimSpace(item.Title)
		if title == "" || title == "[Removed]" {
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			observability.Debug("unparseable article timestamp, using current time",
				"published_at", item.PublishedAt, "error", err)
			publishedAt = time.Now()
		}

		articles = append(articles, models.NewsArticle{
			Title:       title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.URL,
			Source:      item.Source.Name,
			Author:      item.Author,
			ImageURL:    item.URLToImage,
			PublishedAt: publishedAt,
		})
	}
	return articles
}

func clampPageSize(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
