package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trade-signals/models"
)

// MaxClassifierBatch is the largest number of documents accepted per classify call
const MaxClassifierBatch = 10

// TextAnalyticsService calls an Azure Text Analytics compatible sentiment endpoint
type TextAnalyticsService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	retry      RetryConfig
}

// NewTextAnalyticsService creates a new TextAnalyticsService instance
func NewTextAnalyticsService(endpoint, apiKey string, timeout time.Duration) *TextAnalyticsService {
	return &TextAnalyticsService{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		retry:      DefaultRetryConfig,
	}
}

type sentimentDocument struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type sentimentRequest struct {
	Documents []sentimentDocument `json:"documents"`
}

// SentimentResponse is the v3.1 sentiment analysis response
type SentimentResponse struct {
	Documents []struct {
		ID               string                  `json:"id"`
		Sentiment        string                  `json:"sentiment"`
		ConfidenceScores models.ConfidenceScores `json:"confidenceScores"`
	} `json:"documents"`
	Errors []struct {
		ID    string `json:"id"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"errors"`
}

// Classify labels texts in order. Documents the service rejected come back with an empty label.
func (s *TextAnalyticsService) Classify(ctx context.Context, texts []string) ([]models.ClassifierSentiment, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) > MaxClassifierBatch {
		return nil, fmt.Errorf("classifier accepts at most %d documents, got %d", MaxClassifierBatch, len(texts))
	}

	reqBody := sentimentRequest{Documents: make([]sentimentDocument, len(texts))}
	for i, text := range texts {
		reqBody.Documents[i] = sentimentDocument{ID: strconv.Itoa(i + 1), Language: "en", Text: text}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	done := observeCall(BreakerClassifier, "sentiment")
	resp, err := WithCircuitBreaker(ctx, BreakerClassifier, func() (*SentimentResponse, error) {
		var out SentimentResponse
		// Sentiment scoring is a pure read of its input, so retrying is safe.
		err := WithRetry(ctx, s.retry, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				s.endpoint+"/text/analytics/v3.1/sentiment", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Ocp-Apim-Subscription-Key", s.apiKey)
			return doJSON(s.httpClient, BreakerClassifier, req, &out)
		})
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
	done(err)
	if err != nil {
		return nil, err
	}

	results := make([]models.ClassifierSentiment, len(texts))
	for _, doc := range resp.Documents {
		idx, err := strconv.Atoi(doc.ID)
		if err != nil || idx < 1 || idx > len(texts) {
			continue
		}
		results[idx-1] = models.ClassifierSentiment{
			Label:            strings.ToLower(doc.Sentiment),
			ConfidenceScores: doc.ConfidenceScores,
		}
	}
	return results, nil
}
