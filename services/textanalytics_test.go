package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTextAnalyticsService_Classify(t *testing.T) {
	isolateBreakers(t)

	var received sentimentRequest
	var gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		json.NewDecoder(r.Body).Decode(&received)
		// answer out of order with one rejected document
		w.Write([]byte(`{
			"documents": [
				{"id": "3", "sentiment": "Mixed", "confidenceScores": {"positive": 0.4, "neutral": 0.2, "negative": 0.4}},
				{"id": "1", "sentiment": "positive", "confidenceScores": {"positive": 0.9, "neutral": 0.05, "negative": 0.05}}
			],
			"errors": [{"id": "2", "error": {"code": "InvalidArgument", "message": "empty text"}}]
		}`))
	}))
	defer server.Close()

	s := NewTextAnalyticsService(server.URL+"/", "secret", 0)
	s.retry = NoRetry

	results, err := s.Classify(context.Background(), []string{"good news", "", "unclear"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/text/analytics/v3.1/sentiment" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("expected subscription key header, got %q", gotKey)
	}
	if len(received.Documents) != 3 || received.Documents[0].ID != "1" || received.Documents[2].Language != "en" {
		t.Errorf("unexpected request documents: %+v", received.Documents)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Label != "positive" || results[0].ConfidenceScores.Positive != 0.9 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Label != "" {
		t.Errorf("rejected document should have empty label, got %q", results[1].Label)
	}
	if results[2].Label != "mixed" {
		t.Errorf("labels should be lower-cased, got %q", results[2].Label)
	}
}

func TestTextAnalyticsService_Classify_Limits(t *testing.T) {
	s := NewTextAnalyticsService("http://unused", "k", 0)

	results, err := s.Classify(context.Background(), nil)
	if err != nil || results != nil {
		t.Errorf("empty input should be a no-op, got %v, %v", results, err)
	}

	tooMany := make([]string, MaxClassifierBatch+1)
	if _, err := s.Classify(context.Background(), tooMany); err == nil {
		t.Error("expected error for oversized batch")
	}
}
