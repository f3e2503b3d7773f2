package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestFMPService_TopSymbols(t *testing.T) {
	isolateBreakers(t)

	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock_market/actives" {
			http.NotFound(w, r)
			return
		}
		gotKey = r.URL.Query().Get("apikey")
		w.Write([]byte(`[
			{"symbol": "NVDA", "name": "NVIDIA", "change": 3.1, "price": 900, "changesPercentage": 0.3},
			{"symbol": "BAC-PL", "name": "Bank of America Pref", "change": 0, "price": 25, "changesPercentage": 0},
			{"symbol": "tsla", "name": "Tesla", "change": -2, "price": 180, "changesPercentage": -1.1},
			{"symbol": "BRK.B", "name": "Berkshire", "change": 1, "price": 400, "changesPercentage": 0.2},
			{"symbol": "AAPL", "name": "Apple", "change": 1, "price": 190, "changesPercentage": 0.5}
		]`))
	}))
	defer server.Close()

	s := NewFMPService("fmp-key", 0)
	s.baseURL = server.URL
	s.retry = NoRetry

	symbols, err := s.TopSymbols(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "fmp-key" {
		t.Errorf("expected apikey param, got %q", gotKey)
	}
	if want := []string{"NVDA", "TSLA"}; !reflect.DeepEqual(symbols, want) {
		t.Errorf("TopSymbols() = %v, want %v", symbols, want)
	}
}

func TestFMPService_TopSymbols_ServerError(t *testing.T) {
	isolateBreakers(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewFMPService("fmp-key", 0)
	s.baseURL = server.URL
	s.retry = NoRetry

	if _, err := s.TopSymbols(context.Background(), 10); err == nil {
		t.Error("expected error")
	}
}
