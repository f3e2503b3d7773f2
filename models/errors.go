package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means the price series is shorter than the longest window required
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrNoArticles means there was nothing to classify or aggregate
	ErrNoArticles = errors.New("no articles to analyze")

	// ErrNoSentimentData means a symbol had no usable news for signal fusion
	ErrNoSentimentData = errors.New("no sentiment data")

	// ErrRateLimited means the commentary cooldown has not yet elapsed
	ErrRateLimited = errors.New("rate limited: try again later")

	// ErrBudgetExhausted means the daily commentary call budget is used up
	ErrBudgetExhausted = errors.New("daily call budget exhausted")

	// ErrThrottled means an upstream answered with a throttling status
	ErrThrottled = errors.New("upstream throttled the request")

	// ErrNotConfigured means the upstream needed for an operation has no credentials
	ErrNotConfigured = errors.New("upstream not configured")

	// ErrBusy means too many signal computations are already running
	ErrBusy = errors.New("too many concurrent requests, try again later")
)

// FetchError wraps a network or upstream failure while retrieving data for a symbol
type FetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("fetch from %s failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetch %s from %s failed: %v", e.Symbol, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err unless it already is a FetchError
func NewFetchError(source, symbol string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Source: source, Symbol: symbol, Err: err}
}

// ErrorKind returns a short machine-readable category for err
func ErrorKind(err error) string {
	var fe *FetchError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrNoSentimentData):
		return "no_sentiment_data"
	case errors.Is(err, ErrNoArticles):
		return "no_articles"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrBudgetExhausted):
		return "budget_exhausted"
	case errors.Is(err, ErrThrottled):
		return "throttled"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.As(err, &fe):
		return "fetch_failed"
	default:
		return "internal"
	}
}
