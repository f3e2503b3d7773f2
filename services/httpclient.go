package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trade-signals/models"
	"trade-signals/observability"
)

// defaultTimeout is used when a client is created without an explicit timeout
const defaultTimeout = 30 * time.Second

// StatusError is returned when an upstream answers with a non-2xx status
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Unwrap exposes throttling answers as models.ErrThrottled
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return models.ErrThrottled
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doJSON sends req and decodes a 2xx JSON body into out
func doJSON(client *http.Client, service string, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Service: service, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return nil
}

// getJSON issues a GET with optional headers and decodes the JSON answer
func getJSON(ctx context.Context, client *http.Client, service, reqURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(client, service, req, out)
}

// observeCall records request, duration and error metrics for one upstream call.
// The returned func must be called with the call's final error.
func observeCall(service, operation string) func(error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(service, operation)
	timer := metrics.NewTimer()
	return func(err error) {
		timer.ObserveExternalAPI(service, operation)
		if err != nil {
			metrics.RecordExternalAPIError(service, operation, categorizeAPIError(err))
		}
	}
}

// runWithContext bounds a blocking call that does not accept a context
func runWithContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}

// categorizeAPIError categorizes an error for metrics purposes
func categorizeAPIError(err error) string {
	if err == nil {
		return "none"
	}
	switch {
	case errors.Is(err, models.ErrThrottled):
		return "rate_limit"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return "auth_error"
		case se.StatusCode >= 500:
			return "server_error"
		default:
			return "client_error"
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429"):
		return "rate_limit"
	case strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "401"):
		return "auth_error"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "network"):
		return "connection_error"
	default:
		return "unknown"
	}
}
