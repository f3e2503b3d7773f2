package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"trade-signals/config"
	"trade-signals/internal/app"
	"trade-signals/models"
	"trade-signals/observability"

	"github.com/go-chi/chi/v5"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9./-]+$`)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleIndex returns a welcome message
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, StatusResponse{
		Status:  "ok",
		Message: "Welcome to the trade signals API",
	})
}

// HandleHealth returns store, upstream, circuit breaker and budget status
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.app.Health(r.Context()))
}

// HandleNews fuses sentiment over the current business headlines
func (h *Handler) HandleNews(w http.ResponseWriter, r *http.Request) {
	h.newsSentiment(w, r, models.AssetClassStock)
}

// HandleCryptoNews fuses sentiment over the current crypto news
func (h *Handler) HandleCryptoNews(w http.ResponseWriter, r *http.Request) {
	h.newsSentiment(w, r, models.AssetClassCrypto)
}

func (h *Handler) newsSentiment(w http.ResponseWriter, r *http.Request, class models.AssetClass) {
	report, err := h.app.NewsSentiment(r.Context(), class)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.jsonResponse(w, report)
}

// HandleTechnical evaluates the indicators for one symbol
func (h *Handler) HandleTechnical(w http.ResponseWriter, r *http.Request) {
	class, symbol, ok := h.classAndSymbol(w, r)
	if !ok {
		return
	}

	indicators, err := h.app.Technical(r.Context(), symbol, class)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.jsonResponse(w, indicators)
}

// HandleStrategy computes the fused signal for one symbol
func (h *Handler) HandleStrategy(w http.ResponseWriter, r *http.Request) {
	class, symbol, ok := h.classAndSymbol(w, r)
	if !ok {
		return
	}

	signal, err := h.app.Signal(r.Context(), symbol, class)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.jsonResponse(w, signal)
}

// HandleQuickStrategy maps a sentiment label and RSI reading onto a signal
func (h *Handler) HandleQuickStrategy(w http.ResponseWriter, r *http.Request) {
	var req QuickStrategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", "bad_request", http.StatusBadRequest)
		return
	}
	req.Sentiment = strings.ToLower(strings.TrimSpace(req.Sentiment))
	if req.Sentiment == "" {
		h.jsonError(w, "sentiment is required", "bad_request", http.StatusBadRequest)
		return
	}
	if req.RSI == nil {
		h.jsonError(w, "rsi is required", "bad_request", http.StatusBadRequest)
		return
	}
	if *req.RSI < 0 || *req.RSI > 100 {
		h.jsonError(w, "rsi must be between 0 and 100", "bad_request", http.StatusBadRequest)
		return
	}

	h.jsonResponse(w, QuickStrategyResponse{
		Sentiment: req.Sentiment,
		RSI:       *req.RSI,
		Signal:    h.app.QuickStrategy(req.Sentiment, *req.RSI),
	})
}

// HandleRecommend ranks the universe of an asset class
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	class, err := models.ParseAssetClass(chi.URLParam(r, "class"))
	if err != nil {
		h.jsonError(w, err.Error(), "bad_request", http.StatusBadRequest)
		return
	}
	mode, err := models.ParseRankMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.jsonError(w, err.Error(), "bad_request", http.StatusBadRequest)
		return
	}
	count, err := h.ParseCountParam(r, h.cfg.Ranker.DefaultCount)
	if err != nil {
		h.jsonError(w, err.Error(), "bad_request", http.StatusBadRequest)
		return
	}

	list, err := h.app.Recommend(r.Context(), class, mode, count)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.jsonResponse(w, list)
}

// HandleMarket returns the index and crypto majors overview
func (h *Handler) HandleMarket(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.app.Market(r.Context()))
}

// Helper functions

func (h *Handler) classAndSymbol(w http.ResponseWriter, r *http.Request) (models.AssetClass, string, bool) {
	class, err := models.ParseAssetClass(chi.URLParam(r, "class"))
	if err != nil {
		h.jsonError(w, err.Error(), "bad_request", http.StatusBadRequest)
		return "", "", false
	}
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if err := h.ValidateSymbol(symbol); err != nil {
		h.jsonError(w, err.Error(), "bad_request", http.StatusBadRequest)
		return "", "", false
	}
	return class, symbol, true
}

// ValidateSymbol validates a stock ticker or crypto pair
func (h *Handler) ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	if len(symbol) > 15 {
		return fmt.Errorf("symbol too long (max 15 characters)")
	}

	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format (alphanumeric, dots, slashes and dashes only)")
	}

	return nil
}

// ParseCountParam parses the count query parameter. Zero or negative counts are
// passed through and the ranker substitutes its default.
func (h *Handler) ParseCountParam(r *http.Request, defaultCount int) (int, error) {
	countStr := r.URL.Query().Get("count")
	if countStr == "" {
		return defaultCount, nil
	}
	n, err := strconv.Atoi(countStr)
	if err != nil {
		return 0, fmt.Errorf("count must be an integer")
	}
	return n, nil
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var fe *models.FetchError
	switch {
	case errors.Is(err, models.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNoSentimentData), errors.Is(err, models.ErrNoArticles):
		return http.StatusNotFound
	case errors.As(err, &fe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.Warn("request failed",
			"path", r.URL.Path,
			"status", status,
			"error", err)
	}
	h.jsonError(w, err.Error(), models.ErrorKind(err), status)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message, kind string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Kind: kind})
}

// StatusResponse represents a status response
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// QuickStrategyRequest is the body of POST /api/strategy/quick
type QuickStrategyRequest struct {
	Sentiment string   `json:"sentiment"`
	RSI       *float64 `json:"rsi"`
}

// QuickStrategyResponse echoes the inputs with the resulting signal
type QuickStrategyResponse struct {
	Sentiment string        `json:"sentiment"`
	RSI       float64       `json:"rsi"`
	Signal    models.Signal `json:"signal"`
}
