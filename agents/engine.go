package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-signals/config"
	"trade-signals/models"
	"trade-signals/observability"
)

// Engine produces a fused strategy signal for one symbol
type Engine struct {
	technical         *TechnicalEvaluator
	news              NewsProvider
	fuser             *SentimentFuser
	thresholds        map[models.AssetClass]Thresholds
	articlesPerSymbol int
	now               func() time.Time
}

// NewEngine creates an Engine
func NewEngine(technical *TechnicalEvaluator, news NewsProvider, fuser *SentimentFuser, cfg *config.Config) *Engine {
	articles := cfg.Sentiment.ArticlesPerSymbol
	if articles <= 0 {
		articles = 5
	}
	return &Engine{
		technical: technical,
		news:      news,
		fuser:     fuser,
		thresholds: map[models.AssetClass]Thresholds{
			models.AssetClassStock:  ThresholdsFor(technical.Profile(models.AssetClassStock), cfg),
			models.AssetClassCrypto: ThresholdsFor(technical.Profile(models.AssetClassCrypto), cfg),
		},
		articlesPerSymbol: articles,
		now:               time.Now,
	}
}

// Technical exposes the evaluator used by the engine
func (e *Engine) Technical() *TechnicalEvaluator {
	return e.technical
}

// NewsQuery is the search phrase used to find articles about symbol
func NewsQuery(symbol string, class models.AssetClass) string {
	return strings.ToUpper(symbol) + " " + string(class)
}

// ComputeSignal evaluates technicals first, then news sentiment, and fuses both.
// Insufficient price data and price fetch failures are returned unchanged; a symbol
// without any articles yields ErrNoSentimentData.
func (e *Engine) ComputeSignal(ctx context.Context, symbol string, class models.AssetClass) (sig *models.StrategySignal, err error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	logger := observability.WithSymbol(symbol)

	metrics := observability.GetMetrics()
	metrics.RecordSignalRequest(string(class))
	timer := metrics.NewTimer()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			metrics.RecordSignalError(string(class), models.ErrorKind(err))
		}
		timer.ObserveSignal(string(class), status)
	}()

	ind, err := e.technical.EvaluateSymbol(ctx, symbol, class)
	if err != nil {
		logger.Warn("technical evaluation failed", "asset_class", class, "error", err)
		return nil, err
	}

	if e.news == nil {
		return nil, fmt.Errorf("news: %w", models.ErrNotConfigured)
	}

	query := NewsQuery(symbol, class)
	articles, err := e.news.GetNews(ctx, query, e.articlesPerSymbol)
	if err != nil {
		return nil, models.NewFetchError("news", symbol, err)
	}
	if len(articles) > e.articlesPerSymbol {
		articles = articles[:e.articlesPerSymbol]
	}

	report, err := e.fuser.Fuse(ctx, query, articles)
	if errors.Is(err, models.ErrNoArticles) {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoSentimentData)
	}
	if err != nil {
		return nil, err
	}

	summary := report.Summary
	summary.Symbol = symbol

	th, ok := e.thresholds[class]
	if !ok {
		th = DefaultThresholds()
	}
	decision := Decide(*ind, summary, th)
	decision.Symbol = symbol
	decision.AssetClass = class
	decision.GeneratedAt = e.now()

	metrics.RecordFinalSignal(string(class), string(decision.FinalSignal))
	logger.Info("strategy signal computed",
		"asset_class", class,
		"signal", decision.FinalSignal,
		"positive_ratio", summary.PositiveRatio,
		"commentary", report.CommentaryStatus)

	return &decision, nil
}
