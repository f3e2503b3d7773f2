package services

import (
	"context"

	"trade-signals/models"
)

// PriceProvider returns daily candles for one asset class
type PriceProvider interface {
	GetDailySeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error)
}

// NewsProvider retrieves articles for sentiment fusion
type NewsProvider interface {
	GetNews(ctx context.Context, query string, limit int) ([]models.NewsArticle, error)
	GetHeadlines(ctx context.Context, query string, limit int) ([]models.NewsArticle, error)
}

// SentimentClassifier labels up to MaxClassifierBatch documents per call, in order
type SentimentClassifier interface {
	Classify(ctx context.Context, texts []string) ([]models.ClassifierSentiment, error)
}

// CommentaryGenerator produces free-form commentary for a numbered list of headlines
type CommentaryGenerator interface {
	GenerateCommentary(ctx context.Context, headlines []string) (string, error)
}

// SymbolSource supplies a dynamic list of symbols for ranking
type SymbolSource interface {
	TopSymbols(ctx context.Context, limit int) ([]string, error)
}

// Compile-time interface verification
var _ PriceProvider = (*AlpacaService)(nil)
var _ PriceProvider = (*AlphaVantageService)(nil)
var _ PriceProvider = (*BinanceService)(nil)
var _ NewsProvider = (*NewsAPIService)(nil)
var _ SentimentClassifier = (*TextAnalyticsService)(nil)
var _ CommentaryGenerator = (*OpenAIService)(nil)
var _ CommentaryGenerator = (*BedrockService)(nil)
var _ SymbolSource = (*BinanceService)(nil)
var _ SymbolSource = (*FMPService)(nil)
