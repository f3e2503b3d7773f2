package app

import (
	"context"
	"fmt"

	"trade-signals/config"
	"trade-signals/observability"
	"trade-signals/repository"
	"trade-signals/services"
)

// Components are the store and upstream clients an App is assembled from.
// A nil upstream disables the operations that need it.
type Components struct {
	Store         repository.Store
	StockPrices   services.PriceProvider
	CryptoPrices  services.PriceProvider
	News          services.NewsProvider
	Classifier    services.SentimentClassifier
	Commentary    services.CommentaryGenerator
	StockSymbols  services.SymbolSource
	CryptoSymbols services.SymbolSource
}

// BuildComponents opens the configured store and creates every upstream client the
// configuration has credentials for
func BuildComponents(ctx context.Context, cfg *config.Config) (*Components, error) {
	store, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	timeout := cfg.UpstreamTimeout()
	c := &Components{Store: store}

	binance := services.NewBinanceService(cfg.Binance.BaseURL, timeout)
	c.CryptoPrices = binance
	if cfg.MarketData.CryptoUniverseSource == "binance" {
		c.CryptoSymbols = binance
	}

	switch {
	case cfg.MarketData.StockProvider == "alphavantage" && cfg.HasAlphaVantage():
		c.StockPrices = services.NewAlphaVantageService(cfg.AlphaVantage.APIKey, timeout)
	case cfg.HasAlpaca():
		c.StockPrices = services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.BaseURL, timeout)
	case cfg.HasAlphaVantage():
		c.StockPrices = services.NewAlphaVantageService(cfg.AlphaVantage.APIKey, timeout)
	default:
		observability.Warn("no stock data credentials set, stock signals disabled")
	}

	if cfg.MarketData.StockUniverseSource == "fmp" && cfg.HasFMP() {
		c.StockSymbols = services.NewFMPService(cfg.FMP.APIKey, timeout)
	}

	if cfg.HasNewsAPI() {
		c.News = services.NewNewsAPIService(cfg.NewsAPI.APIKey, timeout)
	} else {
		observability.Warn("NEWS_API_KEY not set, news sentiment disabled")
	}

	if cfg.HasClassifier() {
		c.Classifier = services.NewTextAnalyticsService(cfg.Classifier.Endpoint, cfg.Classifier.APIKey, timeout)
	} else {
		observability.Warn("SENTIMENT_ENDPOINT or SENTIMENT_API_KEY not set, sentiment classification disabled")
	}

	c.Commentary = buildCommentary(ctx, cfg)
	return c, nil
}

func buildCommentary(ctx context.Context, cfg *config.Config) services.CommentaryGenerator {
	switch cfg.LLM.Provider {
	case "openai":
		svc, err := services.NewOpenAIService(cfg)
		if err != nil {
			observability.Warn("commentary disabled", "provider", "openai", "error", err)
			return nil
		}
		return svc
	case "bedrock":
		svc, err := services.NewBedrockService(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens)
		if err != nil {
			observability.Warn("commentary disabled", "provider", "bedrock", "error", err)
			return nil
		}
		return svc
	default:
		return nil
	}
}
