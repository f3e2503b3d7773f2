package agents

import (
	"trade-signals/services"
)

// Type aliases for service interfaces - defined in services package
// These aliases allow agents to reference interfaces without importing concrete implementations
type PriceProvider = services.PriceProvider
type NewsProvider = services.NewsProvider
type SentimentClassifier = services.SentimentClassifier
type CommentaryGenerator = services.CommentaryGenerator
