package models

import (
	"time"
)

// SentimentLabel is the derived per-article polarity
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// ConfidenceScores are the classifier's per-class scores
type ConfidenceScores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// ClassifierSentiment is the external classifier's verdict for one document
type ClassifierSentiment struct {
	Label            string           `json:"sentiment"`
	ConfidenceScores ConfidenceScores `json:"confidence_scores"`
}

// NewsArticle represents a news article together with the analysis attached to it
type NewsArticle struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Content     string               `json:"content,omitempty"`
	URL         string               `json:"url"`
	Source      string               `json:"source"`
	Author      string               `json:"author,omitempty"`
	ImageURL    string               `json:"image_url,omitempty"`
	PublishedAt time.Time            `json:"published_at"`
	Classifier  *ClassifierSentiment `json:"sentiment,omitempty"`
	Commentary  string               `json:"explanation,omitempty"`
	Label       SentimentLabel       `json:"label,omitempty"`
}

// SentimentSummary aggregates article labels for one symbol or query
type SentimentSummary struct {
	Symbol        string  `json:"symbol"`
	PositiveRatio float64 `json:"positive_ratio"`
	NegativeRatio float64 `json:"negative_ratio"`
	SampleSize    int     `json:"sample_size"`
}

// CommentaryStatus describes how the commentary leg of a report was produced
type CommentaryStatus string

const (
	CommentaryOK              CommentaryStatus = "ok"
	CommentaryCached          CommentaryStatus = "cached"
	CommentaryRateLimited     CommentaryStatus = "rate_limited"
	CommentaryBudgetExhausted CommentaryStatus = "budget_exhausted"
	CommentaryError           CommentaryStatus = "error"
	CommentaryDisabled        CommentaryStatus = "disabled"
)

// Degraded reports whether the commentary is a placeholder rather than model output
func (s CommentaryStatus) Degraded() bool {
	return s != CommentaryOK && s != CommentaryCached
}

// SentimentReport is the result of fusing classifier sentiment and commentary over a set of articles
type SentimentReport struct {
	Query            string           `json:"query"`
	Articles         []NewsArticle    `json:"articles"`
	Summary          SentimentSummary `json:"summary"`
	CommentaryStatus CommentaryStatus `json:"commentary_status"`
	FromCache        bool             `json:"from_cache"`
	GeneratedAt      time.Time        `json:"generated_at"`
}
