package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-signals/cache"
	"trade-signals/config"
	"trade-signals/models"
	"trade-signals/observability"
	"trade-signals/services"
)

// LabelPolicy decides the label for articles the classifier did not call negative
type LabelPolicy string

const (
	// AmbiguousPositive counts ambiguous and unlabelled articles as positive
	AmbiguousPositive LabelPolicy = "positive"
	// AmbiguousNeutral counts them as neutral
	AmbiguousNeutral LabelPolicy = "neutral"
)

// ErrNoClassifier is returned when fusion is attempted without a configured classifier
var ErrNoClassifier = fmt.Errorf("sentiment classifier: %w", models.ErrNotConfigured)

// DeriveLabel maps a classifier verdict onto an article label.
// Negative stays negative; neutral leans negative only when its negative score beats the
// positive one; everything else, including a missing verdict, takes the policy default.
func DeriveLabel(c *models.ClassifierSentiment, policy LabelPolicy) models.SentimentLabel {
	fallback := models.SentimentPositive
	if policy == AmbiguousNeutral {
		fallback = models.SentimentNeutral
	}
	if c == nil {
		return fallback
	}

	switch strings.ToLower(c.Label) {
	case "negative":
		return models.SentimentNegative
	case "neutral":
		if c.ConfidenceScores.Negative > c.ConfidenceScores.Positive {
			return models.SentimentNegative
		}
		return fallback
	default:
		return fallback
	}
}

// Summarize computes the share of positive articles
func Summarize(symbol string, articles []models.NewsArticle) (models.SentimentSummary, error) {
	if len(articles) == 0 {
		return models.SentimentSummary{}, fmt.Errorf("%s: %w", symbol, models.ErrNoArticles)
	}

	positive := 0
	for _, a := range articles {
		if a.Label == models.SentimentPositive {
			positive++
		}
	}
	ratio := float64(positive) / float64(len(articles))

	return models.SentimentSummary{
		Symbol:        symbol,
		PositiveRatio: ratio,
		NegativeRatio: 1 - ratio,
		SampleSize:    len(articles),
	}, nil
}

// SentimentFuser combines classifier labels and model commentary for a set of articles.
// Whole reports are cached by query and titles; commentary is cached separately by titles
// and gated by the call budget.
type SentimentFuser struct {
	classifier      SentimentClassifier
	commentary      CommentaryGenerator
	bundles         *cache.Cache
	commentaryCache *cache.Cache
	budget          *cache.Budget
	policy          LabelPolicy
	batchSize       int
	maxCommentary   int
	now             func() time.Time
}

// NewSentimentFuser creates a SentimentFuser. A nil commentary generator disables commentary.
func NewSentimentFuser(
	classifier SentimentClassifier,
	commentary CommentaryGenerator,
	bundles, commentaryCache *cache.Cache,
	budget *cache.Budget,
	cfg *config.Config,
) *SentimentFuser {
	batch := cfg.Sentiment.ClassifierBatchSize
	if batch <= 0 || batch > services.MaxClassifierBatch {
		batch = services.MaxClassifierBatch
	}
	return &SentimentFuser{
		classifier:      classifier,
		commentary:      commentary,
		bundles:         bundles,
		commentaryCache: commentaryCache,
		budget:          budget,
		policy:          LabelPolicy(cfg.Sentiment.AmbiguousLabel),
		batchSize:       batch,
		maxCommentary:   cfg.Sentiment.CommentaryMaxArticles,
		now:             time.Now,
	}
}

// Fuse classifies and explains articles for query. The returned report always carries one
// explanation per article; commentary problems degrade the text, never the report.
func (f *SentimentFuser) Fuse(ctx context.Context, query string, articles []models.NewsArticle) (*models.SentimentReport, error) {
	if len(articles) == 0 {
		return nil, fmt.Errorf("%s: %w", query, models.ErrNoArticles)
	}

	titles := make([]string, len(articles))
	for i, a := range articles {
		titles[i] = a.Title
	}

	key := cache.Fingerprint(query, titles)
	var cached models.SentimentReport
	if hit, err := f.bundles.GetJSON(key, &cached); err != nil {
		observability.Warn("discarding unreadable cached report", "query", query, "error", err)
	} else if hit {
		cached.FromCache = true
		return &cached, nil
	}

	verdicts, err := f.classify(ctx, titles)
	if err != nil {
		return nil, models.NewFetchError("classifier", query, err)
	}

	explanations, status := f.explain(ctx, titles)
	observability.GetMetrics().RecordCommentaryOutcome(string(status))

	fused := make([]models.NewsArticle, len(articles))
	for i, a := range articles {
		if verdicts[i].Label != "" {
			v := verdicts[i]
			a.Classifier = &v
		}
		a.Commentary = explanations[i]
		a.Label = DeriveLabel(a.Classifier, f.policy)
		fused[i] = a
	}

	summary, err := Summarize(query, fused)
	if err != nil {
		return nil, err
	}
	observability.GetMetrics().RecordPositiveRatio(summary.PositiveRatio)

	report := &models.SentimentReport{
		Query:            query,
		Articles:         fused,
		Summary:          summary,
		CommentaryStatus: status,
		GeneratedAt:      f.now(),
	}

	// placeholder commentary is not cached so the next request can fill it in
	if !status.Degraded() || status == models.CommentaryDisabled {
		if err := f.bundles.SetJSON(ctx, key, report); err != nil {
			observability.Warn("failed to persist sentiment report", "query", query, "error", err)
		}
	}

	return report, nil
}

// classify labels titles in batches, preserving order
func (f *SentimentFuser) classify(ctx context.Context, titles []string) ([]models.ClassifierSentiment, error) {
	if f.classifier == nil {
		return nil, ErrNoClassifier
	}

	out := make([]models.ClassifierSentiment, 0, len(titles))
	for start := 0; start < len(titles); start += f.batchSize {
		end := min(start+f.batchSize, len(titles))
		batch, err := f.classifier.Classify(ctx, titles[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("classifier returned %d results for %d documents", len(batch), end-start)
		}
		out = append(out, batch...)
	}
	return out, nil
}

// explain produces one explanation per title and reports how they were obtained
func (f *SentimentFuser) explain(ctx context.Context, titles []string) ([]string, models.CommentaryStatus) {
	n := len(titles)
	if f.commentary == nil {
		return repeatText(NoAnalysisText, n), models.CommentaryDisabled
	}

	key := cache.Fingerprint("commentary", titles)
	var cached map[string][]string
	if hit, err := f.commentaryCache.GetJSON(key, &cached); err == nil && hit {
		if explanations, ok := lookupExplanations(cached, titles); ok {
			return explanations, models.CommentaryCached
		}
	}

	switch err := f.budget.Acquire(ctx); {
	case errors.Is(err, models.ErrRateLimited):
		observability.Warn("commentary rate limited", "headlines", n)
		return repeatText(RateLimitedText, n), models.CommentaryRateLimited
	case errors.Is(err, models.ErrBudgetExhausted):
		observability.Warn("commentary budget exhausted", "headlines", n)
		generic := make([]string, n)
		for i, t := range titles {
			generic[i] = GenericExplanation(t)
		}
		return generic, models.CommentaryBudgetExhausted
	case err != nil:
		return repeatText(UnavailableText, n), models.CommentaryError
	}

	prompted := titles
	if f.maxCommentary > 0 && len(prompted) > f.maxCommentary {
		prompted = prompted[:f.maxCommentary]
	}

	text, err := f.commentary.GenerateCommentary(ctx, prompted)
	if err != nil {
		if errors.Is(err, models.ErrThrottled) {
			f.budget.Release(ctx)
		}
		observability.Error("commentary generation failed", "headlines", n, "error", err)
		return repeatText(UnavailableText, n), models.CommentaryError
	}

	explanations := ParseCommentary(text, n)
	byTitle := make(map[string][]string, n)
	for i, t := range titles {
		byTitle[t] = append(byTitle[t], explanations[i])
	}
	if err := f.commentaryCache.SetJSON(ctx, key, byTitle); err != nil {
		observability.Warn("failed to persist commentary", "error", err)
	}
	return explanations, models.CommentaryOK
}

// lookupExplanations maps cached commentary back onto titles in their current order.
// Repeated titles take their explanations in the order they were generated.
func lookupExplanations(byTitle map[string][]string, titles []string) ([]string, bool) {
	out := make([]string, len(titles))
	used := make(map[string]int, len(titles))
	for i, t := range titles {
		k := used[t]
		if k >= len(byTitle[t]) {
			return nil, false
		}
		out[i] = byTitle[t][k]
		used[t] = k + 1
	}
	return out, true
}
