package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RankMode selects how a recommendation list is produced
type RankMode string

const (
	RankModeBuy    RankMode = "buy"
	RankModeRanked RankMode = "ranked"
)

// ParseRankMode converts a query value into a RankMode; empty means buy-only
func ParseRankMode(s string) (RankMode, error) {
	switch RankMode(s) {
	case "", RankModeBuy:
		return RankModeBuy, nil
	case RankModeRanked:
		return RankModeRanked, nil
	default:
		return "", fmt.Errorf("unknown recommendation mode %q: must be buy or ranked", s)
	}
}

// RankedRecommendation is one entry of a score-ranked list
type RankedRecommendation struct {
	Symbol            string          `json:"symbol"`
	Score             float64         `json:"score"`
	Price             decimal.Decimal `json:"price"`
	ChangePercent     decimal.Decimal `json:"change_percent"`
	FinalSignal       Signal          `json:"final_signal"`
	PositiveSentiment float64         `json:"positive_sentiment"`
	TechnicalSummary  string          `json:"technical_summary"`
}

// FallbackRecommendation is produced from indicators alone when no Buy signal was found.
// Nil indicator fields mean the value was not available.
type FallbackRecommendation struct {
	Symbol      string   `json:"symbol"`
	FinalSignal Signal   `json:"final_signal"`
	RSI         *float64 `json:"rsi"`
	LongMA      *float64 `json:"long_ma"`
	Volume      *float64 `json:"volume"`
	Available   bool     `json:"available"`
	Reason      string   `json:"reason,omitempty"`
}

// RecommendationList is the output of one ranking run
type RecommendationList struct {
	RunID       uuid.UUID                `json:"run_id"`
	AssetClass  AssetClass               `json:"asset_class"`
	Mode        RankMode                 `json:"mode"`
	Degraded    bool                     `json:"degraded"`
	Signals     []StrategySignal         `json:"signals,omitempty"`
	Fallback    []FallbackRecommendation `json:"fallback,omitempty"`
	Ranked      []RankedRecommendation   `json:"ranked,omitempty"`
	Skipped     int                      `json:"skipped"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// NewRecommendationList starts an empty list for a ranking run
func NewRecommendationList(class AssetClass, mode RankMode) *RecommendationList {
	return &RecommendationList{
		RunID:       uuid.New(),
		AssetClass:  class,
		Mode:        mode,
		GeneratedAt: time.Now(),
	}
}

// Len returns the number of entries regardless of which list is populated
func (l *RecommendationList) Len() int {
	return len(l.Signals) + len(l.Fallback) + len(l.Ranked)
}
