package agents

import (
	"fmt"
	"strings"

	"trade-signals/config"
	"trade-signals/models"
)

// Thresholds are the rule parameters used by Decide
type Thresholds struct {
	Oversold              float64
	Overbought            float64
	SentimentThreshold    float64
	VolumeSpikeMultiplier float64
}

// ThresholdsFor builds the thresholds for one asset profile
func ThresholdsFor(p AssetProfile, cfg *config.Config) Thresholds {
	return Thresholds{
		Oversold:              p.Oversold,
		Overbought:            p.Overbought,
		SentimentThreshold:    cfg.Strategy.SentimentThreshold,
		VolumeSpikeMultiplier: cfg.Strategy.VolumeSpikeMultiplier,
	}
}

// DefaultThresholds returns the reference rule parameters
func DefaultThresholds() Thresholds {
	return Thresholds{
		Oversold:              30,
		Overbought:            70,
		SentimentThreshold:    0.6,
		VolumeSpikeMultiplier: 1.5,
	}
}

// Decide applies the technical and sentiment rules and resolves them into one signal.
// Any rule can raise buy or sell; when both are raised the result is Hold.
func Decide(ind models.TechnicalIndicators, sent models.SentimentSummary, th Thresholds) models.StrategySignal {
	var buy, sell bool
	var reasons []string

	if ind.RSI != nil {
		switch rsi := *ind.RSI; {
		case rsi < th.Oversold:
			buy = true
			reasons = append(reasons, fmt.Sprintf("RSI %.1f is below oversold level %.0f", rsi, th.Oversold))
		case rsi > th.Overbought:
			sell = true
			reasons = append(reasons, fmt.Sprintf("RSI %.1f is above overbought level %.0f", rsi, th.Overbought))
		}
	}

	switch {
	case ind.ShortMA > ind.LongMA:
		buy = true
		reasons = append(reasons, fmt.Sprintf("MA%d %.2f is above MA%d %.2f", ind.ShortWindow, ind.ShortMA, ind.LongWindow, ind.LongMA))
	case ind.ShortMA < ind.LongMA:
		sell = true
		reasons = append(reasons, fmt.Sprintf("MA%d %.2f is below MA%d %.2f", ind.ShortWindow, ind.ShortMA, ind.LongWindow, ind.LongMA))
	}

	if ind.AverageVolume > 0 && ind.LatestVolume > ind.AverageVolume*th.VolumeSpikeMultiplier && !sell {
		sell = true
		reasons = append(reasons, fmt.Sprintf("volume %.0f spiked above %.1fx the %.0f average", ind.LatestVolume, th.VolumeSpikeMultiplier, ind.AverageVolume))
	}

	switch {
	case sent.PositiveRatio > th.SentimentThreshold:
		buy = true
		reasons = append(reasons, fmt.Sprintf("%.0f%% of %d articles are positive", sent.PositiveRatio*100, sent.SampleSize))
	case sent.NegativeRatio > th.SentimentThreshold:
		sell = true
		reasons = append(reasons, fmt.Sprintf("%.0f%% of %d articles are not positive", sent.NegativeRatio*100, sent.SampleSize))
	}

	final := models.ResolveSignal(buy, sell)
	if buy && sell {
		reasons = append(reasons, "buy and sell rules conflict")
	}

	return models.StrategySignal{
		Symbol:              ind.Symbol,
		BuySignal:           buy,
		SellSignal:          sell,
		FinalSignal:         final,
		TechnicalIndicators: ind,
		PositiveSentiment:   sent.PositiveRatio,
		NegativeSentiment:   sent.NegativeRatio,
		Reasons:             reasons,
	}
}

// QuickStrategy maps a sentiment label and an RSI reading onto a signal without fetching anything
func QuickStrategy(sentiment string, rsi float64) models.Signal {
	switch s := strings.ToLower(strings.TrimSpace(sentiment)); {
	case s == "positive" && rsi < 30:
		return models.SignalBuy
	case s == "negative" && rsi > 70:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}
