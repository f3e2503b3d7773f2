package models

import (
	"time"
)

// Signal is the final trading stance for a symbol
type Signal string

const (
	SignalBuy  Signal = "Buy"
	SignalSell Signal = "Sell"
	SignalHold Signal = "Hold"
)

// Strength maps a signal onto [0, 1] for ranking
func (s Signal) Strength() float64 {
	switch s {
	case SignalBuy:
		return 1
	case SignalSell:
		return 0
	default:
		return 0.5
	}
}

// ResolveSignal collapses the buy and sell flags into one signal.
// Conflicting or absent flags resolve to Hold.
func ResolveSignal(buy, sell bool) Signal {
	switch {
	case buy && !sell:
		return SignalBuy
	case sell && !buy:
		return SignalSell
	default:
		return SignalHold
	}
}

// StrategySignal is the fused technical and sentiment verdict for one symbol
type StrategySignal struct {
	Symbol              string              `json:"symbol"`
	AssetClass          AssetClass          `json:"asset_class"`
	BuySignal           bool                `json:"buy_signal"`
	SellSignal          bool                `json:"sell_signal"`
	FinalSignal         Signal              `json:"final_signal"`
	TechnicalIndicators TechnicalIndicators `json:"technical_indicators"`
	PositiveSentiment   float64             `json:"positive_sentiment"`
	NegativeSentiment   float64             `json:"negative_sentiment"`
	Reasons             []string            `json:"reasons"`
	GeneratedAt         time.Time           `json:"generated_at"`
}
