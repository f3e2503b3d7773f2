package models

import (
	"fmt"
	"strings"
	"time"
)

// AssetClass distinguishes the two supported instrument families
type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassCrypto AssetClass = "crypto"
)

// ParseAssetClass converts a route or config value into an AssetClass
func ParseAssetClass(s string) (AssetClass, error) {
	switch AssetClass(strings.ToLower(strings.TrimSpace(s))) {
	case AssetClassStock:
		return AssetClassStock, nil
	case AssetClassCrypto:
		return AssetClassCrypto, nil
	default:
		return "", fmt.Errorf("unknown asset class %q: must be stock or crypto", s)
	}
}

// PricePoint is a single daily candle
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is an ordered (oldest first) sequence of candles for one symbol.
// A series is fetched per request and never cached.
type PriceSeries struct {
	Symbol     string       `json:"symbol"`
	AssetClass AssetClass   `json:"asset_class"`
	Points     []PricePoint `json:"points"`
}

// Len returns the number of candles in the series
func (s *PriceSeries) Len() int {
	return len(s.Points)
}

// Closes returns the closing prices in chronological order
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Volumes returns the traded volumes in chronological order
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

// Latest returns the most recent candle, or false for an empty series
func (s *PriceSeries) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// TechnicalIndicators holds the indicators derived from a PriceSeries.
// RSI is nil when it could not be computed.
type TechnicalIndicators struct {
	Symbol        string    `json:"symbol"`
	RSI           *float64  `json:"rsi"`
	ShortMA       float64   `json:"short_ma"`
	LongMA        float64   `json:"long_ma"`
	ShortWindow   int       `json:"short_window"`
	LongWindow    int       `json:"long_window"`
	LatestVolume  float64   `json:"latest_volume"`
	AverageVolume float64   `json:"average_volume"`
	LatestClose   float64   `json:"latest_close"`
	PreviousClose float64   `json:"previous_close"`
	ComputedAt    time.Time `json:"computed_at"`
}
