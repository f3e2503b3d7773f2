package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentTrend is the latest daily move of one instrument
type InstrumentTrend struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Error         string          `json:"error,omitempty"`
}

// MarketTrend summarises a group of instruments
type MarketTrend struct {
	Instruments map[string]InstrumentTrend `json:"instruments"`
	AvgTrend    decimal.Decimal            `json:"avg_trend"`
}

// MarketOverview is the dashboard summary of index proxies and crypto majors
type MarketOverview struct {
	Stock       MarketTrend `json:"stock_market"`
	Crypto      MarketTrend `json:"crypto_market"`
	GeneratedAt time.Time   `json:"generated_at"`
}
