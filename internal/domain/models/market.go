package models

import "time"

// Tick is a single realtime trade observation from the upstream stream.
type Tick struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}

// Candle represents an OHLCV bar. A sequence ordered oldest to newest
// forms a price history; bars are immutable once produced.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSample is one provider's close-price reading for a symbol.
// Ephemeral; produced per fetch and discarded after quorum resolution.
type PriceSample struct {
	Provider string
	Symbol   string
	Price    float64
}
