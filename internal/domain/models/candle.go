package models

import "time"

// Candle represents an OHLCV record for feature extraction.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Tick is a single trade print from a market stream.
type Tick struct {
	Symbol string
	Price  float64
	Volume float64
	At     time.Time
}
