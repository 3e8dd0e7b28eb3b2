package models

// PriceQuote is one daily OHLCV bar as served by the brokerage.
// Close is the canonical "current price" for allocation math.
type PriceQuote struct {
	Symbol string  `json:"-"`
	Date   string  `json:"date"` // YYYYMMDD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Tick is a single realtime price event from the quote stream.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"` // unix seconds
}
