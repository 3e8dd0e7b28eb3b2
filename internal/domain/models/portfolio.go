package models

// PortfolioItem is one candidate holding: a symbol plus the free-text
// reason it was picked. The reason feeds the weight policy.
type PortfolioItem struct {
	Symbol string `json:"symbol" validate:"required"`
	Reason string `json:"reason"`
}

// AllocationItem is the calculator's output for one symbol: its weight of
// the total cash, the immediate market-buy tranche, the DCA limit tranche,
// and the discounted limit price hint. Immutable once produced.
type AllocationItem struct {
	Symbol         string  `json:"symbol"`
	Weight         float64 `json:"weight"`
	InitialBuyCash float64 `json:"initial_buy_cash" validate:"gte=0"`
	DCACash        float64 `json:"dca_cash" validate:"gte=0"`
	LimitPriceHint float64 `json:"limit_price_hint" validate:"gte=0"`
}

// PreviewItem sizes both tranches of one allocation against a live price.
// Quantities are floor-divided so CashNeeded never exceeds the allotment.
type PreviewItem struct {
	Symbol     string  `json:"symbol"`
	Weight     float64 `json:"weight"`
	Price      float64 `json:"price"`
	QtyMarket  int     `json:"qty_market" validate:"gte=0"`
	QtyLimit   int     `json:"qty_limit" validate:"gte=0"`
	LimitPrice float64 `json:"limit_price"`
	CashNeeded float64 `json:"cash_needed"`
}
