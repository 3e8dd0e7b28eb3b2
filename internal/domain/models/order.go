package models

import "time"

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderKind selects market or limit execution. The string values are the
// KIS ORD_DVSN division codes sent on the wire.
type OrderKind string

const (
	OrderKindMarket OrderKind = "01"
	OrderKindLimit  OrderKind = "00"
)

// Name returns the human-readable order type ("market" or "limit").
func (k OrderKind) Name() string {
	if k == OrderKindMarket {
		return "market"
	}
	return "limit"
}

// OrderInstruction is one concrete order to submit. Market orders carry
// Price 0; the gateway serializes it as the unconditional-execution price.
type OrderInstruction struct {
	Symbol   string
	Side     Side
	Kind     OrderKind
	Quantity int
	Price    float64
}

// OrderResult pairs a submitted instruction with the raw gateway
// acknowledgment. The response is an opaque pass-through.
type OrderResult struct {
	Symbol    string         `json:"symbol"`
	OrderType string         `json:"order_type"`
	Qty       int            `json:"qty"`
	Price     float64        `json:"price"`
	Response  map[string]any `json:"response"`
}

// Token is a brokerage access token with its expiry.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
