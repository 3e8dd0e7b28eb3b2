package repository

import (
	"context"

	"KisTrader/internal/domain/models"
)

// TokenProvider gates every brokerage call. Acquire returns the cached
// token when still valid; overrides permanently replace the stored
// credentials before the cache check.
type TokenProvider interface {
	Acquire(ctx context.Context, overrideKey, overrideSecret string) (models.Token, error)
}

// MarketDataSource serves daily OHLCV bars, most recent first. The mock
// implementation synthesizes bars without network calls.
type MarketDataSource interface {
	DailyPrices(ctx context.Context, symbol, start, end string) ([]models.PriceQuote, error)
}

// OrderSubmitter places one cash order and returns the raw gateway
// acknowledgment. Submissions are never retried here.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, ins models.OrderInstruction) (map[string]any, error)
}

// QuoteStream is a realtime tick feed for a single connection. One stream
// instance per consumer; not safe for shared use.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbol string) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Close() error
}

// OrderEventPublisher emits submitted-order events for downstream
// consumers. Best-effort: a publish failure never fails the order batch.
type OrderEventPublisher interface {
	Publish(ctx context.Context, r models.OrderResult) error
	Close() error
}

type Metrics interface {
	RecordTokenRefresh(mode string)
	RecordQuoteLatency(seconds float64)
	RecordOrderSubmitted(symbol, orderType string)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
}
