package usecase

import (
	"context"
	"math"

	"KisTrader/internal/domain/models"
	drepo "KisTrader/internal/domain/repository"
	xlogger "KisTrader/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// PreviewBuilder sizes market and limit tranches against live prices.
type PreviewBuilder struct {
	source      drepo.MarketDataSource
	metrics     drepo.Metrics
	log         *xlogger.Logger
	concurrency int
}

// NewPreviewBuilder creates a builder over a market data source.
func NewPreviewBuilder(source drepo.MarketDataSource, m drepo.Metrics, l *xlogger.Logger) *PreviewBuilder {
	return &PreviewBuilder{source: source, metrics: m, log: l, concurrency: 4}
}

// ClosePrices fetches the latest close per symbol, lookups issued
// concurrently and recombined by position. Any failed lookup fails the
// whole map; callers that tolerate gaps use Build instead.
func (b *PreviewBuilder) ClosePrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	closes := make([]float64, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			quotes, err := b.source.DailyPrices(gctx, symbol, "", "")
			if err != nil {
				return err
			}
			if len(quotes) > 0 {
				closes[i] = quotes[0].Close
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(symbols))
	for i, symbol := range symbols {
		prices[symbol] = closes[i]
	}
	return prices, nil
}

// Build prices every allocation and floors tranche quantities so cash
// needed never exceeds the allotment. One unavailable quote leaves that
// item's market tranche unsized instead of aborting the batch.
func (b *PreviewBuilder) Build(ctx context.Context, totalCash float64, allocs []models.AllocationItem) ([]models.PreviewItem, float64, error) {
	if len(allocs) == 0 {
		return nil, 0, models.NewInvalidInput("results cannot be empty")
	}

	items := make([]models.PreviewItem, len(allocs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, alloc := range allocs {
		g.Go(func() error {
			price := 0.0
			quotes, err := b.source.DailyPrices(gctx, alloc.Symbol, "", "")
			switch {
			case err != nil:
				b.log.Warn("quote unavailable, market tranche unsized",
					xlogger.String("symbol", alloc.Symbol),
					xlogger.Error(err),
				)
				if b.metrics != nil {
					b.metrics.RecordError("quote")
				}
			case len(quotes) > 0:
				price = quotes[0].Close
			}

			qtyMarket := 0
			if price > 0 {
				qtyMarket = int(math.Floor(alloc.InitialBuyCash / price))
			}
			qtyLimit := 0
			if alloc.LimitPriceHint > 0 {
				qtyLimit = int(math.Floor(alloc.DCACash / alloc.LimitPriceHint))
			}

			items[i] = models.PreviewItem{
				Symbol:     alloc.Symbol,
				Weight:     alloc.Weight,
				Price:      price,
				QtyMarket:  qtyMarket,
				QtyLimit:   qtyLimit,
				LimitPrice: alloc.LimitPriceHint,
				CashNeeded: round2(float64(qtyMarket)*price + float64(qtyLimit)*alloc.LimitPriceHint),
			}
			return nil
		})
	}
	// goroutines report failures as unsized items, never as errors
	_ = g.Wait()

	total := 0.0
	for _, item := range items {
		total += item.CashNeeded
	}
	total = round2(total)

	// floor sizing cannot overshoot consistent allocations; a breach means
	// the supplied allocations do not belong to totalCash
	if total > totalCash+0.01 {
		return nil, 0, models.NewInvalidInput("allocations require %.2f but total_cash is %.2f", total, totalCash)
	}
	return items, total, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
