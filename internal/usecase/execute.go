package usecase

import (
	"context"

	"KisTrader/internal/domain/models"
	drepo "KisTrader/internal/domain/repository"
	xlogger "KisTrader/pkg/logger"
)

// ExecutionDriver submits a previewed order set through the gateway.
//
// Submissions are sequential and independent: an item produces zero, one,
// or two orders. The first failure aborts the remaining batch with no
// compensation for orders already accepted. There is no idempotency key:
// executing the same preview twice submits everything twice, and guarding
// against that is the caller's responsibility.
type ExecutionDriver struct {
	submitter drepo.OrderSubmitter
	events    drepo.OrderEventPublisher
	log       *xlogger.Logger
}

// NewExecutionDriver creates a driver; events may be nil to disable
// order-event publishing.
func NewExecutionDriver(submitter drepo.OrderSubmitter, events drepo.OrderEventPublisher, l *xlogger.Logger) *ExecutionDriver {
	return &ExecutionDriver{submitter: submitter, events: events, log: l}
}

// Execute submits the market tranche, then the limit tranche, of each
// item in order, collecting the per-tranche acknowledgments.
func (d *ExecutionDriver) Execute(ctx context.Context, items []models.PreviewItem) ([]models.OrderResult, error) {
	if len(items) == 0 {
		return nil, models.NewInvalidInput("items cannot be empty")
	}

	results := make([]models.OrderResult, 0, 2*len(items))
	for _, item := range items {
		if item.QtyMarket > 0 {
			ack, err := d.submitter.SubmitOrder(ctx, models.OrderInstruction{
				Symbol:   item.Symbol,
				Side:     models.SideBuy,
				Kind:     models.OrderKindMarket,
				Quantity: item.QtyMarket,
			})
			if err != nil {
				return nil, err
			}
			r := models.OrderResult{
				Symbol:    item.Symbol,
				OrderType: "market",
				Qty:       item.QtyMarket,
				Price:     0,
				Response:  ack,
			}
			results = append(results, r)
			d.publish(ctx, r)
		}

		if item.QtyLimit > 0 {
			ack, err := d.submitter.SubmitOrder(ctx, models.OrderInstruction{
				Symbol:   item.Symbol,
				Side:     models.SideBuy,
				Kind:     models.OrderKindLimit,
				Quantity: item.QtyLimit,
				Price:    item.LimitPrice,
			})
			if err != nil {
				return nil, err
			}
			r := models.OrderResult{
				Symbol:    item.Symbol,
				OrderType: "limit",
				Qty:       item.QtyLimit,
				Price:     item.LimitPrice,
				Response:  ack,
			}
			results = append(results, r)
			d.publish(ctx, r)
		}
	}
	return results, nil
}

// publish emits an order event, best-effort.
func (d *ExecutionDriver) publish(ctx context.Context, r models.OrderResult) {
	if d.events == nil {
		return
	}
	if err := d.events.Publish(ctx, r); err != nil {
		d.log.Warn("order event publish failed",
			xlogger.String("symbol", r.Symbol),
			xlogger.Error(err),
		)
	}
}
