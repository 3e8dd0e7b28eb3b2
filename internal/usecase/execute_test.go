package usecase

import (
	"context"
	"errors"
	"testing"

	"KisTrader/internal/domain/models"
	xlogger "KisTrader/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	submitted []models.OrderInstruction
	failOn    string
}

func (f *fakeSubmitter) SubmitOrder(_ context.Context, ins models.OrderInstruction) (map[string]any, error) {
	if ins.Symbol == f.failOn {
		return nil, &models.OrderError{Symbol: ins.Symbol, Status: 500, Body: "rejected"}
	}
	f.submitted = append(f.submitted, ins)
	return map[string]any{"rt_cd": "0"}, nil
}

type fakeEvents struct {
	published []models.OrderResult
	err       error
}

func (f *fakeEvents) Publish(_ context.Context, r models.OrderResult) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, r)
	return nil
}

func (f *fakeEvents) Close() error { return nil }

func TestExecuteSubmitsBothTranches(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewExecutionDriver(sub, nil, xlogger.Nop())

	items := []models.PreviewItem{{
		Symbol:     "AAA",
		QtyMarket:  5,
		QtyLimit:   3,
		LimitPrice: 48500,
	}}

	results, err := d.Execute(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, sub.submitted, 2)

	market := sub.submitted[0]
	assert.Equal(t, models.OrderKindMarket, market.Kind)
	assert.Equal(t, 5, market.Quantity)
	assert.Equal(t, 0.0, market.Price)

	limit := sub.submitted[1]
	assert.Equal(t, models.OrderKindLimit, limit.Kind)
	assert.Equal(t, 3, limit.Quantity)
	assert.Equal(t, 48500.0, limit.Price)

	assert.Equal(t, "market", results[0].OrderType)
	assert.Equal(t, "limit", results[1].OrderType)
}

func TestExecuteSkipsZeroQuantities(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewExecutionDriver(sub, nil, xlogger.Nop())

	results, err := d.Execute(context.Background(), []models.PreviewItem{{Symbol: "AAA"}})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, sub.submitted)
}

func TestExecuteAbortsOnFirstFailure(t *testing.T) {
	sub := &fakeSubmitter{failOn: "BBB"}
	d := NewExecutionDriver(sub, nil, xlogger.Nop())

	items := []models.PreviewItem{
		{Symbol: "AAA", QtyMarket: 1},
		{Symbol: "BBB", QtyMarket: 1},
		{Symbol: "CCC", QtyMarket: 1},
	}

	_, err := d.Execute(context.Background(), items)
	var orderErr *models.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, "BBB", orderErr.Symbol)

	// AAA went through and is not compensated; CCC never submitted.
	require.Len(t, sub.submitted, 1)
	assert.Equal(t, "AAA", sub.submitted[0].Symbol)
}

func TestExecuteIsNotIdempotent(t *testing.T) {
	sub := &fakeSubmitter{}
	d := NewExecutionDriver(sub, nil, xlogger.Nop())

	items := []models.PreviewItem{{Symbol: "AAA", QtyMarket: 2}}

	_, err := d.Execute(context.Background(), items)
	require.NoError(t, err)
	_, err = d.Execute(context.Background(), items)
	require.NoError(t, err)

	assert.Len(t, sub.submitted, 2, "repeating execute resubmits")
}

func TestExecutePublishesOrderEvents(t *testing.T) {
	sub := &fakeSubmitter{}
	events := &fakeEvents{}
	d := NewExecutionDriver(sub, events, xlogger.Nop())

	items := []models.PreviewItem{{Symbol: "AAA", QtyMarket: 1, QtyLimit: 1, LimitPrice: 100}}

	results, err := d.Execute(context.Background(), items)
	require.NoError(t, err)
	assert.Len(t, events.published, len(results))
}

func TestExecutePublishFailureDoesNotFailBatch(t *testing.T) {
	sub := &fakeSubmitter{}
	events := &fakeEvents{err: errors.New("broker unreachable")}
	d := NewExecutionDriver(sub, events, xlogger.Nop())

	results, err := d.Execute(context.Background(), []models.PreviewItem{{Symbol: "AAA", QtyMarket: 1}})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestExecuteRejectsEmpty(t *testing.T) {
	d := NewExecutionDriver(&fakeSubmitter{}, nil, xlogger.Nop())
	_, err := d.Execute(context.Background(), nil)
	var invalid *models.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}
