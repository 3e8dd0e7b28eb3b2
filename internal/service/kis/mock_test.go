package kis

import (
	"context"
	"testing"
	"time"

	"KisTrader/internal/domain/models"
	xhttp "KisTrader/pkg/http"
	xlogger "KisTrader/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockPrice(t *testing.T) {
	assert.Equal(t, 50300.0, MockPrice("005930"), "last two digits 30")
	assert.Equal(t, 50000.0, MockPrice("005900"))
	assert.Equal(t, 50990.0, MockPrice("000099"))
	assert.Equal(t, 50000.0, MockPrice("X"), "short symbol falls back to base")
	assert.Equal(t, 50000.0, MockPrice("0059AB"), "non-numeric suffix falls back to base")
}

func TestMockDailyPricesSingleFlatBar(t *testing.T) {
	session := NewSession(mockConfig(), xhttp.NewClient(), nil, xlogger.Nop())
	m := NewMockClient(mockConfig(), session, nil)
	m.now = func() time.Time { return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC) }

	quotes, err := m.DailyPrices(context.Background(), "005930", "", "")
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	bar := quotes[0]
	assert.Equal(t, "20240102", bar.Date)
	assert.Equal(t, 50300.0, bar.Open)
	assert.Equal(t, 50300.0, bar.Close)
	assert.Equal(t, 0.0, bar.Volume)
}

func TestMockSubmitOrderEchoes(t *testing.T) {
	session := NewSession(mockConfig(), xhttp.NewClient(), nil, xlogger.Nop())
	m := NewMockClient(mockConfig(), session, nil)

	ack, err := m.SubmitOrder(context.Background(), models.OrderInstruction{
		Symbol:   "005930",
		Side:     models.SideBuy,
		Kind:     models.OrderKindLimit,
		Quantity: 3,
		Price:    48500,
	})
	require.NoError(t, err)

	assert.Equal(t, true, ack["mock"])
	assert.Equal(t, "VTTC0802U", ack["tr_id"])

	body, ok := ack["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "005930", body["PDNO"])
	assert.Equal(t, "00", body["ORD_DVSN"])
	assert.Equal(t, "3", body["ORD_QTY"])
	assert.Equal(t, "48500", body["ORD_UNPR"])
}
