package kis

import (
	"context"
	"strconv"
	"time"

	"KisTrader/internal/domain/models"
	drepo "KisTrader/internal/domain/repository"
	"KisTrader/pkg/config"
)

// MockClient is the network-free gateway. It is behaviorally
// interchangeable with Client: same interfaces, deterministic data.
type MockClient struct {
	session    *Session
	cano       string
	acntPrdtCd string
	metrics    drepo.Metrics
	now        func() time.Time
}

// NewMockClient creates the deterministic gateway around a shared session.
func NewMockClient(cfg *config.Config, session *Session, m drepo.Metrics) *MockClient {
	return &MockClient{
		session:    session,
		cano:       cfg.KIS.CANO,
		acntPrdtCd: cfg.KIS.AcntPrdtCd,
		metrics:    m,
		now:        time.Now,
	}
}

var (
	_ drepo.MarketDataSource = (*MockClient)(nil)
	_ drepo.OrderSubmitter   = (*MockClient)(nil)
)

// MockPrice derives a deterministic price from the last two characters of
// the symbol.
func MockPrice(symbol string) float64 {
	digits := 0
	if len(symbol) >= 2 {
		if v, err := strconv.Atoi(symbol[len(symbol)-2:]); err == nil {
			digits = v
		}
	}
	return float64(50000 + digits*10)
}

// DailyPrices synthesizes a single flat bar dated today with zero volume.
func (m *MockClient) DailyPrices(_ context.Context, symbol, _, _ string) ([]models.PriceQuote, error) {
	price := MockPrice(symbol)
	if m.metrics != nil {
		m.metrics.RecordLastPrice(symbol, price)
	}
	return []models.PriceQuote{{
		Symbol: symbol,
		Date:   m.now().Format("20060102"),
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
		Volume: 0,
	}}, nil
}

// SubmitOrder echoes the constructed instruction back without submission.
func (m *MockClient) SubmitOrder(_ context.Context, ins models.OrderInstruction) (map[string]any, error) {
	price := "0"
	if ins.Kind == models.OrderKindLimit {
		price = strconv.FormatFloat(ins.Price, 'f', -1, 64)
	}
	body := map[string]any{
		"CANO":                 m.cano,
		"ACNT_PRDT_CD":         m.acntPrdtCd,
		"PDNO":                 ins.Symbol,
		"ORD_DVSN":             string(ins.Kind),
		"ORD_QTY":              strconv.Itoa(ins.Quantity),
		"ORD_UNPR":             price,
		"CMA_EVLU_AMT_ICLD_YN": "N",
		"OVRS_ICLD_YN":         "N",
	}
	if m.metrics != nil {
		m.metrics.RecordOrderSubmitted(ins.Symbol, ins.Kind.Name())
	}
	return map[string]any{
		"mock":  true,
		"tr_id": trID(m.session.Mode(), ins.Side),
		"body":  body,
	}, nil
}
