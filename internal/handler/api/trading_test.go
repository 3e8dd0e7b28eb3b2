package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"KisTrader/internal/domain/models"
	"KisTrader/internal/service/kis"
	"KisTrader/internal/usecase"
	"KisTrader/pkg/cache"
	"KisTrader/pkg/config"
	xhttp "KisTrader/pkg/http"
	xlogger "KisTrader/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := &config.Config{}
	cfg.KIS.BaseURL = "https://openapivts.koreainvestment.com:29443"
	cfg.KIS.CustType = "P"
	cfg.KIS.Mode = "virtual"
	cfg.KIS.Mock = true
	cfg.KIS.TokenTTLStrategy = "short"
	cfg.KIS.CANO = "12345678"
	cfg.KIS.AcntPrdtCd = "01"

	l := xlogger.Nop()
	session := kis.NewSession(cfg, xhttp.NewClient(), nil, l)
	gateway := kis.NewMockClient(cfg, session, nil)

	h := NewTradingHandler(
		l,
		session,
		gateway,
		usecase.NewAllocationCalculator(nil),
		usecase.NewPreviewBuilder(gateway, nil, l),
		usecase.NewExecutionDriver(gateway, nil, l),
		cache.NewMemoryCache(),
		30*time.Second,
		nil,
		cfg.KIS.BaseURL,
	)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "virtual", res.Mode)
	assert.Equal(t, "https://openapivts.koreainvestment.com:29443", res.BaseURL)
}

func TestTokenEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/kis/token", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, kis.MockToken, res.AccessToken)
	assert.True(t, res.ExpiresAt.After(time.Now()))
}

func TestTokenEndpointRejectsBadMode(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/kis/token", `{"mode":"paper"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestTokenEndpointSwitchesMode(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/kis/token", `{"mode":"real"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/health", "")
	var res models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "real", res.Mode)
}

func TestDailyQuotesEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/quotes/daily?symbol=005930", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.DailyQuotesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "005930", res.Symbol)
	require.Len(t, res.Prices, 1)
	assert.Equal(t, 50300.0, res.Prices[0].Close)

	// second hit is served from cache with the same shape
	rec = doJSON(e, http.MethodGet, "/api/quotes/daily?symbol=005930", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cached models.DailyQuotesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.Equal(t, res, cached)
}

func TestDailyQuotesRequiresSymbol(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/quotes/daily", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyQuotesRejectsMalformedDates(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/quotes/daily?symbol=005930&start=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYYMMDD")
}

func TestWeightsEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/portfolio/weights",
		`{"total_cash":1000000,"items":[{"symbol":"005900","reason":"chips"},{"symbol":"005902","reason":"banks"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.WeightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 2)

	for _, a := range res.Results {
		assert.Equal(t, 0.5, a.Weight)
		assert.Equal(t, 250_000.0, a.InitialBuyCash, "default initial_buy_ratio is 0.5")
		assert.Equal(t, 250_000.0, a.DCACash)
	}
	assert.InDelta(t, 50000*0.97, res.Results[0].LimitPriceHint, 1e-9, "default discount_rate is 0.03")
	assert.InDelta(t, 50020*0.97, res.Results[1].LimitPriceHint, 1e-9)
}

func TestWeightsEndpointRejectsZeroCash(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/portfolio/weights",
		`{"total_cash":0,"items":[{"symbol":"005900"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/orders/preview",
		`{"total_cash":1000000,"results":[{"symbol":"005900","weight":1,"initial_buy_cash":250000,"dca_cash":250000,"limit_price_hint":48500}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.OrderPreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.Equal(t, 5, item.QtyMarket, "floor(250000/50000)")
	assert.Equal(t, 5, item.QtyLimit, "floor(250000/48500)")
	assert.Equal(t, 50000.0, item.Price)
	assert.Equal(t, 5*50000.0+5*48500.0, item.CashNeeded)
	assert.Equal(t, item.CashNeeded, res.TotalCashNeeded)
}

func TestExecuteEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/orders/execute",
		`{"items":[{"symbol":"005900","weight":1,"price":50000,"qty_market":5,"qty_limit":3,"limit_price":48500,"cash_needed":395500}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.OrderExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Results, 2, "one market and one limit tranche")

	assert.Equal(t, "market", res.Results[0].OrderType)
	assert.Equal(t, 5, res.Results[0].Qty)
	assert.Equal(t, "limit", res.Results[1].OrderType)
	assert.Equal(t, 48500.0, res.Results[1].Price)
	assert.Equal(t, true, res.Results[0].Response["mock"])
}

func TestExecuteEndpointRejectsEmpty(t *testing.T) {
	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/orders/execute", `{"items":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
