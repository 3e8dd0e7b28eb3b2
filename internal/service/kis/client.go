package kis

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"KisTrader/internal/domain/models"
	drepo "KisTrader/internal/domain/repository"
	"KisTrader/internal/service/ratelimit"
	"KisTrader/pkg/config"
	xhttp "KisTrader/pkg/http"
	xlogger "KisTrader/pkg/logger"
)

const (
	pathDailyPrice = "/uapi/domestic-stock/v1/quotations/inquire-daily-price"
	pathOrderCash  = "/uapi/domestic-stock/v1/trading/order-cash"

	trIDDailyPrice = "FHKST01010400"
)

// trID selects the transaction-type code for a cash order from the
// trading mode and order side.
func trID(mode string, side models.Side) string {
	base := "VTTC"
	if mode == "real" {
		base = "TTTC"
	}
	if side == models.SideBuy {
		return base + "0802U"
	}
	return base + "0801U"
}

// Client is the live brokerage gateway. Every call injects a valid token
// from the session and passes the outbound rate limiter; none retry.
type Client struct {
	session    *Session
	httpc      *xhttp.Client
	baseURL    string
	cano       string
	acntPrdtCd string
	limiter    *ratelimit.Limiter
	capacity   float64
	refill     float64
	metrics    drepo.Metrics
	log        *xlogger.Logger
}

// NewClient creates the live gateway around a shared session.
func NewClient(cfg *config.Config, session *Session, httpc *xhttp.Client, lim *ratelimit.Limiter, m drepo.Metrics, l *xlogger.Logger) *Client {
	return &Client{
		session:    session,
		httpc:      httpc,
		baseURL:    cfg.KIS.BaseURL,
		cano:       cfg.KIS.CANO,
		acntPrdtCd: cfg.KIS.AcntPrdtCd,
		limiter:    lim,
		capacity:   cfg.KIS.RateLimit.Capacity,
		refill:     cfg.KIS.RateLimit.RefillPerSec,
		metrics:    m,
		log:        l,
	}
}

var (
	_ drepo.MarketDataSource = (*Client)(nil)
	_ drepo.OrderSubmitter   = (*Client)(nil)
)

// headersFor builds the auth headers for one brokerage call. POST bodies
// additionally get the hashkey tamper-check header.
func (c *Client) headersFor(ctx context.Context, tr string, body any) (map[string]string, error) {
	tok, err := c.session.Acquire(ctx, "", "")
	if err != nil {
		return nil, err
	}
	appKey, appSecret := c.session.Credentials()
	h := map[string]string{
		"authorization": "Bearer " + tok.AccessToken,
		"appkey":        appKey,
		"appsecret":     appSecret,
		"tr_id":         tr,
		"custtype":      c.session.CustType(),
		"content-type":  "application/json; charset=UTF-8",
	}
	if body != nil {
		hk, err := Hashkey(body)
		if err != nil {
			return nil, err
		}
		h["hashkey"] = hk
	}
	return h, nil
}

// throttle blocks until the limiter admits one call for key.
func (c *Client) throttle(ctx context.Context, key string) error {
	for !c.limiter.Allow(key, c.capacity, c.refill) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

type dailyPriceBar struct {
	Date   string `json:"stck_bsop_date"`
	Open   string `json:"stck_oprc"`
	High   string `json:"stck_hgpr"`
	Low    string `json:"stck_lwpr"`
	Close  string `json:"stck_clpr"`
	Volume string `json:"acml_vol"`
}

type dailyPriceResponse struct {
	Output2 []dailyPriceBar `json:"output2"`
}

// DailyPrices fetches the daily OHLCV series, most recent bar first.
func (c *Client) DailyPrices(ctx context.Context, symbol, start, end string) ([]models.PriceQuote, error) {
	if err := c.throttle(ctx, "quotes"); err != nil {
		return nil, err
	}
	headers, err := c.headersFor(ctx, trIDDailyPrice, nil)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	resp, err := c.httpc.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + pathDailyPrice,
		Headers: headers,
		QueryParams: map[string][]string{
			"fid_cond_mrkt_div_code": {"J"},
			"fid_input_iscd":         {symbol},
			"fid_period_div_code":    {"D"},
			"fid_org_adj_prc":        {"0"},
		},
	})
	if err != nil {
		return nil, &models.QuoteError{Symbol: symbol, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if c.metrics != nil {
		c.metrics.RecordQuoteLatency(time.Since(began).Seconds())
	}
	if resp.StatusCode != 200 {
		c.log.Error("quote lookup rejected",
			xlogger.String("symbol", symbol),
			xlogger.Int("status", resp.StatusCode),
			xlogger.String("body", string(raw)),
		)
		return nil, &models.QuoteError{Symbol: symbol, Status: resp.StatusCode, Body: string(raw)}
	}

	var parsed dailyPriceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &models.QuoteError{Symbol: symbol, Status: resp.StatusCode, Body: err.Error()}
	}

	quotes := make([]models.PriceQuote, 0, len(parsed.Output2))
	for _, bar := range parsed.Output2 {
		quotes = append(quotes, models.PriceQuote{
			Symbol: symbol,
			Date:   bar.Date,
			Open:   parseFloat(bar.Open),
			High:   parseFloat(bar.High),
			Low:    parseFloat(bar.Low),
			Close:  parseFloat(bar.Close),
			Volume: parseFloat(bar.Volume),
		})
	}
	if len(quotes) > 0 && c.metrics != nil {
		c.metrics.RecordLastPrice(symbol, quotes[0].Close)
	}
	return quotes, nil
}

// orderCashBody matches the brokerage field order; the hashkey digest
// depends on this exact serialization.
type orderCashBody struct {
	CANO             string `json:"CANO"`
	AcntPrdtCd       string `json:"ACNT_PRDT_CD"`
	PDNO             string `json:"PDNO"`
	OrdDvsn          string `json:"ORD_DVSN"`
	OrdQty           string `json:"ORD_QTY"`
	OrdUnpr          string `json:"ORD_UNPR"`
	CmaEvluAmtIcldYn string `json:"CMA_EVLU_AMT_ICLD_YN"`
	OvrsIcldYn       string `json:"OVRS_ICLD_YN"`
}

func (c *Client) orderBody(ins models.OrderInstruction) orderCashBody {
	price := "0"
	if ins.Kind == models.OrderKindLimit {
		price = strconv.FormatFloat(ins.Price, 'f', -1, 64)
	}
	return orderCashBody{
		CANO:             c.cano,
		AcntPrdtCd:       c.acntPrdtCd,
		PDNO:             ins.Symbol,
		OrdDvsn:          string(ins.Kind),
		OrdQty:           strconv.Itoa(ins.Quantity),
		OrdUnpr:          price,
		CmaEvluAmtIcldYn: "N",
		OvrsIcldYn:       "N",
	}
}

// SubmitOrder places one cash order and returns the raw acknowledgment.
func (c *Client) SubmitOrder(ctx context.Context, ins models.OrderInstruction) (map[string]any, error) {
	if err := c.throttle(ctx, "orders"); err != nil {
		return nil, err
	}
	body := c.orderBody(ins)
	headers, err := c.headersFor(ctx, trID(c.session.Mode(), ins.Side), body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + pathOrderCash,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return nil, &models.OrderError{Symbol: ins.Symbol, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		c.log.Error("order rejected",
			xlogger.String("symbol", ins.Symbol),
			xlogger.Int("status", resp.StatusCode),
			xlogger.String("body", string(raw)),
		)
		return nil, &models.OrderError{Symbol: ins.Symbol, Status: resp.StatusCode, Body: string(raw)}
	}

	var ack map[string]any
	if err := json.Unmarshal(raw, &ack); err != nil {
		return nil, &models.OrderError{Symbol: ins.Symbol, Status: resp.StatusCode, Body: err.Error()}
	}
	if c.metrics != nil {
		c.metrics.RecordOrderSubmitted(ins.Symbol, ins.Kind.Name())
	}
	return ack, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
