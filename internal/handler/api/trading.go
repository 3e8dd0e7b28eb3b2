package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"KisTrader/internal/domain/models"
	drepo "KisTrader/internal/domain/repository"
	"KisTrader/internal/service/kis"
	"KisTrader/internal/usecase"
	"KisTrader/pkg/cache"
	xhttp "KisTrader/pkg/http"
	xlogger "KisTrader/pkg/logger"
	"KisTrader/pkg/util"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// defaultQuoteWindowDays bounds the daily-price range when the caller
// omits start/end.
const defaultQuoteWindowDays = 100

// StreamFactory builds a fresh realtime connection per subscriber.
type StreamFactory func() drepo.QuoteStream

// TradingHandler implements the Echo-based /api surface for the
// portfolio pipeline.
type TradingHandler struct {
	logger    *xlogger.Logger
	session   *kis.Session
	source    drepo.MarketDataSource
	calc      *usecase.AllocationCalculator
	preview   *usecase.PreviewBuilder
	exec      *usecase.ExecutionDriver
	quotes    cache.Service
	quotesTTL time.Duration
	streams   StreamFactory
	baseURL   string
	upgrader  websocket.Upgrader
}

// NewTradingHandler wires the handler. quotes may be nil (no quote
// caching) and streams may be nil (no realtime endpoint registered).
func NewTradingHandler(
	logger *xlogger.Logger,
	session *kis.Session,
	source drepo.MarketDataSource,
	calc *usecase.AllocationCalculator,
	preview *usecase.PreviewBuilder,
	exec *usecase.ExecutionDriver,
	quotes cache.Service,
	quotesTTL time.Duration,
	streams StreamFactory,
	baseURL string,
) *TradingHandler {
	return &TradingHandler{
		logger:    logger,
		session:   session,
		source:    source,
		calc:      calc,
		preview:   preview,
		exec:      exec,
		quotes:    quotes,
		quotesTTL: quotesTTL,
		streams:   streams,
		baseURL:   baseURL,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *TradingHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/kis/token", h.Token)
	g.GET("/quotes/daily", h.DailyQuotes)
	g.POST("/portfolio/weights", h.Weights)
	g.POST("/orders/preview", h.Preview)
	g.POST("/orders/execute", h.Execute)
	g.GET("/health", h.Health)
	if h.streams != nil {
		g.GET("/quotes/stream", h.Stream)
	}
}

// Token exchanges (or returns the cached) brokerage access token.
// Supplied credentials replace the stored pair; a mode change takes
// effect on subsequent orders.
func (h *TradingHandler) Token(c echo.Context) error {
	req := &models.TokenRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Mode != "" {
		h.session.SetMode(req.Mode)
	}

	token, err := h.session.Acquire(c.Request().Context(), req.AppKey, req.AppSecret)
	if err != nil {
		h.logger.Error("token acquire error", xlogger.Error(err))
		return h.domainError(c, err)
	}
	return xhttp.SuccessResponse(c, models.TokenResponse{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
	})
}

// DailyQuotes serves the daily price history, read-through cached when a
// cache is configured. Pipeline price lookups bypass this path entirely.
func (h *TradingHandler) DailyQuotes(c echo.Context) error {
	req := &models.DailyQuotesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Start != "" && !util.ValidYYYYMMDD(req.Start) {
		return xhttp.BadRequestResponse(c, "start must be YYYYMMDD")
	}
	if req.End != "" && !util.ValidYYYYMMDD(req.End) {
		return xhttp.BadRequestResponse(c, "end must be YYYYMMDD")
	}

	now := time.Now().UTC()
	end := util.ParseYYYYMMDDDefault(req.End, now)
	start := util.ParseYYYYMMDDDefault(req.Start, end.AddDate(0, 0, -defaultQuoteWindowDays))
	startStr, endStr := util.FormatYYYYMMDD(start), util.FormatYYYYMMDD(end)

	ctx := c.Request().Context()
	key := fmt.Sprintf("quotes:%s:%s:%s", req.Symbol, startStr, endStr)

	if h.quotes != nil {
		var cached models.DailyQuotesResponse
		if err := h.quotes.Get(ctx, key, &cached); err == nil {
			return xhttp.SuccessResponse(c, cached)
		}
	}

	prices, err := h.source.DailyPrices(ctx, req.Symbol, startStr, endStr)
	if err != nil {
		h.logger.Error("daily quotes error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return h.domainError(c, err)
	}

	res := models.DailyQuotesResponse{Symbol: req.Symbol, Prices: prices}
	if h.quotes != nil {
		if err := h.quotes.Set(ctx, key, res, h.quotesTTL); err != nil {
			h.logger.Warn("quote cache set failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// Weights computes per-symbol tranche allocations for the candidate list.
func (h *TradingHandler) Weights(c echo.Context) error {
	req := &models.WeightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols := make([]string, len(req.Items))
	for i, item := range req.Items {
		symbols[i] = item.Symbol
	}

	prices, err := h.preview.ClosePrices(c.Request().Context(), symbols)
	if err != nil {
		h.logger.Error("close price lookup error", xlogger.Error(err))
		return h.domainError(c, err)
	}

	results, err := h.calc.Calculate(req.TotalCash, req.Items, req.InitialBuyRatio, req.DiscountRate, prices)
	if err != nil {
		return h.domainError(c, err)
	}
	return xhttp.SuccessResponse(c, models.WeightsResponse{Results: results})
}

// Preview sizes market and limit tranches for a set of allocations.
func (h *TradingHandler) Preview(c echo.Context) error {
	req := &models.OrderPreviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	items, total, err := h.preview.Build(c.Request().Context(), req.TotalCash, req.Results)
	if err != nil {
		return h.domainError(c, err)
	}
	return xhttp.SuccessResponse(c, models.OrderPreviewResponse{
		Items:           items,
		TotalCashNeeded: total,
	})
}

// Execute submits the previewed orders. Repeating the call resubmits.
func (h *TradingHandler) Execute(c echo.Context) error {
	req := &models.OrderExecuteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	results, err := h.exec.Execute(c.Request().Context(), req.Items)
	if err != nil {
		h.logger.Error("order execution error", xlogger.Error(err))
		return h.domainError(c, err)
	}
	return xhttp.SuccessResponse(c, models.OrderExecuteResponse{Results: results})
}

// Health reports the active trading mode and gateway base URL.
func (h *TradingHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.HealthResponse{
		Mode:    h.session.Mode(),
		BaseURL: h.baseURL,
	})
}

// Stream upgrades to a WebSocket and relays realtime ticks for one symbol.
func (h *TradingHandler) Stream(c echo.Context) error {
	req := &models.StreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	stream := h.streams()
	if err := stream.Connect(ctx); err != nil {
		h.logger.Error("stream connect error", xlogger.Error(err))
		return xhttp.ErrorResponse(c, http.StatusBadGateway, err.Error())
	}
	defer stream.Close()

	if err := stream.Subscribe(ctx, req.Symbol); err != nil {
		h.logger.Error("stream subscribe error", xlogger.Error(err))
		return xhttp.ErrorResponse(c, http.StatusBadGateway, err.Error())
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ticks, errs := stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			h.logger.Warn("stream read error", xlogger.Error(err))
			return nil
		case tick, ok := <-ticks:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(tick); err != nil {
				return nil
			}
		}
	}
}

// domainError maps pipeline errors onto the wire contract: invalid input
// is a 400, upstream brokerage failures are a 502, everything else a 500.
// The body is always {"detail": ...}.
func (h *TradingHandler) domainError(c echo.Context, err error) error {
	var invalid *models.InvalidInputError
	if errors.As(err, &invalid) {
		return xhttp.BadRequestResponse(c, invalid.Reason)
	}

	var authErr *models.AuthError
	var quoteErr *models.QuoteError
	var orderErr *models.OrderError
	if errors.As(err, &authErr) || errors.As(err, &quoteErr) || errors.As(err, &orderErr) {
		return xhttp.ErrorResponse(c, http.StatusBadGateway, err.Error())
	}

	return xhttp.AppErrorResponse(c, err)
}
