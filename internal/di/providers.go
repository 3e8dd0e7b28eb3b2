package di

import (
	"fmt"
	"time"

	"KisTrader/internal/domain/repository"
	"KisTrader/internal/handler/api"
	internalrepo "KisTrader/internal/repository"
	"KisTrader/internal/service/kis"
	"KisTrader/internal/service/ratelimit"
	"KisTrader/internal/usecase"
	"KisTrader/pkg/cache"
	"KisTrader/pkg/config"
	xhttp "KisTrader/pkg/http"
	pkgkafka "KisTrader/pkg/kafka"
	applogger "KisTrader/pkg/logger"
	"KisTrader/pkg/metrics"
	"KisTrader/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the outbound brokerage HTTP client with the
// configured per-call timeout.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.KIS.Timeout))
}

// ProvideLimiter creates the outbound rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideSession creates the shared credential session.
func ProvideSession(cfg *config.Config, httpc *xhttp.Client, m repository.Metrics, l *applogger.Logger) *kis.Session {
	return kis.NewSession(cfg, httpc, m, l)
}

// ProvideMarketDataSource selects the price gateway once at construction:
// synthetic in mock mode, live HTTP otherwise.
func ProvideMarketDataSource(cfg *config.Config, session *kis.Session, httpc *xhttp.Client, lim *ratelimit.Limiter, m repository.Metrics, l *applogger.Logger) repository.MarketDataSource {
	if cfg.KIS.Mock {
		return kis.NewMockClient(cfg, session, m)
	}
	return kis.NewClient(cfg, session, httpc, lim, m, l)
}

// ProvideOrderSubmitter selects the order gateway, mirroring
// ProvideMarketDataSource.
func ProvideOrderSubmitter(cfg *config.Config, session *kis.Session, httpc *xhttp.Client, lim *ratelimit.Limiter, m repository.Metrics, l *applogger.Logger) repository.OrderSubmitter {
	if cfg.KIS.Mock {
		return kis.NewMockClient(cfg, session, m)
	}
	return kis.NewClient(cfg, session, httpc, lim, m, l)
}

// ProvideQuoteCache creates the quote-history cache: layered over Redis
// when enabled, in-memory otherwise.
func ProvideQuoteCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix("kistrader"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc, cache.WithLayeredPromoteTTL(cfg.Cache.QuotesTTL)), nil
}

// ProvideOrderEvents creates the Kafka order-event publisher, or nil when
// disabled.
func ProvideOrderEvents(cfg *config.Config) (repository.OrderEventPublisher, error) {
	if !cfg.OrderEvents.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.OrderEvents.Brokers),
		pkgkafka.WithCompression(cfg.OrderEvents.Compression),
		pkgkafka.WithRequiredAcks(cfg.OrderEvents.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.OrderEvents.WriteTimeout, cfg.OrderEvents.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.OrderEvents.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaOrderEvents(producer, cfg.OrderEvents.Topic), nil
}

// ProvideStreamFactory builds per-subscriber realtime streams. Nil when
// no realtime endpoint is configured.
func ProvideStreamFactory(cfg *config.Config) api.StreamFactory {
	if cfg.KIS.Mock {
		return func() repository.QuoteStream { return kis.NewMockStream(time.Second) }
	}
	if cfg.KIS.RealtimeURL == "" {
		return nil
	}
	return func() repository.QuoteStream { return kis.NewLiveStream(cfg) }
}

// ProvideAllocationCalculator creates the equal-weight calculator.
func ProvideAllocationCalculator() *usecase.AllocationCalculator {
	return usecase.NewAllocationCalculator(nil)
}

// ProvidePreviewBuilder creates the preview builder.
func ProvidePreviewBuilder(source repository.MarketDataSource, m repository.Metrics, l *applogger.Logger) *usecase.PreviewBuilder {
	return usecase.NewPreviewBuilder(source, m, l)
}

// ProvideExecutionDriver creates the execution driver.
func ProvideExecutionDriver(submitter repository.OrderSubmitter, events repository.OrderEventPublisher, l *applogger.Logger) *usecase.ExecutionDriver {
	return usecase.NewExecutionDriver(submitter, events, l)
}

// ProvideTradingHandler wires the /api surface.
func ProvideTradingHandler(
	cfg *config.Config,
	l *applogger.Logger,
	session *kis.Session,
	source repository.MarketDataSource,
	calc *usecase.AllocationCalculator,
	preview *usecase.PreviewBuilder,
	exec *usecase.ExecutionDriver,
	quotes cache.Service,
	streams api.StreamFactory,
) *api.TradingHandler {
	return api.NewTradingHandler(l, session, source, calc, preview, exec, quotes, cfg.Cache.QuotesTTL, streams, cfg.KIS.BaseURL)
}

// ProvideHTTPHandler exposes the trading handler as the server route set.
func ProvideHTTPHandler(h *api.TradingHandler) xhttp.Handler {
	return h
}

// ProvideApp assembles the application and registers infrastructure
// clients for shutdown.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	quotes cache.Service,
	events repository.OrderEventPublisher,
) *server.App {
	app := server.New(cfg, l, handler)
	if quotes != nil {
		app.RegisterCloser(quotes)
	}
	if events != nil {
		app.RegisterCloser(events)
	}
	return app
}
