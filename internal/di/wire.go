//go:build wireinject
// +build wireinject

package di

import (
	"KisTrader/pkg/config"
	"KisTrader/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Brokerage gateway
		ProvideHTTPClient,
		ProvideLimiter,
		ProvideSession,
		ProvideMarketDataSource,
		ProvideOrderSubmitter,
		ProvideStreamFactory,

		// Infrastructure clients
		ProvideQuoteCache,
		ProvideOrderEvents,

		// Use cases
		ProvideAllocationCalculator,
		ProvidePreviewBuilder,
		ProvideExecutionDriver,

		// HTTP surface
		ProvideTradingHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
