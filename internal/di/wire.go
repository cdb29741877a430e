//go:build wireinject
// +build wireinject

package di

import (
	"TradeDeck/pkg/config"
	"TradeDeck/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvidePublisher,

		// Admission control
		ProvideUpstreamLimiter,
		ProvideClientLimiter,

		// Market data
		ProvideDataProviders,
		ProvideResolver,
		ProvideCandleStore,

		// Use cases
		ProvidePriceUseCase,
		ProvideRegimeUseCase,
		ProvideBeginnerConfig,
		ProvideRecommendationUseCase,
		ProvideTickCollector,

		// HTTP
		ProvideDashboardHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
