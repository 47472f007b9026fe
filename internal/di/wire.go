//go:build wireinject
// +build wireinject

package di

import (
	"github.com/wafa-bouzouita/water-tracker/pkg/config"
	"github.com/wafa-bouzouita/water-tracker/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,
		ProvideClock,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideCacheService,
		ProvideLimiter,
		ProvideStationListCache,

		// Repositories
		ProvideSeriesStore,
		ProvideSeriesCache,

		// Connectors
		ProvideHubeauClient,
		ProvideEMIClient,
		ProvideSeriesSources,
		ProvideStationSources,

		// Use cases
		ProvideIngester,
		ProvideStationPipeline,
		ProvideDroughtService,
		ProvideChronicleService,
		ProvideRedisQueue,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
