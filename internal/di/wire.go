//go:build wireinject
// +build wireinject

package di

import (
	"SignalDesk/pkg/config"
	"SignalDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// infrastructure
		ProvidePriceStore,
		ProvideCache,
		ProvideKafkaProducer,

		// repositories
		ProvideHistory,
		ProvideSnapshotStore,
		ProvideRunPublisher,

		// use cases
		ProvideEngine,
		ProvidePassRunner,

		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
