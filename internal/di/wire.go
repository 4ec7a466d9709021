//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"ascent/pkg/config"
	"ascent/pkg/server"
)

// InitializeApp wires up the trading process and returns the
// application. Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideStore,
		ProvideGateway,
		ProvideBus,
		ProvidePublisher,

		// Domain
		ProvideController,
		ProvideScheduler,

		// HTTP surface
		ProvideBotHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeStreamApp wires up the broadcast process and returns the
// application. Wire generates the implementation of this function.
func InitializeStreamApp(cfg *config.Config) (*server.StreamApp, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideBus,
		ProvidePublisher,
		ProvideSubscriber,

		// Domain
		ProvideManager,

		// HTTP surface
		ProvideStreamHandler,

		// Application server
		ProvideStreamApp,
	)
	return &server.StreamApp{}, nil
}
