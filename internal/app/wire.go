//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/sling/internal/adapters"
	"github.com/trebuchet-org/sling/internal/config"
	"github.com/trebuchet-org/sling/internal/logging"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewPlanDeployment,
		usecase.NewDeployStep,
		usecase.NewRunPipeline,
		usecase.NewPredictAddresses,
		usecase.NewResolveAddress,
		usecase.NewListRecords,
		usecase.NewListNetworks,

		// App
		NewApp,
	)
	return nil, nil
}
