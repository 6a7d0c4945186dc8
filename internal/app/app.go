package app

import (
	"io"

	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Selector        usecase.NetworkSelector
	NetworkResolver usecase.NetworkResolver
	Registry        usecase.DeploymentRegistry

	// Use cases
	PlanDeployment   *usecase.PlanDeployment
	DeployStep       *usecase.DeployStep
	RunPipeline      *usecase.RunPipeline
	PredictAddresses *usecase.PredictAddresses
	ResolveAddress   *usecase.ResolveAddress
	ListRecords      *usecase.ListRecords
	ListNetworks     *usecase.ListNetworks
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	selector usecase.NetworkSelector,
	networkResolver usecase.NetworkResolver,
	registry usecase.DeploymentRegistry,
	planDeployment *usecase.PlanDeployment,
	deployStep *usecase.DeployStep,
	runPipeline *usecase.RunPipeline,
	predictAddresses *usecase.PredictAddresses,
	resolveAddress *usecase.ResolveAddress,
	listRecords *usecase.ListRecords,
	listNetworks *usecase.ListNetworks,
) (*App, error) {
	return &App{
		Config:           cfg,
		Selector:         selector,
		NetworkResolver:  networkResolver,
		Registry:         registry,
		PlanDeployment:   planDeployment,
		DeployStep:       deployStep,
		RunPipeline:      runPipeline,
		PredictAddresses: predictAddresses,
		ResolveAddress:   resolveAddress,
		ListRecords:      listRecords,
		ListNetworks:     listNetworks,
	}, nil
}

// Close releases the registry backend
func (a *App) Close() error {
	if c, ok := a.Registry.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
