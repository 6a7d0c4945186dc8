package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/sling/internal/adapters/addressbook"
	"github.com/trebuchet-org/sling/internal/adapters/artifacts"
	"github.com/trebuchet-org/sling/internal/adapters/blockchain"
	"github.com/trebuchet-org/sling/internal/adapters/interactive"
	"github.com/trebuchet-org/sling/internal/adapters/registry"
	"github.com/trebuchet-org/sling/internal/config"
	domainconfig "github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// ProvideProjectPath provides the project path from RuntimeConfig
func ProvideProjectPath(cfg *domainconfig.RuntimeConfig) string {
	return cfg.ProjectRoot
}

// ProvidePipelineLoader provides a pipeline loader rooted at the project
func ProvidePipelineLoader(projectRoot string) *config.PipelineLoader {
	return config.NewPipelineLoader(projectRoot)
}

// StorageSet provides address book, artifact and registry implementations
var StorageSet = wire.NewSet(
	addressbook.NewBookFromConfig,
	wire.Bind(new(usecase.AddressBook), new(*addressbook.Book)),

	artifacts.NewStoreFromConfig,
	wire.Bind(new(usecase.ArtifactStore), new(*artifacts.Store)),

	registry.NewRegistry,
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewPromptAdapter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.PromptAdapter)),
	wire.Bind(new(usecase.NetworkSelector), new(*interactive.PromptAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*config.NetworkResolver)),

	ProvidePipelineLoader,
	wire.Bind(new(usecase.PipelineLoader), new(*config.PipelineLoader)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewConnector,
	wire.Bind(new(usecase.ChainConnector), new(*blockchain.Connector)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ProvideProjectPath,

	StorageSet,
	InteractiveSet,
	ConfigSet,
	BlockchainSet,
)
