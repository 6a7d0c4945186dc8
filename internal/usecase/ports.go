package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// AddressBook resolves canonical addresses of contracts this system does not deploy
type AddressBook interface {
	Resolve(ctx context.Context, family, version string, network domain.NetworkID) (common.Address, error)
}

// ArtifactStore provides compiled contracts by name
type ArtifactStore interface {
	GetArtifact(ctx context.Context, name string) (*models.ContractArtifact, error)
}

// DeploymentRegistry persists deployment records per (network, name).
// Put is a no-op for an identical address and fails with a
// *domain.RecordConflictError for a different one.
type DeploymentRegistry interface {
	Get(ctx context.Context, network domain.NetworkID, name string) (*models.DeploymentRecord, error)
	Put(ctx context.Context, record *models.DeploymentRecord) error
	List(ctx context.Context, network domain.NetworkID) ([]*models.DeploymentRecord, error)
}

// DeployRequest is a call to the CREATE2 factory
type DeployRequest struct {
	Factory  common.Address
	Calldata []byte
	GasLimit uint64
}

// DeployReceipt is the mined deployment transaction
type DeployReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	Status      uint64
}

// ChainClient is the capability to read and write one network.
//
// Deploy returns an error wrapping domain.ErrDeploymentReverted when the node
// rejects the transaction for a reason retrying cannot fix (revert during
// estimation, insufficient funds). All other errors are treated as transport
// failures.
type ChainClient interface {
	ChainID(ctx context.Context) (domain.NetworkID, error)
	HasCode(ctx context.Context, address common.Address) (bool, error)
	// SimulateDeploy runs the factory call without broadcasting and returns the
	// address the factory reports
	SimulateDeploy(ctx context.Context, req DeployRequest) (common.Address, error)
	// SendDeploy signs and broadcasts the factory call
	SendDeploy(ctx context.Context, req DeployRequest) (common.Hash, error)
	// WaitMined blocks until the transaction has a receipt
	WaitMined(ctx context.Context, txHash common.Hash) (*DeployReceipt, error)
	Close()
}

// ChainConnector opens clients for configured networks
type ChainConnector interface {
	Connect(ctx context.Context, network *config.Network) (ChainClient, error)
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	NetworkNames(ctx context.Context) []string
	ResolveNetwork(ctx context.Context, networkName string) (*config.Network, error)
}

// PipelineLoader reads a pipeline definition
type PipelineLoader interface {
	LoadPipeline(ctx context.Context, path string) (*models.Pipeline, error)
}

// Confirmer asks the operator before broadcasting
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// NetworkSelector picks networks when the operator gave none
type NetworkSelector interface {
	SelectNetworks(ctx context.Context, names []string) ([]string, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Network  string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Progress stages emitted by RunPipeline
const (
	StagePlanCreated   = "plan_created"
	StageStepStarting  = "step_starting"
	StageStepCompleted = "step_completed"
	StageNetworkDone   = "network_completed"
)
