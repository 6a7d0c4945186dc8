package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// PredictAddresses computes every step's deterministic address without
// touching the chain. Step references use the predicted address of the
// earlier step, deployment references use the registry.
type PredictAddresses struct {
	loader   PipelineLoader
	planner  *PlanDeployment
	registry DeploymentRegistry
}

// NewPredictAddresses creates a new prediction use case
func NewPredictAddresses(loader PipelineLoader, planner *PlanDeployment, registry DeploymentRegistry) *PredictAddresses {
	return &PredictAddresses{
		loader:   loader,
		planner:  planner,
		registry: registry,
	}
}

// PredictionStatus compares the prediction with the registry
type PredictionStatus string

const (
	PredictionNew        PredictionStatus = "new"
	PredictionRecorded   PredictionStatus = "recorded"
	PredictionConflict   PredictionStatus = "conflict"
	PredictionUnresolved PredictionStatus = "unresolved"
)

// PredictedStep is the predicted outcome of one step
type PredictedStep struct {
	Index     int                      `json:"index"`
	Name      string                   `json:"name"`
	Artifact  string                   `json:"artifact"`
	Address   common.Address           `json:"address"`
	Args      []string                 `json:"args"`
	DependsOn []string                 `json:"dependsOn,omitempty"`
	Status    PredictionStatus         `json:"status"`
	Recorded  *models.DeploymentRecord `json:"recorded,omitempty"`
	Err       error                    `json:"-"`
	Error     string                   `json:"error,omitempty"`
}

// PredictionResult is the plan of one network with predicted addresses
type PredictionResult struct {
	Pipeline string           `json:"pipeline"`
	Network  *config.Network  `json:"network"`
	Factory  common.Address   `json:"factory"`
	Steps    []*PredictedStep `json:"steps"`
}

// PredictParams contains parameters for prediction
type PredictParams struct {
	PipelinePath string
	Network      *config.Network
}

// Predict plans the pipeline for the network and predicts each address
func (p *PredictAddresses) Predict(ctx context.Context, params PredictParams) (*PredictionResult, error) {
	if params.Network == nil {
		return nil, fmt.Errorf("no network selected, use --network")
	}

	pipeline, err := p.loader.LoadPipeline(ctx, params.PipelinePath)
	if err != nil {
		return nil, err
	}

	plan, err := p.planner.Plan(ctx, PlanParams{Pipeline: pipeline, Network: params.Network.ChainID})
	if err != nil {
		return nil, err
	}

	target := &DeployTarget{Network: params.Network}
	result := &PredictionResult{
		Pipeline: plan.Pipeline,
		Network:  params.Network,
		Factory:  target.factory(),
		Steps:    make([]*PredictedStep, 0, len(plan.Steps)),
	}

	predicted := make(map[int]*PredictedStep, len(plan.Steps))
	for _, planned := range plan.Steps {
		step := &PredictedStep{
			Index:    planned.Index,
			Name:     planned.Step.Name,
			Artifact: planned.Artifact.Name,
		}
		for _, dep := range planned.DependsOn {
			step.DependsOn = append(step.DependsOn, plan.Steps[dep].Step.Name)
		}

		assembled, err := assemble(planned, result.Factory, p.lookup(ctx, params.Network.ChainID, predicted))
		if err != nil {
			step.Status = PredictionUnresolved
			step.Err = err
		} else {
			step.Address = assembled.Address
			step.Args = assembled.Args
			step.Status, step.Recorded, step.Err = p.compare(ctx, params.Network.ChainID, step)
		}

		if step.Err != nil {
			step.Error = step.Err.Error()
		}
		predicted[planned.Index] = step
		result.Steps = append(result.Steps, step)
	}

	return result, nil
}

func (p *PredictAddresses) lookup(ctx context.Context, network domain.NetworkID, predicted map[int]*PredictedStep) addressLookup {
	return func(arg models.ResolvedArg) (common.Address, error) {
		if arg.Ref.Kind == models.RefStep {
			prev, ok := predicted[arg.StepIndex]
			if !ok || prev.Status == PredictionUnresolved {
				return common.Address{}, fmt.Errorf("%s has no predicted address", arg.Ref)
			}
			return prev.Address, nil
		}

		record, err := p.registry.Get(ctx, network, arg.Ref.Deployment)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return common.Address{}, &domain.UnresolvedAddressError{Family: arg.Ref.String(), Network: network}
			}
			return common.Address{}, err
		}
		return record.Address, nil
	}
}

func (p *PredictAddresses) compare(ctx context.Context, network domain.NetworkID, step *PredictedStep) (PredictionStatus, *models.DeploymentRecord, error) {
	record, err := p.registry.Get(ctx, network, step.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return PredictionNew, nil, nil
		}
		return PredictionUnresolved, nil, err
	}
	if record.Address != step.Address {
		return PredictionConflict, record, &domain.RecordConflictError{
			Network:  network,
			Name:     step.Name,
			Existing: record.Address,
			Proposed: step.Address,
		}
	}
	return PredictionRecorded, record, nil
}
