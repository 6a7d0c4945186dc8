package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// RunPipeline plans a pipeline for every selected network and executes the
// steps of each network in order. Networks run concurrently.
type RunPipeline struct {
	cfg       *config.RuntimeConfig
	loader    PipelineLoader
	planner   *PlanDeployment
	deployer  *DeployStep
	connector ChainConnector
	confirmer Confirmer
	progress  ProgressSink
	log       *slog.Logger
}

// NewRunPipeline creates a new pipeline runner
func NewRunPipeline(
	cfg *config.RuntimeConfig,
	loader PipelineLoader,
	planner *PlanDeployment,
	deployer *DeployStep,
	connector ChainConnector,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *RunPipeline {
	return &RunPipeline{
		cfg:       cfg,
		loader:    loader,
		planner:   planner,
		deployer:  deployer,
		connector: connector,
		confirmer: confirmer,
		progress:  progress,
		log:       log,
	}
}

// RunParams contains parameters for a pipeline run
type RunParams struct {
	PipelinePath string
	Networks     []*config.Network
}

// Run executes the pipeline. Planning errors abort the run before any
// network is touched. Step failures are reported in the result, not returned;
// the returned error is reserved for failures to reach a network.
func (r *RunPipeline) Run(ctx context.Context, params RunParams) (*models.RunResult, error) {
	networks := params.Networks
	if len(networks) == 0 {
		networks = r.cfg.Networks
	}
	if len(networks) == 0 {
		return nil, fmt.Errorf("no network selected, use --network")
	}

	pipeline, err := r.loader.LoadPipeline(ctx, params.PipelinePath)
	if err != nil {
		return nil, err
	}

	plans := make([]*models.DeploymentPlan, len(networks))
	for i, network := range networks {
		plan, err := r.planner.Plan(ctx, PlanParams{Pipeline: pipeline, Network: network.ChainID})
		if err != nil {
			return nil, fmt.Errorf("planning %s for %s: %w", pipeline.Name, network.Name, err)
		}
		plans[i] = plan
		r.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StagePlanCreated,
			Network:  network.Name,
			Total:    len(plan.Steps),
			Metadata: plan,
		})
	}

	result := &models.RunResult{
		RunID:    uuid.NewString(),
		Pipeline: pipeline.Name,
		Networks: make([]*models.NetworkRun, len(networks)),
	}
	r.log.Info("starting run", "run", result.RunID, "pipeline", pipeline.Name, "networks", len(networks))

	var mu sync.Mutex
	var g errgroup.Group
	for i, network := range networks {
		g.Go(func() error {
			run, err := r.runNetwork(ctx, network, plans[i])
			mu.Lock()
			result.Networks[i] = run
			mu.Unlock()
			return err
		})
	}
	err = g.Wait()

	return result, err
}

func (r *RunPipeline) runNetwork(ctx context.Context, network *config.Network, plan *models.DeploymentPlan) (*models.NetworkRun, error) {
	run := &models.NetworkRun{
		Network:     network.ChainID,
		NetworkName: network.Name,
		Outcomes:    make([]*models.StepOutcome, 0, len(plan.Steps)),
	}

	if network.Confirm && !r.cfg.NonInteractive {
		ok, err := r.confirmer.Confirm(ctx, fmt.Sprintf("Deploy %s to %s (chain %s)?", plan.Pipeline, network.Name, network.ChainID))
		if err != nil {
			return run, err
		}
		if !ok {
			for _, planned := range plan.Steps {
				run.Outcomes = append(run.Outcomes, cancelled(planned, network.ChainID, "deployment not confirmed"))
			}
			return run, nil
		}
	}

	client, err := r.connector.Connect(ctx, network)
	if err != nil {
		return run, fmt.Errorf("failed to connect to %s: %w", network.Name, err)
	}
	defer client.Close()

	target := &DeployTarget{
		Network:             network,
		Client:              client,
		ConfirmationTimeout: r.cfg.ConfirmationTimeout,
	}

	// step index -> name of the failed step that poisons it
	failed := make(map[int]string)
	log := r.log.With("network", network.Name)

	for i, planned := range plan.Steps {
		// Cancellation is honoured between steps only
		if err := ctx.Err(); err != nil {
			run.Outcomes = append(run.Outcomes, cancelled(planned, network.ChainID, err.Error()))
			continue
		}

		r.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageStepStarting,
			Network: network.Name,
			Current: i + 1,
			Total:   len(plan.Steps),
			Message: planned.Step.Name,
			Spinner: true,
		})

		var outcome *models.StepOutcome
		if root, blocked := blockedBy(planned, failed); blocked {
			failed[i] = root
			outcome = &models.StepOutcome{
				Step:      planned.Step.Name,
				Network:   network.ChainID,
				Status:    models.StepBlocked,
				BlockedBy: root,
			}
			log.Warn("step blocked", "step", planned.Step.Name, "blocked_by", root)
		} else {
			outcome = r.executeWithRetry(ctx, planned, target)
			if !outcome.OK() {
				failed[i] = planned.Step.Name
				log.Error("step failed", "step", planned.Step.Name, "error", outcome.Err)
			}
		}

		run.Outcomes = append(run.Outcomes, outcome)
		r.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepCompleted,
			Network:  network.Name,
			Current:  i + 1,
			Total:    len(plan.Steps),
			Message:  planned.Step.Name,
			Metadata: outcome,
		})
	}

	r.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageNetworkDone,
		Network:  network.Name,
		Metadata: run,
	})
	return run, nil
}

// executeWithRetry re-invokes a step after transport errors. Execute checks
// the registry, any transaction it is still waiting on, and the chain before
// sending anything.
func (r *RunPipeline) executeWithRetry(ctx context.Context, planned *models.PlannedStep, target *DeployTarget) *models.StepOutcome {
	attempts := r.cfg.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var outcome *models.StepOutcome
		outcome, err = r.deployer.Execute(ctx, planned, target)
		if err == nil {
			outcome.Attempts = attempt
			return outcome
		}
		if !domain.IsRetryable(err) || attempt == attempts {
			break
		}

		r.log.Warn("retrying step", "step", planned.Step.Name, "network", target.Network.Name, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return cancelled(planned, target.Network.ChainID, ctx.Err().Error())
		case <-time.After(r.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}

	return &models.StepOutcome{
		Step:    planned.Step.Name,
		Network: target.Network.ChainID,
		Status:  models.StepFailed,
		Err:     err,
		Error:   err.Error(),
	}
}

func blockedBy(planned *models.PlannedStep, failed map[int]string) (string, bool) {
	for _, dep := range planned.DependsOn {
		if root, ok := failed[dep]; ok {
			return root, true
		}
	}
	return "", false
}

func cancelled(planned *models.PlannedStep, network domain.NetworkID, reason string) *models.StepOutcome {
	return &models.StepOutcome{
		Step:    planned.Step.Name,
		Network: network,
		Status:  models.StepCancelled,
		Error:   reason,
	}
}
