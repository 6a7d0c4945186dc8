package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/pkg/create2"
)

// PlanDeployment validates a declared step list and pre-resolves the
// arguments that do not depend on earlier steps.
//
// Steps are already declared in dependency order: a step may only reference
// steps declared before it. The planner checks that invariant, it never
// reorders.
type PlanDeployment struct {
	artifacts ArtifactStore
	book      AddressBook
	log       *slog.Logger
}

// NewPlanDeployment creates a new planner
func NewPlanDeployment(artifacts ArtifactStore, book AddressBook, log *slog.Logger) *PlanDeployment {
	return &PlanDeployment{
		artifacts: artifacts,
		book:      book,
		log:       log,
	}
}

// PlanParams contains parameters for planning
type PlanParams struct {
	Pipeline *models.Pipeline
	Network  domain.NetworkID
}

// Plan returns the validated plan, or an error before anything is deployed
func (p *PlanDeployment) Plan(ctx context.Context, params PlanParams) (*models.DeploymentPlan, error) {
	if params.Pipeline == nil || len(params.Pipeline.Steps) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no steps", domain.ErrInvalidDependencyGraph)
	}

	plan := &models.DeploymentPlan{
		Pipeline: params.Pipeline.Name,
		Network:  params.Network,
		Steps:    make([]*models.PlannedStep, 0, len(params.Pipeline.Steps)),
	}

	// name -> index, filled as we walk so forward references are not found
	declared := make(map[string]int, len(params.Pipeline.Steps))
	allNames := lo.Map(params.Pipeline.Steps, func(s *models.DeploymentStep, _ int) string {
		return s.Name
	})

	for i, step := range params.Pipeline.Steps {
		if step.Name == "" {
			return nil, &domain.InvalidGraphError{Step: fmt.Sprintf("#%d", i+1), Reason: "step has no name"}
		}
		if _, dup := declared[step.Name]; dup {
			return nil, &domain.InvalidGraphError{Step: step.Name, Reason: "duplicate step name"}
		}

		planned, err := p.planStep(ctx, i, step, declared, allNames, params.Network)
		if err != nil {
			return nil, err
		}

		plan.Steps = append(plan.Steps, planned)
		declared[step.Name] = i
	}

	p.log.Debug("plan created", "pipeline", plan.Pipeline, "network", plan.Network, "steps", len(plan.Steps))
	return plan, nil
}

func (p *PlanDeployment) planStep(
	ctx context.Context,
	index int,
	step *models.DeploymentStep,
	declared map[string]int,
	allNames []string,
	network domain.NetworkID,
) (*models.PlannedStep, error) {
	artifactName := step.Artifact
	if artifactName == "" {
		artifactName = step.Name
	}

	artifact, err := p.artifacts.GetArtifact(ctx, artifactName)
	if err != nil {
		return nil, &domain.InvalidGraphError{Step: step.Name, Ref: artifactName, Reason: "cannot load artifact", Err: err}
	}

	inputs := artifact.Constructor()
	if len(inputs) != len(step.Args) {
		return nil, &domain.InvalidGraphError{
			Step:   step.Name,
			Reason: fmt.Sprintf("constructor of %s takes %d arguments, %d declared", artifact.Name, len(inputs), len(step.Args)),
		}
	}

	planned := &models.PlannedStep{
		Index:    index,
		Step:     step,
		Artifact: artifact,
		Args:     make([]models.ResolvedArg, len(step.Args)),
	}

	for j, ref := range step.Args {
		arg, err := p.planArg(ctx, step, ref, inputs[j], declared, allNames, network)
		if err != nil {
			return nil, err
		}
		if ref.Kind == models.RefStep {
			planned.DependsOn = append(planned.DependsOn, arg.StepIndex)
		}
		planned.Args[j] = arg
	}

	planned.DependsOn = lo.Uniq(planned.DependsOn)
	sort.Ints(planned.DependsOn)
	return planned, nil
}

func (p *PlanDeployment) planArg(
	ctx context.Context,
	step *models.DeploymentStep,
	ref models.AddressRef,
	input abi.Argument,
	declared map[string]int,
	allNames []string,
	network domain.NetworkID,
) (models.ResolvedArg, error) {
	arg := models.ResolvedArg{Ref: ref}

	if ref.Kind != models.RefLiteral && input.Type.T != abi.AddressTy {
		return arg, &domain.InvalidGraphError{
			Step:   step.Name,
			Ref:    ref.String(),
			Reason: fmt.Sprintf("address reference used for parameter %q of type %s", input.Name, input.Type.String()),
		}
	}

	switch ref.Kind {
	case models.RefLiteral:
		value, err := create2.Coerce(input.Type, ref.Value)
		if err != nil {
			return arg, &domain.InvalidGraphError{
				Step:   step.Name,
				Ref:    ref.String(),
				Reason: fmt.Sprintf("invalid value for parameter %q", input.Name),
				Err:    err,
			}
		}
		arg.Value = value
		arg.Resolved = true

	case models.RefAddressBook:
		addr, err := p.book.Resolve(ctx, ref.Family, ref.Version, network)
		if err != nil {
			var unresolved *domain.UnresolvedAddressError
			if errors.As(err, &unresolved) {
				unresolved.Step = step.Name
			}
			return arg, err
		}
		arg.Value = addr
		arg.Resolved = true

	case models.RefStep:
		if ref.Step == step.Name {
			return arg, &domain.InvalidGraphError{Step: step.Name, Ref: ref.String(), Reason: "step references itself"}
		}
		idx, ok := declared[ref.Step]
		if !ok {
			if lo.Contains(allNames, ref.Step) {
				return arg, &domain.InvalidGraphError{Step: step.Name, Ref: ref.String(), Reason: "forward reference to a step declared later"}
			}
			return arg, &domain.InvalidGraphError{Step: step.Name, Ref: ref.String(), Reason: "unknown step" + suggest(ref.Step, allNames)}
		}
		arg.StepIndex = idx

	case models.RefDeployment:
		if ref.Deployment == "" {
			return arg, &domain.InvalidGraphError{Step: step.Name, Ref: ref.String(), Reason: "deployment reference has no name"}
		}

	default:
		return arg, &domain.InvalidGraphError{Step: step.Name, Ref: ref.String(), Reason: "unknown argument kind"}
	}

	return arg, nil
}

// suggest returns a "did you mean" hint for a misspelled step name
func suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", matches[0].Str)
}
