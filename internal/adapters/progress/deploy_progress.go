package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// DeployProgress renders pipeline runs as they happen: the plan of each
// network, a spinner for the running step and each step's outcome.
type DeployProgress struct {
	renderer *render.DeployRenderer
	spinner  *SpinnerSink
}

// NewDeployProgress creates a new deploy progress reporter
func NewDeployProgress(out io.Writer) *DeployProgress {
	return &DeployProgress{
		renderer: render.NewDeployRenderer(out),
		spinner:  NewSpinnerSink(out),
	}
}

// OnProgress handles progress events emitted by RunPipeline
func (p *DeployProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StagePlanCreated:
		if plan, ok := event.Metadata.(*models.DeploymentPlan); ok {
			p.spinner.Print(func(io.Writer) {
				p.renderer.RenderPlan(event.Network, plan)
			})
		}

	case usecase.StageStepStarting:
		p.spinner.OnProgress(ctx, usecase.ProgressEvent{
			Spinner: true,
			Message: fmt.Sprintf("[%s %d/%d] deploying %s", event.Network, event.Current, event.Total, event.Message),
		})

	case usecase.StageStepCompleted:
		if outcome, ok := event.Metadata.(*models.StepOutcome); ok {
			p.spinner.Print(func(io.Writer) {
				p.renderer.RenderStepOutcome(event.Network, event.Current, event.Total, outcome)
			})
		}

	case usecase.StageNetworkDone:
		p.spinner.Stop()

	default:
		p.spinner.OnProgress(ctx, event)
	}
}

// Info prints an info message
func (p *DeployProgress) Info(message string) {
	p.spinner.Info(message)
}

// Error prints an error message
func (p *DeployProgress) Error(message string) {
	p.spinner.Error(message)
}

var _ usecase.ProgressSink = (*DeployProgress)(nil)
