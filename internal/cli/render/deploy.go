package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// DeployRenderer renders deployment plans, step outcomes and run summaries
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{
		out: out,
	}
}

// RenderPlan displays the validated plan of one network
func (r *DeployRenderer) RenderPlan(networkName string, plan *models.DeploymentPlan) {
	fmt.Fprintf(r.out, "\n🎯 Deploying %s to %s (chain %s)\n", plan.Pipeline, networkName, plan.Network)
	color.New(color.Bold).Fprintf(r.out, "📋 Plan: %d steps\n", len(plan.Steps))
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("─", 50))

	for _, step := range plan.Steps {
		fmt.Fprintf(r.out, "%d. ", step.Index+1)
		color.New(color.FgCyan).Fprintf(r.out, "%s", step.Step.Name)
		if step.Artifact.Name != step.Step.Name {
			fmt.Fprintf(r.out, " → ")
			color.New(color.FgGreen).Fprintf(r.out, "%s", step.Artifact.Name)
		}
		if len(step.DependsOn) > 0 {
			deps := make([]string, 0, len(step.DependsOn))
			for _, i := range step.DependsOn {
				deps = append(deps, plan.Steps[i].Step.Name)
			}
			color.New(color.FgHiBlack).Fprintf(r.out, " (depends on: %s)", strings.Join(deps, ", "))
		}
		fmt.Fprintln(r.out)

		for _, arg := range step.Args {
			if arg.Ref.Kind == models.RefLiteral {
				continue
			}
			color.New(color.FgHiBlack).Fprintf(r.out, "   %s", arg.Ref)
			if addr, ok := arg.Value.(common.Address); ok && arg.Resolved {
				color.New(color.FgHiBlack).Fprintf(r.out, " = %s", addr.Hex())
			}
			fmt.Fprintln(r.out)
		}
	}
	fmt.Fprintln(r.out)
}

// RenderStepOutcome renders a single step result as it completes
func (r *DeployRenderer) RenderStepOutcome(networkName string, current, total int, outcome *models.StepOutcome) {
	fmt.Fprintf(r.out, "[%s %d/%d] %s %s", networkName, current, total, FormatStatus(outcome.Status), outcome.Step)

	switch outcome.Status {
	case models.StepDeployed:
		fmt.Fprintf(r.out, " at %s", outcome.Record.Address.Hex())
		color.New(color.FgHiBlack).Fprintf(r.out, " (tx %s)", outcome.Record.Marker.TxHash.Hex())
	case models.StepExisting:
		fmt.Fprintf(r.out, " at %s", outcome.Record.Address.Hex())
	case models.StepBlocked:
		color.New(color.FgYellow).Fprintf(r.out, " (blocked by %s)", outcome.BlockedBy)
	case models.StepFailed, models.StepCancelled:
		if outcome.Error != "" {
			fmt.Fprintln(r.out)
			color.New(color.FgRed).Fprintf(r.out, "    %s", outcome.Error)
		}
	}
	fmt.Fprintln(r.out)
}

// RenderRunResult displays the final summary of every network
func (r *DeployRenderer) RenderRunResult(result *models.RunResult) error {
	fmt.Fprintf(r.out, "\n%s\n", strings.Repeat("═", 70))

	for _, run := range result.Networks {
		if run == nil {
			continue
		}
		color.New(color.Bold).Fprintf(r.out, "%s (chain %s)\n", run.NetworkName, run.Network)

		t := newTable(r.out)
		t.AppendHeader(table.Row{"Step", "Status", "Address", "Transaction"})
		for _, o := range run.Outcomes {
			address, tx := "", ""
			if o.Record != nil {
				address = o.Record.Address.Hex()
				if o.Record.Marker.TxHash != (common.Hash{}) {
					tx = o.Record.Marker.TxHash.Hex()
				}
			}
			t.AppendRow(table.Row{o.Step, FormatStatus(o.Status), address, tx})
		}
		t.Render()
		fmt.Fprintln(r.out)
	}

	if result.Success() {
		color.New(color.FgGreen, color.Bold).Fprintf(r.out, "🎉 %s is fully deployed\n", result.Pipeline)
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(r.out, "❌ %s did not complete\n", result.Pipeline)
	}

	fmt.Fprintf(r.out, "\n📊 Summary (run %s):\n", result.RunID)
	for _, run := range result.Networks {
		if run == nil {
			continue
		}
		fmt.Fprintf(r.out, "  • %s: %d deployed, %d existing, %d failed, %d blocked, %d cancelled\n",
			run.NetworkName,
			run.Count(models.StepDeployed),
			run.Count(models.StepExisting),
			run.Count(models.StepFailed),
			run.Count(models.StepBlocked),
			run.Count(models.StepCancelled))
	}
	return nil
}
