package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// PredictionRenderer renders dry-run address predictions
type PredictionRenderer struct {
	out     io.Writer
	verbose bool
}

// NewPredictionRenderer creates a new prediction renderer
func NewPredictionRenderer(out io.Writer, verbose bool) *PredictionRenderer {
	return &PredictionRenderer{out: out, verbose: verbose}
}

// Render displays the predicted address of every step
func (r *PredictionRenderer) Render(result *usecase.PredictionResult) error {
	fmt.Fprintf(r.out, "🔮 Predicted addresses for %s on %s (chain %s)\n",
		result.Pipeline, result.Network.Name, result.Network.ChainID)
	color.New(color.FgHiBlack).Fprintf(r.out, "   factory %s\n\n", result.Factory.Hex())

	t := newTable(r.out)
	t.AppendHeader(table.Row{"#", "Step", "Artifact", "Address", "Registry"})
	for _, step := range result.Steps {
		address := ""
		if step.Status != usecase.PredictionUnresolved {
			address = step.Address.Hex()
		}
		t.AppendRow(table.Row{step.Index + 1, step.Name, step.Artifact, address, formatPrediction(step.Status)})
	}
	t.Render()

	var problems []string
	for _, step := range result.Steps {
		if step.Err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", step.Name, step.Err))
		}
	}
	if len(problems) > 0 {
		fmt.Fprintln(r.out)
		for _, p := range problems {
			fmt.Fprintln(r.out, FormatWarning(p))
		}
	}

	if r.verbose {
		fmt.Fprintln(r.out)
		for _, step := range result.Steps {
			if len(step.Args) == 0 {
				continue
			}
			color.New(color.FgCyan).Fprintf(r.out, "%s", step.Name)
			fmt.Fprintf(r.out, "(%s)\n", strings.Join(step.Args, ", "))
		}
	}
	return nil
}

func formatPrediction(status usecase.PredictionStatus) string {
	switch status {
	case usecase.PredictionRecorded:
		return color.New(color.FgCyan).Sprint("recorded")
	case usecase.PredictionConflict:
		return color.New(color.FgRed, color.Bold).Sprint("conflict")
	case usecase.PredictionUnresolved:
		return color.New(color.FgYellow).Sprint("unresolved")
	default:
		return color.New(color.FgGreen).Sprint("new")
	}
}
