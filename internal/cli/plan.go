package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
	domainconfig "github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <pipeline.yaml>",
		Short: "Validate a pipeline and predict its addresses",
		Long: `Validate a pipeline against the compiled artifacts and the address book,
then print every step with its deterministic address. No chain access is
needed: step references use the predicted address of the earlier step and
deployment references use the registry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			networks, err := selectNetworks(cmd, app)
			if err != nil {
				return err
			}

			return runPredict(cmd, app.PredictAddresses, args[0], networks, app.Config.JSON, true)
		},
	}
}

func runPredict(cmd *cobra.Command, uc *usecase.PredictAddresses, path string, networks []*domainconfig.Network, asJSON, verbose bool) error {
	results := make([]*usecase.PredictionResult, 0, len(networks))
	for _, network := range networks {
		result, err := uc.Predict(cmd.Context(), usecase.PredictParams{
			PipelinePath: path,
			Network:      network,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", network.Name, err)
		}
		results = append(results, result)
	}

	if asJSON {
		return render.NewJSONRenderer[[]*usecase.PredictionResult](cmd.OutOrStdout()).Render(results)
	}

	renderer := render.NewPredictionRenderer(cmd.OutOrStdout(), verbose)
	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := renderer.Render(result); err != nil {
			return err
		}
	}
	return nil
}
