package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy <pipeline.yaml>",
		Short: "Deploy a pipeline to one or more networks",
		Long: `Deploy every step of a pipeline file in order. Each step is deployed
through the network's CREATE2 factory unless the registry already records it
or code already lives at its deterministic address.

Networks given as a comma separated list run concurrently. A failed step
blocks the steps that reference it; independent steps still run.

Examples:
  sling deploy pipelines/account.yaml -n sepolia
  sling deploy pipelines/account.yaml -n mainnet,optimism --non-interactive
  sling deploy pipelines/account.yaml -n sepolia --dry-run`,
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

			if app.Config.DryRun {
				return runPredict(cmd, app.PredictAddresses, args[0], networks, app.Config.JSON, false)
			}

			result, err := app.RunPipeline.Run(cmd.Context(), usecase.RunParams{
				PipelinePath: args[0],
				Networks:     networks,
			})
			if result != nil {
				var renderErr error
				if app.Config.JSON {
					renderErr = render.NewJSONRenderer[*models.RunResult](cmd.OutOrStdout()).Render(result)
				} else {
					renderErr = render.NewDeployRenderer(cmd.OutOrStdout()).RenderRunResult(result)
				}
				err = errors.Join(err, renderErr)
			}
			if err != nil {
				return err
			}

			if !result.Success() {
				return fmt.Errorf("pipeline %s did not complete", result.Pipeline)
			}
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Plan and predict addresses without sending transactions")

	return cmd
}
