package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewRecordsCmd creates the records command
func NewRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "records",
		Aliases: []string{"ls"},
		Short:   "List recorded deployments",
		Long: `List the deployment registry. With --network only that network's
records are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListRecordsParams{}
			switch len(app.Config.Networks) {
			case 0:
			case 1:
				params.Network = app.Config.Networks[0].ChainID
			default:
				return fmt.Errorf("records filters on a single network, got %d", len(app.Config.Networks))
			}

			result, err := app.ListRecords.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*usecase.RecordListResult](cmd.OutOrStdout()).Render(result)
			}
			return render.NewRecordsRenderer(cmd.OutOrStdout()).Render(result)
		},
	}
}
