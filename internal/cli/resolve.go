package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewResolveCmd creates the resolve command
func NewResolveCmd() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "resolve <family>",
		Short: "Look up a canonical address in the address book",
		Long: `Look up the address of a contract family on a network. Overrides from
[addressbook.overrides] in sling.toml win over the catalog. Without
--version the latest released catalog entry is used.

Examples:
  sling resolve EntryPoint -n mainnet
  sling resolve GnosisSafe --version 1.3.0 -n sepolia`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			network, err := selectNetwork(cmd, app)
			if err != nil {
				return err
			}

			result, err := app.ResolveAddress.Run(cmd.Context(), usecase.ResolveAddressParams{
				Family:  args[0],
				Version: version,
				Network: network,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[*usecase.ResolvedAddress](cmd.OutOrStdout()).Render(result)
			}
			return render.RenderResolved(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Catalog version (default latest)")

	return cmd
}
