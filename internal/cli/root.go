package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/adapters/progress"
	"github.com/trebuchet-org/sling/internal/app"
	"github.com/trebuchet-org/sling/internal/config"
	domainconfig "github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sling",
		Short: "Deterministic contract deployment pipelines",
		Long: `Sling deploys a declared set of interdependent contracts to one or more
EVM networks through a CREATE2 factory. Contracts already live at their
deterministic address are skipped and every address is recorded per network.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			var sink usecase.ProgressSink = progress.NewNopSink()
			if !v.GetBool("json") {
				sink = progress.NewDeployProgress(cmd.OutOrStdout())
			}

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			cancel := func() {}
			if appInstance.Config.Timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
				cancel()
				return appInstance.Close()
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Networks to use, comma separated (e.g. mainnet,sepolia)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	planCmd := NewPlanCmd()
	planCmd.GroupID = "main"
	rootCmd.AddCommand(planCmd)

	resolveCmd := NewResolveCmd()
	resolveCmd.GroupID = "main"
	rootCmd.AddCommand(resolveCmd)

	recordsCmd := NewRecordsCmd()
	recordsCmd.GroupID = "management"
	rootCmd.AddCommand(recordsCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// selectNetworks returns the networks given with --network, or asks the
// operator to pick from the configured ones
func selectNetworks(cmd *cobra.Command, a *app.App) ([]*domainconfig.Network, error) {
	if len(a.Config.Networks) > 0 {
		return a.Config.Networks, nil
	}
	if a.Config.NonInteractive {
		return nil, fmt.Errorf("no network selected, use --network")
	}

	ctx := cmd.Context()
	names, err := a.Selector.SelectNetworks(ctx, a.NetworkResolver.NetworkNames(ctx))
	if err != nil {
		return nil, err
	}

	networks := make([]*domainconfig.Network, 0, len(names))
	for _, name := range names {
		network, err := a.NetworkResolver.ResolveNetwork(ctx, name)
		if err != nil {
			return nil, err
		}
		networks = append(networks, network)
	}
	return networks, nil
}

// selectNetwork is selectNetworks for commands that work on exactly one network
func selectNetwork(cmd *cobra.Command, a *app.App) (*domainconfig.Network, error) {
	networks, err := selectNetworks(cmd, a)
	if err != nil {
		return nil, err
	}
	if len(networks) != 1 {
		return nil, fmt.Errorf("%s works on a single network, got %d", cmd.Name(), len(networks))
	}
	return networks[0], nil
}
