package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// DataDir holds local state: the file registry and config.local.json
const DataDir = ".sling"

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:         projectRoot,
		DataDir:             filepath.Join(projectRoot, DataDir),
		Debug:               v.GetBool("debug"),
		NonInteractive:      v.GetBool("non_interactive"),
		JSON:                v.GetBool("json"),
		DryRun:              v.GetBool("dry_run"),
		Timeout:             v.GetDuration("timeout"),
		ConfirmationTimeout: v.GetDuration("confirmation_timeout"),
		Retries:             v.GetInt("retries"),
		RetryBackoff:        v.GetDuration("retry_backoff"),
	}

	slingConfig, err := loadSlingConfig(projectRoot)
	if err != nil {
		return nil, err
	}
	cfg.SlingConfig = slingConfig

	if list := v.GetString("network"); list != "" {
		networks, err := NewNetworkResolver(slingConfig).ResolveList(list)
		if err != nil {
			return nil, err
		}
		cfg.Networks = networks
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find sling.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, SlingFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a sling project (%s not found)", SlingFile)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, DataDir))

	v.SetEnvPrefix("SLING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", 30*time.Minute)
	v.SetDefault("confirmation_timeout", 3*time.Minute)
	v.SetDefault("retries", 2)
	v.SetDefault("retry_backoff", 2*time.Second)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// config.local.json is optional
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.SlingConfig)
}
