package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// SlingFile is the project configuration file name; its directory is the project root
const SlingFile = "sling.toml"

// loadEnvFiles loads .env then .env.local from the project root. Variables
// already set in the environment are not overwritten.
func loadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadSlingConfig decodes sling.toml over the defaults and expands
// environment variables in every network and override value
func loadSlingConfig(projectRoot string) (*config.SlingConfig, error) {
	loadEnvFiles(projectRoot)

	cfg := config.DefaultSlingConfig()

	path := filepath.Join(projectRoot, SlingFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", SlingFile, err)
	}

	for name, network := range cfg.Networks {
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		network.Factory = os.ExpandEnv(network.Factory)
		network.PrivateKey = os.ExpandEnv(network.PrivateKey)
		cfg.Networks[name] = network
	}

	for chain, entries := range cfg.AddressBook.Overrides {
		for key, addr := range entries {
			entries[key] = os.ExpandEnv(addr)
		}
		cfg.AddressBook.Overrides[chain] = entries
	}

	cfg.AddressBook.Catalog = os.ExpandEnv(cfg.AddressBook.Catalog)
	cfg.Registry.Path = os.ExpandEnv(cfg.Registry.Path)

	if cfg.Registry.Driver == "" {
		cfg.Registry.Driver = config.RegistryDriverFile
	}
	if len(cfg.Artifacts.Paths) == 0 {
		cfg.Artifacts.Paths = config.DefaultSlingConfig().Artifacts.Paths
	}

	return cfg, nil
}
