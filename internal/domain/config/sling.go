package config

// SlingConfig represents the sling.toml project file
type SlingConfig struct {
	Networks    map[string]NetworkConfig `toml:"networks"`
	AddressBook AddressBookConfig        `toml:"addressbook"`
	Registry    RegistryConfig           `toml:"registry"`
	Artifacts   ArtifactsConfig          `toml:"artifacts"`
}

// NetworkConfig is a [networks.<name>] table
type NetworkConfig struct {
	ChainID    uint64 `toml:"chain_id"`
	RPCURL     string `toml:"rpc_url"`
	Factory    string `toml:"factory,omitempty"`
	PrivateKey string `toml:"private_key,omitempty"` //nolint:gosec // holds env var reference, not a literal secret
	Confirm    bool   `toml:"confirm,omitempty"`
}

// AddressBookConfig configures the canonical address sources
type AddressBookConfig struct {
	// Catalog is an optional directory of extra catalog JSON files
	Catalog string `toml:"catalog,omitempty"`
	// Overrides maps chain id -> family (or family@version) -> address
	Overrides map[string]map[string]string `toml:"overrides,omitempty"`
}

type RegistryDriver string

const (
	RegistryDriverFile   RegistryDriver = "file"
	RegistryDriverSQLite RegistryDriver = "sqlite"
)

// RegistryConfig selects the deployment record store
type RegistryConfig struct {
	Driver RegistryDriver `toml:"driver,omitempty"`
	Path   string         `toml:"path,omitempty"`
}

// ArtifactsConfig lists directories holding compiled artifacts
type ArtifactsConfig struct {
	Paths []string `toml:"paths,omitempty"`
}

// DefaultSlingConfig returns the configuration used when fields are omitted
func DefaultSlingConfig() *SlingConfig {
	return &SlingConfig{
		Networks: map[string]NetworkConfig{},
		Registry: RegistryConfig{
			Driver: RegistryDriverFile,
		},
		Artifacts: ArtifactsConfig{
			Paths: []string{"out", "artifacts"},
		},
	}
}
