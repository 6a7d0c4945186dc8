package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

const testSlingToml = `
[networks.sepolia]
chain_id = 11155111
rpc_url = "${SLING_TEST_SEPOLIA_RPC}"
private_key = "${SLING_TEST_DEPLOYER_KEY}"

[networks.gnosis]
chain_id = 100
rpc_url = "https://rpc.gnosischain.com"
factory = "0x914d7Fec6aaC8cd542e72Bca78B30650d45643d7"
confirm = true

[addressbook]
catalog = "catalog"

[addressbook.overrides.11155111]
safe_proxy_factory = "0x4e1DCf7AD4e460CfD30791CCC4F9c8a4f820ec67"

[registry]
driver = "sqlite"
`

func writeProject(t *testing.T, slingToml, env string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SlingFile), []byte(slingToml), 0644))
	if env != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))
	}
	return dir
}

func TestProvider(t *testing.T) {
	t.Run("loads sling.toml with env expansion", func(t *testing.T) {
		dir := writeProject(t, testSlingToml,
			"SLING_TEST_SEPOLIA_RPC=https://sepolia.example\nSLING_TEST_DEPLOYER_KEY=0xabc\n")

		v := viper.New()
		v.Set("project_root", dir)
		v.Set("network", "sepolia, gnosis,sepolia")
		v.Set("confirmation_timeout", "90s")

		cfg, err := Provider(v)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, DataDir), cfg.DataDir)
		assert.Equal(t, 90*time.Second, cfg.ConfirmationTimeout)
		assert.Equal(t, config.RegistryDriverSQLite, cfg.SlingConfig.Registry.Driver)
		assert.Equal(t, []string{"out", "artifacts"}, cfg.SlingConfig.Artifacts.Paths)
		assert.Equal(t, "0x4e1DCf7AD4e460CfD30791CCC4F9c8a4f820ec67",
			cfg.SlingConfig.AddressBook.Overrides["11155111"]["safe_proxy_factory"])

		require.Len(t, cfg.Networks, 2)
		sepolia := cfg.Networks[0]
		assert.Equal(t, "sepolia", sepolia.Name)
		assert.Equal(t, domain.NetworkID(11155111), sepolia.ChainID)
		assert.Equal(t, "https://sepolia.example", sepolia.RPCURL)
		assert.Equal(t, "0xabc", sepolia.PrivateKey)
		assert.Equal(t, common.Address{}, sepolia.Factory)

		gnosis := cfg.Networks[1]
		assert.True(t, gnosis.Confirm)
		assert.Equal(t, common.HexToAddress("0x914d7Fec6aaC8cd542e72Bca78B30650d45643d7"), gnosis.Factory)
	})

	t.Run("unknown network suggests close names", func(t *testing.T) {
		dir := writeProject(t, testSlingToml, "")

		v := viper.New()
		v.Set("project_root", dir)
		v.Set("network", "seplia")

		_, err := Provider(v)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNetworkNotFound)
		assert.Contains(t, err.Error(), "did you mean sepolia")
	})

	t.Run("missing sling.toml yields defaults", func(t *testing.T) {
		v := viper.New()
		v.Set("project_root", t.TempDir())

		cfg, err := Provider(v)
		require.NoError(t, err)
		assert.Empty(t, cfg.Networks)
		assert.Equal(t, config.RegistryDriverFile, cfg.SlingConfig.Registry.Driver)
	})

	t.Run("invalid toml", func(t *testing.T) {
		dir := writeProject(t, "[networks.sepolia\nchain_id = 1", "")

		v := viper.New()
		v.Set("project_root", dir)

		_, err := Provider(v)
		assert.Error(t, err)
	})
}

func TestNetworkResolver(t *testing.T) {
	resolver := NewNetworkResolver(&config.SlingConfig{
		Networks: map[string]config.NetworkConfig{
			"anvil":   {ChainID: 31337, RPCURL: "http://localhost:8545"},
			"nochain": {RPCURL: "http://localhost:8545"},
			"badfact": {ChainID: 1, Factory: "0x1234"},
		},
	})

	assert.Equal(t, []string{"anvil", "badfact", "nochain"}, resolver.GetNetworks())

	network, err := resolver.Resolve("anvil")
	require.NoError(t, err)
	assert.Equal(t, domain.NetworkID(31337), network.ChainID)

	_, err = resolver.Resolve("nochain")
	assert.ErrorContains(t, err, "chain_id is required")

	_, err = resolver.Resolve("badfact")
	assert.ErrorContains(t, err, "invalid factory")
}

func TestSetupViper(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, DataDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataDir, "config.local.json"),
		[]byte(`{"retries": 5}`), 0644))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("network", "", "")
	cmd.Flags().Bool("non-interactive", false, "")
	require.NoError(t, cmd.Flags().Set("non-interactive", "true"))

	v := SetupViper(dir, cmd)

	assert.Equal(t, dir, v.GetString("project_root"))
	assert.Equal(t, 5, v.GetInt("retries"))
	assert.Equal(t, 30*time.Minute, v.GetDuration("timeout"))
	assert.Equal(t, 3*time.Minute, v.GetDuration("confirmation_timeout"))
	assert.True(t, v.GetBool("non_interactive"))
}
