package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/pkg/create2"
)

const accountFactoryPipeline = `
name: gnosis-account-factory
gas_limit: 6000000
steps:
  - name: EIP4337Manager
    args:
      - deployment: EntryPoint
  - name: EIP4337Fallback
    args:
      - step: EIP4337Manager
  - name: GnosisSafeAccountFactory
    salt: "account-factory-v1"
    gas_limit: 8000000
    args:
      - addressbook: safe_proxy_factory@1.3.0
      - addressbook:
          family: safe_singleton
          version: latest
      - step: EIP4337Manager
`

func TestParsePipeline(t *testing.T) {
	t.Run("account factory pipeline", func(t *testing.T) {
		pipeline, err := ParsePipeline([]byte(accountFactoryPipeline), "deploy.yaml")
		require.NoError(t, err)

		assert.Equal(t, "gnosis-account-factory", pipeline.Name)
		require.Len(t, pipeline.Steps, 3)

		manager := pipeline.Steps[0]
		assert.Equal(t, "EIP4337Manager", manager.Artifact)
		assert.Equal(t, common.Hash{}, manager.Salt)
		assert.Equal(t, uint64(6000000), manager.GasLimit)
		assert.Equal(t, []models.AddressRef{models.FromDeployment("EntryPoint")}, manager.Args)

		assert.Equal(t, []models.AddressRef{models.FromStep("EIP4337Manager")}, pipeline.Steps[1].Args)

		factory := pipeline.Steps[2]
		assert.Equal(t, create2.SaltFromString("account-factory-v1"), factory.Salt)
		assert.Equal(t, uint64(8000000), factory.GasLimit)
		assert.Equal(t, []models.AddressRef{
			models.FromAddressBook("safe_proxy_factory", "1.3.0"),
			models.FromAddressBook("safe_singleton", "latest"),
			models.FromStep("EIP4337Manager"),
		}, factory.Args)
	})

	t.Run("literals keep source text", func(t *testing.T) {
		pipeline, err := ParsePipeline([]byte(`
steps:
  - name: Token
    artifact: ERC20
    args:
      - "Sling Token"
      - 115792089237316195423570985008687907853269984665640564039457584007913129639935
      - 0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789
      - true
`), "pipelines/token.yml")
		require.NoError(t, err)

		assert.Equal(t, "token", pipeline.Name)
		step := pipeline.Steps[0]
		assert.Equal(t, "ERC20", step.Artifact)
		assert.Equal(t, []models.AddressRef{
			models.Literal("Sling Token"),
			models.Literal("115792089237316195423570985008687907853269984665640564039457584007913129639935"),
			models.Literal("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"),
			models.Literal(true),
		}, step.Args)
	})

	t.Run("pipeline salt applies to every step", func(t *testing.T) {
		salt := "0x0000000000000000000000000000000000000000000000000000000000000001"
		pipeline, err := ParsePipeline([]byte(`
salt: "`+salt+`"
steps:
  - name: A
  - name: B
    salt: ""
`), "p.yaml")
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash(salt), pipeline.Steps[0].Salt)
		assert.Equal(t, common.Hash{}, pipeline.Steps[1].Salt)
	})

	errorCases := []struct {
		name string
		yaml string
		want string
	}{
		{"no steps", "name: empty\nsteps: []\n", "no steps"},
		{"unknown reference", "steps:\n  - name: A\n    args:\n      - contract: X\n", "unknown argument reference"},
		{"two keys", "steps:\n  - name: A\n    args:\n      - {step: X, deployment: Y}\n", "exactly one"},
		{"addressbook without family", "steps:\n  - name: A\n    args:\n      - addressbook: {version: 1.3.0}\n", "needs a family"},
		{"array literal", "steps:\n  - name: A\n    args:\n      - [1, 2]\n", "unsupported argument"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePipeline([]byte(tc.yaml), "p.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestPipelineLoaderRelativeToProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pipelines"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pipelines", "accounts.yaml"),
		[]byte(accountFactoryPipeline), 0644))

	loader := NewPipelineLoader(root)
	pipeline, err := loader.LoadPipeline(context.Background(), "pipelines/accounts.yaml")
	require.NoError(t, err)
	assert.Len(t, pipeline.Steps, 3)

	_, err = loader.LoadPipeline(context.Background(), "pipelines/missing.yaml")
	assert.Error(t, err)
}
