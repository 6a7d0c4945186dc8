package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

func TestListRecords(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	registry := newMemRegistry()
	for _, rec := range []*models.DeploymentRecord{
		{Network: 10, Name: "EIP4337Manager", Address: common.HexToAddress("0x01"), RecordedAt: now},
		{Network: 1, Name: "EIP4337Fallback", Address: common.HexToAddress("0x02"), RecordedAt: now.Add(time.Minute)},
		{Network: 1, Name: "EIP4337Manager", Address: common.HexToAddress("0x03"), RecordedAt: now},
	} {
		require.NoError(t, registry.Put(ctx, rec))
	}

	t.Run("all networks ordered by network then time", func(t *testing.T) {
		result, err := usecase.NewListRecords(registry).Run(ctx, usecase.ListRecordsParams{})
		require.NoError(t, err)
		require.Len(t, result.Records, 3)

		assert.Equal(t, domain.NetworkID(1), result.Records[0].Network)
		assert.Equal(t, "EIP4337Manager", result.Records[0].Name)
		assert.Equal(t, "EIP4337Fallback", result.Records[1].Name)
		assert.Equal(t, domain.NetworkID(10), result.Records[2].Network)
		assert.Len(t, result.ByNetwork[1], 2)
		assert.Len(t, result.ByNetwork[10], 1)
	})

	t.Run("single network", func(t *testing.T) {
		result, err := usecase.NewListRecords(registry).Run(ctx, usecase.ListRecordsParams{Network: 10})
		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, common.HexToAddress("0x01"), result.Records[0].Address)
	})
}

func TestResolveAddress(t *testing.T) {
	ctx := context.Background()
	book := fakeBook{"GnosisSafe@1.3.0": safeSingleton}
	network := testNetwork("mainnet", 1)

	result, err := usecase.NewResolveAddress(book).Run(ctx, usecase.ResolveAddressParams{Family: "GnosisSafe", Version: "1.3.0", Network: network})
	require.NoError(t, err)
	assert.Equal(t, safeSingleton, result.Address)
	assert.Equal(t, network, result.Network)

	_, err = usecase.NewResolveAddress(book).Run(ctx, usecase.ResolveAddressParams{Family: "GnosisSafe", Network: network})
	assert.ErrorIs(t, err, domain.ErrUnresolvedAddress)
}

type fakeResolver map[string]*config.Network

func (f fakeResolver) NetworkNames(ctx context.Context) []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	return names
}

func (f fakeResolver) ResolveNetwork(ctx context.Context, name string) (*config.Network, error) {
	n := f[name]
	if n == nil {
		return nil, errors.New("chain_id is required")
	}
	return n, nil
}

func TestListNetworks(t *testing.T) {
	resolver := fakeResolver{
		"sepolia": testNetwork("sepolia", 11155111),
		"broken":  nil,
		"mainnet": &config.Network{
			Name:       "mainnet",
			ChainID:    1,
			Factory:    common.HexToAddress("0x00000000000000000000000000000000000f4c70"),
			PrivateKey: "0x01",
		},
	}

	result, err := usecase.NewListNetworks(resolver).Run(context.Background(), usecase.ListNetworksParams{})
	require.NoError(t, err)
	require.Len(t, result.Networks, 3)

	assert.Equal(t, "broken", result.Networks[0].Name)
	assert.Error(t, result.Networks[0].Error)
	assert.Equal(t, "mainnet", result.Networks[1].Name)
	assert.Equal(t, domain.NetworkID(1), result.Networks[1].Network.ChainID)
	assert.True(t, result.Networks[1].HasSigner)
	assert.True(t, result.Networks[1].CustomFactory)
	assert.False(t, result.Networks[2].HasSigner)
	assert.False(t, result.Networks[2].CustomFactory)
	assert.Equal(t, "sepolia", result.Networks[2].Name)
}
