package blockchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// Connector dials configured networks
type Connector struct {
	log *slog.Logger
}

// NewConnector creates a new connector
func NewConnector(log *slog.Logger) *Connector {
	return &Connector{log: log}
}

// Connect dials network.RPCURL and verifies the node serves the configured chain
func (c *Connector) Connect(ctx context.Context, network *config.Network) (usecase.ChainClient, error) {
	if network.RPCURL == "" {
		return nil, fmt.Errorf("network %s has no rpc_url", network.Name)
	}

	eth, err := ethclient.DialContext(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && chainID.Uint64() != uint64(network.ChainID) {
		eth.Close()
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", network.ChainID, chainID.Uint64())
	}

	client := &Client{
		eth:          eth,
		chainID:      chainID,
		signer:       types.LatestSignerForChainID(chainID),
		pollInterval: DefaultPollInterval,
		log:          c.log.With("network", network.Name),
	}

	if network.PrivateKey != "" {
		key, err := parsePrivateKey(network.PrivateKey)
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("network %s: %w", network.Name, err)
		}
		client.key = key
		client.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	c.log.Debug("connected", "network", network.Name, "chain", chainID, "sender", client.from.Hex())
	return client, nil
}

var _ usecase.ChainConnector = (*Connector)(nil)
