package blockchain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		reverted bool
	}{
		{"execution reverted", errors.New("execution reverted: AA10 sender already constructed"), true},
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), true},
		{"gas allowance", errors.New("gas required exceeds allowance (6000000)"), true},
		{"timeout", errors.New("Post \"http://localhost:8545\": context deadline exceeded"), false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.Equal(t, tt.reverted, errors.Is(err, domain.ErrDeploymentReverted))
			assert.Contains(t, err.Error(), tt.err.Error())
		})
	}
}

func TestParsePrivateKey(t *testing.T) {
	// first anvil account
	const anvilKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

	key, err := parsePrivateKey(anvilKey)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", crypto.PubkeyToAddress(key.PublicKey).Hex())

	_, err = parsePrivateKey(anvilKey[2:] + "\n")
	assert.NoError(t, err)

	_, err = parsePrivateKey("0x1234")
	assert.Error(t, err)
}

func TestConnectRequiresRPC(t *testing.T) {
	connector := NewConnector(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := connector.Connect(context.Background(), &config.Network{Name: "sepolia", ChainID: 11155111})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
}
