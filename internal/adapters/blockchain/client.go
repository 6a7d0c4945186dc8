package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// DefaultPollInterval is how often WaitMined asks for the receipt
const DefaultPollInterval = 2 * time.Second

// callTimeout bounds single read calls
const callTimeout = 15 * time.Second

// Client implements usecase.ChainClient over JSON-RPC
type Client struct {
	eth          *ethclient.Client
	chainID      *big.Int
	key          *ecdsa.PrivateKey
	from         common.Address
	signer       types.Signer
	pollInterval time.Duration
	log          *slog.Logger
}

// ChainID returns the chain id reported by the node
func (c *Client) ChainID(ctx context.Context) (domain.NetworkID, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return domain.NetworkID(id.Uint64()), nil
}

// HasCode reports whether address holds contract code at the latest block
func (c *Client) HasCode(ctx context.Context, address common.Address) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	code, err := c.eth.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check code at %s: %w", address.Hex(), err)
	}
	return len(code) > 0, nil
}

// SimulateDeploy calls the factory without broadcasting. The deterministic
// deployment proxy returns the 20 raw bytes of the created address.
func (c *Client) SimulateDeploy(ctx context.Context, req usecase.DeployRequest) (common.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out, err := c.eth.CallContract(ctx, c.callMsg(req), nil)
	if err != nil {
		return common.Address{}, classify(err)
	}
	if len(out) < common.AddressLength {
		return common.Address{}, nil
	}
	return common.BytesToAddress(out[len(out)-common.AddressLength:]), nil
}

// SendDeploy signs the factory call with the network key and broadcasts it
func (c *Client) SendDeploy(ctx context.Context, req usecase.DeployRequest) (common.Hash, error) {
	if c.key == nil {
		return common.Hash{}, domain.ErrSignerMissing
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get nonce: %w", err)
	}

	gas := req.GasLimit
	if gas == 0 {
		gas, err = c.eth.EstimateGas(ctx, c.callMsg(req))
		if err != nil {
			return common.Hash{}, classify(err)
		}
	}

	tx, err := c.buildTx(ctx, nonce, gas, req)
	if err != nil {
		return common.Hash{}, err
	}

	signedTx, err := types.SignTx(tx, c.signer, c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, classify(err)
	}

	c.log.Debug("transaction sent", "tx", signedTx.Hash().Hex(), "nonce", nonce, "gas", gas)
	return signedTx.Hash(), nil
}

// buildTx prefers an EIP-1559 transaction and falls back to a legacy one on
// networks without a base fee
func (c *Client) buildTx(ctx context.Context, nonce, gas uint64, req usecase.DeployRequest) (*types.Transaction, error) {
	to := req.Factory

	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("suggest gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &to,
			GasPrice: gasPrice,
			Gas:      gas,
			Data:     req.Calldata,
		}), nil
	}

	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Data:      req.Calldata,
	}), nil
}

// WaitMined polls for the receipt until it exists or ctx expires
func (c *Client) WaitMined(ctx context.Context, txHash common.Hash) (*usecase.DeployReceipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil {
			return &usecase.DeployReceipt{
				TxHash:      receipt.TxHash,
				BlockNumber: receipt.BlockNumber.Uint64(),
				Status:      receipt.Status,
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.log.Debug("receipt poll failed", "tx", txHash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", txHash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close releases the RPC connection
func (c *Client) Close() {
	c.eth.Close()
}

func (c *Client) callMsg(req usecase.DeployRequest) ethereum.CallMsg {
	to := req.Factory
	return ethereum.CallMsg{
		From: c.from,
		To:   &to,
		Gas:  req.GasLimit,
		Data: req.Calldata,
	}
}

// classify marks node rejections that retrying cannot fix
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "execution reverted"),
		strings.Contains(msg, "revert"),
		strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "gas required exceeds allowance"):
		return fmt.Errorf("%w: %v", domain.ErrDeploymentReverted, err)
	}
	return err
}

func parsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

var _ usecase.ChainClient = (*Client)(nil)
