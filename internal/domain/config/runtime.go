package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Networks selected with --network, in the order given
	Networks []*Network

	// Execution settings
	Debug               bool
	NonInteractive      bool
	JSON                bool
	DryRun              bool
	Timeout             time.Duration
	ConfirmationTimeout time.Duration
	Retries             int
	RetryBackoff        time.Duration

	// Resolved configurations
	SlingConfig *SlingConfig
}

// Network represents a resolved network configuration
type Network struct {
	Name       string           `json:"name"`
	ChainID    domain.NetworkID `json:"chainId"`
	RPCURL     string           `json:"rpcUrl"`
	Factory    common.Address   `json:"factory"`
	PrivateKey string           `json:"-"`
	Confirm    bool             `json:"confirm"`
}
