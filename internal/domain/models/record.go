package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
)

// DeploymentMarker tells how the address came to be recorded
type DeploymentMarker struct {
	TxHash      common.Hash `json:"txHash,omitempty"`
	BlockNumber uint64      `json:"blockNumber,omitempty"`
	Existing    bool        `json:"existing"` // code was already present, not created by a recorded transaction
}

// DeploymentRecord is the persisted result of a step on a network. It is
// written once and never mutated.
type DeploymentRecord struct {
	Network      domain.NetworkID        `json:"network"`
	Name         string                  `json:"name"`
	Address      common.Address          `json:"address"`
	Method       domain.DeploymentMethod `json:"method"`
	Factory      common.Address          `json:"factory"`
	Salt         common.Hash             `json:"salt"`
	InitCodeHash common.Hash             `json:"initCodeHash"`
	Artifact     string                  `json:"artifact"`
	Args         []string                `json:"args"`
	ArgsDigest   common.Hash             `json:"argsDigest"`
	Marker       DeploymentMarker        `json:"marker"`
	RecordedAt   time.Time               `json:"recordedAt"`
}

// SameAddress reports whether two records point at the same contract
func (r *DeploymentRecord) SameAddress(other *DeploymentRecord) bool {
	return r.Address == other.Address
}
