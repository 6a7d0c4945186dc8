package domain

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// NetworkID identifies the target chain. It partitions every address lookup
// and every registry entry.
type NetworkID uint64

func (n NetworkID) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// ParseNetworkID parses a decimal chain id
func ParseNetworkID(s string) (NetworkID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid network id %q: %w", s, err)
	}
	return NetworkID(id), nil
}

// DeploymentMethod represents how the contract was deployed
type DeploymentMethod string

const (
	DeploymentMethodCreate2 DeploymentMethod = "CREATE2"
)

// DefaultFactory is the deterministic-deployment proxy available on most EVM
// networks. It deploys calldata[32:] with CREATE2 using calldata[:32] as salt.
var DefaultFactory = common.HexToAddress("0x4e59b44847b379578588920ca78fbf26c0b4956c")

// LatestVersion selects the highest released catalog entry
const LatestVersion = "latest"
