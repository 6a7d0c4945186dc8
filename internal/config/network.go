package config

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// NetworkResolver resolves network names declared in sling.toml
type NetworkResolver struct {
	networks map[string]config.NetworkConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(cfg *config.SlingConfig) *NetworkResolver {
	return &NetworkResolver{networks: cfg.Networks}
}

// GetNetworks returns the configured network names, sorted
func (r *NetworkResolver) GetNetworks() []string {
	names := lo.Keys(r.networks)
	slices.Sort(names)
	return names
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(name string) (*config.Network, error) {
	nc, ok := r.networks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s [networks]%s", domain.ErrNetworkNotFound, name, SlingFile, suggest(name, r.GetNetworks()))
	}

	if nc.ChainID == 0 {
		return nil, fmt.Errorf("network %s: chain_id is required", name)
	}

	network := &config.Network{
		Name:       name,
		ChainID:    domain.NetworkID(nc.ChainID),
		RPCURL:     nc.RPCURL,
		PrivateKey: nc.PrivateKey,
		Confirm:    nc.Confirm,
	}

	if nc.Factory != "" {
		if !common.IsHexAddress(nc.Factory) {
			return nil, fmt.Errorf("network %s: invalid factory address %q", name, nc.Factory)
		}
		network.Factory = common.HexToAddress(nc.Factory)
	}

	return network, nil
}

// NetworkNames implements usecase.NetworkResolver
func (r *NetworkResolver) NetworkNames(ctx context.Context) []string {
	return r.GetNetworks()
}

// ResolveNetwork implements usecase.NetworkResolver
func (r *NetworkResolver) ResolveNetwork(ctx context.Context, name string) (*config.Network, error) {
	return r.Resolve(name)
}

// ResolveList resolves a comma-separated list of names, keeping their order
// and dropping duplicates
func (r *NetworkResolver) ResolveList(list string) ([]*config.Network, error) {
	names := lo.Uniq(lo.Compact(lo.Map(strings.Split(list, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))

	networks := make([]*config.Network, 0, len(names))
	for _, name := range names {
		network, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		networks = append(networks, network)
	}
	return networks, nil
}

// suggest returns a "did you mean" hint for the closest candidates
func suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	hints := lo.Map(lo.Slice(matches, 0, 3), func(m fuzzy.Match, _ int) string { return m.Str })
	return fmt.Sprintf(" (did you mean %s?)", strings.Join(hints, ", "))
}
