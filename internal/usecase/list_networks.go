package usecase

import (
	"context"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// ListNetworksParams selects nothing yet; every [networks] entry is listed
type ListNetworksParams struct{}

// ListNetworksResult holds one entry per configured network, sorted by name
type ListNetworksResult struct {
	Networks []NetworkEntry `json:"networks"`
}

// NetworkEntry is a deployable target. Error is set when the entry in
// sling.toml cannot be resolved (bad chain id, unset env var).
type NetworkEntry struct {
	Name          string          `json:"name"`
	Network       *config.Network `json:"network,omitempty"`
	HasSigner     bool            `json:"hasSigner"`
	CustomFactory bool            `json:"customFactory"`
	Error         error           `json:"-"`
}

// ListNetworks reports the targets a pipeline can be deployed to
type ListNetworks struct {
	resolver NetworkResolver
}

func NewListNetworks(resolver NetworkResolver) *ListNetworks {
	return &ListNetworks{resolver: resolver}
}

func (uc *ListNetworks) Run(ctx context.Context, _ ListNetworksParams) (*ListNetworksResult, error) {
	names := slices.Clone(uc.resolver.NetworkNames(ctx))
	slices.SortFunc(names, strings.Compare)

	result := &ListNetworksResult{Networks: make([]NetworkEntry, 0, len(names))}
	for _, name := range names {
		entry := NetworkEntry{Name: name}
		if network, err := uc.resolver.ResolveNetwork(ctx, name); err != nil {
			entry.Error = err
		} else {
			entry.Network = network
			entry.HasSigner = network.PrivateKey != ""
			entry.CustomFactory = network.Factory != (common.Address{}) && network.Factory != domain.DefaultFactory
		}
		result.Networks = append(result.Networks, entry)
	}
	return result, nil
}
