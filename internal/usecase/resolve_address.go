package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// ResolveAddress looks up a canonical address in the address book
type ResolveAddress struct {
	book AddressBook
}

// NewResolveAddress creates a new resolve use case
func NewResolveAddress(book AddressBook) *ResolveAddress {
	return &ResolveAddress{book: book}
}

// ResolveAddressParams contains parameters for a lookup
type ResolveAddressParams struct {
	Family  string
	Version string
	Network *config.Network
}

// ResolvedAddress is the lookup result
type ResolvedAddress struct {
	Family  string          `json:"family"`
	Version string          `json:"version,omitempty"`
	Network *config.Network `json:"network"`
	Address common.Address  `json:"address"`
}

// Run resolves the address
func (r *ResolveAddress) Run(ctx context.Context, params ResolveAddressParams) (*ResolvedAddress, error) {
	addr, err := r.book.Resolve(ctx, params.Family, params.Version, params.Network.ChainID)
	if err != nil {
		return nil, err
	}
	return &ResolvedAddress{
		Family:  params.Family,
		Version: params.Version,
		Network: params.Network,
		Address: addr,
	}, nil
}
