package addressbook

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// Overrides maps network -> key -> address, where key is "family" or
// "family@version"
type Overrides map[domain.NetworkID]map[string]common.Address

// ParseOverrides validates the [addressbook.overrides] table
func ParseOverrides(raw map[string]map[string]string) (Overrides, error) {
	out := make(Overrides, len(raw))
	for chain, entries := range raw {
		network, err := domain.ParseNetworkID(chain)
		if err != nil {
			return nil, fmt.Errorf("addressbook override: %w", err)
		}
		out[network] = make(map[string]common.Address, len(entries))
		for key, addr := range entries {
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("addressbook override %s.%s: invalid address %q", chain, key, addr)
			}
			out[network][key] = common.HexToAddress(addr)
		}
	}
	return out, nil
}

// Book resolves addresses: override first, then the catalog
type Book struct {
	catalog   *Catalog
	overrides Overrides
	log       *slog.Logger
}

// NewBook creates an address book
func NewBook(catalog *Catalog, overrides Overrides, log *slog.Logger) *Book {
	if overrides == nil {
		overrides = Overrides{}
	}
	return &Book{
		catalog:   catalog,
		overrides: overrides,
		log:       log,
	}
}

// NewBookFromConfig builds the address book described by sling.toml
func NewBookFromConfig(cfg *config.RuntimeConfig, log *slog.Logger) (*Book, error) {
	abCfg := cfg.SlingConfig.AddressBook

	dir := abCfg.Catalog
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}

	catalog, err := NewCatalog(dir)
	if err != nil {
		return nil, err
	}

	overrides, err := ParseOverrides(abCfg.Overrides)
	if err != nil {
		return nil, err
	}

	return NewBook(catalog, overrides, log), nil
}

// Resolve returns the address of family at version on network
func (b *Book) Resolve(ctx context.Context, family, version string, network domain.NetworkID) (common.Address, error) {
	if addr, ok := b.override(family, version, network); ok {
		b.log.Debug("address from override", "family", family, "version", version, "network", network, "address", addr.Hex())
		return addr, nil
	}

	entry, err := b.catalog.Find(family, version)
	if err != nil {
		return common.Address{}, err
	}
	if entry != nil {
		if addr, ok := entry.AddressOn(network); ok {
			b.log.Debug("address from catalog", "family", family, "version", entry.Version, "network", network, "address", addr.Hex())
			return addr, nil
		}
	}

	return common.Address{}, &domain.UnresolvedAddressError{
		Family:  family,
		Version: version,
		Network: network,
	}
}

func (b *Book) override(family, version string, network domain.NetworkID) (common.Address, bool) {
	entries, ok := b.overrides[network]
	if !ok {
		return common.Address{}, false
	}
	if version != "" && version != domain.LatestVersion {
		if addr, ok := entries[family+"@"+version]; ok {
			return addr, true
		}
	}
	addr, ok := entries[family]
	return addr, ok
}
