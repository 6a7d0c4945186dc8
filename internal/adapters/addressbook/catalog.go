// Package addressbook resolves canonical, network-scoped addresses of
// contracts that are referenced by a pipeline but deployed by someone else,
// such as the Safe proxy factory and singleton.
//
// Resolution is a pure function of (network, family, version): an operator
// override wins, otherwise the versioned catalog is consulted, otherwise the
// lookup fails. There is no fallback to another version.
package addressbook

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
)

//go:embed catalog/*.json
var embeddedCatalog embed.FS

// CatalogFile is one family's published deployments, in the layout used by
// the safe-deployments package
type CatalogFile struct {
	Family      string         `json:"family"`
	Deployments []CatalogEntry `json:"deployments"`
}

// CatalogEntry is one released (or unreleased) version of a family
type CatalogEntry struct {
	ContractName     string            `json:"contractName"`
	Version          string            `json:"version"`
	Released         bool              `json:"released"`
	DefaultAddress   string            `json:"defaultAddress"`
	NetworkAddresses map[string]string `json:"networkAddresses"`

	version *semver.Version
}

// AddressOn returns the address published for network
func (e *CatalogEntry) AddressOn(network domain.NetworkID) (common.Address, bool) {
	addr, ok := e.NetworkAddresses[network.String()]
	if !ok || !common.IsHexAddress(addr) {
		return common.Address{}, false
	}
	return common.HexToAddress(addr), true
}

// Catalog is the read-only registry of well-known addresses
type Catalog struct {
	families map[string][]*CatalogEntry
}

// NewCatalog loads the embedded catalog and, if dir is not empty, every JSON
// file in dir. Entries from dir are added to the embedded ones; a version
// present in both is taken from dir.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{families: make(map[string][]*CatalogEntry)}

	if err := c.loadFS(embeddedCatalog, "catalog"); err != nil {
		return nil, fmt.Errorf("failed to load embedded catalog: %w", err)
	}

	if dir != "" {
		if err := c.loadFS(os.DirFS(dir), "."); err != nil {
			return nil, fmt.Errorf("failed to load catalog from %s: %w", dir, err)
		}
	}

	return c, nil
}

func (c *Catalog) loadFS(fsys fs.FS, root string) error {
	matches, err := fs.Glob(fsys, filepath.ToSlash(filepath.Join(root, "*.json")))
	if err != nil {
		return err
	}

	for _, path := range matches {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		var file CatalogFile
		if err := json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if file.Family == "" {
			file.Family = strings.TrimSuffix(filepath.Base(path), ".json")
		}

		for i := range file.Deployments {
			if err := c.add(file.Family, &file.Deployments[i]); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return nil
}

func (c *Catalog) add(family string, entry *CatalogEntry) error {
	v, err := semver.NewVersion(entry.Version)
	if err != nil {
		return fmt.Errorf("invalid version %q for %s: %w", entry.Version, family, err)
	}
	entry.version = v

	entries := c.families[family]
	for i, existing := range entries {
		if existing.version.Equal(v) {
			entries[i] = entry
			return nil
		}
	}
	c.families[family] = append(entries, entry)
	return nil
}

// Families returns the known family names
func (c *Catalog) Families() []string {
	names := make([]string, 0, len(c.families))
	for name := range c.families {
		names = append(names, name)
	}
	return names
}

// Find selects the entry of family matching selector: an exact version, or
// "latest" (or empty) for the highest released version. It returns nil when
// nothing matches.
func (c *Catalog) Find(family, selector string) (*CatalogEntry, error) {
	entries := c.families[family]

	if selector == "" || selector == domain.LatestVersion {
		var best *CatalogEntry
		for _, e := range entries {
			if !e.Released {
				continue
			}
			if best == nil || e.version.GreaterThan(best.version) {
				best = e
			}
		}
		return best, nil
	}

	want, err := semver.NewVersion(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid version selector %q: %w", selector, err)
	}
	for _, e := range entries {
		if e.version.Equal(want) {
			return e, nil
		}
	}
	return nil, nil
}
