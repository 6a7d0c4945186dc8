package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

const (
	DataDir         = ".sling"
	DeploymentsFile = "deployments.json"
	AddressesFile   = "addresses.json"
)

// AddressIndex is the flattened chainId -> name -> address view written next
// to the records for consumption by scripts and frontends
type AddressIndex map[domain.NetworkID]map[string]common.Address

// FileRegistry stores deployment records in a JSON file
type FileRegistry struct {
	dir     string
	mu      sync.RWMutex
	records map[string]*models.DeploymentRecord
}

// NewFileRegistry opens (or creates) the registry in dir
func NewFileRegistry(dir string) (*FileRegistry, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	r := &FileRegistry{
		dir:     dir,
		records: make(map[string]*models.DeploymentRecord),
	}

	if err := r.loadFile(DeploymentsFile, &r.records); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}

	return r, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	return nil
}

func recordKey(network domain.NetworkID, name string) string {
	return network.String() + "/" + name
}

// Get returns the record of name on network
func (r *FileRegistry) Get(ctx context.Context, network domain.NetworkID, name string) (*models.DeploymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[recordKey(network, name)]
	if !ok {
		return nil, fmt.Errorf("deployment %s on network %s: %w", name, network, domain.ErrNotFound)
	}
	return record, nil
}

// Put inserts a record. An identical address is a no-op, a different one is a conflict.
func (r *FileRegistry) Put(ctx context.Context, record *models.DeploymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey(record.Network, record.Name)
	if existing, ok := r.records[key]; ok {
		if existing.SameAddress(record) {
			return nil
		}
		return &domain.RecordConflictError{
			Network:  record.Network,
			Name:     record.Name,
			Existing: existing.Address,
			Proposed: record.Address,
		}
	}

	r.records[key] = record
	if err := r.save(); err != nil {
		delete(r.records, key)
		return err
	}
	return nil
}

// List returns the records of network, or of every network when network is 0
func (r *FileRegistry) List(ctx context.Context, network domain.NetworkID) ([]*models.DeploymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.DeploymentRecord
	for _, record := range r.records {
		if network != 0 && record.Network != network {
			continue
		}
		out = append(out, record)
	}
	sortRecords(out)
	return out, nil
}

func (r *FileRegistry) save() error {
	if err := r.saveFile(DeploymentsFile, r.records); err != nil {
		return fmt.Errorf("failed to save deployments: %w", err)
	}

	index := make(AddressIndex)
	for _, record := range r.records {
		if index[record.Network] == nil {
			index[record.Network] = make(map[string]common.Address)
		}
		index[record.Network][record.Name] = record.Address
	}
	if err := r.saveFile(AddressesFile, index); err != nil {
		return fmt.Errorf("failed to save address index: %w", err)
	}
	return nil
}

func (r *FileRegistry) loadFile(filename string, v any) error {
	data, err := os.ReadFile(filepath.Join(r.dir, filename))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (r *FileRegistry) saveFile(filename string, v any) error {
	path := filepath.Join(r.dir, filename)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func sortRecords(records []*models.DeploymentRecord) {
	slices.SortFunc(records, func(a, b *models.DeploymentRecord) int {
		if a.Network != b.Network {
			if a.Network < b.Network {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
}
