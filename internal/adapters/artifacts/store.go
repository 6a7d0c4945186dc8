// Package artifacts indexes compiled contract artifacts produced by forge
// (out/<Source>.sol/<Name>.json) or hardhat (artifacts/**/<Name>.json).
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

// rawArtifact covers both layouts. Forge nests the creation code under
// bytecode.object, hardhat stores it as a plain string.
type rawArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// Store lazily indexes artifact directories and caches parsed artifacts
type Store struct {
	roots []string
	log   *slog.Logger

	mu      sync.RWMutex
	indexed bool
	paths   map[string][]string // contract name -> artifact files
	cache   map[string]*models.ContractArtifact
}

// NewStore creates a store over the given directories, searched in order
func NewStore(roots []string, log *slog.Logger) *Store {
	return &Store{
		roots: roots,
		log:   log,
		paths: make(map[string][]string),
		cache: make(map[string]*models.ContractArtifact),
	}
}

// NewStoreFromConfig resolves [artifacts] paths relative to the project root
func NewStoreFromConfig(cfg *config.RuntimeConfig, log *slog.Logger) *Store {
	roots := make([]string, 0, len(cfg.SlingConfig.Artifacts.Paths))
	for _, p := range cfg.SlingConfig.Artifacts.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cfg.ProjectRoot, p)
		}
		roots = append(roots, p)
	}
	return NewStore(roots, log)
}

// GetArtifact returns the artifact named name. Names may be qualified with the
// source file ("src/Counter.sol:Counter") when the bare name is ambiguous.
func (s *Store) GetArtifact(ctx context.Context, name string) (*models.ContractArtifact, error) {
	if err := s.ensureIndexed(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if artifact, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return artifact, nil
	}
	s.mu.RUnlock()

	path, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	artifact, err := parseArtifact(path, contractName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}

	s.mu.Lock()
	s.cache[name] = artifact
	s.mu.Unlock()

	s.log.Debug("loaded artifact", "name", name, "path", path, "bytecodeHash", artifact.BytecodeHash())
	return artifact, nil
}

func (s *Store) lookup(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bare := contractName(name)
	candidates := s.paths[bare]

	if source, _, qualified := strings.Cut(name, ":"); qualified {
		sourceFile := filepath.Base(source)
		for _, path := range candidates {
			if strings.Contains(filepath.ToSlash(path), "/"+sourceFile+"/") {
				return path, nil
			}
		}
		return "", fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("ambiguous artifact %q, qualify it with its source file: %s",
			name, strings.Join(candidates, ", "))
	}
}

func (s *Store) ensureIndexed() error {
	s.mu.RLock()
	done := s.indexed
	s.mu.RUnlock()
	if done {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed {
		return nil
	}

	for _, root := range s.roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
				return nil
			}
			name := strings.TrimSuffix(filepath.Base(path), ".json")
			s.paths[name] = append(s.paths[name], path)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to index artifacts in %s: %w", root, err)
		}
	}

	s.indexed = true
	return nil
}

func parseArtifact(path, name string) (*models.ContractArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	bytecode, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("contract %s has no creation bytecode (abstract or interface?)", name)
	}

	parsedABI := abi.ABI{}
	if len(raw.ABI) > 0 {
		parsedABI, err = abi.JSON(strings.NewReader(string(raw.ABI)))
		if err != nil {
			return nil, fmt.Errorf("invalid abi: %w", err)
		}
	}

	if raw.ContractName != "" {
		name = raw.ContractName
	}

	return &models.ContractArtifact{
		Name:     name,
		Source:   path,
		Bytecode: bytecode,
		ABI:      parsedABI,
	}, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var hex string
	if raw[0] == '{' {
		var forge struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &forge); err != nil {
			return nil, err
		}
		hex = forge.Object
	} else if err := json.Unmarshal(raw, &hex); err != nil {
		return nil, err
	}

	if hex == "" || hex == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(hex, "0x") {
		hex = "0x" + hex
	}
	if strings.Contains(hex, "__") {
		return nil, fmt.Errorf("bytecode has unlinked library placeholders")
	}
	return hexutil.Decode(hex)
}

func contractName(name string) string {
	if _, bare, ok := strings.Cut(name, ":"); ok {
		return bare
	}
	return name
}
