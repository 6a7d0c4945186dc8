package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
	"github.com/trebuchet-org/sling/pkg/create2"
)

var (
	entryPoint    = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	safeSingleton = common.HexToAddress("0x3E5c63644E683549055b9Be8653de26E0B4CD36E")
	proxyFactory  = common.HexToAddress("0xa6B71E26C5e0845f74c812102Ca7114b6a896AB2")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newArtifact builds an artifact whose constructor takes the given ABI types
func newArtifact(t *testing.T, name string, code byte, types ...string) *models.ContractArtifact {
	t.Helper()

	inputs := make([]string, len(types))
	for i, typ := range types {
		inputs[i] = fmt.Sprintf(`{"name":"arg%d","type":%q}`, i, typ)
	}
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"constructor","inputs":[` + strings.Join(inputs, ",") + `]}]`))
	require.NoError(t, err)

	return &models.ContractArtifact{
		Name:     name,
		Source:   name + ".json",
		Bytecode: []byte{0x60, 0x80, 0x60, 0x40, code},
		ABI:      parsed,
	}
}

// fakeArtifacts serves artifacts from a map
type fakeArtifacts map[string]*models.ContractArtifact

func (f fakeArtifacts) GetArtifact(ctx context.Context, name string) (*models.ContractArtifact, error) {
	a, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}
	return a, nil
}

// fakeBook resolves "family@version" keys; the version may be empty
type fakeBook map[string]common.Address

func (f fakeBook) Resolve(ctx context.Context, family, version string, network domain.NetworkID) (common.Address, error) {
	key := family
	if version != "" {
		key += "@" + version
	}
	addr, ok := f[key]
	if !ok {
		return common.Address{}, &domain.UnresolvedAddressError{Family: family, Version: version, Network: network}
	}
	return addr, nil
}

// memRegistry is an in-memory DeploymentRegistry
type memRegistry struct {
	mu      sync.Mutex
	records map[string]*models.DeploymentRecord
	puts    int
	getErr  error
}

func newMemRegistry() *memRegistry {
	return &memRegistry{records: make(map[string]*models.DeploymentRecord)}
}

func recordKey(network domain.NetworkID, name string) string {
	return fmt.Sprintf("%d/%s", network, name)
}

func (r *memRegistry) Get(ctx context.Context, network domain.NetworkID, name string) (*models.DeploymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	rec, ok := r.records[recordKey(network, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", domain.ErrNotFound, name, network)
	}
	return rec, nil
}

func (r *memRegistry) Put(ctx context.Context, record *models.DeploymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey(record.Network, record.Name)
	if existing, ok := r.records[key]; ok {
		if existing.Address != record.Address {
			return &domain.RecordConflictError{Network: record.Network, Name: record.Name, Existing: existing.Address, Proposed: record.Address}
		}
		return nil
	}
	r.records[key] = record
	r.puts++
	return nil
}

func (r *memRegistry) List(ctx context.Context, network domain.NetworkID) ([]*models.DeploymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DeploymentRecord
	for _, rec := range r.records {
		if network == 0 || rec.Network == network {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRegistry) seed(network domain.NetworkID, name string, addr common.Address) {
	r.records[recordKey(network, name)] = &models.DeploymentRecord{Network: network, Name: name, Address: addr}
}

// fakeChain emulates a node with a CREATE2 factory
type fakeChain struct {
	mu      sync.Mutex
	chainID domain.NetworkID
	code    map[common.Address]bool
	sent    []common.Hash

	// artifacts whose bytecode ends with one of these bytes revert on simulation
	revertCode map[byte]bool
	// receipt status 0 for every mined transaction
	statusZero bool
	// the factory reports this address instead of the CREATE2 one
	mismatch *common.Address
	// the first N HasCode calls fail
	hasCodeFailures int
	// SendDeploy returns this error
	sendErr error
	// called after each failing HasCode
	onHasCodeFailure func()

	// transactions are only mined when a receipt is awaited
	slow bool
	// the next N WaitMined calls block until the context expires
	holdReceipts int
	unmined      map[common.Hash]common.Address
	statuses     map[common.Hash]uint64
}

func newFakeChain(chainID domain.NetworkID) *fakeChain {
	return &fakeChain{
		chainID:    chainID,
		code:       map[common.Address]bool{domain.DefaultFactory: true},
		revertCode: make(map[byte]bool),
		unmined:    make(map[common.Hash]common.Address),
		statuses:   make(map[common.Hash]uint64),
	}
}

// slowChain keeps the first receipt pending past any confirmation timeout
func slowChain(chainID domain.NetworkID) *fakeChain {
	c := newFakeChain(chainID)
	c.slow = true
	c.holdReceipts = 1
	return c
}

func (c *fakeChain) ChainID(ctx context.Context) (domain.NetworkID, error) {
	return c.chainID, nil
}

func (c *fakeChain) HasCode(ctx context.Context, address common.Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasCodeFailures > 0 {
		c.hasCodeFailures--
		if c.onHasCodeFailure != nil {
			c.onHasCodeFailure()
		}
		return false, fmt.Errorf("connection refused")
	}
	return c.code[address], nil
}

func (c *fakeChain) SimulateDeploy(ctx context.Context, req usecase.DeployRequest) (common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mismatch != nil {
		return *c.mismatch, nil
	}
	salt, initCode := common.BytesToHash(req.Calldata[:32]), req.Calldata[32:]
	if c.revertCode[initCode[4]] {
		return common.Address{}, fmt.Errorf("%w: execution reverted", domain.ErrDeploymentReverted)
	}
	return create2.Address(req.Factory, salt, initCode), nil
}

func (c *fakeChain) SendDeploy(ctx context.Context, req usecase.DeployRequest) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return common.Hash{}, c.sendErr
	}
	salt, initCode := common.BytesToHash(req.Calldata[:32]), req.Calldata[32:]
	hash := common.BigToHash(common.Big1)
	hash[0] = byte(len(c.sent) + 1)
	c.sent = append(c.sent, hash)
	target := create2.Address(req.Factory, salt, initCode)
	if c.slow {
		c.unmined[hash] = target
		return hash, nil
	}
	if !c.statusZero {
		c.code[target] = true
	}
	return hash, nil
}

func (c *fakeChain) WaitMined(ctx context.Context, txHash common.Hash) (*usecase.DeployReceipt, error) {
	c.mu.Lock()
	if c.holdReceipts > 0 {
		c.holdReceipts--
		c.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	defer c.mu.Unlock()

	if c.slow {
		c.mineAll()
		return &usecase.DeployReceipt{TxHash: txHash, BlockNumber: 100 + uint64(len(c.sent)), Status: c.statuses[txHash]}, nil
	}

	status := uint64(1)
	if c.statusZero {
		status = 0
	}
	return &usecase.DeployReceipt{TxHash: txHash, BlockNumber: 100 + uint64(len(c.sent)), Status: status}, nil
}

// mineAll includes unmined transactions in send order. A CREATE2 into an
// occupied address reverts.
func (c *fakeChain) mineAll() {
	for _, hash := range c.sent {
		target, ok := c.unmined[hash]
		if !ok {
			continue
		}
		delete(c.unmined, hash)
		if c.code[target] || c.statusZero {
			c.statuses[hash] = 0
			continue
		}
		c.code[target] = true
		c.statuses[hash] = 1
	}
}

func (c *fakeChain) Close() {}

func (c *fakeChain) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// fakeConnector hands out one fakeChain per chain id
type fakeConnector struct {
	chains map[domain.NetworkID]*fakeChain
}

func (f *fakeConnector) Connect(ctx context.Context, network *config.Network) (usecase.ChainClient, error) {
	c, ok := f.chains[network.ChainID]
	if !ok {
		return nil, fmt.Errorf("no rpc for %s", network.Name)
	}
	return c, nil
}

// fakeLoader returns a fixed pipeline
type fakeLoader struct {
	pipeline *models.Pipeline
}

func (f *fakeLoader) LoadPipeline(ctx context.Context, path string) (*models.Pipeline, error) {
	if f.pipeline == nil {
		return nil, fmt.Errorf("pipeline %s not found", path)
	}
	return f.pipeline, nil
}

// MockConfirmer is a mock implementation of Confirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

// recordingSink collects progress events
type recordingSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
}

func (s *recordingSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Info(string)  {}
func (s *recordingSink) Error(string) {}

func (s *recordingSink) stages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Stage
	}
	return out
}

// accountFixture is the three step account factory pipeline
type accountFixture struct {
	artifacts fakeArtifacts
	book      fakeBook
	pipeline  *models.Pipeline
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	return &accountFixture{
		artifacts: fakeArtifacts{
			"EIP4337Manager":           newArtifact(t, "EIP4337Manager", 0xa1, "address"),
			"EIP4337Fallback":          newArtifact(t, "EIP4337Fallback", 0xb2, "address"),
			"GnosisSafeAccountFactory": newArtifact(t, "GnosisSafeAccountFactory", 0xc3, "address", "address", "address"),
		},
		book: fakeBook{
			"EntryPoint":              entryPoint,
			"GnosisSafe@1.3.0":        safeSingleton,
			"GnosisSafeProxyFactory": proxyFactory,
		},
		pipeline: &models.Pipeline{
			Name: "account",
			Steps: []*models.DeploymentStep{
				{
					Name:     "EIP4337Manager",
					Args:     []models.AddressRef{models.FromAddressBook("EntryPoint", "")},
					GasLimit: 6_000_000,
				},
				{
					Name: "EIP4337Fallback",
					Args: []models.AddressRef{models.FromStep("EIP4337Manager")},
				},
				{
					Name: "GnosisSafeAccountFactory",
					Args: []models.AddressRef{
						models.FromAddressBook("GnosisSafeProxyFactory", ""),
						models.FromAddressBook("GnosisSafe", "1.3.0"),
						models.FromStep("EIP4337Manager"),
					},
				},
			},
		},
	}
}

func (f *accountFixture) planner() *usecase.PlanDeployment {
	return usecase.NewPlanDeployment(f.artifacts, f.book, discardLogger())
}

// predict computes the address of a step of the fixture on the default factory
func (f *accountFixture) predict(t *testing.T, step string, args ...any) common.Address {
	t.Helper()
	a := f.artifacts[step]
	initCode, _, err := create2.InitCode(a.Bytecode, a.Constructor(), args)
	require.NoError(t, err)
	return create2.Address(domain.DefaultFactory, common.Hash{}, initCode)
}

func testNetwork(name string, chainID domain.NetworkID) *config.Network {
	return &config.Network{Name: name, ChainID: chainID, Factory: domain.DefaultFactory}
}

func fastConfig(networks ...*config.Network) *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Networks:            networks,
		NonInteractive:      true,
		Retries:             2,
		RetryBackoff:        time.Millisecond,
		ConfirmationTimeout: time.Second,
	}
}
