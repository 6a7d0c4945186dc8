package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/pkg/create2"
)

// DeployStep executes one planned step on one network: deploy if absent,
// skip if the deterministic address already holds code
type DeployStep struct {
	registry DeploymentRegistry
	log      *slog.Logger
	now      func() time.Time

	mu sync.Mutex
	// broadcast transactions whose receipt has not been seen yet
	pending map[pendingKey]pendingTx
}

type pendingKey struct {
	network domain.NetworkID
	step    string
}

type pendingTx struct {
	hash    common.Hash
	address common.Address
}

// NewDeployStep creates a new deployer
func NewDeployStep(registry DeploymentRegistry, log *slog.Logger) *DeployStep {
	return &DeployStep{
		registry: registry,
		log:      log,
		now:      time.Now,
		pending:  make(map[pendingKey]pendingTx),
	}
}

// DeployTarget is the network a step runs against
type DeployTarget struct {
	Network             *config.Network
	Client              ChainClient
	ConfirmationTimeout time.Duration
}

func (t *DeployTarget) factory() common.Address {
	if t.Network.Factory == (common.Address{}) {
		return domain.DefaultFactory
	}
	return t.Network.Factory
}

// DefaultConfirmationTimeout bounds the wait for a receipt when none is configured
const DefaultConfirmationTimeout = 3 * time.Minute

func (t *DeployTarget) confirmationTimeout() time.Duration {
	if t.ConfirmationTimeout <= 0 {
		return DefaultConfirmationTimeout
	}
	return t.ConfirmationTimeout
}

// Execute runs the step. On success the outcome is either StepDeployed or
// StepExisting and carries the persisted record. Errors are the typed errors
// of the domain package.
func (d *DeployStep) Execute(ctx context.Context, planned *models.PlannedStep, target *DeployTarget) (*models.StepOutcome, error) {
	network := target.Network.ChainID
	name := planned.Step.Name

	assembled, err := assemble(planned, target.factory(), d.registryLookup(ctx, network, name))
	if err != nil {
		return nil, err
	}

	log := d.log.With("step", name, "network", target.Network.Name, "address", assembled.Address.Hex())

	recorded, err := d.registry.Get(ctx, network, name)
	switch {
	case err == nil:
		if recorded.Address != assembled.Address {
			return nil, &domain.RecordConflictError{
				Network:  network,
				Name:     name,
				Existing: recorded.Address,
				Proposed: assembled.Address,
			}
		}
		log.Info("already recorded, skipping")
		return d.outcome(planned, network, models.StepExisting, recorded), nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to read registry for %q: %w", name, err)
	}

	record := d.newRecord(planned, network, assembled)

	// A previous attempt broadcast this deployment: wait for it instead of sending again
	if tx, ok := d.pendingFor(network, name, assembled.Address); ok {
		log.Info("waiting for previously sent deployment", "tx", tx.Hex())
		marker, err := d.await(ctx, planned, target, assembled, tx)
		if err != nil {
			return nil, err
		}
		return d.finish(ctx, planned, network, record, marker, log)
	}

	hasCode, err := target.Client.HasCode(ctx, assembled.Address)
	if err != nil {
		return nil, &domain.TransportError{Step: name, Network: network, Op: "get code", Err: err}
	}
	if hasCode {
		log.Info("code found at deterministic address, skipping")
		record.Marker.Existing = true
		if err := d.registry.Put(ctx, record); err != nil {
			return nil, err
		}
		return d.outcome(planned, network, models.StepExisting, record), nil
	}

	marker, err := d.submit(ctx, planned, target, assembled)
	if err != nil {
		return nil, err
	}
	return d.finish(ctx, planned, network, record, marker, log)
}

func (d *DeployStep) finish(ctx context.Context, planned *models.PlannedStep, network domain.NetworkID, record *models.DeploymentRecord, marker *models.DeploymentMarker, log *slog.Logger) (*models.StepOutcome, error) {
	record.Marker = *marker
	status := models.StepDeployed
	if marker.Existing {
		status = models.StepExisting
		log.Info("deployment transaction reverted but code is present, recording as existing")
	} else {
		log.Info("deployed", "tx", marker.TxHash.Hex(), "block", marker.BlockNumber, "args", record.Args)
	}

	if err := d.registry.Put(ctx, record); err != nil {
		return nil, err
	}
	return d.outcome(planned, network, status, record), nil
}

// submit sends the factory call and waits for it
func (d *DeployStep) submit(ctx context.Context, planned *models.PlannedStep, target *DeployTarget, assembled *assembledStep) (*models.DeploymentMarker, error) {
	network := target.Network.ChainID
	name := planned.Step.Name
	client := target.Client

	factoryCode, err := client.HasCode(ctx, assembled.Factory)
	if err != nil {
		return nil, &domain.TransportError{Step: name, Network: network, Op: "get factory code", Err: err}
	}
	if !factoryCode {
		return nil, fmt.Errorf("%w: %s on network %s", domain.ErrFactoryMissing, assembled.Factory.Hex(), network)
	}

	req := DeployRequest{
		Factory:  assembled.Factory,
		Calldata: create2.FactoryCalldata(planned.Step.Salt, assembled.InitCode),
		GasLimit: planned.Step.GasLimit,
	}

	observed, err := client.SimulateDeploy(ctx, req)
	if err != nil {
		return nil, d.classify(err, name, network, "simulate", common.Hash{}, assembled.Args)
	}
	if observed != assembled.Address {
		return nil, &domain.AddressMismatchError{
			Step:     name,
			Network:  network,
			Expected: assembled.Address,
			Observed: observed,
			Args:     assembled.Args,
		}
	}

	txHash, err := client.SendDeploy(ctx, req)
	if err != nil {
		return nil, d.classify(err, name, network, "send transaction", common.Hash{}, assembled.Args)
	}
	d.log.Debug("deployment sent", "step", name, "network", network, "tx", txHash.Hex())
	d.setPending(network, name, pendingTx{hash: txHash, address: assembled.Address})

	return d.await(ctx, planned, target, assembled, txHash)
}

// await waits for a broadcast deployment. The wait ignores caller
// cancellation and is bounded by the confirmation timeout. On timeout the
// transaction stays pending so a retry waits on it rather than sending again.
func (d *DeployStep) await(ctx context.Context, planned *models.PlannedStep, target *DeployTarget, assembled *assembledStep, txHash common.Hash) (*models.DeploymentMarker, error) {
	network := target.Network.ChainID
	name := planned.Step.Name
	client := target.Client

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), target.confirmationTimeout())
	defer cancel()

	receipt, err := client.WaitMined(waitCtx, txHash)
	if err != nil {
		return nil, &domain.TransportError{Step: name, Network: network, Op: "wait for receipt " + txHash.Hex(), Err: err}
	}
	d.clearPending(network, name)

	if receipt.Status == 0 {
		// the address may have been taken by an earlier copy of this deployment
		hasCode, err := client.HasCode(waitCtx, assembled.Address)
		if err != nil {
			return nil, &domain.TransportError{Step: name, Network: network, Op: "get code", Err: err}
		}
		if hasCode {
			return &models.DeploymentMarker{Existing: true}, nil
		}
		return nil, &domain.DeploymentRevertedError{
			Step:    name,
			Network: network,
			TxHash:  txHash,
			Args:    assembled.Args,
			Reason:  "transaction status 0",
		}
	}

	hasCode, err := client.HasCode(waitCtx, assembled.Address)
	if err != nil {
		return nil, &domain.TransportError{Step: name, Network: network, Op: "get code", Err: err}
	}
	if !hasCode {
		return nil, &domain.AddressMismatchError{
			Step:     name,
			Network:  network,
			Expected: assembled.Address,
			Args:     assembled.Args,
		}
	}

	return &models.DeploymentMarker{TxHash: receipt.TxHash, BlockNumber: receipt.BlockNumber}, nil
}

func (d *DeployStep) pendingFor(network domain.NetworkID, step string, address common.Address) (common.Hash, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tx, ok := d.pending[pendingKey{network, step}]
	if !ok || tx.address != address {
		return common.Hash{}, false
	}
	return tx.hash, true
}

func (d *DeployStep) setPending(network domain.NetworkID, step string, tx pendingTx) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[pendingKey{network, step}] = tx
}

func (d *DeployStep) clearPending(network domain.NetworkID, step string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, pendingKey{network, step})
}

func (d *DeployStep) classify(err error, step string, network domain.NetworkID, op string, txHash common.Hash, args []string) error {
	if errors.Is(err, domain.ErrSignerMissing) {
		return fmt.Errorf("step %q on network %s: %w", step, network, err)
	}
	if errors.Is(err, domain.ErrDeploymentReverted) {
		return &domain.DeploymentRevertedError{
			Step:    step,
			Network: network,
			TxHash:  txHash,
			Args:    args,
			Reason:  err.Error(),
		}
	}
	return &domain.TransportError{Step: step, Network: network, Op: op, Err: err}
}

func (d *DeployStep) registryLookup(ctx context.Context, network domain.NetworkID, step string) addressLookup {
	return func(arg models.ResolvedArg) (common.Address, error) {
		name := arg.Ref.Step
		if arg.Ref.Kind == models.RefDeployment {
			name = arg.Ref.Deployment
		}

		record, err := d.registry.Get(ctx, network, name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return common.Address{}, &domain.UnresolvedAddressError{Step: step, Family: arg.Ref.String(), Network: network}
			}
			return common.Address{}, fmt.Errorf("failed to read registry for %q: %w", name, err)
		}
		return record.Address, nil
	}
}

func (d *DeployStep) newRecord(planned *models.PlannedStep, network domain.NetworkID, assembled *assembledStep) *models.DeploymentRecord {
	return &models.DeploymentRecord{
		Network:      network,
		Name:         planned.Step.Name,
		Address:      assembled.Address,
		Method:       domain.DeploymentMethodCreate2,
		Factory:      assembled.Factory,
		Salt:         planned.Step.Salt,
		InitCodeHash: assembled.initCodeHash(),
		Artifact:     planned.Artifact.Name,
		Args:         assembled.Args,
		ArgsDigest:   assembled.argsDigest(),
		RecordedAt:   d.now().UTC(),
	}
}

func (d *DeployStep) outcome(planned *models.PlannedStep, network domain.NetworkID, status models.StepStatus, record *models.DeploymentRecord) *models.StepOutcome {
	return &models.StepOutcome{
		Step:    planned.Step.Name,
		Network: network,
		Status:  status,
		Record:  record,
	}
}
