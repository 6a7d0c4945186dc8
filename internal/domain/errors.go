package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrArtifactNotFound is returned when no compiled artifact has the requested name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrNetworkNotFound is returned when a network is not configured
	ErrNetworkNotFound = errors.New("network not found")

	// ErrFactoryMissing is returned when the CREATE2 factory has no code on the target network
	ErrFactoryMissing = errors.New("deployment factory not deployed")

	// ErrSignerMissing is returned when a transaction must be sent to a network
	// that has no private key configured
	ErrSignerMissing = errors.New("no signer configured")

	// ErrUnresolvedAddress is returned when neither an override nor the catalog
	// can supply an address. Fatal: the operator must add an override.
	ErrUnresolvedAddress = errors.New("unresolved address")

	// ErrInvalidDependencyGraph is returned for malformed step declarations
	ErrInvalidDependencyGraph = errors.New("invalid dependency graph")

	// ErrTransport is returned for RPC failures and confirmation timeouts. Retryable.
	ErrTransport = errors.New("transport error")

	// ErrDeploymentReverted is returned when the deployment transaction reverts
	ErrDeploymentReverted = errors.New("deployment reverted")

	// ErrAddressMismatch is returned when the observed address differs from the computed one
	ErrAddressMismatch = errors.New("address mismatch")

	// ErrRecordConflict is returned when the registry already holds a different address
	ErrRecordConflict = errors.New("record conflict")
)

// UnresolvedAddressError reports a failed address book or registry lookup
type UnresolvedAddressError struct {
	Step    string
	Family  string
	Version string
	Network NetworkID
}

func (e *UnresolvedAddressError) Error() string {
	var b strings.Builder
	b.WriteString("unresolved address")
	if e.Step != "" {
		fmt.Fprintf(&b, " in step %q", e.Step)
	}
	fmt.Fprintf(&b, ": no override or registry entry for %s", e.Family)
	if e.Version != "" {
		fmt.Fprintf(&b, "@%s", e.Version)
	}
	fmt.Fprintf(&b, " on network %s", e.Network)
	return b.String()
}

func (e *UnresolvedAddressError) Is(target error) bool {
	return target == ErrUnresolvedAddress
}

// InvalidGraphError names the step and reference that broke the backward-reference rule
type InvalidGraphError struct {
	Step   string
	Ref    string
	Reason string
	Err    error
}

func (e *InvalidGraphError) Error() string {
	msg := fmt.Sprintf("invalid dependency graph: step %q", e.Step)
	if e.Ref != "" {
		msg += fmt.Sprintf(" reference %q", e.Ref)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidGraphError) Is(target error) bool {
	return target == ErrInvalidDependencyGraph
}

func (e *InvalidGraphError) Unwrap() error {
	return e.Err
}

// TransportError wraps a network failure while executing a step
type TransportError struct {
	Step    string
	Network NetworkID
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error in step %q on network %s (%s): %v", e.Step, e.Network, e.Op, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeploymentRevertedError reports a reverted constructor or an unfundable transaction
type DeploymentRevertedError struct {
	Step    string
	Network NetworkID
	TxHash  common.Hash
	Args    []string
	Reason  string
}

func (e *DeploymentRevertedError) Error() string {
	msg := fmt.Sprintf("deployment of %q reverted on network %s", e.Step, e.Network)
	if e.TxHash != (common.Hash{}) {
		msg += fmt.Sprintf(" (tx %s)", e.TxHash.Hex())
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" [args: %s]", strings.Join(e.Args, ", "))
	}
	return msg
}

func (e *DeploymentRevertedError) Is(target error) bool {
	return target == ErrDeploymentReverted
}

// AddressMismatchError reports a computed vs observed address divergence
type AddressMismatchError struct {
	Step     string
	Network  NetworkID
	Expected common.Address
	Observed common.Address
	Args     []string
}

func (e *AddressMismatchError) Error() string {
	msg := fmt.Sprintf("address mismatch for %q on network %s: computed %s, observed %s",
		e.Step, e.Network, e.Expected.Hex(), e.Observed.Hex())
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" [args: %s]", strings.Join(e.Args, ", "))
	}
	return msg
}

func (e *AddressMismatchError) Is(target error) bool {
	return target == ErrAddressMismatch
}

// RecordConflictError reports a registry key that already maps to another address
type RecordConflictError struct {
	Network  NetworkID
	Name     string
	Existing common.Address
	Proposed common.Address
}

func (e *RecordConflictError) Error() string {
	return fmt.Sprintf("record conflict for %q on network %s: registry has %s, got %s",
		e.Name, e.Network, e.Existing.Hex(), e.Proposed.Hex())
}

func (e *RecordConflictError) Is(target error) bool {
	return target == ErrRecordConflict
}

// IsRetryable reports whether re-invoking the failed step may succeed
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}
