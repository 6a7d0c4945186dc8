package models

import (
	"github.com/trebuchet-org/sling/internal/domain"
)

// StepStatus is the final state of a step in a run
type StepStatus string

const (
	StepDeployed  StepStatus = "deployed"
	StepExisting  StepStatus = "existing"
	StepFailed    StepStatus = "failed"
	StepBlocked   StepStatus = "blocked"
	StepCancelled StepStatus = "cancelled"
)

// StepOutcome is what happened to one step on one network
type StepOutcome struct {
	Step      string            `json:"step"`
	Network   domain.NetworkID  `json:"network"`
	Status    StepStatus        `json:"status"`
	Record    *DeploymentRecord `json:"record,omitempty"`
	Err       error             `json:"-"`
	Error     string            `json:"error,omitempty"`
	BlockedBy string            `json:"blockedBy,omitempty"`
	Attempts  int               `json:"attempts,omitempty"`
}

// OK reports whether the step left a usable address behind
func (o *StepOutcome) OK() bool {
	return o.Status == StepDeployed || o.Status == StepExisting
}

// NetworkRun groups the outcomes of one network
type NetworkRun struct {
	Network     domain.NetworkID `json:"network"`
	NetworkName string           `json:"networkName"`
	Outcomes    []*StepOutcome   `json:"outcomes"`
}

// Success reports whether every step deployed or was already present
func (n *NetworkRun) Success() bool {
	for _, o := range n.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

// Count returns the number of outcomes with the given status
func (n *NetworkRun) Count(status StepStatus) int {
	c := 0
	for _, o := range n.Outcomes {
		if o.Status == status {
			c++
		}
	}
	return c
}

// RunResult is the report of one pipeline invocation
type RunResult struct {
	RunID    string        `json:"runId"`
	Pipeline string        `json:"pipeline"`
	Networks []*NetworkRun `json:"networks"`
}

// Success reports whether every network succeeded
func (r *RunResult) Success() bool {
	for _, n := range r.Networks {
		if !n.Success() {
			return false
		}
	}
	return true
}
