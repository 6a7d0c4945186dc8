package models

import (
	"github.com/trebuchet-org/sling/internal/domain"
)

// ResolvedArg is a constructor argument after planning. Literals and address
// book references are resolved; step and deployment references are deferred
// until the registry has the address.
type ResolvedArg struct {
	Ref       AddressRef `json:"ref"`
	Value     any        `json:"value,omitempty"`
	Resolved  bool       `json:"resolved"`
	StepIndex int        `json:"stepIndex,omitempty"` // only for RefStep
}

// PlannedStep is a validated step with its pre-resolved arguments
type PlannedStep struct {
	Index     int               `json:"index"`
	Step      *DeploymentStep   `json:"step"`
	Artifact  *ContractArtifact `json:"artifact"`
	Args      []ResolvedArg     `json:"args"`
	DependsOn []int             `json:"dependsOn"`
}

// DeploymentPlan is the validated total order over the steps for one network
type DeploymentPlan struct {
	Pipeline string           `json:"pipeline"`
	Network  domain.NetworkID `json:"network"`
	Steps    []*PlannedStep   `json:"steps"`
}
