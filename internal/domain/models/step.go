package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RefKind tells how a constructor argument gets its value
type RefKind string

const (
	RefLiteral     RefKind = "literal"
	RefAddressBook RefKind = "addressbook"
	RefStep        RefKind = "step"
	RefDeployment  RefKind = "deployment"
)

// AddressRef is a constructor argument: a literal value or a deferred address lookup
type AddressRef struct {
	Kind RefKind `json:"kind"`

	// literal
	Value any `json:"value,omitempty"`

	// addressbook
	Family  string `json:"family,omitempty"`
	Version string `json:"version,omitempty"`

	// step: an earlier step of the same pipeline
	Step string `json:"step,omitempty"`

	// deployment: a contract recorded by an earlier pipeline on the same network
	Deployment string `json:"deployment,omitempty"`
}

// Literal builds a literal argument
func Literal(v any) AddressRef {
	return AddressRef{Kind: RefLiteral, Value: v}
}

// FromAddressBook builds an address book argument
func FromAddressBook(family, version string) AddressRef {
	return AddressRef{Kind: RefAddressBook, Family: family, Version: version}
}

// FromStep builds an argument that takes an earlier step's address
func FromStep(name string) AddressRef {
	return AddressRef{Kind: RefStep, Step: name}
}

// FromDeployment builds an argument that takes a previously recorded deployment's address
func FromDeployment(name string) AddressRef {
	return AddressRef{Kind: RefDeployment, Deployment: name}
}

func (r AddressRef) String() string {
	switch r.Kind {
	case RefLiteral:
		return fmt.Sprintf("%v", r.Value)
	case RefAddressBook:
		if r.Version == "" {
			return "addressbook:" + r.Family
		}
		return fmt.Sprintf("addressbook:%s@%s", r.Family, r.Version)
	case RefStep:
		return "step:" + r.Step
	case RefDeployment:
		return "deployment:" + r.Deployment
	default:
		return fmt.Sprintf("unknown(%s)", r.Kind)
	}
}

// DeploymentStep is one contract to deploy
type DeploymentStep struct {
	Name     string       `json:"name"`
	Artifact string       `json:"artifact"`
	Args     []AddressRef `json:"args"`
	Salt     common.Hash  `json:"salt"`
	GasLimit uint64       `json:"gasLimit,omitempty"`
}

// Pipeline is the declared, ordered list of steps
type Pipeline struct {
	Name  string            `json:"name"`
	Steps []*DeploymentStep `json:"steps"`
}
