package models

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// ContractArtifact is a compiled contract as emitted by the build toolchain
type ContractArtifact struct {
	Name     string  `json:"name"`
	Source   string  `json:"source"` // artifact file the entry was read from
	Bytecode []byte  `json:"-"`
	ABI      abi.ABI `json:"-"`
}

// Constructor returns the constructor parameter schema. Contracts without an
// explicit constructor take no arguments.
func (a *ContractArtifact) Constructor() abi.Arguments {
	return a.ABI.Constructor.Inputs
}

// BytecodeHash returns keccak256 of the creation bytecode
func (a *ContractArtifact) BytecodeHash() string {
	return crypto.Keccak256Hash(a.Bytecode).Hex()
}
