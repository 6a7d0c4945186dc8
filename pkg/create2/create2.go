// Package create2 computes deterministic deployment addresses and the init
// code and calldata sent to a CREATE2 factory.
//
// The address of a contract deployed through a factory is a pure function of
// the factory address, a 32 byte salt and keccak256 of the init code. Nothing
// here depends on account nonces or on chain state.
package create2

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Address returns the CREATE2 address for initCode deployed by factory with salt
func Address(factory common.Address, salt common.Hash, initCode []byte) common.Address {
	return crypto.CreateAddress2(factory, salt, crypto.Keccak256(initCode))
}

// InitCode appends the ABI-encoded constructor arguments to the creation bytecode.
// values must already be of the Go types go-ethereum expects (see Coerce).
func InitCode(bytecode []byte, constructor abi.Arguments, values []any) ([]byte, []byte, error) {
	if len(values) != len(constructor) {
		return nil, nil, fmt.Errorf("constructor takes %d arguments, got %d", len(constructor), len(values))
	}

	encoded, err := constructor.Pack(values...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}

	initCode := make([]byte, 0, len(bytecode)+len(encoded))
	initCode = append(initCode, bytecode...)
	initCode = append(initCode, encoded...)
	return initCode, encoded, nil
}

// FactoryCalldata is the payload for the deterministic-deployment proxy:
// the salt followed by the init code.
func FactoryCalldata(salt common.Hash, initCode []byte) []byte {
	data := make([]byte, 0, common.HashLength+len(initCode))
	data = append(data, salt.Bytes()...)
	return append(data, initCode...)
}

// SaltFromString turns a configured salt into 32 bytes. Hex strings of 32
// bytes are used as-is, anything else is hashed with keccak256.
func SaltFromString(s string) common.Hash {
	if s == "" {
		return common.Hash{}
	}
	if b, err := hexBytes(s); err == nil && len(b) == common.HashLength {
		return common.BytesToHash(b)
	}
	return crypto.Keccak256Hash([]byte(s))
}
