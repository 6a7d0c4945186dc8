package usecase

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/pkg/create2"
)

// addressLookup supplies the address behind a deferred step or deployment reference
type addressLookup func(arg models.ResolvedArg) (common.Address, error)

type assembledStep struct {
	InitCode    []byte
	EncodedArgs []byte
	Args        []string
	Address     common.Address
	Factory     common.Address
}

// assemble resolves deferred arguments, encodes the init code and computes
// the deterministic address
func assemble(planned *models.PlannedStep, factory common.Address, lookup addressLookup) (*assembledStep, error) {
	values := make([]any, len(planned.Args))
	rendered := make([]string, len(planned.Args))

	for i, arg := range planned.Args {
		value := arg.Value
		if !arg.Resolved {
			addr, err := lookup(arg)
			if err != nil {
				return nil, err
			}
			value = addr
		}
		values[i] = value
		rendered[i] = create2.Render(value)
	}

	initCode, encoded, err := create2.InitCode(planned.Artifact.Bytecode, planned.Artifact.Constructor(), values)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", planned.Step.Name, err)
	}

	return &assembledStep{
		InitCode:    initCode,
		EncodedArgs: encoded,
		Args:        rendered,
		Address:     create2.Address(factory, planned.Step.Salt, initCode),
		Factory:     factory,
	}, nil
}

func (a *assembledStep) initCodeHash() common.Hash {
	return crypto.Keccak256Hash(a.InitCode)
}

func (a *assembledStep) argsDigest() common.Hash {
	return crypto.Keccak256Hash(a.EncodedArgs)
}
