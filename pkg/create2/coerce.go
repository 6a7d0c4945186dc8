package create2

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Coerce converts a loosely typed value (as decoded from YAML or JSON) into
// the Go type the abi package packs for t.
func Coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.AddressTy:
		return coerceAddress(v)
	case abi.BoolTy:
		return coerceBool(v)
	case abi.StringTy:
		switch s := v.(type) {
		case string:
			return s, nil
		default:
			return fmt.Sprint(v), nil
		}
	case abi.BytesTy:
		return coerceBytes(v)
	case abi.FixedBytesTy:
		b, err := coerceBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("value has %d bytes, %s holds %d", len(b), t.String(), t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.UintTy, abi.IntTy:
		n, err := coerceBig(v)
		if err != nil {
			return nil, err
		}
		return sizedInt(t, n)
	default:
		if v != nil && reflect.TypeOf(v) == t.GetType() {
			return v, nil
		}
		return nil, fmt.Errorf("unsupported constructor parameter type %s", t.String())
	}
}

func coerceAddress(v any) (common.Address, error) {
	switch a := v.(type) {
	case common.Address:
		return a, nil
	case *common.Address:
		return *a, nil
	case string:
		if !common.IsHexAddress(a) {
			return common.Address{}, fmt.Errorf("invalid address %q", a)
		}
		return common.HexToAddress(a), nil
	default:
		return common.Address{}, fmt.Errorf("cannot use %T as address", v)
	}
}

func coerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("invalid bool %q", b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("cannot use %T as bool", v)
	}
}

func coerceBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case common.Hash:
		return b.Bytes(), nil
	case string:
		return hexBytes(b)
	default:
		return nil, fmt.Errorf("cannot use %T as bytes", v)
	}
}

func hexBytes(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("bytes value %q must be 0x-prefixed hex", s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

func coerceBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return new(big.Int).Set(n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("non-integer value %v", n)
		}
		return big.NewInt(int64(n)), nil
	case string:
		b, ok := new(big.Int).SetString(n, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", n)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot use %T as integer", v)
	}
}

func sizedInt(t abi.Type, n *big.Int) (any, error) {
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for %s", n, t.String())
	}
	limit := t.Size
	if t.T == abi.IntTy {
		limit--
	}
	bits := n.BitLen()
	if n.Sign() < 0 {
		bits = new(big.Int).Sub(new(big.Int).Neg(n), big.NewInt(1)).BitLen()
	}
	if bits > limit {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}

	if t.T == abi.UintTy {
		switch t.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		case 64:
			return n.Uint64(), nil
		}
		return n, nil
	}
	switch t.Size {
	case 8:
		return int8(n.Int64()), nil
	case 16:
		return int16(n.Int64()), nil
	case 32:
		return int32(n.Int64()), nil
	case 64:
		return n.Int64(), nil
	}
	return n, nil
}

// Render formats a coerced value for records and error messages
func Render(v any) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case *big.Int:
		return x.String()
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return "0x" + hex.EncodeToString(b)
		}
		return fmt.Sprint(v)
	}
}
