package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}

// argBigInt fetches a named integer argument.
func argBigInt(values map[string]interface{}, name string) (*big.Int, error) {
	v, ok := values[name]
	if !ok {
		return nil, fmt.Errorf("missing argument %s", name)
	}
	n, err := asBigInt(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// argAddress fetches a named address argument.
func argAddress(values map[string]interface{}, name string) (common.Address, error) {
	v, ok := values[name]
	if !ok {
		return common.Address{}, fmt.Errorf("missing argument %s", name)
	}
	addr, err := asAddress(v)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

// argTick fetches a named int24 argument.
func argTick(values map[string]interface{}, name string) (int32, error) {
	n, err := argBigInt(values, name)
	if err != nil {
		return 0, err
	}
	return int24FromBig(n)
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case common.Address:
		return v.Hex()
	case *big.Int:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		if n, err := asBigInt(v); err == nil {
			return n.String()
		}
		return fmt.Sprint(v)
	}
}
