package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rebalanceScope/internal/cache"
)

// tokenPair resolves token0/token1 of a pool or pair contract.
func (d *Decoder) tokenPair(ctx context.Context, contract common.Address) (string, string, error) {
	if cached, ok := d.cache.Get(ctx, d.chainID, contract.Hex(), cache.KindTokenPair); ok && len(cached) == 2 {
		return cached[0], cached[1], nil
	}

	token0, err := d.callAddress(ctx, contract, "token0")
	if err != nil {
		return "", "", err
	}
	token1, err := d.callAddress(ctx, contract, "token1")
	if err != nil {
		return "", "", err
	}

	pair := []string{token0.Hex(), token1.Hex()}
	d.cache.Set(ctx, d.chainID, contract.Hex(), cache.KindTokenPair, pair)
	return pair[0], pair[1], nil
}

// tokenPairOrPlaceholders falls back to placeholder identities when the pair
// cannot be resolved.
func (d *Decoder) tokenPairOrPlaceholders(ctx context.Context, contract common.Address) (string, string) {
	token0, token1, err := d.tokenPair(ctx, contract)
	if err != nil {
		d.logger.Debug("token pair lookup failed, using placeholders",
			zap.Uint64("chain_id", d.chainID),
			zap.String("contract", contract.Hex()),
			zap.Error(err),
		)
		return placeholderPair()
	}
	return token0, token1
}

// singleAddress resolves a cached single-address getter such as asset().
func (d *Decoder) singleAddress(ctx context.Context, contract common.Address, kind cache.Kind, method string) (string, error) {
	if cached, ok := d.cache.Get(ctx, d.chainID, contract.Hex(), kind); ok && len(cached) == 1 {
		return cached[0], nil
	}
	addr, err := d.callAddress(ctx, contract, method)
	if err != nil {
		return "", err
	}
	d.cache.Set(ctx, d.chainID, contract.Hex(), kind, []string{addr.Hex()})
	return addr.Hex(), nil
}

func (d *Decoder) callAddress(ctx context.Context, contract common.Address, method string) (common.Address, error) {
	parsed, err := LookupABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse lookup abi: %w", err)
	}
	values, err := d.callMethod(ctx, contract, parsed, method, nil)
	if err != nil {
		return common.Address{}, err
	}
	if len(values) == 0 {
		return common.Address{}, fmt.Errorf("%s: empty result", method)
	}
	addr, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", method, err)
	}
	return addr, nil
}

func (d *Decoder) callMethod(ctx context.Context, contract common.Address, parsed abi.ABI, method string, block *big.Int) ([]interface{}, error) {
	if d.caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}
	resp, err := d.caller.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}
