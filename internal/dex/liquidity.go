package dex

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"rebalanceScope/internal/model"
)

func placeholderPair() (string, string) {
	return model.PlaceholderToken0, model.PlaceholderToken1
}

// decodePoolLiquidity handles pool-level Mint, Burn and Collect. These carry
// no position identifier.
func (d *Decoder) decodePoolLiquidity(ctx context.Context, log model.RawLog, desc EventDescriptor, values map[string]interface{}) (*model.RebalanceAction, error) {
	amount0, err := argBigInt(values, "amount0")
	if err != nil {
		return nil, err
	}
	amount1, err := argBigInt(values, "amount1")
	if err != nil {
		return nil, err
	}
	owner, err := argAddress(values, "owner")
	if err != nil {
		return nil, err
	}
	tickLower, err := argTick(values, "tickLower")
	if err != nil {
		return nil, err
	}
	tickUpper, err := argTick(values, "tickUpper")
	if err != nil {
		return nil, err
	}

	meta := map[string]string{
		"event":     desc.Name,
		"owner":     owner.Hex(),
		"tickLower": strconv.FormatInt(int64(tickLower), 10),
		"tickUpper": strconv.FormatInt(int64(tickUpper), 10),
	}
	switch desc.Kind {
	case model.ActionMint, model.ActionBurn:
		liquidity, err := argBigInt(values, "amount")
		if err != nil {
			return nil, err
		}
		meta["liquidity"] = liquidity.String()
	case model.ActionCollect:
		recipient, err := argAddress(values, "recipient")
		if err != nil {
			return nil, err
		}
		meta["recipient"] = recipient.Hex()
	}

	token0, token1 := d.tokenPairOrPlaceholders(ctx, common.HexToAddress(log.Address))
	return &model.RebalanceAction{
		Tokens: []model.TokenAmount{
			{Token: token0, Amount: amount0.String()},
			{Token: token1, Amount: amount1.String()},
		},
		Metadata: meta,
	}, nil
}

// decodePositionLiquidity handles position-manager IncreaseLiquidity and
// DecreaseLiquidity. Token identities stay as placeholders; the LP tracker
// recovers them from neighbouring pool events.
func decodePositionLiquidity(desc EventDescriptor, values map[string]interface{}) (*model.RebalanceAction, error) {
	tokenID, err := argBigInt(values, "tokenId")
	if err != nil {
		return nil, err
	}
	amount0, err := argBigInt(values, "amount0")
	if err != nil {
		return nil, err
	}
	amount1, err := argBigInt(values, "amount1")
	if err != nil {
		return nil, err
	}
	liquidity, err := argBigInt(values, "liquidity")
	if err != nil {
		return nil, err
	}
	if tokenID.Sign() < 0 {
		return nil, fmt.Errorf("negative tokenId")
	}

	return &model.RebalanceAction{
		Tokens: []model.TokenAmount{
			{Token: model.PlaceholderToken0, Amount: amount0.String()},
			{Token: model.PlaceholderToken1, Amount: amount1.String()},
		},
		Metadata: map[string]string{
			"event":     desc.Name,
			"liquidity": liquidity.String(),
		},
		PositionID: tokenID.String(),
	}, nil
}
