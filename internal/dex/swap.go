package dex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rebalanceScope/internal/model"
)

// decodeV3Swap emits the input leg (positive pool delta) followed by the
// output leg (negative pool delta, absolute value).
func (d *Decoder) decodeV3Swap(ctx context.Context, log model.RawLog, desc EventDescriptor, values map[string]interface{}) (*model.RebalanceAction, error) {
	amount0, err := argBigInt(values, "amount0")
	if err != nil {
		return nil, err
	}
	amount1, err := argBigInt(values, "amount1")
	if err != nil {
		return nil, err
	}

	token0, token1 := d.tokenPairOrPlaceholders(ctx, common.HexToAddress(log.Address))

	legs := []struct {
		token  string
		amount *big.Int
	}{
		{token0, amount0},
		{token1, amount1},
	}

	var inputs, outputs []model.TokenAmount
	for _, leg := range legs {
		switch leg.amount.Sign() {
		case 1:
			inputs = append(inputs, model.TokenAmount{Token: leg.token, Amount: leg.amount.String()})
		case -1:
			outputs = append(outputs, model.TokenAmount{Token: leg.token, Amount: new(big.Int).Abs(leg.amount).String()})
		}
	}

	return &model.RebalanceAction{
		Tokens:   append(inputs, outputs...),
		Metadata: describeArguments(desc, values, "amount0", "amount1"),
	}, nil
}

// decodeV2Swap emits the non-zero legs in the order in0, in1, out0, out1.
func (d *Decoder) decodeV2Swap(ctx context.Context, log model.RawLog, desc EventDescriptor, values map[string]interface{}) (*model.RebalanceAction, error) {
	names := []string{"amount0In", "amount1In", "amount0Out", "amount1Out"}
	amounts := make([]*big.Int, len(names))
	for i, name := range names {
		amount, err := argBigInt(values, name)
		if err != nil {
			return nil, err
		}
		amounts[i] = amount
	}

	token0, token1 := d.tokenPairOrPlaceholders(ctx, common.HexToAddress(log.Address))
	tokens := []string{token0, token1, token0, token1}

	out := make([]model.TokenAmount, 0, 2)
	for i, amount := range amounts {
		if amount.Sign() == 0 {
			continue
		}
		out = append(out, model.TokenAmount{Token: tokens[i], Amount: amount.String()})
	}

	return &model.RebalanceAction{
		Tokens:   out,
		Metadata: describeArguments(desc, values, names...),
	}, nil
}

// decodeRouterSwap handles router events that name both tokens explicitly.
func decodeRouterSwap(desc EventDescriptor, values map[string]interface{}) (*model.RebalanceAction, error) {
	src, err := argAddress(values, "srcToken")
	if err != nil {
		return nil, err
	}
	dst, err := argAddress(values, "dstToken")
	if err != nil {
		return nil, err
	}
	spent, err := argBigInt(values, "spentAmount")
	if err != nil {
		return nil, err
	}
	returned, err := argBigInt(values, "returnAmount")
	if err != nil {
		return nil, err
	}

	return &model.RebalanceAction{
		Tokens: []model.TokenAmount{
			{Token: src.Hex(), Amount: spent.String()},
			{Token: dst.Hex(), Amount: returned.String()},
		},
		Metadata: describeArguments(desc, values, "srcToken", "dstToken", "spentAmount", "returnAmount"),
	}, nil
}
