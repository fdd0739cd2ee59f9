package dex

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rebalanceScope/internal/cache"
	"rebalanceScope/internal/model"
)

// lendingLayout locates the amount and, where embedded, the asset among an
// event's declared parameters. asset is -1 when the log does not carry it.
type lendingLayout struct {
	amount int
	asset  int
}

type layoutKey struct {
	protocol model.Protocol
	event    string
}

var lendingLayouts = map[layoutKey]lendingLayout{
	{model.ProtocolAaveV3, "Supply"}:   {amount: 3, asset: 0},
	{model.ProtocolAaveV3, "Withdraw"}: {amount: 3, asset: 0},
	{model.ProtocolAaveV3, "Borrow"}:   {amount: 3, asset: 0},
	{model.ProtocolAaveV3, "Repay"}:    {amount: 3, asset: 0},

	{model.ProtocolERC4626, "Deposit"}:  {amount: 2, asset: -1},
	{model.ProtocolERC4626, "Withdraw"}: {amount: 3, asset: -1},

	{model.ProtocolCompoundV2, "Mint"}:        {amount: 1, asset: -1},
	{model.ProtocolCompoundV2, "Redeem"}:      {amount: 1, asset: -1},
	{model.ProtocolCompoundV2, "Borrow"}:      {amount: 1, asset: -1},
	{model.ProtocolCompoundV2, "RepayBorrow"}: {amount: 2, asset: -1},
}

// vaultAssetArgs are argument names that identify a vault's asset when an
// event happens to carry it.
var vaultAssetArgs = []string{"asset", "token", "underlying"}

func (d *Decoder) decodeLending(ctx context.Context, log model.RawLog, desc EventDescriptor, values map[string]interface{}) (*model.RebalanceAction, error) {
	layout, ok := lendingLayouts[layoutKey{desc.Protocol, desc.Name}]
	if !ok {
		return nil, fmt.Errorf("no lending layout")
	}
	if layout.amount >= len(desc.Params) || layout.asset >= len(desc.Params) {
		return nil, fmt.Errorf("lending layout out of range")
	}

	amountArg := desc.Params[layout.amount].Name
	amount, err := argBigInt(values, amountArg)
	if err != nil {
		return nil, err
	}

	contract := common.HexToAddress(log.Address)
	skip := []string{amountArg}

	var asset string
	switch {
	case layout.asset >= 0:
		assetArg := desc.Params[layout.asset].Name
		addr, err := argAddress(values, assetArg)
		if err != nil {
			return nil, err
		}
		asset = addr.Hex()
		skip = append(skip, assetArg)
	case desc.Protocol == model.ProtocolERC4626:
		asset = d.vaultAsset(ctx, contract, values)
	case desc.Protocol == model.ProtocolCompoundV2:
		asset = d.marketUnderlying(ctx, contract)
	default:
		asset = contract.Hex()
	}

	return &model.RebalanceAction{
		Tokens:   []model.TokenAmount{{Token: asset, Amount: amount.String()}},
		Metadata: describeArguments(desc, values, skip...),
	}, nil
}

// vaultAsset checks decoded arguments, then asset(), then the vault itself.
func (d *Decoder) vaultAsset(ctx context.Context, vault common.Address, values map[string]interface{}) string {
	for _, name := range vaultAssetArgs {
		if v, ok := values[name]; ok {
			if addr, err := asAddress(v); err == nil {
				return addr.Hex()
			}
		}
	}
	asset, err := d.singleAddress(ctx, vault, cache.KindVaultAsset, "asset")
	if err != nil {
		d.logger.Debug("vault asset lookup failed, using vault address",
			zap.Uint64("chain_id", d.chainID),
			zap.String("vault", vault.Hex()),
			zap.Error(err),
		)
		return vault.Hex()
	}
	return asset
}

// marketUnderlying calls underlying(); native-asset markets have none and
// resolve to the market address.
func (d *Decoder) marketUnderlying(ctx context.Context, market common.Address) string {
	underlying, err := d.singleAddress(ctx, market, cache.KindUnderlying, "underlying")
	if err != nil {
		d.logger.Debug("market underlying lookup failed, using market address",
			zap.Uint64("chain_id", d.chainID),
			zap.String("market", market.Hex()),
			zap.Error(err),
		)
		return market.Hex()
	}
	return underlying
}
