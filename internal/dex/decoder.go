package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"rebalanceScope/internal/cache"
	"rebalanceScope/internal/model"
)

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Decoder turns recognized logs into rebalance actions for one chain.
// It is safe for concurrent use.
type Decoder struct {
	chainID uint64
	caller  ContractCaller
	cache   cache.Cache
	logger  *zap.Logger
}

// NewDecoder builds a Decoder. caller may be nil, in which case every
// auxiliary lookup falls back to placeholders.
func NewDecoder(chainID uint64, caller ContractCaller, c cache.Cache, logger *zap.Logger) *Decoder {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{
		chainID: chainID,
		caller:  caller,
		cache:   c,
		logger:  logger,
	}
}

// Decode converts a log into a RebalanceAction. EventIndex is left for the
// caller to assign.
func (d *Decoder) Decode(ctx context.Context, log model.RawLog, desc EventDescriptor) (*model.RebalanceAction, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid contract address: %s", log.Address)
	}

	values, err := decodeArguments(desc, log)
	if err != nil {
		return nil, err
	}

	var action *model.RebalanceAction
	switch {
	case desc.Kind.IsLending():
		action, err = d.decodeLending(ctx, log, desc, values)
	case desc.Kind == model.ActionMint, desc.Kind == model.ActionBurn, desc.Kind == model.ActionCollect:
		action, err = d.decodePoolLiquidity(ctx, log, desc, values)
	case desc.Kind == model.ActionAddLiquidity, desc.Kind == model.ActionRemoveLiquidity:
		action, err = decodePositionLiquidity(desc, values)
	case desc.Kind == model.ActionSwap:
		action, err = d.decodeSwap(ctx, log, desc, values)
	default:
		err = fmt.Errorf("unsupported action kind: %s", desc.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", desc.Protocol, desc.Name, err)
	}

	action.Kind = desc.Kind
	action.Protocol = desc.Protocol
	action.LogIndex = log.LogIndex
	action.Contract = common.HexToAddress(log.Address).Hex()
	return action, nil
}

func (d *Decoder) decodeSwap(ctx context.Context, log model.RawLog, desc EventDescriptor, values map[string]interface{}) (*model.RebalanceAction, error) {
	switch desc.Protocol {
	case model.ProtocolUniswapV3:
		return d.decodeV3Swap(ctx, log, desc, values)
	case model.ProtocolUniswapV2:
		return d.decodeV2Swap(ctx, log, desc, values)
	case model.ProtocolKyberSwap:
		return decodeRouterSwap(desc, values)
	default:
		return nil, fmt.Errorf("unsupported swap protocol: %s", desc.Protocol)
	}
}

// decodeArguments decodes indexed topics and data into a name -> value map.
func decodeArguments(desc EventDescriptor, log model.RawLog) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(desc.Params))

	indexed := indexedArguments(desc.event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(log.Topics))
	}
	if len(indexed) > 0 {
		topics, err := parseTopicHashes(log.Topics[1:])
		if err != nil {
			return nil, err
		}
		if err := abi.ParseTopicsIntoMap(values, indexed, topics); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
	}

	nonIndexed := desc.event.Inputs.NonIndexed()
	if len(nonIndexed) == 0 {
		return values, nil
	}
	data, err := decodeData(log.Data)
	if err != nil {
		return nil, err
	}
	if err := nonIndexed.UnpackIntoMap(values, data); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", desc.Name, err)
	}
	return values, nil
}

func decodeData(dataHex string) ([]byte, error) {
	if dataHex == "" {
		return nil, nil
	}
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	return data, nil
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

// describeArguments renders every argument not listed in skip as metadata.
func describeArguments(desc EventDescriptor, values map[string]interface{}, skip ...string) map[string]string {
	skipped := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipped[name] = struct{}{}
	}

	meta := map[string]string{"event": desc.Name}
	for _, p := range desc.Params {
		if _, ok := skipped[p.Name]; ok {
			continue
		}
		if v, ok := values[p.Name]; ok {
			meta[p.Name] = stringify(v)
		}
	}
	return meta
}
