package dex

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"rebalanceScope/internal/model"
)

// Param is one event argument in declaration order.
type Param struct {
	Name    string
	Type    string
	Indexed bool
}

// EventDescriptor describes a supported protocol event.
type EventDescriptor struct {
	Protocol model.Protocol
	Kind     model.ActionKind
	Name     string
	Params   []Param
	Topic    common.Hash

	event abi.Event
}

// Signature returns the canonical event signature, e.g. "Mint(address,uint256)".
// Indexed flags do not take part in it.
func (d EventDescriptor) Signature() string {
	types := make([]string, len(d.Params))
	for i, p := range d.Params {
		types[i] = p.Type
	}
	return d.Name + "(" + strings.Join(types, ",") + ")"
}

type descriptorDef struct {
	protocol model.Protocol
	kind     model.ActionKind
	source   abiSource
	event    string
}

var descriptorDefs = []descriptorDef{
	{model.ProtocolUniswapV3, model.ActionMint, abiV3Pool, "Mint"},
	{model.ProtocolUniswapV3, model.ActionBurn, abiV3Pool, "Burn"},
	{model.ProtocolUniswapV3, model.ActionCollect, abiV3Pool, "Collect"},
	{model.ProtocolUniswapV3, model.ActionSwap, abiV3Pool, "Swap"},
	{model.ProtocolUniswapV3, model.ActionAddLiquidity, abiV3PositionManager, "IncreaseLiquidity"},
	{model.ProtocolUniswapV3, model.ActionRemoveLiquidity, abiV3PositionManager, "DecreaseLiquidity"},

	{model.ProtocolUniswapV2, model.ActionSwap, abiV2Pair, "Swap"},
	{model.ProtocolKyberSwap, model.ActionSwap, abiKyberRouter, "Swapped"},

	{model.ProtocolAaveV3, model.ActionSupply, abiAaveV3Pool, "Supply"},
	{model.ProtocolAaveV3, model.ActionWithdraw, abiAaveV3Pool, "Withdraw"},
	{model.ProtocolAaveV3, model.ActionBorrow, abiAaveV3Pool, "Borrow"},
	{model.ProtocolAaveV3, model.ActionRepay, abiAaveV3Pool, "Repay"},

	{model.ProtocolERC4626, model.ActionSupply, abiERC4626, "Deposit"},
	{model.ProtocolERC4626, model.ActionWithdraw, abiERC4626, "Withdraw"},

	{model.ProtocolCompoundV2, model.ActionSupply, abiCompoundV2, "Mint"},
	{model.ProtocolCompoundV2, model.ActionWithdraw, abiCompoundV2, "Redeem"},
	{model.ProtocolCompoundV2, model.ActionBorrow, abiCompoundV2, "Borrow"},
	{model.ProtocolCompoundV2, model.ActionRepay, abiCompoundV2, "RepayBorrow"},
}

// Registry resolves topic0 hashes to event descriptors.
type Registry struct {
	byTopic map[common.Hash]EventDescriptor
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
	defaultRegistryErr  error
)

// DefaultRegistry returns the registry of all supported events.
func DefaultRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = newRegistry(descriptorDefs)
	})
	return defaultRegistry, defaultRegistryErr
}

func newRegistry(defs []descriptorDef) (*Registry, error) {
	abis, err := eventABIInstances()
	if err != nil {
		return nil, err
	}

	r := &Registry{byTopic: make(map[common.Hash]EventDescriptor, len(defs))}
	for _, def := range defs {
		parsed, ok := abis[def.source]
		if !ok {
			return nil, fmt.Errorf("unknown abi source: %s", def.source)
		}
		event, ok := parsed.Events[def.event]
		if !ok {
			return nil, fmt.Errorf("%s event not found in %s abi", def.event, def.source)
		}

		desc := EventDescriptor{
			Protocol: def.protocol,
			Kind:     def.kind,
			Name:     event.RawName,
			Params:   paramsOf(event.Inputs),
			event:    event,
		}
		desc.Topic = crypto.Keccak256Hash([]byte(desc.Signature()))

		if existing, dup := r.byTopic[desc.Topic]; dup {
			return nil, fmt.Errorf("topic collision: %s/%s and %s/%s",
				existing.Protocol, existing.Signature(), desc.Protocol, desc.Signature())
		}
		r.byTopic[desc.Topic] = desc
	}
	return r, nil
}

func paramsOf(args abi.Arguments) []Param {
	params := make([]Param, len(args))
	for i, arg := range args {
		params[i] = Param{Name: arg.Name, Type: arg.Type.String(), Indexed: arg.Indexed}
	}
	return params
}

// Resolve returns the descriptor for a topic0 hash.
func (r *Registry) Resolve(topic common.Hash) (EventDescriptor, bool) {
	desc, ok := r.byTopic[topic]
	return desc, ok
}

// ResolveHex is Resolve for a hex-encoded topic.
func (r *Registry) ResolveHex(topic string) (EventDescriptor, bool) {
	if len(topic) != 66 || !strings.HasPrefix(topic, "0x") {
		return EventDescriptor{}, false
	}
	return r.Resolve(common.HexToHash(topic))
}

// Descriptors returns all descriptors ordered by protocol then signature.
func (r *Registry) Descriptors() []EventDescriptor {
	out := make([]EventDescriptor, 0, len(r.byTopic))
	for _, desc := range r.byTopic {
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Protocol != out[j].Protocol {
			return out[i].Protocol < out[j].Protocol
		}
		return out[i].Signature() < out[j].Signature()
	})
	return out
}
