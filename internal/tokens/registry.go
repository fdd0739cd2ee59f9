package tokens

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"rebalanceScope/internal/model"
)

// Registry is a static per-chain token metadata table.
type Registry struct {
	tables map[uint64]map[common.Address]model.TokenMeta
}

// NewRegistry builds a registry from the built-in table plus extra entries.
// Extra entries replace built-in ones with the same chain and address.
func NewRegistry(extra map[uint64][]model.TokenMeta) *Registry {
	r := &Registry{tables: make(map[uint64]map[common.Address]model.TokenMeta)}
	for chainID, metas := range builtin {
		r.add(chainID, metas)
	}
	for chainID, metas := range extra {
		r.add(chainID, metas)
	}
	return r
}

func (r *Registry) add(chainID uint64, metas []model.TokenMeta) {
	table := r.tables[chainID]
	if table == nil {
		table = make(map[common.Address]model.TokenMeta, len(metas))
		r.tables[chainID] = table
	}
	for _, meta := range metas {
		if !common.IsHexAddress(meta.Address) {
			continue
		}
		addr := common.HexToAddress(meta.Address)
		meta.Address = addr.Hex()
		table[addr] = meta
	}
}

// Lookup returns metadata for a token address on a chain.
func (r *Registry) Lookup(chainID uint64, token string) (model.TokenMeta, bool) {
	if r == nil || !common.IsHexAddress(token) {
		return model.TokenMeta{}, false
	}
	meta, ok := r.tables[chainID][common.HexToAddress(token)]
	return meta, ok
}

// Enrich returns a copy of actions with symbol, decimals and formatted
// amounts filled in where the token is known. Raw amounts are never changed.
func (r *Registry) Enrich(chainID uint64, actions []model.RebalanceAction) []model.RebalanceAction {
	out := make([]model.RebalanceAction, len(actions))
	for i, action := range actions {
		tokens := make([]model.TokenAmount, len(action.Tokens))
		for j, amount := range action.Tokens {
			tokens[j] = r.enrichAmount(chainID, amount)
		}
		action.Tokens = tokens
		out[i] = action
	}
	return out
}

func (r *Registry) enrichAmount(chainID uint64, amount model.TokenAmount) model.TokenAmount {
	meta, ok := r.Lookup(chainID, amount.Token)
	if !ok {
		return amount
	}
	decimals := meta.Decimals
	amount.Symbol = meta.Symbol
	amount.Decimals = &decimals
	if formatted, err := FormatAmount(amount.Amount, decimals); err == nil {
		amount.Formatted = formatted
	}
	return amount
}

// ParseOverrides parses entries of the form chainID:address:SYMBOL:decimals.
func ParseOverrides(entries []string) (map[uint64][]model.TokenMeta, error) {
	out := make(map[uint64][]model.TokenMeta)
	for _, entry := range entries {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("invalid token entry: %s", entry)
		}
		chainID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid token chain id: %s", entry)
		}
		if !common.IsHexAddress(parts[1]) {
			return nil, fmt.Errorf("invalid token address: %s", entry)
		}
		decimals, err := strconv.ParseUint(parts[3], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid token decimals: %s", entry)
		}
		out[chainID] = append(out[chainID], model.TokenMeta{
			Address:  common.HexToAddress(parts[1]).Hex(),
			Symbol:   parts[2],
			Decimals: uint8(decimals),
		})
	}
	return out, nil
}
