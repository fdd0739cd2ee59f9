package position

import (
	"math/big"
	"sort"

	"rebalanceScope/internal/model"
)

// PositionTracking aggregates the lifecycle of one LP position.
type PositionTracking struct {
	PositionID string `json:"position_id"`
	Token0     string `json:"token0,omitempty"`
	Token1     string `json:"token1,omitempty"`
	Symbol0    string `json:"symbol0,omitempty"`
	Symbol1    string `json:"symbol1,omitempty"`
	Decimals0  *uint8 `json:"decimals0,omitempty"`
	Decimals1  *uint8 `json:"decimals1,omitempty"`

	Events []PositionEvent `json:"events"`

	Minted0    *big.Int `json:"minted0"`
	Minted1    *big.Int `json:"minted1"`
	Withdrawn0 *big.Int `json:"withdrawn0"`
	Withdrawn1 *big.Int `json:"withdrawn1"`
	Fees0      *big.Int `json:"fees0"`
	Fees1      *big.Int `json:"fees1"`
	NetChange0 *big.Int `json:"net_change0"`
	NetChange1 *big.Int `json:"net_change1"`

	FirstEntry     *uint64 `json:"first_entry,omitempty"`
	LastExit       *uint64 `json:"last_exit,omitempty"`
	HoldingSeconds *uint64 `json:"holding_seconds,omitempty"`
}

// PositionTrackingSummary is the result of TrackPositionFlows.
type PositionTrackingSummary struct {
	ChainID      uint64                       `json:"chain_id"`
	Positions    map[string]*PositionTracking `json:"positions"`
	Unattributed int                          `json:"unattributed"`
}

// PositionIDs returns the tracked ids in ascending order.
func (s PositionTrackingSummary) PositionIDs() []string {
	ids := make([]string, 0, len(s.Positions))
	for id := range s.Positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

func newPositionTracking(id string) *PositionTracking {
	return &PositionTracking{
		PositionID: id,
		Minted0:    new(big.Int),
		Minted1:    new(big.Int),
		Withdrawn0: new(big.Int),
		Withdrawn1: new(big.Int),
		Fees0:      new(big.Int),
		Fees1:      new(big.Int),
		NetChange0: new(big.Int),
		NetChange1: new(big.Int),
	}
}

func isLiquidityKind(kind model.ActionKind) bool {
	switch kind {
	case model.ActionMint, model.ActionBurn, model.ActionCollect,
		model.ActionAddLiquidity, model.ActionRemoveLiquidity:
		return true
	default:
		return false
	}
}

// TrackPositionFlows attributes liquidity actions to position ids within
// each transaction, merges them across transactions and folds the totals.
// Transactions for another chain are ignored.
func TrackPositionFlows(txs []*model.ParsedTransaction, chainID uint64) PositionTrackingSummary {
	summary := PositionTrackingSummary{
		ChainID:   chainID,
		Positions: make(map[string]*PositionTracking),
	}

	for _, tx := range txs {
		if !forChain(tx, chainID) {
			continue
		}
		attributions := ResolvePositionIDs(tx.Actions)
		for i, action := range tx.Actions {
			if !isLiquidityKind(action.Kind) {
				continue
			}
			attr := attributions[i]
			if attr.PositionID == "" {
				summary.Unattributed++
				continue
			}
			pos, ok := summary.Positions[attr.PositionID]
			if !ok {
				pos = newPositionTracking(attr.PositionID)
				summary.Positions[attr.PositionID] = pos
			}
			event := newEvent(tx, action)
			event.Mirrored = attr.Mirrored
			pos.Events = append(pos.Events, event)
		}
	}

	for _, pos := range summary.Positions {
		sortEvents(pos.Events)
		pos.fold()
	}
	return summary
}

func (p *PositionTracking) fold() {
	// pending holds the last burn amount per token, nil when none is pending.
	var pending [2]*big.Int
	minted := [2]*big.Int{p.Minted0, p.Minted1}
	withdrawn := [2]*big.Int{p.Withdrawn0, p.Withdrawn1}
	fees := [2]*big.Int{p.Fees0, p.Fees1}
	net := [2]*big.Int{p.NetChange0, p.NetChange1}

	for _, event := range p.Events {
		action := event.Action
		p.adoptTokens(action)

		switch action.Kind {
		case model.ActionMint, model.ActionAddLiquidity:
			if p.FirstEntry == nil && event.Timestamp != nil {
				ts := *event.Timestamp
				p.FirstEntry = &ts
			}
		case model.ActionBurn, model.ActionRemoveLiquidity, model.ActionCollect:
			if event.Timestamp != nil {
				ts := *event.Timestamp
				p.LastExit = &ts
			}
		}

		if event.Mirrored {
			continue
		}

		for i := 0; i < 2; i++ {
			amount := amountOf(action, i)
			switch action.Kind {
			case model.ActionMint, model.ActionAddLiquidity:
				minted[i].Add(minted[i], amount)
				net[i].Add(net[i], amount)
			case model.ActionBurn, model.ActionRemoveLiquidity:
				net[i].Sub(net[i], amount)
				pending[i] = amount
			case model.ActionCollect:
				withdrawn[i].Add(withdrawn[i], amount)
				fee := new(big.Int).Set(amount)
				if pending[i] != nil {
					fee.Sub(fee, pending[i])
				}
				fees[i].Add(fees[i], fee)
				pending[i] = nil
			}
		}
	}

	p.HoldingSeconds = timeDiff(p.FirstEntry, p.LastExit)
}

// adoptTokens takes token identity from the first action with real
// addresses for both legs.
func (p *PositionTracking) adoptTokens(action model.RebalanceAction) {
	if p.Token0 != "" || len(action.Tokens) < 2 {
		return
	}
	t0, t1 := action.Tokens[0], action.Tokens[1]
	if t0.IsPlaceholder() || t1.IsPlaceholder() {
		return
	}
	p.Token0, p.Token1 = t0.Token, t1.Token
	p.Symbol0, p.Symbol1 = t0.Symbol, t1.Symbol
	p.Decimals0, p.Decimals1 = t0.Decimals, t1.Decimals
}
