package position

import (
	"sort"

	"rebalanceScope/internal/model"
)

// Attribution is the position id resolved for one action.
type Attribution struct {
	PositionID string
	Mirrored   bool
}

// ResolvePositionIDs recovers position ids for the pool-level actions of a
// single transaction by borrowing them from neighbouring position-manager
// actions:
//
//	burn    -> nearest later remove_liquidity
//	mint    -> nearest later add_liquidity
//	collect -> nearest earlier remove_liquidity, else nearest later one
//
// Actions that already carry an id keep it. A position-manager action whose
// id was adopted by a pool mint or burn is marked Mirrored. The result is
// aligned with actions; neighbours are searched in event index order.
func ResolvePositionIDs(actions []model.RebalanceAction) []Attribution {
	out := make([]Attribution, len(actions))

	order := make([]int, len(actions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return actions[order[a]].EventIndex < actions[order[b]].EventIndex
	})

	find := func(pos, step int, kind model.ActionKind) int {
		for p := pos + step; p >= 0 && p < len(order); p += step {
			a := actions[order[p]]
			if a.Kind == kind && a.PositionID != "" {
				return order[p]
			}
		}
		return -1
	}

	for pos, idx := range order {
		action := actions[idx]
		if action.PositionID != "" {
			out[idx].PositionID = action.PositionID
			continue
		}

		match := -1
		switch action.Kind {
		case model.ActionBurn:
			match = find(pos, 1, model.ActionRemoveLiquidity)
		case model.ActionMint:
			match = find(pos, 1, model.ActionAddLiquidity)
		case model.ActionCollect:
			if match = find(pos, -1, model.ActionRemoveLiquidity); match < 0 {
				match = find(pos, 1, model.ActionRemoveLiquidity)
			}
		}
		if match < 0 {
			continue
		}
		out[idx].PositionID = actions[match].PositionID
		if action.Kind != model.ActionCollect {
			out[match].Mirrored = true
		}
	}
	return out
}
