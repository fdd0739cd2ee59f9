// Package position folds decoded transactions into per-position views:
// LP positions keyed by position id and lending positions keyed by
// protocol and token.
package position

import (
	"math/big"
	"sort"

	"rebalanceScope/internal/model"
)

// PositionEvent is one action placed in its transaction context.
type PositionEvent struct {
	TxHash      string                `json:"tx_hash"`
	BlockNumber uint64                `json:"block_number"`
	Timestamp   *uint64               `json:"timestamp,omitempty"`
	Action      model.RebalanceAction `json:"action"`

	// Mirrored marks a position-manager action whose amounts are already
	// counted through the pool event that adopted its id.
	Mirrored bool `json:"mirrored,omitempty"`

	// Balance is the lending running balance after this event.
	Balance *big.Int `json:"balance,omitempty"`
}

func newEvent(tx *model.ParsedTransaction, action model.RebalanceAction) PositionEvent {
	return PositionEvent{
		TxHash:      tx.TxHash,
		BlockNumber: tx.BlockNumber,
		Timestamp:   tx.Timestamp,
		Action:      action,
	}
}

// eventLess orders by timestamp when both sides have one, then block number,
// log index and event index.
func eventLess(a, b PositionEvent) bool {
	if a.Timestamp != nil && b.Timestamp != nil && *a.Timestamp != *b.Timestamp {
		return *a.Timestamp < *b.Timestamp
	}
	if a.BlockNumber != b.BlockNumber {
		return a.BlockNumber < b.BlockNumber
	}
	if a.Action.LogIndex != b.Action.LogIndex {
		return a.Action.LogIndex < b.Action.LogIndex
	}
	return a.Action.EventIndex < b.Action.EventIndex
}

func sortEvents(events []PositionEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return eventLess(events[i], events[j])
	})
}

// forChain reports whether tx belongs to chainID. Transactions without a
// chain id are accepted.
func forChain(tx *model.ParsedTransaction, chainID uint64) bool {
	return tx != nil && (tx.ChainID == 0 || chainID == 0 || tx.ChainID == chainID)
}

func amountOf(action model.RebalanceAction, i int) *big.Int {
	v, ok := new(big.Int).SetString(action.Amount(i), 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

func timeDiff(from, to *uint64) *uint64 {
	if from == nil || to == nil || *to < *from {
		return nil
	}
	d := *to - *from
	return &d
}
