package position

import (
	"math/big"
	"sort"
	"strings"

	"rebalanceScope/internal/model"
)

// LendingCycle is a matched supply and the withdraw(s) that closed it.
type LendingCycle struct {
	Supply          PositionEvent   `json:"supply"`
	Withdraws       []PositionEvent `json:"withdraws"`
	Supplied        *big.Int        `json:"supplied"`
	Withdrawn       *big.Int        `json:"withdrawn"`
	Profit          *big.Int        `json:"profit"`
	DurationSeconds *uint64         `json:"duration_seconds,omitempty"`
}

// LendingPositionTracking aggregates one (protocol, token) lending position.
type LendingPositionTracking struct {
	Key      string         `json:"key"`
	Protocol model.Protocol `json:"protocol"`
	Token    string         `json:"token"`
	Symbol   string         `json:"symbol,omitempty"`
	Decimals *uint8         `json:"decimals,omitempty"`

	Events []PositionEvent `json:"events"`
	Cycles []LendingCycle  `json:"cycles"`

	Supplied  *big.Int `json:"supplied"`
	Withdrawn *big.Int `json:"withdrawn"`
	Interest  *big.Int `json:"interest"`
	Borrowed  *big.Int `json:"borrowed"`
	Repaid    *big.Int `json:"repaid"`

	// Outstanding is supply not yet matched by any withdraw.
	Outstanding *big.Int `json:"outstanding"`
	// Unmatched is withdrawn amount that found no supply to close.
	Unmatched *big.Int `json:"unmatched"`
}

// LendingPositionSummary is the result of TrackLendingPositions.
type LendingPositionSummary struct {
	ChainID   uint64                              `json:"chain_id"`
	Positions map[string]*LendingPositionTracking `json:"positions"`
}

// Keys returns the position keys in ascending order.
func (s LendingPositionSummary) Keys() []string {
	keys := make([]string, 0, len(s.Positions))
	for key := range s.Positions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// LendingKey is the grouping key for a lending action.
func LendingKey(protocol model.Protocol, token string) string {
	return string(protocol) + ":" + strings.ToLower(token)
}

// TrackLendingPositions groups lending actions by protocol and token and
// reconstructs supply/withdraw cycles by FIFO matching.
func TrackLendingPositions(txs []*model.ParsedTransaction, chainID uint64) LendingPositionSummary {
	summary := LendingPositionSummary{
		ChainID:   chainID,
		Positions: make(map[string]*LendingPositionTracking),
	}

	for _, tx := range txs {
		if !forChain(tx, chainID) {
			continue
		}
		for _, action := range tx.Actions {
			if !action.Kind.IsLending() || len(action.Tokens) == 0 {
				continue
			}
			token := action.Tokens[0]
			key := LendingKey(action.Protocol, token.Token)
			pos, ok := summary.Positions[key]
			if !ok {
				pos = &LendingPositionTracking{
					Key:      key,
					Protocol: action.Protocol,
					Token:    token.Token,
				}
				summary.Positions[key] = pos
			}
			if pos.Symbol == "" && token.Symbol != "" {
				pos.Symbol = token.Symbol
				pos.Decimals = token.Decimals
			}
			pos.Events = append(pos.Events, newEvent(tx, action))
		}
	}

	for _, pos := range summary.Positions {
		sortEvents(pos.Events)
		pos.fold()
	}
	return summary
}

func (p *LendingPositionTracking) fold() {
	p.Supplied = new(big.Int)
	p.Withdrawn = new(big.Int)
	p.Borrowed = new(big.Int)
	p.Repaid = new(big.Int)
	p.Interest = new(big.Int)

	for _, event := range p.Events {
		amount := amountOf(event.Action, 0)
		switch event.Action.Kind {
		case model.ActionSupply:
			p.Supplied.Add(p.Supplied, amount)
		case model.ActionWithdraw:
			p.Withdrawn.Add(p.Withdrawn, amount)
		case model.ActionBorrow:
			p.Borrowed.Add(p.Borrowed, amount)
		case model.ActionRepay:
			p.Repaid.Add(p.Repaid, amount)
		}
	}

	result := MatchCycles(p.Events)
	p.Cycles = result.Cycles
	p.Outstanding = result.Outstanding
	p.Unmatched = result.Unmatched
	for _, cycle := range p.Cycles {
		p.Interest.Add(p.Interest, cycle.Profit)
	}

	p.Events = withRunningBalance(p.Events)
}

// MatchResult is the outcome of FIFO matching.
type MatchResult struct {
	Cycles      []LendingCycle
	Outstanding *big.Int
	Unmatched   *big.Int
}

type queuedSupply struct {
	event     PositionEvent
	remaining *big.Int
}

// MatchCycles runs FIFO matching over chronologically sorted events. Each
// withdraw consumes the oldest open supplies first; a partially consumed
// supply stays at the head of the queue with its remaining amount. Any
// surplus left once the queue is empty is credited to the last cycle the
// same withdraw created, or to Unmatched when it created none. Events are
// not modified.
func MatchCycles(events []PositionEvent) MatchResult {
	var (
		queue     []queuedSupply
		cycles    []LendingCycle
		unmatched = new(big.Int)
	)

	for _, event := range events {
		switch event.Action.Kind {
		case model.ActionSupply:
			queue = append(queue, queuedSupply{event: event, remaining: amountOf(event.Action, 0)})
		case model.ActionWithdraw:
			remaining := amountOf(event.Action, 0)
			created := 0
			for remaining.Sign() > 0 && len(queue) > 0 {
				head := queue[0]
				take := head.remaining
				if head.remaining.Cmp(remaining) > 0 {
					take = remaining
					queue[0] = queuedSupply{event: head.event, remaining: new(big.Int).Sub(head.remaining, remaining)}
				} else {
					queue = queue[1:]
				}
				cycles = append(cycles, newCycle(head.event, event, take))
				created++
				remaining = new(big.Int).Sub(remaining, take)
			}
			if remaining.Sign() > 0 {
				if created > 0 {
					last := &cycles[len(cycles)-1]
					last.Withdrawn = new(big.Int).Add(last.Withdrawn, remaining)
				} else {
					unmatched.Add(unmatched, remaining)
				}
			}
		}
	}

	for i := range cycles {
		profit := new(big.Int).Sub(cycles[i].Withdrawn, cycles[i].Supplied)
		if profit.Sign() < 0 {
			profit = new(big.Int)
		}
		cycles[i].Profit = profit
	}

	outstanding := new(big.Int)
	for _, q := range queue {
		outstanding.Add(outstanding, q.remaining)
	}
	return MatchResult{Cycles: cycles, Outstanding: outstanding, Unmatched: unmatched}
}

func newCycle(supply, withdraw PositionEvent, amount *big.Int) LendingCycle {
	return LendingCycle{
		Supply:          supply,
		Withdraws:       []PositionEvent{withdraw},
		Supplied:        new(big.Int).Set(amount),
		Withdrawn:       new(big.Int).Set(amount),
		DurationSeconds: timeDiff(supply.Timestamp, withdraw.Timestamp),
	}
}

// withRunningBalance returns copies of events carrying the cumulative
// supplied minus withdrawn amount. Borrow and repay leave it unchanged.
func withRunningBalance(events []PositionEvent) []PositionEvent {
	out := make([]PositionEvent, len(events))
	balance := new(big.Int)
	for i, event := range events {
		switch event.Action.Kind {
		case model.ActionSupply:
			balance = new(big.Int).Add(balance, amountOf(event.Action, 0))
		case model.ActionWithdraw:
			balance = new(big.Int).Sub(balance, amountOf(event.Action, 0))
		}
		event.Balance = new(big.Int).Set(balance)
		out[i] = event
	}
	return out
}
