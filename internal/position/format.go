package position

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"rebalanceScope/internal/tokens"
)

// FormatPositionSummary renders LP positions as plain text.
func FormatPositionSummary(summary PositionTrackingSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "LP positions on chain %d: %d tracked, %d unattributed actions\n",
		summary.ChainID, len(summary.Positions), summary.Unattributed)

	for _, id := range summary.PositionIDs() {
		pos := summary.Positions[id]
		label0 := tokenLabel(pos.Symbol0, pos.Token0, "token0")
		label1 := tokenLabel(pos.Symbol1, pos.Token1, "token1")

		fmt.Fprintf(&b, "\nPosition #%s (%s/%s), %d events\n", id, label0, label1, len(pos.Events))
		fmt.Fprintf(&b, "  minted:     %s %s, %s %s\n", amount(pos.Minted0, pos.Decimals0), label0, amount(pos.Minted1, pos.Decimals1), label1)
		fmt.Fprintf(&b, "  withdrawn:  %s %s, %s %s\n", amount(pos.Withdrawn0, pos.Decimals0), label0, amount(pos.Withdrawn1, pos.Decimals1), label1)
		fmt.Fprintf(&b, "  fees:       %s %s, %s %s\n", amount(pos.Fees0, pos.Decimals0), label0, amount(pos.Fees1, pos.Decimals1), label1)
		fmt.Fprintf(&b, "  net change: %s %s, %s %s\n", amount(pos.NetChange0, pos.Decimals0), label0, amount(pos.NetChange1, pos.Decimals1), label1)
		if pos.HoldingSeconds != nil {
			fmt.Fprintf(&b, "  held:       %s\n", duration(*pos.HoldingSeconds))
		}
		for _, event := range pos.Events {
			mark := ""
			if event.Mirrored {
				mark = " (mirrored)"
			}
			fmt.Fprintf(&b, "  - %s %s log %d%s\n", eventTime(event), event.Action.Kind, event.Action.LogIndex, mark)
		}
	}
	return b.String()
}

// FormatLendingSummary renders lending positions and their cycles as plain text.
func FormatLendingSummary(summary LendingPositionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lending positions on chain %d: %d tracked\n", summary.ChainID, len(summary.Positions))

	for _, key := range summary.Keys() {
		pos := summary.Positions[key]
		label := tokenLabel(pos.Symbol, pos.Token, pos.Token)

		fmt.Fprintf(&b, "\n%s %s, %d events, %d cycles\n", pos.Protocol, label, len(pos.Events), len(pos.Cycles))
		fmt.Fprintf(&b, "  supplied:    %s\n", amount(pos.Supplied, pos.Decimals))
		fmt.Fprintf(&b, "  withdrawn:   %s\n", amount(pos.Withdrawn, pos.Decimals))
		fmt.Fprintf(&b, "  interest:    %s\n", amount(pos.Interest, pos.Decimals))
		fmt.Fprintf(&b, "  outstanding: %s\n", amount(pos.Outstanding, pos.Decimals))
		if pos.Borrowed.Sign() > 0 || pos.Repaid.Sign() > 0 {
			fmt.Fprintf(&b, "  borrowed:    %s, repaid %s\n", amount(pos.Borrowed, pos.Decimals), amount(pos.Repaid, pos.Decimals))
		}
		if pos.Unmatched.Sign() > 0 {
			fmt.Fprintf(&b, "  unmatched:   %s\n", amount(pos.Unmatched, pos.Decimals))
		}
		for i, cycle := range pos.Cycles {
			held := "unknown"
			if cycle.DurationSeconds != nil {
				held = duration(*cycle.DurationSeconds)
			}
			fmt.Fprintf(&b, "  cycle %d: supplied %s, withdrawn %s, profit %s, held %s\n",
				i+1, amount(cycle.Supplied, pos.Decimals), amount(cycle.Withdrawn, pos.Decimals), amount(cycle.Profit, pos.Decimals), held)
		}
	}
	return b.String()
}

func tokenLabel(symbol, address, fallback string) string {
	switch {
	case symbol != "":
		return symbol
	case address != "":
		return address
	default:
		return fallback
	}
}

func amount(v *big.Int, decimals *uint8) string {
	if v == nil {
		return "0"
	}
	if decimals == nil {
		return v.String()
	}
	return tokens.FormatBigInt(v, *decimals)
}

func duration(seconds uint64) string {
	return (time.Duration(seconds) * time.Second).String()
}

func eventTime(event PositionEvent) string {
	if event.Timestamp == nil {
		return fmt.Sprintf("block %d", event.BlockNumber)
	}
	return time.Unix(int64(*event.Timestamp), 0).UTC().Format(time.RFC3339)
}
