package position

import (
	"reflect"
	"testing"

	"rebalanceScope/internal/model"
)

func act(kind model.ActionKind, eventIndex int, positionID string, amounts ...string) model.RebalanceAction {
	tokens := make([]model.TokenAmount, len(amounts))
	placeholders := []string{model.PlaceholderToken0, model.PlaceholderToken1}
	for i, a := range amounts {
		tokens[i] = model.TokenAmount{Token: placeholders[i%2], Amount: a}
	}
	return model.RebalanceAction{
		Kind:       kind,
		Protocol:   model.ProtocolUniswapV3,
		Tokens:     tokens,
		EventIndex: eventIndex,
		LogIndex:   uint64(eventIndex),
		PositionID: positionID,
	}
}

func ids(attrs []Attribution) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.PositionID
	}
	return out
}

func TestResolveBurnScansForward(t *testing.T) {
	got := ResolvePositionIDs([]model.RebalanceAction{
		act(model.ActionBurn, 0, ""),
		act(model.ActionRemoveLiquidity, 1, "7"),
	})
	if !reflect.DeepEqual(ids(got), []string{"7", "7"}) {
		t.Fatalf("ids mismatch: %v", ids(got))
	}
	if got[0].Mirrored || !got[1].Mirrored {
		t.Fatalf("expected remove to be mirrored: %+v", got)
	}
}

func TestResolveCollectPrefersBackward(t *testing.T) {
	got := ResolvePositionIDs([]model.RebalanceAction{
		act(model.ActionRemoveLiquidity, 0, "5"),
		act(model.ActionCollect, 1, ""),
		act(model.ActionRemoveLiquidity, 2, "9"),
	})
	if !reflect.DeepEqual(ids(got), []string{"5", "5", "9"}) {
		t.Fatalf("ids mismatch: %v", ids(got))
	}
	for _, a := range got {
		if a.Mirrored {
			t.Fatalf("collect must not mirror: %+v", got)
		}
	}
}

func TestResolveCollectFallsForward(t *testing.T) {
	got := ResolvePositionIDs([]model.RebalanceAction{
		act(model.ActionCollect, 0, ""),
		act(model.ActionAddLiquidity, 1, "3"),
		act(model.ActionRemoveLiquidity, 2, "4"),
	})
	if !reflect.DeepEqual(ids(got), []string{"4", "3", "4"}) {
		t.Fatalf("ids mismatch: %v", ids(got))
	}
}

func TestResolveMintIgnoresEarlierAndOtherKinds(t *testing.T) {
	got := ResolvePositionIDs([]model.RebalanceAction{
		act(model.ActionAddLiquidity, 0, "1"),
		act(model.ActionMint, 1, ""),
		act(model.ActionRemoveLiquidity, 2, "2"),
		act(model.ActionSwap, 3, ""),
	})
	if !reflect.DeepEqual(ids(got), []string{"1", "", "2", ""}) {
		t.Fatalf("ids mismatch: %v", ids(got))
	}
}

func TestResolveUsesEventIndexOrder(t *testing.T) {
	got := ResolvePositionIDs([]model.RebalanceAction{
		act(model.ActionAddLiquidity, 1, "42"),
		act(model.ActionMint, 0, ""),
	})
	if !reflect.DeepEqual(ids(got), []string{"42", "42"}) {
		t.Fatalf("ids mismatch: %v", ids(got))
	}
	if !got[0].Mirrored {
		t.Fatalf("add liquidity should be mirrored")
	}
}
