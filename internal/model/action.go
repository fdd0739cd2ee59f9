package model

// Protocol identifies the contract family that emitted an event.
type Protocol string

const (
	ProtocolUniswapV3  Protocol = "uniswap_v3"
	ProtocolUniswapV2  Protocol = "uniswap_v2"
	ProtocolKyberSwap  Protocol = "kyberswap"
	ProtocolAaveV3     Protocol = "aave_v3"
	ProtocolERC4626    Protocol = "erc4626"
	ProtocolCompoundV2 Protocol = "compound_v2"
)

// ActionKind classifies a decoded action.
type ActionKind string

const (
	// Pool-level liquidity events. They carry no position identifier.
	ActionMint    ActionKind = "mint"
	ActionBurn    ActionKind = "burn"
	ActionCollect ActionKind = "collect"

	// Position-manager-level liquidity events keyed by tokenId.
	ActionAddLiquidity    ActionKind = "add_liquidity"
	ActionRemoveLiquidity ActionKind = "remove_liquidity"

	ActionSwap ActionKind = "swap"

	ActionSupply   ActionKind = "supply"
	ActionWithdraw ActionKind = "withdraw"
	ActionBorrow   ActionKind = "borrow"
	ActionRepay    ActionKind = "repay"
)

// Placeholder token identities used when the emitting log does not carry
// token addresses and they could not be resolved.
const (
	PlaceholderToken0 = "token0"
	PlaceholderToken1 = "token1"
)

// IsLending reports whether the kind belongs to a lending protocol flow.
func (k ActionKind) IsLending() bool {
	switch k {
	case ActionSupply, ActionWithdraw, ActionBorrow, ActionRepay:
		return true
	default:
		return false
	}
}

// TokenAmount is a single token flow. Amount is the raw integer in base units.
type TokenAmount struct {
	Token     string `json:"token"`
	Amount    string `json:"amount"`
	Symbol    string `json:"symbol,omitempty"`
	Decimals  *uint8 `json:"decimals,omitempty"`
	Formatted string `json:"formatted,omitempty"`
}

// IsPlaceholder reports whether the token identity is unresolved.
func (t TokenAmount) IsPlaceholder() bool {
	return t.Token == PlaceholderToken0 || t.Token == PlaceholderToken1
}

// RebalanceAction is a protocol-aware action decoded from one log.
type RebalanceAction struct {
	Kind       ActionKind        `json:"kind"`
	Protocol   Protocol          `json:"protocol"`
	Tokens     []TokenAmount     `json:"tokens"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	EventIndex int               `json:"event_index"`
	LogIndex   uint64            `json:"log_index"`
	PositionID string            `json:"position_id,omitempty"`
	Contract   string            `json:"contract,omitempty"`
}

// Amount returns the raw amount at position i, or "0" when absent.
func (a RebalanceAction) Amount(i int) string {
	if i < 0 || i >= len(a.Tokens) {
		return "0"
	}
	return a.Tokens[i].Amount
}
