package tokens

import "rebalanceScope/internal/model"

// NativeToken is the sentinel address routers use for the chain's native asset.
const NativeToken = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

var builtin = map[uint64][]model.TokenMeta{
	// Ethereum mainnet
	1: {
		{Address: NativeToken, Symbol: "ETH", Decimals: 18},
		{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Decimals: 18},
		{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
		{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Decimals: 6},
		{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Decimals: 18},
		{Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Symbol: "WBTC", Decimals: 8},
	},
	// BNB Smart Chain
	56: {
		{Address: NativeToken, Symbol: "BNB", Decimals: 18},
		{Address: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c", Symbol: "WBNB", Decimals: 18},
		{Address: "0x55d398326f99059fF775485246999027B3197955", Symbol: "USDT", Decimals: 18},
		{Address: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d", Symbol: "USDC", Decimals: 18},
	},
	// Base
	8453: {
		{Address: NativeToken, Symbol: "ETH", Decimals: 18},
		{Address: "0x4200000000000000000000000000000000000006", Symbol: "WETH", Decimals: 18},
		{Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Symbol: "USDC", Decimals: 6},
	},
	// Arbitrum One
	42161: {
		{Address: NativeToken, Symbol: "ETH", Decimals: 18},
		{Address: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", Symbol: "WETH", Decimals: 18},
		{Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Symbol: "USDC", Decimals: 6},
	},
}
