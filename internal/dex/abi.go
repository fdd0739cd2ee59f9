package dex

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

type abiSource string

const (
	abiV3Pool            abiSource = "uniswap_v3_pool"
	abiV3PositionManager abiSource = "uniswap_v3_position_manager"
	abiV2Pair            abiSource = "uniswap_v2_pair"
	abiKyberRouter       abiSource = "kyberswap_router"
	abiAaveV3Pool        abiSource = "aave_v3_pool"
	abiERC4626           abiSource = "erc4626_vault"
	abiCompoundV2        abiSource = "compound_v2_ctoken"
)

const v3PoolABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "recipient", "type": "address"},
      {"indexed": false, "internalType": "int256", "name": "amount0", "type": "int256"},
      {"indexed": false, "internalType": "int256", "name": "amount1", "type": "int256"},
      {"indexed": false, "internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
      {"indexed": false, "internalType": "uint128", "name": "liquidity", "type": "uint128"},
      {"indexed": false, "internalType": "int24", "name": "tick", "type": "int24"}
    ],
    "name": "Swap",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": true, "internalType": "int24", "name": "tickLower", "type": "int24"},
      {"indexed": true, "internalType": "int24", "name": "tickUpper", "type": "int24"},
      {"indexed": false, "internalType": "uint128", "name": "amount", "type": "uint128"},
      {"indexed": false, "internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1", "type": "uint256"}
    ],
    "name": "Mint",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": true, "internalType": "int24", "name": "tickLower", "type": "int24"},
      {"indexed": true, "internalType": "int24", "name": "tickUpper", "type": "int24"},
      {"indexed": false, "internalType": "uint128", "name": "amount", "type": "uint128"},
      {"indexed": false, "internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1", "type": "uint256"}
    ],
    "name": "Burn",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "recipient", "type": "address"},
      {"indexed": true, "internalType": "int24", "name": "tickLower", "type": "int24"},
      {"indexed": true, "internalType": "int24", "name": "tickUpper", "type": "int24"},
      {"indexed": false, "internalType": "uint128", "name": "amount0", "type": "uint128"},
      {"indexed": false, "internalType": "uint128", "name": "amount1", "type": "uint128"}
    ],
    "name": "Collect",
    "type": "event"
  }
]`

const v3PositionManagerABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint128", "name": "liquidity", "type": "uint128"},
      {"indexed": false, "internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1", "type": "uint256"}
    ],
    "name": "IncreaseLiquidity",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "uint256", "name": "tokenId", "type": "uint256"},
      {"indexed": false, "internalType": "uint128", "name": "liquidity", "type": "uint128"},
      {"indexed": false, "internalType": "uint256", "name": "amount0", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1", "type": "uint256"}
    ],
    "name": "DecreaseLiquidity",
    "type": "event"
  }
]`

const v2PairABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "amount0In", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1In", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount0Out", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "amount1Out", "type": "uint256"},
      {"indexed": true, "internalType": "address", "name": "to", "type": "address"}
    ],
    "name": "Swap",
    "type": "event"
  }
]`

const kyberRouterABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "sender", "type": "address"},
      {"indexed": false, "internalType": "contract IERC20", "name": "srcToken", "type": "address"},
      {"indexed": false, "internalType": "contract IERC20", "name": "dstToken", "type": "address"},
      {"indexed": false, "internalType": "address", "name": "dstReceiver", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "spentAmount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "returnAmount", "type": "uint256"}
    ],
    "name": "Swapped",
    "type": "event"
  }
]`

const aaveV3PoolABIJSON = `[
  {"anonymous":false,"inputs":[{"indexed":true,"name":"reserve","type":"address"},{"indexed":false,"name":"user","type":"address"},{"indexed":true,"name":"onBehalfOf","type":"address"},{"indexed":false,"name":"amount","type":"uint256"},{"indexed":true,"name":"referralCode","type":"uint16"}],"name":"Supply","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":true,"name":"reserve","type":"address"},{"indexed":true,"name":"user","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"amount","type":"uint256"}],"name":"Withdraw","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":true,"name":"reserve","type":"address"},{"indexed":false,"name":"user","type":"address"},{"indexed":true,"name":"onBehalfOf","type":"address"},{"indexed":false,"name":"amount","type":"uint256"},{"indexed":false,"name":"interestRateMode","type":"uint8"},{"indexed":false,"name":"borrowRate","type":"uint256"},{"indexed":true,"name":"referralCode","type":"uint16"}],"name":"Borrow","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":true,"name":"reserve","type":"address"},{"indexed":true,"name":"user","type":"address"},{"indexed":true,"name":"repayer","type":"address"},{"indexed":false,"name":"amount","type":"uint256"},{"indexed":false,"name":"useATokens","type":"bool"}],"name":"Repay","type":"event"}
]`

const erc4626ABIJSON = `[
  {"anonymous":false,"inputs":[{"indexed":true,"name":"sender","type":"address"},{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"assets","type":"uint256"},{"indexed":false,"name":"shares","type":"uint256"}],"name":"Deposit","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":true,"name":"sender","type":"address"},{"indexed":true,"name":"receiver","type":"address"},{"indexed":true,"name":"owner","type":"address"},{"indexed":false,"name":"assets","type":"uint256"},{"indexed":false,"name":"shares","type":"uint256"}],"name":"Withdraw","type":"event"}
]`

const compoundV2ABIJSON = `[
  {"anonymous":false,"inputs":[{"indexed":false,"name":"minter","type":"address"},{"indexed":false,"name":"mintAmount","type":"uint256"},{"indexed":false,"name":"mintTokens","type":"uint256"}],"name":"Mint","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":false,"name":"redeemer","type":"address"},{"indexed":false,"name":"redeemAmount","type":"uint256"},{"indexed":false,"name":"redeemTokens","type":"uint256"}],"name":"Redeem","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":false,"name":"borrower","type":"address"},{"indexed":false,"name":"borrowAmount","type":"uint256"},{"indexed":false,"name":"accountBorrows","type":"uint256"},{"indexed":false,"name":"totalBorrows","type":"uint256"}],"name":"Borrow","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":false,"name":"payer","type":"address"},{"indexed":false,"name":"borrower","type":"address"},{"indexed":false,"name":"repayAmount","type":"uint256"},{"indexed":false,"name":"accountBorrows","type":"uint256"},{"indexed":false,"name":"totalBorrows","type":"uint256"}],"name":"RepayBorrow","type":"event"}
]`

// Read-only getters used to recover token identity.
const lookupABIJSON = `[
  {"inputs": [], "name": "token0", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token1", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "asset", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "underlying", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

var abiSources = map[abiSource]string{
	abiV3Pool:            v3PoolABIJSON,
	abiV3PositionManager: v3PositionManagerABIJSON,
	abiV2Pair:            v2PairABIJSON,
	abiKyberRouter:       kyberRouterABIJSON,
	abiAaveV3Pool:        aaveV3PoolABIJSON,
	abiERC4626:           erc4626ABIJSON,
	abiCompoundV2:        compoundV2ABIJSON,
}

var (
	eventABIs     map[abiSource]abi.ABI
	eventABIsOnce sync.Once
	eventABIsErr  error

	lookupABI     abi.ABI
	lookupABIOnce sync.Once
	lookupABIErr  error
)

func eventABIInstances() (map[abiSource]abi.ABI, error) {
	eventABIsOnce.Do(func() {
		parsed := make(map[abiSource]abi.ABI, len(abiSources))
		for source, raw := range abiSources {
			a, err := abi.JSON(strings.NewReader(raw))
			if err != nil {
				eventABIsErr = fmt.Errorf("parse %s abi: %w", source, err)
				return
			}
			parsed[source] = a
		}
		eventABIs = parsed
	})
	return eventABIs, eventABIsErr
}

// LookupABI returns the ABI of the token getters called during decoding.
func LookupABI() (abi.ABI, error) {
	lookupABIOnce.Do(func() {
		lookupABI, lookupABIErr = abi.JSON(strings.NewReader(lookupABIJSON))
	})
	return lookupABI, lookupABIErr
}
