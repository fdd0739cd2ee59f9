package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client is the per-chain data source for transaction parsing: receipts,
// block timestamps and read-only eth_call lookups. Block timestamps are
// memoized since several transactions usually share a block.
type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client

	mu         sync.RWMutex
	timestamps map[uint64]uint64
}

// NewClient dials rpcURL. The endpoint's chain id is not checked here; see
// Registry.Client.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rc, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	return newClient(rc), nil
}

func newClient(rc *rpc.Client) *Client {
	return &Client{
		rpc:        rc,
		eth:        ethclient.NewClient(rc),
		timestamps: make(map[uint64]uint64),
	}
}

func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// GetChainID asks the endpoint which chain it serves.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

// TransactionReceipt returns ethereum.NotFound for unknown or pending hashes.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.eth.TransactionReceipt(ctx, txHash)
}

// BlockTimestamp returns the timestamp of the block a receipt was mined in.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.RLock()
	ts, ok := c.timestamps[number]
	c.mu.RUnlock()
	if ok {
		return ts, nil
	}

	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.timestamps[number] = header.Time
	c.mu.Unlock()
	return header.Time, nil
}

// CallContract runs a read-only call such as token0() against the emitting
// contract. A nil blockNumber means the latest block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, blockNumber)
}
