package parser

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"rebalanceScope/internal/cache"
	"rebalanceScope/internal/chain"
	"rebalanceScope/internal/dex"
	"rebalanceScope/internal/model"
	"rebalanceScope/internal/tokens"
)

const testEventsABI = `[
  {"anonymous":false,"inputs":[{"indexed":false,"name":"sender","type":"address"},{"indexed":true,"name":"owner","type":"address"},{"indexed":true,"name":"tickLower","type":"int24"},{"indexed":true,"name":"tickUpper","type":"int24"},{"indexed":false,"name":"amount","type":"uint128"},{"indexed":false,"name":"amount0","type":"uint256"},{"indexed":false,"name":"amount1","type":"uint256"}],"name":"Mint","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":true,"name":"tokenId","type":"uint256"},{"indexed":false,"name":"liquidity","type":"uint128"},{"indexed":false,"name":"amount0","type":"uint256"},{"indexed":false,"name":"amount1","type":"uint256"}],"name":"IncreaseLiquidity","type":"event"},
  {"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"}
]`

var (
	pool    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	manager = common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")
	token0  = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	token1  = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	owner   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	txHash  = common.HexToHash("0x0101010101010101010101010101010101010101010101010101010101010101")
)

type fakeReader struct {
	mu           sync.Mutex
	receipts     map[common.Hash]*types.Receipt
	timestamps   map[uint64]uint64
	receiptErrs  []error
	receiptCalls int
	pair         map[string]common.Address
}

func (f *fakeReader) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptCalls++
	if len(f.receiptErrs) > 0 {
		err := f.receiptErrs[0]
		f.receiptErrs = f.receiptErrs[1:]
		return nil, err
	}
	receipt, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (f *fakeReader) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	ts, ok := f.timestamps[number]
	if !ok {
		return 0, fmt.Errorf("block %d unavailable", number)
	}
	return ts, nil
}

func (f *fakeReader) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	parsed, err := dex.LookupABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	addr, ok := f.pair[method.Name]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return method.Outputs.Pack(addr)
}

func providerFor(chainID uint64, reader Reader) ReaderProvider {
	return func(_ context.Context, id uint64) (Reader, error) {
		if id != chainID {
			return nil, fmt.Errorf("%w: %d", chain.ErrUnsupportedChain, id)
		}
		return reader, nil
	}
}

func testABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(testEventsABI))
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	return parsed
}

func eventLog(t *testing.T, parsed abi.ABI, name string, contract common.Address, indexed []common.Hash, args ...interface{}) *types.Log {
	t.Helper()
	event := parsed.Events[name]
	data, err := event.Inputs.NonIndexed().Pack(args...)
	if err != nil {
		t.Fatalf("pack %s: %v", name, err)
	}
	return &types.Log{
		Address:     contract,
		Topics:      append([]common.Hash{event.ID}, indexed...),
		Data:        data,
		TxHash:      txHash,
		BlockNumber: 100,
	}
}

func int24Topic(value int64) common.Hash {
	v := big.NewInt(value)
	if value < 0 {
		v.Add(v, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return common.BigToHash(v)
}

func mintLog(t *testing.T, parsed abi.ABI) *types.Log {
	return mintLogAt(t, parsed, pool)
}

func mintLogAt(t *testing.T, parsed abi.ABI, contract common.Address) *types.Log {
	return eventLog(t, parsed, "Mint", contract,
		[]common.Hash{common.BytesToHash(owner.Bytes()), int24Topic(-120), int24Topic(120)},
		manager, big.NewInt(5000), big.NewInt(1_000_000), big.NewInt(2_000_000),
	)
}

func increaseLog(t *testing.T, parsed abi.ABI, tokenID int64) *types.Log {
	return eventLog(t, parsed, "IncreaseLiquidity", manager,
		[]common.Hash{common.BigToHash(big.NewInt(tokenID))},
		big.NewInt(5000), big.NewInt(1_000_000), big.NewInt(2_000_000),
	)
}

func newTestReader(logs ...*types.Log) *fakeReader {
	return &fakeReader{
		receipts: map[common.Hash]*types.Receipt{
			txHash: {BlockNumber: big.NewInt(100), Logs: logs, TxHash: txHash},
		},
		timestamps: map[uint64]uint64{100: 1_700_000_000},
		pair: map[string]common.Address{
			"token0": token0,
			"token1": token1,
		},
	}
}

func newTestParser(t *testing.T, reader Reader, cfg Config) *Parser {
	t.Helper()
	overrides, err := tokens.ParseOverrides([]string{
		"1:" + token0.Hex() + ":TK0:6",
		"1:" + token1.Hex() + ":TK1:18",
	})
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	p, err := New(cfg, providerFor(1, reader), tokens.NewRegistry(overrides), cache.NewMemory(), zap.NewNop())
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	return p
}

func TestParseTransactionMintAndIncrease(t *testing.T) {
	parsed := testABI(t)
	reader := newTestReader(mintLog(t, parsed), increaseLog(t, parsed, 42))
	p := newTestParser(t, reader, Config{Concurrency: 4})

	tx, err := p.ParseTransaction(context.Background(), txHash, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if tx.BlockNumber != 100 || tx.Timestamp == nil || *tx.Timestamp != 1_700_000_000 {
		t.Fatalf("block info mismatch: %+v", tx)
	}
	if len(tx.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(tx.Actions))
	}

	mint, increase := tx.Actions[0], tx.Actions[1]
	if mint.Kind != model.ActionMint || mint.EventIndex != 0 || mint.LogIndex != 0 {
		t.Fatalf("mint mismatch: %+v", mint)
	}
	if increase.Kind != model.ActionAddLiquidity || increase.EventIndex != 1 || increase.LogIndex != 1 {
		t.Fatalf("increase mismatch: %+v", increase)
	}
	if increase.PositionID != "42" {
		t.Fatalf("position id mismatch: %s", increase.PositionID)
	}

	tok := mint.Tokens[0]
	if tok.Token != token0.Hex() || tok.Symbol != "TK0" || tok.Decimals == nil || *tok.Decimals != 6 {
		t.Fatalf("token0 enrichment mismatch: %+v", tok)
	}
	if tok.Formatted != "1" {
		t.Fatalf("formatted amount mismatch: %s", tok.Formatted)
	}
	if increase.Tokens[0].Token != model.PlaceholderToken0 || increase.Tokens[0].Symbol != "" {
		t.Fatalf("placeholder must stay unenriched: %+v", increase.Tokens[0])
	}
	if tx.RawLogs != nil {
		t.Fatalf("raw logs must be omitted by default")
	}
}

// delayedReader answers token0()/token1() per pool after a per-pool delay and
// records the order in which pools finished.
type delayedReader struct {
	*fakeReader
	delays map[common.Address]time.Duration
	pairs  map[common.Address][2]common.Address

	orderMu  sync.Mutex
	finished []common.Address
}

func (d *delayedReader) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	parsed, err := dex.LookupABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	contract := *msg.To

	select {
	case <-time.After(d.delays[contract]):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	pair := d.pairs[contract]
	out := pair[0]
	if method.Name == "token1" {
		out = pair[1]
		d.orderMu.Lock()
		d.finished = append(d.finished, contract)
		d.orderMu.Unlock()
	}
	return method.Outputs.Pack(out)
}

func TestParseTransactionKeepsReceiptOrderWhenCallsFinishOutOfOrder(t *testing.T) {
	parsed := testABI(t)
	pools := []common.Address{
		common.HexToAddress("0x3000000000000000000000000000000000000001"),
		common.HexToAddress("0x3000000000000000000000000000000000000002"),
		common.HexToAddress("0x3000000000000000000000000000000000000003"),
	}
	reader := &delayedReader{
		fakeReader: newTestReader(mintLogAt(t, parsed, pools[0]), mintLogAt(t, parsed, pools[1]), mintLogAt(t, parsed, pools[2])),
		delays: map[common.Address]time.Duration{
			pools[0]: 80 * time.Millisecond,
			pools[1]: 40 * time.Millisecond,
			pools[2]: 0,
		},
		pairs: make(map[common.Address][2]common.Address),
	}
	for i, addr := range pools {
		reader.pairs[addr] = [2]common.Address{
			common.BigToAddress(big.NewInt(int64(0x100 + i))),
			common.BigToAddress(big.NewInt(int64(0x200 + i))),
		}
	}
	p := newTestParser(t, reader, Config{Concurrency: 3})

	tx, err := p.ParseTransaction(context.Background(), txHash, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(reader.finished) != 3 || reader.finished[0] != pools[2] || reader.finished[2] != pools[0] {
		t.Fatalf("calls did not finish in reverse order: %v", reader.finished)
	}
	if len(tx.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(tx.Actions))
	}
	for i, action := range tx.Actions {
		if action.EventIndex != i || action.LogIndex != uint64(i) {
			t.Fatalf("action %d has event index %d, log index %d", i, action.EventIndex, action.LogIndex)
		}
		if action.Contract != pools[i].Hex() {
			t.Fatalf("action %d contract %s, want %s", i, action.Contract, pools[i].Hex())
		}
		if action.Tokens[0].Token != reader.pairs[pools[i]][0].Hex() || action.Tokens[1].Token != reader.pairs[pools[i]][1].Hex() {
			t.Fatalf("action %d tokens mismatch: %+v", i, action.Tokens)
		}
	}
}

func TestParseTransactionSkipsUnknownAndMalformed(t *testing.T) {
	parsed := testABI(t)
	transfer := eventLog(t, parsed, "Transfer", token0,
		[]common.Hash{common.BytesToHash(owner.Bytes()), common.BytesToHash(pool.Bytes())},
		big.NewInt(10),
	)
	malformed := increaseLog(t, parsed, 7)
	malformed.Data = malformed.Data[:16]

	reader := newTestReader(transfer, mintLog(t, parsed), malformed, increaseLog(t, parsed, 42))
	p := newTestParser(t, reader, Config{Concurrency: 2, IncludeRawLogs: true})

	tx, err := p.ParseTransaction(context.Background(), txHash, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(tx.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(tx.Actions))
	}
	for i, action := range tx.Actions {
		if action.EventIndex != i {
			t.Fatalf("event index %d at position %d", action.EventIndex, i)
		}
	}
	if tx.Actions[0].LogIndex != 1 || tx.Actions[1].LogIndex != 3 {
		t.Fatalf("log indices not preserved: %d %d", tx.Actions[0].LogIndex, tx.Actions[1].LogIndex)
	}
	if len(tx.Failures) != 1 || tx.Failures[0].LogIndex != 2 {
		t.Fatalf("expected one failure at log 2, got %+v", tx.Failures)
	}
	if len(tx.RawLogs) != 4 {
		t.Fatalf("expected raw logs, got %d", len(tx.RawLogs))
	}
}

func TestParseTransactionNotFound(t *testing.T) {
	reader := newTestReader()
	p := newTestParser(t, reader, Config{MaxRetries: 3, RetryBackoff: time.Millisecond})

	missing := common.HexToHash("0x02")
	_, err := p.ParseTransaction(context.Background(), missing, 1)
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if reader.receiptCalls != 1 {
		t.Fatalf("not found must not be retried, calls=%d", reader.receiptCalls)
	}
}

func TestParseTransactionUnsupportedChain(t *testing.T) {
	p := newTestParser(t, newTestReader(), Config{})
	_, err := p.ParseTransaction(context.Background(), txHash, 8453)
	if !errors.Is(err, chain.ErrUnsupportedChain) {
		t.Fatalf("expected unsupported chain, got %v", err)
	}
}

func TestParseTransactionRetriesTransientErrors(t *testing.T) {
	parsed := testABI(t)
	reader := newTestReader(mintLog(t, parsed))
	reader.receiptErrs = []error{errors.New("connection reset"), errors.New("timeout")}
	p := newTestParser(t, reader, Config{MaxRetries: 2, RetryBackoff: time.Millisecond})

	tx, err := p.ParseTransaction(context.Background(), txHash, 1)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if reader.receiptCalls != 3 || len(tx.Actions) != 1 {
		t.Fatalf("unexpected result: calls=%d actions=%d", reader.receiptCalls, len(tx.Actions))
	}
}

func TestParseTransactionBlockUnavailable(t *testing.T) {
	parsed := testABI(t)
	reader := newTestReader(mintLog(t, parsed))
	reader.timestamps = map[uint64]uint64{}
	p := newTestParser(t, reader, Config{RetryBackoff: time.Millisecond})

	if _, err := p.ParseTransaction(context.Background(), txHash, 1); err == nil {
		t.Fatalf("expected block retrieval failure to be fatal")
	}
}

func TestParseTransactionsStopsAtFirstError(t *testing.T) {
	parsed := testABI(t)
	reader := newTestReader(mintLog(t, parsed))
	p := newTestParser(t, reader, Config{})

	out, err := p.ParseTransactions(context.Background(), []common.Hash{txHash, common.HexToHash("0x03"), txHash}, 1)
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 parsed transaction before the error, got %d", len(out))
	}
}
