package parser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rebalanceScope/internal/cache"
	"rebalanceScope/internal/chain"
	"rebalanceScope/internal/dex"
	"rebalanceScope/internal/model"
	"rebalanceScope/internal/tokens"
)

// ErrTransactionNotFound is returned when the chain has no receipt for a hash.
var ErrTransactionNotFound = errors.New("transaction not found")

// Reader is the chain data source for a single chain.
type Reader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	dex.ContractCaller
}

// ReaderProvider selects the Reader for a chain id. It returns an error
// wrapping chain.ErrUnsupportedChain when the chain is not configured.
type ReaderProvider func(ctx context.Context, chainID uint64) (Reader, error)

// RegistryProvider adapts a chain.Registry into a ReaderProvider.
func RegistryProvider(reg *chain.Registry) ReaderProvider {
	return func(ctx context.Context, chainID uint64) (Reader, error) {
		client, err := reg.Client(ctx, chainID)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// Config holds parser settings.
type Config struct {
	Concurrency    int
	MaxRetries     int
	RetryBackoff   time.Duration
	IncludeRawLogs bool
}

// Parser turns transaction receipts into ordered rebalance actions.
type Parser struct {
	cfg      Config
	readers  ReaderProvider
	registry *dex.Registry
	tokens   *tokens.Registry
	cache    cache.Cache
	logger   *zap.Logger
}

// New builds a Parser. tokenRegistry and c may be nil.
func New(cfg Config, readers ReaderProvider, tokenRegistry *tokens.Registry, c cache.Cache, logger *zap.Logger) (*Parser, error) {
	if readers == nil {
		return nil, fmt.Errorf("reader provider is nil")
	}
	registry, err := dex.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("build event registry: %w", err)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if tokenRegistry == nil {
		tokenRegistry = tokens.NewRegistry(nil)
	}
	if c == nil {
		c = cache.NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		cfg:      cfg,
		readers:  readers,
		registry: registry,
		tokens:   tokenRegistry,
		cache:    c,
		logger:   logger,
	}, nil
}

// decodeResult is the outcome for one receipt log.
type decodeResult struct {
	action *model.RebalanceAction
	desc   *dex.EventDescriptor
	err    error
}

// ParseTransaction fetches the receipt and block of txHash and decodes every
// recognized log in receipt order.
func (p *Parser) ParseTransaction(ctx context.Context, txHash common.Hash, chainID uint64) (*model.ParsedTransaction, error) {
	reader, err := p.readers(ctx, chainID)
	if err != nil {
		return nil, err
	}

	receipt, err := p.receiptWithRetry(ctx, reader, txHash)
	if err != nil {
		return nil, err
	}
	if receipt.BlockNumber == nil {
		return nil, fmt.Errorf("receipt %s has no block number", txHash.Hex())
	}
	blockNumber := receipt.BlockNumber.Uint64()

	ts, err := p.timestampWithRetry(ctx, reader, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", blockNumber, err)
	}

	logs := make([]model.RawLog, len(receipt.Logs))
	for i, log := range receipt.Logs {
		logs[i] = buildRawLog(log, i)
	}

	results, err := p.decodeLogs(ctx, chainID, reader, logs)
	if err != nil {
		return nil, err
	}

	parsed := &model.ParsedTransaction{
		TxHash:      txHash.Hex(),
		ChainID:     chainID,
		BlockNumber: blockNumber,
		Timestamp:   &ts,
		Actions:     make([]model.RebalanceAction, 0, len(logs)),
	}
	for i, res := range results {
		switch {
		case res.desc == nil:
			continue
		case res.err != nil:
			p.logger.Warn("decode log failed",
				zap.String("tx_hash", parsed.TxHash),
				zap.Uint64("log_index", logs[i].LogIndex),
				zap.String("event", string(res.desc.Protocol)+"/"+res.desc.Name),
				zap.Error(res.err),
			)
			parsed.Failures = append(parsed.Failures, model.DecodeError{
				ChainID:  chainID,
				TxHash:   parsed.TxHash,
				LogIndex: logs[i].LogIndex,
				Address:  logs[i].Address,
				Topic0:   logs[i].Topic0(),
				Event:    res.desc.Signature(),
				Error:    res.err.Error(),
			})
		default:
			action := *res.action
			action.EventIndex = len(parsed.Actions)
			parsed.Actions = append(parsed.Actions, action)
		}
	}

	parsed.Actions = p.tokens.Enrich(chainID, parsed.Actions)
	if p.cfg.IncludeRawLogs {
		parsed.RawLogs = logs
	}

	p.logger.Debug("transaction parsed",
		zap.String("tx_hash", parsed.TxHash),
		zap.Uint64("chain_id", chainID),
		zap.Int("logs", len(logs)),
		zap.Int("actions", len(parsed.Actions)),
		zap.Int("failures", len(parsed.Failures)),
	)
	return parsed, nil
}

// ParseTransactions parses hashes in order and stops at the first fatal error.
func (p *Parser) ParseTransactions(ctx context.Context, hashes []common.Hash, chainID uint64) ([]*model.ParsedTransaction, error) {
	out := make([]*model.ParsedTransaction, 0, len(hashes))
	for _, hash := range hashes {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		parsed, err := p.ParseTransaction(ctx, hash, chainID)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", hash.Hex(), err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

// decodeLogs decodes recognized logs concurrently. Results are stored by
// receipt position so completion order never affects the output order.
func (p *Parser) decodeLogs(ctx context.Context, chainID uint64, reader Reader, logs []model.RawLog) ([]decodeResult, error) {
	decoder := dex.NewDecoder(chainID, reader, p.cache, p.logger)
	results := make([]decodeResult, len(logs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i := range logs {
		desc, ok := p.registry.ResolveHex(logs[i].Topic0())
		if !ok {
			continue
		}
		results[i].desc = &desc

		i := i
		g.Go(func() error {
			action, err := decoder.Decode(gctx, logs[i], desc)
			results[i].action = action
			results[i].err = err
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Parser) receiptWithRetry(ctx context.Context, reader Reader, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		receipt, err = reader.TransactionReceipt(ctx, txHash)
		if errors.Is(err, ethereum.NotFound) || (err == nil && receipt == nil) {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, txHash.Hex())
		}
		if err != nil {
			p.logger.Warn("receipt fetch failed", zap.Error(err), zap.String("tx_hash", txHash.Hex()))
		}
		return err
	})
	return receipt, err
}

func (p *Parser) timestampWithRetry(ctx context.Context, reader Reader, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = reader.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			p.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}
