package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rebalanceScope/internal/cache"
	"rebalanceScope/internal/chain"
	"rebalanceScope/internal/config"
	"rebalanceScope/internal/model"
	"rebalanceScope/internal/parser"
	"rebalanceScope/internal/storage"
	"rebalanceScope/internal/tokens"
)

func runParse(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	hashes, err := parser.ParseTxHashes(append(cfg.TxHashes, args...))
	if err != nil {
		return err
	}
	if len(hashes) == 0 {
		return fmt.Errorf("at least one transaction hash is required")
	}

	overrides, err := tokens.ParseOverrides(cfg.Tokens)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lookupCache, closeCache, err := newLookupCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	chains := chain.NewRegistry(cfg.ChainRPC, logger)
	defer chains.Close()

	p, err := parser.New(parser.Config{
		Concurrency:    cfg.Concurrency,
		MaxRetries:     cfg.MaxRetries,
		RetryBackoff:   cfg.RetryBackoff,
		IncludeRawLogs: cfg.IncludeRawLogs,
	}, parser.RegistryProvider(chains), tokens.NewRegistry(overrides), lookupCache, logger)
	if err != nil {
		return err
	}

	logger.Info("parse start",
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Int("transactions", len(hashes)),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("redis_cache", cfg.RedisAddr != ""),
		zap.String("out", cfg.Out),
	)

	sink := storage.NewJsonlStorage(cfg.Out, cfg.Errors)
	encoder := json.NewEncoder(cmd.OutOrStdout())

	var actions, failures int
	for _, hash := range hashes {
		tx, err := p.ParseTransaction(ctx, hash, cfg.ChainID)
		if err != nil {
			return fmt.Errorf("parse %s: %w", hash.Hex(), err)
		}
		actions += len(tx.Actions)
		failures += len(tx.Failures)

		if cfg.Out == "" {
			err = encoder.Encode(tx)
		} else {
			err = sink.PutTransactions([]*model.ParsedTransaction{tx})
		}
		if err != nil {
			return fmt.Errorf("write transaction: %w", err)
		}
		if err := sink.PutDecodeErrors(tx.Failures); err != nil {
			return fmt.Errorf("write decode errors: %w", err)
		}
	}

	logger.Info("parse complete",
		zap.Int("transactions", len(hashes)),
		zap.Int("actions", actions),
		zap.Int("failures", failures),
	)
	return nil
}

// newLookupCache returns a Redis cache when an address is configured and an
// in-memory cache otherwise.
func newLookupCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (cache.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), func() {}, nil
	}

	rc, err := cache.NewRedis(cache.RedisConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		TTL:       cfg.RedisTTL,
		KeyPrefix: cfg.CachePrefix,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return rc, func() { rc.Close() }, nil
}
