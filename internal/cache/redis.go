package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Cache = (*Redis)(nil)

// RedisConfig holds Redis cache settings.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// Redis shares resolved contract lookups between processes.
// Lookup errors degrade to cache misses.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

func NewRedis(cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "scope"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Redis{
		client:    client,
		ttl:       cfg.TTL,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger.With(zap.String("component", "redis-cache")),
	}, nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) redisKey(chainID uint64, contract string, kind Kind) string {
	return r.keyPrefix + ":" + key(chainID, contract, kind)
}

// Get returns the cached values; Redis errors count as a miss.
func (r *Redis) Get(ctx context.Context, chainID uint64, contract string, kind Kind) ([]string, bool) {
	val, err := r.client.Get(ctx, r.redisKey(chainID, contract, kind)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Debug("cache get failed", zap.String("contract", contract), zap.Error(err))
		}
		return nil, false
	}
	return decodeValues(val), true
}

// Set stores values with the configured TTL. Write errors are logged and dropped.
func (r *Redis) Set(ctx context.Context, chainID uint64, contract string, kind Kind, values []string) {
	if err := r.client.Set(ctx, r.redisKey(chainID, contract, kind), encodeValues(values), r.ttl).Err(); err != nil {
		r.logger.Debug("cache set failed", zap.String("contract", contract), zap.Error(err))
	}
}

func encodeValues(values []string) string {
	return strings.Join(values, ",")
}

func decodeValues(val string) []string {
	if val == "" {
		return []string{}
	}
	return strings.Split(val, ",")
}
