package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SCOPE"

// Config holds configuration for the parse command.
type Config struct {
	ChainRPC       map[uint64]string
	Tokens         []string
	ChainID        uint64
	TxHashes       []string
	Concurrency    int
	MaxRetries     int
	RetryBackoff   time.Duration
	IncludeRawLogs bool
	RedisAddr      string
	RedisDB        int
	RedisPassword  string
	RedisTTL       time.Duration
	CachePrefix    string
	Out            string
	Errors         string
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"chain-id":      uint64(1),
		"concurrency":   8,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"include-raw":   false,
		"redis-db":      0,
		"redis-ttl":     24 * time.Hour,
		"cache-prefix":  "scope",
		"errors":        "",
		"log-level":     "info",
	})
	if err != nil {
		return Config{}, err
	}

	chainRPC, err := parseChainRPC(getStringMap(v, "chain-rpc"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ChainRPC:       chainRPC,
		Tokens:         getStringSlice(v, "token"),
		ChainID:        v.GetUint64("chain-id"),
		TxHashes:       getStringSlice(v, "tx"),
		Concurrency:    v.GetInt("concurrency"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		IncludeRawLogs: v.GetBool("include-raw"),
		RedisAddr:      v.GetString("redis-addr"),
		RedisDB:        v.GetInt("redis-db"),
		RedisPassword:  v.GetString("redis-password"),
		RedisTTL:       v.GetDuration("redis-ttl"),
		CachePrefix:    v.GetString("cache-prefix"),
		Out:            v.GetString("out"),
		Errors:         v.GetString("errors"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func parseChainRPC(raw map[string]string) (map[uint64]string, error) {
	out := make(map[uint64]string, len(raw))
	for key, url := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id in chain-rpc: %s", key)
		}
		out[id] = strings.TrimSpace(url)
	}
	return out, nil
}
