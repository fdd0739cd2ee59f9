package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "scope",
		Short:        "Decode rebalance transactions and reconstruct LP and lending positions",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	parseCmd := &cobra.Command{
		Use:   "parse [tx-hash...]",
		Short: "Parse transactions into rebalance actions",
		RunE:  runParse,
	}

	parseCmd.Flags().String("chain-rpc", "", "chain RPC endpoints (comma-separated chainID=url)")
	parseCmd.Flags().Uint64("chain-id", 1, "chain id of the transactions")
	parseCmd.Flags().StringSlice("tx", nil, "transaction hashes (comma-separated)")
	parseCmd.Flags().StringSlice("token", nil, "extra token metadata chainID:address:SYMBOL:decimals")
	parseCmd.Flags().Int("concurrency", 8, "concurrent log decodes per transaction")
	parseCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	parseCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	parseCmd.Flags().Bool("include-raw", false, "attach raw logs to the output")
	parseCmd.Flags().String("redis-addr", "", "Redis address for the shared lookup cache (empty uses memory)")
	parseCmd.Flags().Int("redis-db", 0, "Redis database")
	parseCmd.Flags().String("redis-password", "", "Redis password")
	parseCmd.Flags().Duration("redis-ttl", 24*time.Hour, "Redis entry TTL, 0 keeps entries forever")
	parseCmd.Flags().String("cache-prefix", "scope", "Redis key prefix")
	parseCmd.Flags().String("out", "", "output JSONL path (empty writes to stdout)")
	parseCmd.Flags().String("errors", "", "decode errors JSONL path")
	parseCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(parseCmd)

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "Track LP positions from parsed transactions",
		RunE:  runPositions,
	}
	addTrackFlags(positionsCmd)
	root.AddCommand(positionsCmd)

	lendingCmd := &cobra.Command{
		Use:   "lending",
		Short: "Track lending positions and FIFO cycles from parsed transactions",
		RunE:  runLending,
	}
	addTrackFlags(lendingCmd)
	root.AddCommand(lendingCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTrackFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "-", "parsed transactions JSONL (- reads stdin)")
	cmd.Flags().Uint64("chain-id", 0, "only track transactions of this chain (0 accepts all)")
	cmd.Flags().String("format", "text", "output format (text, json)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
