package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rebalanceScope/internal/config"
	"rebalanceScope/internal/model"
	"rebalanceScope/internal/position"
	"rebalanceScope/internal/storage"
)

func runPositions(cmd *cobra.Command, _ []string) error {
	return runTrack(cmd, "positions", func(w io.Writer, cfg config.TrackConfig, txs []*model.ParsedTransaction) error {
		summary := position.TrackPositionFlows(txs, cfg.ChainID)
		if cfg.Format == config.FormatJSON {
			return writeJSON(w, summary)
		}
		_, err := io.WriteString(w, position.FormatPositionSummary(summary))
		return err
	})
}

func runLending(cmd *cobra.Command, _ []string) error {
	return runTrack(cmd, "lending", func(w io.Writer, cfg config.TrackConfig, txs []*model.ParsedTransaction) error {
		summary := position.TrackLendingPositions(txs, cfg.ChainID)
		if cfg.Format == config.FormatJSON {
			return writeJSON(w, summary)
		}
		_, err := io.WriteString(w, position.FormatLendingSummary(summary))
		return err
	})
}

type renderFunc func(w io.Writer, cfg config.TrackConfig, txs []*model.ParsedTransaction) error

func runTrack(cmd *cobra.Command, name string, render renderFunc) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTrack(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	txs, err := storage.ReadTransactions(cfg.In)
	if err != nil {
		return err
	}

	logger.Info(name+" start",
		zap.String("in", cfg.In),
		zap.Int("transactions", len(txs)),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("format", cfg.Format),
	)

	if err := render(cmd.OutOrStdout(), cfg, txs); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
