package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Output formats for tracking summaries.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// TrackConfig holds configuration for the positions and lending commands.
type TrackConfig struct {
	In       string
	ChainID  uint64
	Format   string
	LogLevel string
}

// LoadTrack merges config file, environment variables, and flags into TrackConfig.
func LoadTrack(cfgFile string, flags *pflag.FlagSet) (TrackConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"in":        "-",
		"chain-id":  uint64(0),
		"format":    FormatText,
		"log-level": "info",
	})
	if err != nil {
		return TrackConfig{}, err
	}

	cfg := TrackConfig{
		In:       v.GetString("in"),
		ChainID:  v.GetUint64("chain-id"),
		Format:   v.GetString("format"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.Format != FormatText && cfg.Format != FormatJSON {
		return TrackConfig{}, fmt.Errorf("unsupported format: %s", cfg.Format)
	}
	return cfg, nil
}
