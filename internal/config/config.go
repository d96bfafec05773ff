package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cpmm/internal/transfer"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	StateDir         string
	Journal          string
	PGDSN            string
	MaxRetries       int
	RetryBackoff     time.Duration
	LogLevel         string
	BaseTransferFee  *transfer.FeeConfig
	QuoteTransferFee *transfer.FeeConfig
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CPMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("state-dir", "./data/pools")
	v.SetDefault("journal", "./data/journal.jsonl")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("cpmm")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	baseFee, err := transferFee(v, "base")
	if err != nil {
		return Config{}, err
	}
	quoteFee, err := transferFee(v, "quote")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		StateDir:         v.GetString("state-dir"),
		Journal:          v.GetString("journal"),
		PGDSN:            v.GetString("pg-dsn"),
		MaxRetries:       v.GetInt("max-retries"),
		RetryBackoff:     v.GetDuration("retry-backoff"),
		LogLevel:         v.GetString("log-level"),
		BaseTransferFee:  baseFee,
		QuoteTransferFee: quoteFee,
	}

	return cfg, nil
}

// transferFee reads <side>-transfer-fee-bps and <side>-transfer-fee-max.
// Without a rate the mint charges nothing; without a cap the fee is
// uncapped.
func transferFee(v *viper.Viper, side string) (*transfer.FeeConfig, error) {
	bpsKey := side + "-transfer-fee-bps"
	maxKey := side + "-transfer-fee-max"
	if !v.IsSet(bpsKey) || v.GetUint(bpsKey) == 0 {
		return nil, nil
	}
	bps := v.GetUint(bpsKey)
	if bps > transfer.MaxBasisPoints {
		return nil, fmt.Errorf("%s: %d exceeds %d basis points", bpsKey, bps, transfer.MaxBasisPoints)
	}
	maxFee := uint64(math.MaxUint64)
	if v.IsSet(maxKey) {
		maxFee = v.GetUint64(maxKey)
	}
	return &transfer.FeeConfig{BasisPoints: uint16(bps), MaximumFee: maxFee}, nil
}
