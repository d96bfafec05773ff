package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpmm/internal/transfer"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "./data/pools", cfg.StateDir)
	assert.Equal(t, "./data/journal.jsonl", cfg.Journal)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Nil(t, cfg.BaseTransferFee)
	assert.Nil(t, cfg.QuoteTransferFee)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "cpmm.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
state-dir: /from/file
max-retries: 7
base-transfer-fee-bps: 150
base-transfer-fee-max: 9000
`), 0o644))

	t.Setenv("CPMM_JOURNAL", "/from/env.jsonl")
	t.Setenv("CPMM_QUOTE_TRANSFER_FEE_BPS", "20")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.Int("max-retries", 3, "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug"}))

	cfg, err := Load(cfgFile, flags)
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.StateDir)
	assert.Equal(t, "/from/env.jsonl", cfg.Journal)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.MaxRetries, "unchanged flag defaults do not override the file")
	assert.Equal(t, &transfer.FeeConfig{BasisPoints: 150, MaximumFee: 9000}, cfg.BaseTransferFee)
	assert.Equal(t, &transfer.FeeConfig{BasisPoints: 20, MaximumFee: math.MaxUint64}, cfg.QuoteTransferFee)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	chdir(t, t.TempDir())
	t.Setenv("CPMM_BASE_TRANSFER_FEE_BPS", "10001")
	_, err = Load("", nil)
	assert.Error(t, err)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
