package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashback-ledger/bank"
	"github.com/warp/cashback-ledger/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LEDGER_PORT", "")
	t.Setenv("LEDGER_DB", "")
	t.Setenv("LEDGER_LOG_LEVEL", "")
	t.Setenv("LEDGER_POLICY_FILE", "")

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Cashback.Rate.Equal(bank.DefaultCashbackRate))
	assert.Equal(t, bank.DefaultCashbackDelay, cfg.Cashback.Delay)
}

func TestLoad_EnvThenFlags(t *testing.T) {
	t.Setenv("LEDGER_PORT", "9000")
	t.Setenv("LEDGER_DB", "/tmp/journal.db")

	cfg, err := config.Load([]string{"-port", "9100", "-cashback-rate", "0.05", "-cashback-delay", "10"})
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/tmp/journal.db", cfg.DBPath)
	assert.Equal(t, "0.05", cfg.Cashback.Rate.String())
	assert.Equal(t, bank.Timestamp(10), cfg.Cashback.Delay)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("LEDGER_PORT", "")

	tests := map[string][]string{
		"rate not decimal": {"-cashback-rate", "two percent"},
		"rate above one":   {"-cashback-rate", "1.5"},
		"negative delay":   {"-cashback-delay", "-1"},
		"bad level":        {"-log-level", "loud"},
		"bad port":         {"-port", "0"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(args)
			assert.Error(t, err)
		})
	}
}

func TestLoad_PolicyFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rate": "0.04", "delay": 500}`), 0o600))

	// GIVEN: only the file
	cfg, err := config.Load([]string{"-policy-file", path})
	require.NoError(t, err)
	assert.Equal(t, "0.04", cfg.Cashback.Rate.String())
	assert.Equal(t, bank.Timestamp(500), cfg.Cashback.Delay)

	// WHEN: a flag is set explicitly, it wins over the file
	cfg, err = config.Load([]string{"-policy-file", path, "-cashback-delay", "7"})
	require.NoError(t, err)
	assert.Equal(t, "0.04", cfg.Cashback.Rate.String())
	assert.Equal(t, bank.Timestamp(7), cfg.Cashback.Delay)

	// AND: a missing file is an error
	_, err = config.Load([]string{"-policy-file", filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}
