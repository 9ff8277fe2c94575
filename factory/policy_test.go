package factory

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cashback-ledger/bank"
)

func TestParsePolicy(t *testing.T) {
	f := NewPolicyFactory()

	tests := []struct {
		name      string
		json      string
		wantRate  string
		wantDelay bank.Timestamp
	}{
		{"empty object uses defaults", `{}`, "0.02", bank.DefaultCashbackDelay},
		{"string rate", `{"rate": "0.05", "delay": 100}`, "0.05", 100},
		{"numeric rate", `{"rate": 0.1}`, "0.1", bank.DefaultCashbackDelay},
		{"zero delay", `{"delay": 0}`, "0.02", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.ParsePolicy(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRate, p.Rate.String())
			assert.Equal(t, tt.wantDelay, p.Delay)
		})
	}
}

func TestParsePolicy_Invalid(t *testing.T) {
	f := NewPolicyFactory()

	_, err := f.ParsePolicy(`{"rate": "2"}`)
	assert.True(t, errors.Is(err, bank.ErrInvalidPolicy))

	_, err = f.ParsePolicy(`{"delay": -5}`)
	assert.True(t, errors.Is(err, bank.ErrInvalidPolicy))

	_, err = f.ParsePolicy(`{"rate": `)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rate": "0.03", "delay": 60000}`), 0o600))

	p, err := NewPolicyFactory().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.03", p.Rate.String())
	assert.Equal(t, bank.Timestamp(60000), p.Delay)

	_, err = NewPolicyFactory().LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := NewPolicyFactory()
	in := bank.DefaultCashbackPolicy()

	raw, err := json.Marshal(f.ToJSON(in))
	require.NoError(t, err)
	assert.JSONEq(t, `{"rate": "0.02", "delay": 86400000}`, string(raw))

	out, err := f.ParsePolicy(string(raw))
	require.NoError(t, err)
	assert.True(t, out.Rate.Equal(in.Rate))
	assert.Equal(t, in.Delay, out.Delay)
}
