/*
Package config loads server configuration from flags and environment.

FLAGS (override environment):
  -port            HTTP server port (default: 8080, env LEDGER_PORT)
  -db              Journal SQLite path (default: ":memory:", env LEDGER_DB)
  -cashback-rate   Decimal cashback rate (default: 0.02)
  -cashback-delay  Logical delay before cashback is credited (default: 86400000)
  -policy-file     JSON cashback policy (env LEDGER_POLICY_FILE); explicit
                   -cashback-* flags override it
  -log-level       zerolog level (default: info, env LEDGER_LOG_LEVEL)
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/cashback-ledger/bank"
	"github.com/warp/cashback-ledger/factory"
)

type Config struct {
	Port       int
	DBPath     string
	LogLevel   string
	PolicyFile string
	Cashback   bank.CashbackPolicy
}

// Load parses args (without the program name) on top of environment defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	defaultPort := 8080
	if v := os.Getenv("LEDGER_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LEDGER_PORT: %w", err)
		}
		defaultPort = p
	}

	port := fs.Int("port", defaultPort, "HTTP server port")
	dbPath := fs.String("db", envOr("LEDGER_DB", ":memory:"), "journal SQLite path")
	rate := fs.String("cashback-rate", bank.DefaultCashbackRate.String(), "cashback rate as a decimal")
	delay := fs.Int64("cashback-delay", int64(bank.DefaultCashbackDelay), "logical delay before cashback is credited")
	logLevel := fs.String("log-level", envOr("LEDGER_LOG_LEVEL", "info"), "log level")
	policyFile := fs.String("policy-file", envOr("LEDGER_POLICY_FILE", ""), "JSON cashback policy file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	policy := bank.DefaultCashbackPolicy()
	if *policyFile != "" {
		p, err := factory.NewPolicyFactory().LoadFile(*policyFile)
		if err != nil {
			return nil, fmt.Errorf("policy-file: %w", err)
		}
		policy = p
	}
	if *policyFile == "" || set["cashback-rate"] {
		parsedRate, err := decimal.NewFromString(*rate)
		if err != nil {
			return nil, fmt.Errorf("cashback-rate: %w", err)
		}
		policy.Rate = parsedRate
	}
	if *policyFile == "" || set["cashback-delay"] {
		policy.Delay = bank.Timestamp(*delay)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if _, err := zerolog.ParseLevel(*logLevel); err != nil {
		return nil, fmt.Errorf("log-level: %w", err)
	}
	if *port <= 0 || *port > 65535 {
		return nil, fmt.Errorf("port %d out of range", *port)
	}

	return &Config{
		Port:       *port,
		DBPath:     *dbPath,
		LogLevel:   *logLevel,
		PolicyFile: *policyFile,
		Cashback:   policy,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
