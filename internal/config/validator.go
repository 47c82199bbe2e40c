// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mccoysc/daogov/governance"
)

// ApplyEnv overrides cfg with DAOGOV_* environment variables. It sits between
// the config file and command line flags in precedence.
func ApplyEnv(cfg *Config) error {
	cfg.DataDir = getEnvOrDefault("DAOGOV_DATADIR", cfg.DataDir)
	cfg.DBEngine = getEnvOrDefault("DAOGOV_DB_ENGINE", cfg.DBEngine)
	cfg.Governance.Quorum = getEnvOrDefault("DAOGOV_QUORUM", cfg.Governance.Quorum)
	cfg.Log.Level = getEnvOrDefault("DAOGOV_LOG_LEVEL", cfg.Log.Level)

	if v := os.Getenv("DAOGOV_VOTING_PERIOD"); v != "" {
		period, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DAOGOV_VOTING_PERIOD %q: %w", v, err)
		}
		cfg.Governance.VotingPeriod = period
	}
	return nil
}

// Validate checks the configuration for consistency.
func Validate(cfg *Config) error {
	switch cfg.DBEngine {
	case DBMemory:
	case DBLevelDB, DBPebble:
		if cfg.DataDir == "" {
			return fmt.Errorf("%s engine requires a data directory", cfg.DBEngine)
		}
		if cfg.DBCache < 0 || cfg.DBHandles < 0 {
			return fmt.Errorf("db cache and handles must not be negative: cache=%d handles=%d", cfg.DBCache, cfg.DBHandles)
		}
	default:
		return fmt.Errorf("unknown db engine %q, want %s, %s or %s", cfg.DBEngine, DBMemory, DBLevelDB, DBPebble)
	}

	params, err := cfg.Governance.Params()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid governance parameters: %w", err)
	}
	if _, err := cfg.Governance.Supply(); err != nil {
		return err
	}

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	switch cfg.Log.Format {
	case "terminal", "json":
	default:
		return fmt.Errorf("unknown log format %q, want terminal or json", cfg.Log.Format)
	}
	return nil
}

// Params converts the governance section into quorum parameters.
func (g GovernanceConfig) Params() (*governance.Params, error) {
	quorum, ok := new(big.Int).SetString(g.Quorum, 10)
	if !ok {
		return nil, fmt.Errorf("invalid quorum %q", g.Quorum)
	}
	return &governance.Params{VotingPeriod: g.VotingPeriod, Quorum: quorum}, nil
}

// Supply parses the initial token supply.
func (g GovernanceConfig) Supply() (*big.Int, error) {
	supply, ok := new(big.Int).SetString(g.InitialSupply, 10)
	if !ok || supply.Sign() < 0 || supply.Cmp(governance.MaxAmount) > 0 {
		return nil, fmt.Errorf("invalid initial supply %q", g.InitialSupply)
	}
	return supply, nil
}

// ParseLevel maps a level name to a log level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// getEnvOrDefault retrieves an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
