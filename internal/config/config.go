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
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Database engines understood by the node.
const (
	DBMemory  = "memory"
	DBLevelDB = "leveldb"
	DBPebble  = "pebble"
)

// Config is the daogov configuration. It is read from a TOML file, then
// environment variables and finally command line flags take precedence.
type Config struct {
	DataDir   string `toml:"datadir"`    // Directory holding the database and lock file
	DBEngine  string `toml:"db_engine"`  // memory, leveldb or pebble
	DBCache   int    `toml:"db_cache"`   // Disk database cache in megabytes
	DBHandles int    `toml:"db_handles"` // Disk database open file handles

	Governance GovernanceConfig `toml:"governance"`
	Log        LogConfig        `toml:"log"`
}

// GovernanceConfig holds the parameters used when the DAO is initialized.
type GovernanceConfig struct {
	VotingPeriod  uint64 `toml:"voting_period"`  // Seconds
	Quorum        string `toml:"quorum"`         // Decimal weight
	InitialSupply string `toml:"initial_supply"` // Decimal amount credited to the admin
}

// LogConfig controls the root logger.
type LogConfig struct {
	Level     string `toml:"level"`       // trace, debug, info, warn, error, crit
	Format    string `toml:"format"`      // terminal or json
	File      string `toml:"file"`        // Optional rotating log file
	MaxSizeMB int    `toml:"max_size_mb"` // Rotation size
	MaxAge    int    `toml:"max_age"`     // Days to keep rotated files
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		DataDir:   defaultDataDir(),
		DBEngine:  DBLevelDB,
		DBCache:   16,
		DBHandles: 16,
		Governance: GovernanceConfig{
			VotingPeriod:  7 * 24 * 3600, // 7 days
			Quorum:        "100",
			InitialSupply: "1000000",
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "terminal",
			MaxSizeMB: 100,
			MaxAge:    30,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".daogov"
	}
	return filepath.Join(home, ".daogov")
}

// LoadFile overlays the TOML file at path onto cfg. Unknown keys are an error
// so typos do not go unnoticed.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return nil
}

// Dump writes cfg as TOML.
func Dump(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
