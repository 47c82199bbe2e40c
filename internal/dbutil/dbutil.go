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

// Package dbutil opens the key-value store backing the governance state.
package dbutil

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/mccoysc/daogov/internal/config"
)

// Namespace prefixes the database metrics.
const Namespace = "daogov/db/"

// Open opens the store selected by cfg.
func Open(cfg *config.Config, readonly bool) (ethdb.KeyValueStore, error) {
	switch cfg.DBEngine {
	case config.DBMemory:
		log.Warn("Using in-memory database, state is lost on exit")
		return memorydb.New(), nil
	case config.DBLevelDB:
		path := filepath.Join(cfg.DataDir, "state")
		db, err := leveldb.New(path, cfg.DBCache, cfg.DBHandles, Namespace, readonly)
		if err != nil {
			return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
		}
		log.Debug("Opened database", "path", path, "cache", cfg.DBCache, "handles", cfg.DBHandles, "readonly", readonly)
		return db, nil
	case config.DBPebble:
		path := filepath.Join(cfg.DataDir, "state")
		db, err := openPebble(path, cfg.DBCache, cfg.DBHandles, readonly)
		if err != nil {
			return nil, fmt.Errorf("open pebble at %s: %w", path, err)
		}
		log.Debug("Opened database", "engine", "pebble", "path", path, "cache", cfg.DBCache, "handles", cfg.DBHandles, "readonly", readonly)
		return db, nil
	}
	return nil, fmt.Errorf("unknown db engine %q", cfg.DBEngine)
}
