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

package main

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/gofrs/flock"
	"github.com/mccoysc/daogov/governance"
	"github.com/mccoysc/daogov/internal/config"
	"github.com/mccoysc/daogov/internal/dbutil"
	"github.com/mccoysc/daogov/token"
	"github.com/urfave/cli/v2"
)

// node bundles the opened store and the governance components for one
// command invocation.
type node struct {
	cfg    *config.Config
	db     ethdb.KeyValueStore
	lock   *flock.Flock
	ledger *token.Ledger
	dao    *governance.DAO
}

type fixedClock uint64

func (c fixedClock) Now() uint64 { return uint64(c) }

func openNode(ctx *cli.Context) (*node, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	n := &node{cfg: cfg}

	if cfg.DBEngine != config.DBMemory {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, err
		}
		n.lock = flock.New(filepath.Join(cfg.DataDir, "LOCK"))
		locked, err := n.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock data directory: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("data directory %s is in use by another process", cfg.DataDir)
		}
	}
	db, err := dbutil.Open(cfg, false)
	if err != nil {
		n.Close()
		return nil, err
	}
	n.db = db

	var clock governance.Clock = governance.SystemClock{}
	if ctx.IsSet(timeFlag.Name) {
		clock = fixedClock(ctx.Uint64(timeFlag.Name))
	}
	auth := governance.SignatureAuthorizer{}
	n.ledger = token.NewLedger(db, auth)
	n.dao, err = governance.NewDAO(db, n.ledger, auth, clock, nil)
	if err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *node) Close() {
	if n.db != nil {
		n.db.Close()
	}
	if n.lock != nil {
		n.lock.Unlock()
	}
}

// loadKey reads the caller key named by --key.
func loadKey(ctx *cli.Context) (*ecdsa.PrivateKey, common.Address, error) {
	file := ctx.String(keyFlag.Name)
	key, err := crypto.LoadECDSA(file)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("load key %s: %w", file, err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}

// signed returns a context carrying key's signature over digest.
func signed(key *ecdsa.PrivateKey, digest common.Hash) (context.Context, error) {
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, err
	}
	return governance.WithSignature(context.Background(), sig), nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func parseID(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid proposal id %q", s)
	}
	return common.BytesToHash(b), nil
}
