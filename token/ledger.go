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

// Package token implements the governance token ledger. It is the balance
// oracle consulted by the voting engine.
package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/mccoysc/daogov/governance"
)

// Ledger errors
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyStarted      = errors.New("token ledger already started")
	ErrNotStarted          = errors.New("token ledger not started")
	ErrSupplyOverflow      = errors.New("total supply overflow")
)

var (
	adminKey      = []byte("tok-admin")
	supplyKey     = []byte("tok-supply")
	balancePrefix = []byte("tok-b") // balancePrefix + address -> 32 byte balance
	noncePrefix   = []byte("tok-n") // noncePrefix + address -> uint64 big endian
)

// Ledger keeps token balances in a key-value store. Balances are 256-bit
// words but every amount entering the ledger is bounded by
// governance.MaxAmount.
type Ledger struct {
	mu   sync.RWMutex
	db   ethdb.KeyValueStore
	auth governance.Authorizer
	log  log.Logger
}

// NewLedger creates a ledger on top of db.
func NewLedger(db ethdb.KeyValueStore, auth governance.Authorizer) *Ledger {
	return &Ledger{
		db:   db,
		auth: auth,
		log:  log.New("module", "token"),
	}
}

// Start records admin as the minting authority and credits it with the
// initial supply. A ledger can only be started once. The caller is
// responsible for authenticating admin.
func (l *Ledger) Start(admin common.Address, initialSupply *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.db.NewBatch()
	if err := l.start(batch, admin, initialSupply); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("start ledger: %w", err)
	}
	l.log.Info("Token ledger started", "admin", admin, "supply", initialSupply)
	return nil
}

// StartInto is Start with the initial records written to w instead of being
// committed, so they land together with the caller's own writes.
func (l *Ledger) StartInto(w ethdb.KeyValueWriter, admin common.Address, initialSupply *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.start(w, admin, initialSupply)
}

func (l *Ledger) start(w ethdb.KeyValueWriter, admin common.Address, initialSupply *big.Int) error {
	if initialSupply == nil || initialSupply.Sign() < 0 || initialSupply.Cmp(governance.MaxAmount) > 0 {
		return governance.ErrInvalidAmount
	}
	has, err := l.db.Has(adminKey)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadyStarted
	}
	supply, _ := uint256.FromBig(initialSupply)

	if err := w.Put(adminKey, admin.Bytes()); err != nil {
		return err
	}
	if err := putWord(w, supplyKey, supply); err != nil {
		return err
	}
	return putWord(w, balanceKey(admin), supply)
}

// Nonce returns the nonce the next signed Mint or Transfer of addr must cover.
func (l *Ledger) Nonce(addr common.Address) (uint64, error) {
	return governance.ReadUint64(l.db, nonceKey(addr))
}

// Admin returns the minting authority.
func (l *Ledger) Admin() (common.Address, error) {
	has, err := l.db.Has(adminKey)
	if err != nil {
		return common.Address{}, err
	}
	if !has {
		return common.Address{}, ErrNotStarted
	}
	enc, err := l.db.Get(adminKey)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(enc), nil
}

// Mint credits amount new tokens to to and returns the new balance of to.
// Only the admin may mint.
func (l *Ledger) Mint(ctx context.Context, admin, to common.Address, amount *big.Int) (*big.Int, error) {
	if err := governance.ValidateAmount(amount); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	nonce, err := governance.ReadUint64(l.db, nonceKey(admin))
	if err != nil {
		return nil, err
	}
	if err := l.auth.Authorize(ctx, admin, governance.MintDigest(admin, nonce, to, amount)); err != nil {
		return nil, err
	}
	return l.mint(admin, to, amount, func(batch ethdb.KeyValueWriter) error {
		return governance.WriteUint64(batch, nonceKey(admin), nonce+1)
	})
}

// Issue credits tokens without a signature. It backs the "mint" proposal
// action, which has already cleared a vote.
func (l *Ledger) Issue(to common.Address, amount *big.Int) (*big.Int, error) {
	if err := governance.ValidateAmount(amount); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	admin, err := l.Admin()
	if err != nil {
		return nil, err
	}
	return l.mint(admin, to, amount, nil)
}

// mint credits the tokens under the held lock. extra adds writes to the same
// batch.
func (l *Ledger) mint(admin, to common.Address, amount *big.Int, extra func(ethdb.KeyValueWriter) error) (*big.Int, error) {
	current, err := l.Admin()
	if err != nil {
		return nil, err
	}
	if current != admin {
		return nil, governance.ErrNotAuthorized
	}
	value, _ := uint256.FromBig(amount)

	supply, err := getWord(l.db, supplyKey)
	if err != nil {
		return nil, err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, value)
	if overflow {
		return nil, ErrSupplyOverflow
	}
	balance, err := getWord(l.db, balanceKey(to))
	if err != nil {
		return nil, err
	}
	balance = new(uint256.Int).Add(balance, value)

	batch := l.db.NewBatch()
	if err := putWord(batch, supplyKey, newSupply); err != nil {
		return nil, err
	}
	if err := putWord(batch, balanceKey(to), balance); err != nil {
		return nil, err
	}
	if extra != nil {
		if err := extra(batch); err != nil {
			return nil, err
		}
	}
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	l.log.Info("Tokens minted", "to", to, "amount", value, "supply", newSupply)
	return balance.ToBig(), nil
}

// Transfer moves amount tokens from from to to.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if err := governance.ValidateAmount(amount); err != nil {
		return err
	}
	value, _ := uint256.FromBig(amount)

	l.mu.Lock()
	defer l.mu.Unlock()

	nonce, err := governance.ReadUint64(l.db, nonceKey(from))
	if err != nil {
		return err
	}
	if err := l.auth.Authorize(ctx, from, governance.TransferDigest(from, nonce, to, amount)); err != nil {
		return err
	}
	fromBal, err := getWord(l.db, balanceKey(from))
	if err != nil {
		return err
	}
	if fromBal.Lt(value) {
		return ErrInsufficientBalance
	}

	batch := l.db.NewBatch()
	if err := governance.WriteUint64(batch, nonceKey(from), nonce+1); err != nil {
		return err
	}
	if from != to {
		toBal, err := getWord(l.db, balanceKey(to))
		if err != nil {
			return err
		}
		if err := putWord(batch, balanceKey(from), new(uint256.Int).Sub(fromBal, value)); err != nil {
			return err
		}
		if err := putWord(batch, balanceKey(to), new(uint256.Int).Add(toBal, value)); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	l.log.Debug("Tokens transferred", "from", from, "to", to, "amount", value)
	return nil
}

// BalanceOf implements governance.BalanceOracle.
func (l *Ledger) BalanceOf(addr common.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balance, err := getWord(l.db, balanceKey(addr))
	if err != nil {
		return nil, err
	}
	return balance.ToBig(), nil
}

// TotalSupply returns the number of tokens in existence.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	supply, err := getWord(l.db, supplyKey)
	if err != nil {
		return nil, err
	}
	return supply.ToBig(), nil
}

func nonceKey(addr common.Address) []byte {
	return append(append([]byte{}, noncePrefix...), addr.Bytes()...)
}

func balanceKey(addr common.Address) []byte {
	return append(append([]byte{}, balancePrefix...), addr.Bytes()...)
}

func getWord(db ethdb.KeyValueReader, key []byte) (*uint256.Int, error) {
	has, err := db.Has(key)
	if err != nil {
		return nil, err
	}
	if !has {
		return new(uint256.Int), nil
	}
	enc, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(enc), nil
}

func putWord(db ethdb.KeyValueWriter, key []byte, val *uint256.Int) error {
	word := val.Bytes32()
	return db.Put(key, word[:])
}
