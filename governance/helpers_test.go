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

package governance

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockOracle is an in-memory balance oracle
type mockOracle struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
	err      error
}

func newMockOracle() *mockOracle {
	return &mockOracle{balances: make(map[common.Address]*big.Int)}
}

func (o *mockOracle) set(addr common.Address, amount int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.balances[addr] = big.NewInt(amount)
}

func (o *mockOracle) BalanceOf(addr common.Address) (*big.Int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	if b, ok := o.balances[addr]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

// manualClock is a clock moved by the test
type manualClock struct {
	now atomic.Uint64
}

func (c *manualClock) Now() uint64    { return c.now.Load() }
func (c *manualClock) set(now uint64) { c.now.Store(now) }

// recordingExecutor counts applied actions and can be told to fail
type recordingExecutor struct {
	mu       sync.Mutex
	executed []common.Hash
	fail     error
}

func (e *recordingExecutor) Execute(_ context.Context, p *Proposal) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil {
		return e.fail
	}
	e.executed = append(e.executed, p.ID)
	return nil
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

type testEnv struct {
	db       *memorydb.Database
	registry *Registry
	engine   *Engine
	oracle   *mockOracle
	clock    *manualClock
	executor *recordingExecutor
}

// newTestEnv wires a registry and engine with quorum 100 and a 1000 second
// voting period, trusting callers attached with WithCaller.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithParams(t, &Params{VotingPeriod: 1000, Quorum: big.NewInt(100)})
}

func newTestEnvWithParams(t *testing.T, params *Params) *testEnv {
	t.Helper()
	env := &testEnv{
		db:       memorydb.New(),
		oracle:   newMockOracle(),
		clock:    new(manualClock),
		executor: new(recordingExecutor),
	}
	env.registry = NewRegistry(env.db, params, CallerAuthorizer{}, env.clock)
	env.engine = NewEngine(env.registry, env.oracle, env.executor)
	return env
}

func as(addr common.Address) context.Context {
	return WithCaller(context.Background(), addr)
}

func (env *testEnv) propose(t *testing.T, creator common.Address) common.Hash {
	t.Helper()
	id, err := env.registry.NewProposal(as(creator), creator, "test proposal", []byte("noop"))
	if err != nil {
		t.Fatalf("failed to create proposal: %v", err)
	}
	return id
}

func (env *testEnv) vote(t *testing.T, voter common.Address, id common.Hash, amount int64, inFavor bool) Tally {
	t.Helper()
	tally, err := env.engine.Vote(as(voter), voter, id, big.NewInt(amount), inFavor)
	if err != nil {
		t.Fatalf("vote by %s failed: %v", voter.Hex(), err)
	}
	return tally
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected error %v, got %v", want, err)
	}
}

func expectAmount(t *testing.T, name string, got *big.Int, want int64) {
	t.Helper()
	if got == nil || got.Cmp(big.NewInt(want)) != 0 {
		t.Errorf("%s: expected %d, got %v", name, want, got)
	}
}
