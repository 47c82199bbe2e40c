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
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

// Tallies are unbounded, so several maximal ballots never wrap around.
func TestVote_MaxWeightsDoNotOverflow(t *testing.T) {
	env := newTestEnv(t)
	voters := []common.Address{voterX, voterY, creator}
	for _, v := range voters {
		env.oracle.balances[v] = new(big.Int).Set(MaxAmount)
	}
	id := env.propose(t, creator)

	var tally Tally
	for _, v := range voters {
		var err error
		tally, err = env.engine.Vote(as(v), v, id, MaxAmount, true)
		if err != nil {
			t.Fatalf("vote failed: %v", err)
		}
	}
	want := new(big.Int).Mul(MaxAmount, big.NewInt(3))
	if tally.For.Cmp(want) != 0 {
		t.Errorf("expected %v, got %v", want, tally.For)
	}
	stored, err := env.engine.Tally(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.For.Cmp(want) != 0 {
		t.Errorf("stored tally: expected %v, got %v", want, stored.For)
	}
}

func TestVote_OnResolvedProposals(t *testing.T) {
	env := newTestEnv(t)
	env.oracle.set(voterX, 500)
	env.oracle.set(voterY, 500)

	failed := env.propose(t, creator)
	passed := env.propose(t, creator)
	env.vote(t, voterX, passed, 200, true)

	env.clock.set(1001)
	env.engine.ExecuteProposal(as(creator), creator, failed)
	if ok, err := env.engine.ExecuteProposal(as(creator), creator, passed); !ok || err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	// Even with the clock moved back into the window, resolved proposals
	// accept no more ballots.
	env.clock.set(10)
	for _, id := range []common.Hash{failed, passed} {
		_, err := env.engine.Vote(as(voterY), voterY, id, big.NewInt(1), true)
		expectErr(t, err, ErrVotingClosed)
	}
}

func TestExecute_ProposalNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.ExecuteProposal(as(creator), creator, common.HexToHash("0xdead"))
	expectErr(t, err, ErrProposalNotFound)
}

func TestCheckStatus_ProposalNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.CheckProposalStatus(common.HexToHash("0xdead"))
	expectErr(t, err, ErrProposalNotFound)
	_, err = env.engine.Tally(common.HexToHash("0xdead"))
	expectErr(t, err, ErrProposalNotFound)
}

func TestBallot_Lookup(t *testing.T) {
	env := newTestEnv(t)
	env.oracle.set(voterX, 50)
	env.oracle.set(voterY, 50)
	id := env.propose(t, creator)

	_, err := env.engine.Ballot(id, voterX)
	expectErr(t, err, ErrBallotNotFound)

	env.clock.set(7)
	env.vote(t, voterY, id, 20, false)
	env.vote(t, voterX, id, 10, true)

	b, err := env.engine.Ballot(id, voterX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.InFavor || b.Weight.Int64() != 10 || b.CastAt != 7 {
		t.Errorf("unexpected ballot %+v", b)
	}

	ballots, err := env.engine.Ballots(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ballots) != 2 || ballots[0].Voter != voterX || ballots[1].Voter != voterY {
		t.Errorf("expected ballots ordered by voter, got %+v", ballots)
	}
}

// Ballots of one proposal never leak into the listing of another whose id
// shares a prefix in the key space.
func TestBallots_IsolatedPerProposal(t *testing.T) {
	env := newTestEnv(t)
	env.oracle.set(voterX, 50)
	first := env.propose(t, creator)
	second := env.propose(t, creator)
	env.vote(t, voterX, first, 10, true)

	ballots, err := env.engine.Ballots(second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ballots) != 0 {
		t.Errorf("expected no ballots, got %d", len(ballots))
	}
}

func TestReadParams(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := ReadParams(env.db); err != ErrNotInitialized {
		t.Fatalf("expected %v, got %v", ErrNotInitialized, err)
	}
	admin := common.HexToAddress("0xad")
	if err := writeParams(env.db, &Params{VotingPeriod: 7, Quorum: big.NewInt(3)}, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params, got, err := ReadParams(env.db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.VotingPeriod != 7 || params.Quorum.Int64() != 3 || got != admin {
		t.Errorf("unexpected params %+v admin %s", params, got.Hex())
	}
}

type executorFunc func(ctx context.Context, p *Proposal) error

func (f executorFunc) Execute(ctx context.Context, p *Proposal) error { return f(ctx, p) }

// The Executed status is on disk before the action runs, so the action can
// never be applied a second time.
func TestExecute_StatusCommittedBeforeAction(t *testing.T) {
	env := newTestEnv(t)
	env.oracle.set(voterX, 500)

	var seen []ProposalStatus
	env.engine = NewEngine(env.registry, env.oracle, executorFunc(func(_ context.Context, p *Proposal) error {
		stored, err := env.registry.GetProposal(p.ID)
		if err != nil {
			return err
		}
		seen = append(seen, stored.Status)
		if p.Status != ProposalStatusPassed {
			t.Errorf("action got status %v, want %v", p.Status, ProposalStatusPassed)
		}
		return nil
	}))

	id := env.propose(t, creator)
	env.vote(t, voterX, id, 200, true)
	env.clock.set(1001)

	if ok, err := env.engine.ExecuteProposal(as(creator), creator, id); !ok || err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if len(seen) != 1 || seen[0] != ProposalStatusExecuted {
		t.Errorf("expected the action to observe %v, got %v", ProposalStatusExecuted, seen)
	}
	if _, err := env.engine.ExecuteProposal(as(creator), creator, id); err != ErrProposalAlreadyExecuted {
		t.Errorf("expected %v, got %v", ErrProposalAlreadyExecuted, err)
	}
	if len(seen) != 1 {
		t.Errorf("action applied %d times", len(seen))
	}
}
