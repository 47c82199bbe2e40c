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
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	ballotsCastCounter       = metrics.NewRegisteredCounter("governance/ballots/cast", nil)
	ballotsRejectedCounter   = metrics.NewRegisteredCounter("governance/ballots/rejected", nil)
	proposalsFailedCounter   = metrics.NewRegisteredCounter("governance/proposals/failed", nil)
	proposalsExecutedCounter = metrics.NewRegisteredCounter("governance/proposals/executed", nil)
)

// statusWriter is implemented by Registry. Only the engine moves proposals
// along the status graph.
type statusWriter interface {
	setStatus(batch ethdb.KeyValueWriter, p *Proposal, next ProposalStatus) error
}

// Engine implements VotingManager. It owns ballots and tallies, drives the
// proposal status machine and gates execution on quorum. It shares the
// registry's lock so governance nonces advance one call at a time.
type Engine struct {
	mu        *sync.Mutex
	db        ethdb.KeyValueStore
	proposals ProposalReader
	status    statusWriter
	params    *Params
	oracle    BalanceOracle
	auth      Authorizer
	actions   ActionExecutor
	clock     Clock
	log       log.Logger
}

// NewEngine creates a voting engine reading proposals from registry and
// weights from oracle. Ballots and tallies share the registry's store.
func NewEngine(registry *Registry, oracle BalanceOracle, actions ActionExecutor) *Engine {
	return &Engine{
		mu:        &registry.mu,
		db:        registry.db,
		proposals: registry,
		status:    registry,
		params:    registry.params,
		oracle:    oracle,
		auth:      registry.auth,
		actions:   actions,
		clock:     registry.clock,
		log:       log.New("module", "governance", "component", "voting"),
	}
}

// Vote records a ballot of amount weight for voter and returns the updated
// tally. The weight is copied, later balance changes do not affect it.
func (e *Engine) Vote(ctx context.Context, voter common.Address, id common.Hash, amount *big.Int, inFavor bool) (Tally, error) {
	tally, err := e.vote(ctx, voter, id, amount, inFavor)
	if err != nil {
		ballotsRejectedCounter.Inc(1)
		e.log.Debug("Ballot rejected", "id", id, "voter", voter, "err", err)
		return Tally{}, err
	}
	ballotsCastCounter.Inc(1)
	e.log.Info("Ballot cast", "id", id, "voter", voter, "weight", amount, "inFavor", inFavor,
		"for", tally.For, "against", tally.Against)
	return tally, nil
}

func (e *Engine) vote(ctx context.Context, voter common.Address, id common.Hash, amount *big.Int, inFavor bool) (Tally, error) {
	if err := ValidateAmount(amount); err != nil {
		return Tally{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	nonce, err := readNonce(e.db, voter)
	if err != nil {
		return Tally{}, err
	}
	if err := e.auth.Authorize(ctx, voter, VoteDigest(voter, nonce, id, amount, inFavor)); err != nil {
		return Tally{}, err
	}
	proposal, err := e.proposals.GetProposal(id)
	if err != nil {
		return Tally{}, err
	}
	now := e.clock.Now()
	if proposal.Status != ProposalStatusActive || now > proposal.VotingDeadline {
		return Tally{}, ErrVotingClosed
	}

	existing, err := readBallot(e.db, id, voter)
	if err != nil {
		return Tally{}, err
	}
	if existing != nil {
		return Tally{}, ErrAlreadyVoted
	}

	balance, err := e.oracle.BalanceOf(voter)
	if err != nil {
		return Tally{}, fmt.Errorf("balance of %s: %w", voter, err)
	}
	if balance == nil || amount.Cmp(balance) > 0 {
		return Tally{}, ErrInsufficientWeight
	}

	tally, err := readTally(e.db, id)
	if err != nil {
		return Tally{}, err
	}
	ballot := &Ballot{
		ProposalID: id,
		Voter:      voter,
		Weight:     new(big.Int).Set(amount),
		InFavor:    inFavor,
		CastAt:     now,
	}
	if inFavor {
		tally.For = new(big.Int).Add(tally.For, ballot.Weight)
	} else {
		tally.Against = new(big.Int).Add(tally.Against, ballot.Weight)
	}

	batch := e.db.NewBatch()
	if err := writeBallot(batch, ballot); err != nil {
		return Tally{}, err
	}
	if err := writeTally(batch, id, tally); err != nil {
		return Tally{}, err
	}
	if err := writeNonce(batch, voter, nonce+1); err != nil {
		return Tally{}, err
	}
	if err := batch.Write(); err != nil {
		return Tally{}, fmt.Errorf("store ballot: %w", err)
	}
	return tally.Copy(), nil
}

// Tally returns the for/against totals of a proposal.
func (e *Engine) Tally(id common.Hash) (Tally, error) {
	if _, err := e.proposals.GetProposal(id); err != nil {
		return Tally{}, err
	}
	return readTally(e.db, id)
}

// Ballot returns the ballot voter cast on a proposal.
func (e *Engine) Ballot(id common.Hash, voter common.Address) (*Ballot, error) {
	if _, err := e.proposals.GetProposal(id); err != nil {
		return nil, err
	}
	ballot, err := readBallot(e.db, id, voter)
	if err != nil {
		return nil, err
	}
	if ballot == nil {
		return nil, ErrBallotNotFound
	}
	return ballot, nil
}

// Ballots returns all ballots of a proposal ordered by voter address.
func (e *Engine) Ballots(id common.Hash) ([]*Ballot, error) {
	if _, err := e.proposals.GetProposal(id); err != nil {
		return nil, err
	}
	ballots := make([]*Ballot, 0)
	err := iterateBallots(e.db, id, func(b *Ballot) bool {
		ballots = append(ballots, b)
		return true
	})
	if err != nil {
		return nil, err
	}
	return ballots, nil
}

// CheckProposalStatus returns the status the proposal has, or would have if
// it were executed now. Nothing is persisted.
func (e *Engine) CheckProposalStatus(id common.Hash) (ProposalStatus, error) {
	proposal, err := e.proposals.GetProposal(id)
	if err != nil {
		return 0, err
	}
	tally, err := readTally(e.db, id)
	if err != nil {
		return 0, err
	}
	return Resolve(proposal, tally, e.params, e.clock.Now()), nil
}

// ExecuteProposal resolves a proposal whose voting period has ended and, if
// it passed, applies its action exactly once. It returns true iff the action
// was applied by this call. A failing proposal is recorded as Failed and the
// reason is returned alongside false.
func (e *Engine) ExecuteProposal(ctx context.Context, caller common.Address, id common.Hash) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	nonce, err := readNonce(e.db, caller)
	if err != nil {
		return false, err
	}
	if err := e.auth.Authorize(ctx, caller, ExecuteDigest(caller, nonce, id)); err != nil {
		return false, err
	}
	proposal, err := e.proposals.GetProposal(id)
	if err != nil {
		return false, err
	}

	switch proposal.Status {
	case ProposalStatusExecuted:
		return false, ErrProposalAlreadyExecuted
	case ProposalStatusFailed:
		return false, ErrProposalNotPassed
	case ProposalStatusActive:
		if e.clock.Now() <= proposal.VotingDeadline {
			return false, ErrVotingOpen
		}
	}

	batch := e.db.NewBatch()
	if err := writeNonce(batch, caller, nonce+1); err != nil {
		return false, err
	}
	if proposal.Status == ProposalStatusActive {
		tally, err := readTally(e.db, id)
		if err != nil {
			return false, err
		}
		status, reason := Outcome(tally, e.params.Quorum)
		if err := e.status.setStatus(batch, proposal, status); err != nil {
			return false, err
		}
		if status == ProposalStatusFailed {
			if err := batch.Write(); err != nil {
				return false, fmt.Errorf("store status: %w", err)
			}
			proposalsFailedCounter.Inc(1)
			e.log.Info("Proposal failed", "id", id, "for", tally.For, "against", tally.Against,
				"quorum", e.params.Quorum, "reason", reason)
			return false, reason
		}
		proposal.Status = status
		e.log.Info("Proposal passed", "id", id, "for", tally.For, "against", tally.Against)
	}

	// Executed is committed before the action runs, so a crash or a failed
	// status write can never apply the action twice.
	passed := proposal.Copy()
	if err := e.status.setStatus(batch, proposal, ProposalStatusExecuted); err != nil {
		return false, err
	}
	if err := batch.Write(); err != nil {
		return false, fmt.Errorf("store status: %w", err)
	}
	if err := e.actions.Execute(ctx, passed.Copy()); err != nil {
		// Back to Passed so the execution can be retried.
		if werr := writeProposal(e.db, passed); werr != nil {
			e.log.Error("Failed to restore passed proposal", "id", id, "err", werr)
		}
		e.log.Warn("Proposal action failed", "id", id, "err", err)
		return false, fmt.Errorf("execute action: %w", err)
	}
	proposalsExecutedCounter.Inc(1)
	e.log.Info("Proposal executed", "id", id, "caller", caller)

	return true, nil
}
