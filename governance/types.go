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
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MaxAmount is the largest voting weight or token amount accepted by the
// governance API (the positive range of a signed 128-bit integer).
var MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

// ProposalStatus represents the status of a proposal
type ProposalStatus uint8

const (
	ProposalStatusActive   ProposalStatus = 0x00 // accepting ballots
	ProposalStatusPassed   ProposalStatus = 0x01 // quorum and majority reached, action pending
	ProposalStatusFailed   ProposalStatus = 0x02 // terminal
	ProposalStatusExecuted ProposalStatus = 0x03 // terminal, action applied
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusActive:
		return "Active"
	case ProposalStatusPassed:
		return "Passed"
	case ProposalStatusFailed:
		return "Failed"
	case ProposalStatusExecuted:
		return "Executed"
	default:
		return "Unknown"
	}
}

// CanTransition reports whether the status graph allows moving from s to next.
// Active -> {Passed, Failed} -> Executed, where only Passed reaches Executed.
func (s ProposalStatus) CanTransition(next ProposalStatus) bool {
	switch s {
	case ProposalStatusActive:
		return next == ProposalStatusPassed || next == ProposalStatusFailed
	case ProposalStatusPassed:
		return next == ProposalStatusExecuted
	default:
		return false
	}
}

// Proposal represents a governance proposal
type Proposal struct {
	ID             common.Hash    // proposal ID
	Creator        common.Address // submitter
	Description    string         // human readable intent
	ActionData     []byte         // effect applied on execution
	CreatedAt      uint64         // creation time (unix seconds)
	VotingDeadline uint64         // last second ballots are accepted
	Status         ProposalStatus // lifecycle status
}

// Copy returns a deep copy of the proposal.
func (p *Proposal) Copy() *Proposal {
	cpy := *p
	cpy.ActionData = common.CopyBytes(p.ActionData)
	return &cpy
}

// Ballot is a single voter's weighted choice on one proposal. The weight is
// the amount committed at cast time and never follows later balance changes.
type Ballot struct {
	ProposalID common.Hash
	Voter      common.Address
	Weight     *big.Int
	InFavor    bool
	CastAt     uint64
}

// Copy returns a deep copy of the ballot.
func (b *Ballot) Copy() *Ballot {
	cpy := *b
	cpy.Weight = new(big.Int).Set(b.Weight)
	return &cpy
}

// Tally holds the cumulative weighted votes of a proposal.
type Tally struct {
	For     *big.Int
	Against *big.Int
}

// NewTally returns an empty tally.
func NewTally() Tally {
	return Tally{For: new(big.Int), Against: new(big.Int)}
}

// Total returns the weighted participation, For + Against.
func (t Tally) Total() *big.Int {
	return new(big.Int).Add(t.For, t.Against)
}

// Copy returns a tally that shares no memory with t.
func (t Tally) Copy() Tally {
	return Tally{For: new(big.Int).Set(t.For), Against: new(big.Int).Set(t.Against)}
}

// Params holds the DAO-wide quorum parameters, fixed at initialization.
type Params struct {
	VotingPeriod uint64   // seconds added to creation time to get the deadline
	Quorum       *big.Int // minimum For + Against for a proposal to pass
}

// DefaultParams returns the default quorum parameters
func DefaultParams() *Params {
	return &Params{
		VotingPeriod: 7 * 24 * 3600, // 7 days
		Quorum:       big.NewInt(100),
	}
}

// Validate checks that the parameters are usable.
func (p *Params) Validate() error {
	if p.VotingPeriod == 0 {
		return ErrInvalidVotingPeriod
	}
	if p.Quorum == nil || p.Quorum.Sign() < 0 || p.Quorum.Cmp(MaxAmount) > 0 {
		return ErrInvalidQuorum
	}
	return nil
}

// ValidateAmount rejects nil, non-positive and out of range amounts.
func ValidateAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 || amount.Cmp(MaxAmount) > 0 {
		return ErrInvalidAmount
	}
	return nil
}
