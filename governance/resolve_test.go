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
	"testing"
)

func tally(forVotes, against int64) Tally {
	return Tally{For: big.NewInt(forVotes), Against: big.NewInt(against)}
}

func TestOutcome(t *testing.T) {
	quorum := big.NewInt(100)
	tests := []struct {
		name   string
		tally  Tally
		status ProposalStatus
		reason error
	}{
		{"no ballots", tally(0, 0), ProposalStatusFailed, ErrQuorumNotMet},
		{"below quorum", tally(30, 50), ProposalStatusFailed, ErrQuorumNotMet},
		{"below quorum unanimous", tally(99, 0), ProposalStatusFailed, ErrQuorumNotMet},
		{"exact quorum", tally(100, 0), ProposalStatusPassed, nil},
		{"majority", tally(60, 50), ProposalStatusPassed, nil},
		{"tie", tally(50, 50), ProposalStatusFailed, ErrProposalNotPassed},
		{"majority against", tally(40, 70), ProposalStatusFailed, ErrProposalNotPassed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason := Outcome(tt.tally, quorum)
			if status != tt.status || reason != tt.reason {
				t.Errorf("expected (%v, %v), got (%v, %v)", tt.status, tt.reason, status, reason)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	params := &Params{VotingPeriod: 1000, Quorum: big.NewInt(100)}
	active := &Proposal{CreatedAt: 0, VotingDeadline: 1000, Status: ProposalStatusActive}

	tests := []struct {
		name     string
		proposal *Proposal
		tally    Tally
		now      uint64
		want     ProposalStatus
	}{
		{"open", active, tally(200, 0), 500, ProposalStatusActive},
		{"at deadline", active, tally(200, 0), 1000, ProposalStatusActive},
		{"after deadline passing", active, tally(200, 0), 1001, ProposalStatusPassed},
		{"after deadline failing", active, tally(10, 0), 1001, ProposalStatusFailed},
		{"executed stays", &Proposal{VotingDeadline: 1000, Status: ProposalStatusExecuted}, tally(0, 0), 5000, ProposalStatusExecuted},
		{"failed stays", &Proposal{VotingDeadline: 1000, Status: ProposalStatusFailed}, tally(500, 0), 5000, ProposalStatusFailed},
		{"passed stays", &Proposal{VotingDeadline: 1000, Status: ProposalStatusPassed}, tally(0, 0), 5000, ProposalStatusPassed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.proposal, tt.tally, params, tt.now); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestProposalStatus_CanTransition(t *testing.T) {
	all := []ProposalStatus{ProposalStatusActive, ProposalStatusPassed, ProposalStatusFailed, ProposalStatusExecuted}
	allowed := map[[2]ProposalStatus]bool{
		{ProposalStatusActive, ProposalStatusPassed}:   true,
		{ProposalStatusActive, ProposalStatusFailed}:   true,
		{ProposalStatusPassed, ProposalStatusExecuted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			if got := from.CanTransition(to); got != allowed[[2]ProposalStatus{from, to}] {
				t.Errorf("%v -> %v: expected %v, got %v", from, to, !got, got)
			}
		}
	}
}
