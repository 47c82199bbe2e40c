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

import "math/big"

// Outcome applies the quorum and majority rule to a final tally. Quorum is
// met iff For + Against >= quorum, and the proposal passes iff quorum is met
// and For is strictly greater than Against. For a failing tally the returned
// error says why.
func Outcome(t Tally, quorum *big.Int) (ProposalStatus, error) {
	if t.Total().Cmp(quorum) < 0 {
		return ProposalStatusFailed, ErrQuorumNotMet
	}
	if t.For.Cmp(t.Against) <= 0 {
		return ProposalStatusFailed, ErrProposalNotPassed
	}
	return ProposalStatusPassed, nil
}

// Resolve projects the status of a proposal at time now without changing
// it. Settled proposals keep their recorded status; an Active proposal stays
// Active until its deadline has passed and then resolves by Outcome.
func Resolve(p *Proposal, t Tally, params *Params, now uint64) ProposalStatus {
	if p.Status != ProposalStatusActive || now <= p.VotingDeadline {
		return p.Status
	}
	status, _ := Outcome(t, params.Quorum)
	return status
}
