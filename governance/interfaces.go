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

	"github.com/ethereum/go-ethereum/common"
)

// BalanceOracle answers how much voting weight an address currently holds.
// The voting engine only reads from it.
type BalanceOracle interface {
	// BalanceOf returns the current balance of addr
	BalanceOf(addr common.Address) (*big.Int, error)
}

// Authorizer checks that the current call was authenticated by principal.
// The digest identifies the call being authorized (see CallDigest).
type Authorizer interface {
	// Authorize returns ErrNotAuthorized if principal did not authenticate
	Authorize(ctx context.Context, principal common.Address, digest common.Hash) error
}

// ActionExecutor applies the effect encoded in a passed proposal.
type ActionExecutor interface {
	// Execute applies proposal.ActionData, returning an error leaves the
	// proposal in Passed status
	Execute(ctx context.Context, proposal *Proposal) error
}

// Clock is the host clock, in unix seconds.
type Clock interface {
	Now() uint64
}

// ProposalReader is the read-only view of the registry used by the voting engine.
type ProposalReader interface {
	// GetProposal returns a copy of a proposal
	GetProposal(id common.Hash) (*Proposal, error)
}

// VotingManager is the governance-facing voting API.
type VotingManager interface {
	// Vote records a weighted ballot and returns the updated tally
	Vote(ctx context.Context, voter common.Address, id common.Hash, amount *big.Int, inFavor bool) (Tally, error)

	// Tally returns the current for/against totals
	Tally(id common.Hash) (Tally, error)

	// CheckProposalStatus projects the status of a proposal at the current time
	CheckProposalStatus(id common.Hash) (ProposalStatus, error)

	// ExecuteProposal resolves a proposal and applies its action if it passed
	ExecuteProposal(ctx context.Context, caller common.Address, id common.Hash) (bool, error)
}
