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

import "errors"

// Proposal errors
var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrInvalidTransition = errors.New("invalid proposal status transition")
	ErrNotAuthorized     = errors.New("caller is not authorized")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// Voting errors
var (
	ErrAlreadyVoted            = errors.New("voter has already voted on this proposal")
	ErrInsufficientWeight      = errors.New("vote amount exceeds voter balance")
	ErrInvalidAmount           = errors.New("amount must be positive and fit in 127 bits")
	ErrVotingClosed            = errors.New("voting is closed for this proposal")
	ErrVotingOpen              = errors.New("voting period has not ended")
	ErrQuorumNotMet            = errors.New("quorum not met")
	ErrProposalNotPassed       = errors.New("proposal has not passed")
	ErrProposalAlreadyExecuted = errors.New("proposal already executed")
	ErrUnknownAction           = errors.New("unknown proposal action")
	ErrBallotNotFound          = errors.New("ballot not found")
	ErrMalformedAction         = errors.New("malformed proposal action")
)

// Configuration errors
var (
	ErrInvalidVotingPeriod = errors.New("voting period must be positive")
	ErrInvalidQuorum       = errors.New("quorum must be non-negative and fit in 127 bits")
	ErrAlreadyInitialized  = errors.New("dao already initialized")
	ErrNotInitialized      = errors.New("dao not initialized")
)
