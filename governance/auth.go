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
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Call method names bound into the authorization digest.
const (
	MethodNewProposal = "new_proposal"
	MethodVote        = "i_vote"
	MethodExecute     = "execute_proposal"
	MethodInitialize  = "initialize"
	MethodMint        = "create_tokens"
	MethodTransfer    = "send_tokens"
)

type ctxKey int

const (
	callerKey ctxKey = iota
	signatureKey
)

// WithCaller attaches the address the host already authenticated.
func WithCaller(ctx context.Context, caller common.Address) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the host-authenticated caller, if any.
func CallerFromContext(ctx context.Context) (common.Address, bool) {
	caller, ok := ctx.Value(callerKey).(common.Address)
	return caller, ok
}

// WithSignature attaches a secp256k1 signature over the call digest.
func WithSignature(ctx context.Context, sig []byte) context.Context {
	return context.WithValue(ctx, signatureKey, common.CopyBytes(sig))
}

// CallDigest hashes a method name and its arguments. Each argument is length
// prefixed so distinct argument lists never share a digest.
func CallDigest(method string, args ...[]byte) common.Hash {
	data := make([]byte, 0, 64)
	data = append(data, encodeUint64(uint64(len(method)))...)
	data = append(data, method...)
	for _, arg := range args {
		data = append(data, encodeUint64(uint64(len(arg)))...)
		data = append(data, arg...)
	}
	return crypto.Keccak256Hash(data)
}

// AmountBytes encodes an amount for use in CallDigest.
func AmountBytes(amount *big.Int) []byte {
	if amount == nil {
		return nil
	}
	sign := byte(0)
	if amount.Sign() < 0 {
		sign = 1
	}
	return append([]byte{sign}, amount.Bytes()...)
}

// BoolBytes encodes a flag for use in CallDigest.
func BoolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// NewProposalDigest is the digest a creator signs to submit a proposal.
func NewProposalDigest(creator common.Address, nonce uint64, description string, actionData []byte) common.Hash {
	return CallDigest(MethodNewProposal, creator.Bytes(), encodeUint64(nonce), []byte(description), actionData)
}

// VoteDigest is the digest a voter signs to cast a ballot.
func VoteDigest(voter common.Address, nonce uint64, id common.Hash, amount *big.Int, inFavor bool) common.Hash {
	return CallDigest(MethodVote, voter.Bytes(), encodeUint64(nonce), id.Bytes(), AmountBytes(amount), BoolBytes(inFavor))
}

// ExecuteDigest is the digest a caller signs to execute a proposal.
func ExecuteDigest(caller common.Address, nonce uint64, id common.Hash) common.Hash {
	return CallDigest(MethodExecute, caller.Bytes(), encodeUint64(nonce), id.Bytes())
}

// InitializeDigest is the digest the admin signs to initialize the DAO.
func InitializeDigest(admin common.Address, nonce uint64, initialSupply *big.Int, votingPeriod uint64, quorum *big.Int) common.Hash {
	return CallDigest(MethodInitialize, admin.Bytes(), encodeUint64(nonce), AmountBytes(initialSupply), encodeUint64(votingPeriod), AmountBytes(quorum))
}

// MintDigest is the digest the admin signs to mint tokens. The nonce is the
// admin's token ledger nonce.
func MintDigest(admin common.Address, nonce uint64, to common.Address, amount *big.Int) common.Hash {
	return CallDigest(MethodMint, admin.Bytes(), encodeUint64(nonce), to.Bytes(), AmountBytes(amount))
}

// TransferDigest is the digest a holder signs to transfer tokens. The nonce
// is the holder's token ledger nonce.
func TransferDigest(from common.Address, nonce uint64, to common.Address, amount *big.Int) common.Hash {
	return CallDigest(MethodTransfer, from.Bytes(), encodeUint64(nonce), to.Bytes(), AmountBytes(amount))
}

// CallerAuthorizer trusts the caller attached with WithCaller. It is meant for
// hosts that authenticate callers before dispatching.
type CallerAuthorizer struct{}

// Authorize implements Authorizer.
func (CallerAuthorizer) Authorize(ctx context.Context, principal common.Address, _ common.Hash) error {
	caller, ok := CallerFromContext(ctx)
	if !ok || caller != principal {
		return ErrNotAuthorized
	}
	return nil
}

// SignatureAuthorizer requires a signature over the call digest recovering to
// the principal.
type SignatureAuthorizer struct{}

// Authorize implements Authorizer.
func (SignatureAuthorizer) Authorize(ctx context.Context, principal common.Address, digest common.Hash) error {
	sig, ok := ctx.Value(signatureKey).([]byte)
	if !ok || len(sig) != crypto.SignatureLength {
		return ErrNotAuthorized
	}
	pubkey, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotAuthorized, ErrInvalidSignature)
	}
	if crypto.PubkeyToAddress(*pubkey) != principal {
		return ErrNotAuthorized
	}
	return nil
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}
