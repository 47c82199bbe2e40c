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
	"iter"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var proposalsCreatedCounter = metrics.NewRegisteredCounter("governance/proposals/created", nil)

// Registry creates and stores proposal records. Records are never deleted;
// the status field is only written by the voting engine.
type Registry struct {
	mu     sync.Mutex
	db     ethdb.KeyValueStore
	params *Params
	auth   Authorizer
	clock  Clock
	log    log.Logger
}

// NewRegistry creates a proposal registry on top of db.
func NewRegistry(db ethdb.KeyValueStore, params *Params, auth Authorizer, clock Clock) *Registry {
	return &Registry{
		db:     db,
		params: params,
		auth:   auth,
		clock:  clock,
		log:    log.New("module", "governance", "component", "registry"),
	}
}

// NewProposal stores a new Active proposal submitted by creator and returns
// its identifier.
func (r *Registry) NewProposal(ctx context.Context, creator common.Address, description string, actionData []byte) (common.Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nonce, err := readNonce(r.db, creator)
	if err != nil {
		return common.Hash{}, err
	}
	if err := r.auth.Authorize(ctx, creator, NewProposalDigest(creator, nonce, description, actionData)); err != nil {
		return common.Hash{}, err
	}
	seq, err := readProposalCounter(r.db)
	if err != nil {
		return common.Hash{}, err
	}
	now := r.clock.Now()

	proposal := &Proposal{
		Creator:        creator,
		Description:    description,
		ActionData:     common.CopyBytes(actionData),
		CreatedAt:      now,
		VotingDeadline: now + r.params.VotingPeriod,
		Status:         ProposalStatusActive,
	}
	proposal.ID = proposalID(seq, proposal)

	batch := r.db.NewBatch()
	if err := writeProposal(batch, proposal); err != nil {
		return common.Hash{}, err
	}
	if err := batch.Put(proposalIndexKey(seq), proposal.ID.Bytes()); err != nil {
		return common.Hash{}, err
	}
	if err := writeProposalCounter(batch, seq+1); err != nil {
		return common.Hash{}, err
	}
	if err := writeTally(batch, proposal.ID, NewTally()); err != nil {
		return common.Hash{}, err
	}
	if err := writeNonce(batch, creator, nonce+1); err != nil {
		return common.Hash{}, err
	}
	if err := batch.Write(); err != nil {
		return common.Hash{}, fmt.Errorf("store proposal: %w", err)
	}
	proposalsCreatedCounter.Inc(1)
	r.log.Info("Proposal created", "id", proposal.ID, "creator", creator, "deadline", proposal.VotingDeadline)

	return proposal.ID, nil
}

// proposalID derives the identifier from the registry sequence number and
// the proposal contents. The sequence number never repeats, so neither does
// the identifier.
func proposalID(seq uint64, p *Proposal) common.Hash {
	idData := make([]byte, 0, 8+common.AddressLength+8+len(p.Description)+len(p.ActionData))
	idData = append(idData, encodeUint64(seq)...)
	idData = append(idData, p.Creator.Bytes()...)
	idData = append(idData, encodeUint64(p.CreatedAt)...)
	idData = append(idData, p.Description...)
	idData = append(idData, p.ActionData...)
	return crypto.Keccak256Hash(idData)
}

// GetProposal returns a proposal
func (r *Registry) GetProposal(id common.Hash) (*Proposal, error) {
	return readProposal(r.db, id)
}

// Nonce returns the nonce the next signed governance call of addr must cover.
func (r *Registry) Nonce(addr common.Address) (uint64, error) {
	return readNonce(r.db, addr)
}

// Count returns the number of proposals ever created.
func (r *Registry) Count() (uint64, error) {
	return readProposalCounter(r.db)
}

// Proposals returns every proposal in creation order. The sequence reads the
// store lazily and may be ranged over any number of times.
func (r *Registry) Proposals() iter.Seq[*Proposal] {
	return func(yield func(*Proposal) bool) {
		it := r.db.NewIterator(proposalIndex, nil)
		defer it.Release()

		for it.Next() {
			id := common.BytesToHash(it.Value())
			proposal, err := readProposal(r.db, id)
			if err != nil {
				r.log.Error("Failed to load indexed proposal", "id", id, "err", err)
				continue
			}
			if !yield(proposal) {
				return
			}
		}
		if err := it.Error(); err != nil {
			r.log.Error("Proposal iteration failed", "err", err)
		}
	}
}

// ActiveProposals returns the proposals still open for voting. Proposals
// past their deadline are left out even though their stored status is only
// resolved on execution.
func (r *Registry) ActiveProposals() []*Proposal {
	now := r.clock.Now()
	active := make([]*Proposal, 0)
	for p := range r.Proposals() {
		if p.Status == ProposalStatusActive && now <= p.VotingDeadline {
			active = append(active, p)
		}
	}
	return active
}

// setStatus moves a proposal along the status graph inside the caller's batch.
func (r *Registry) setStatus(batch ethdb.KeyValueWriter, p *Proposal, next ProposalStatus) error {
	if !p.Status.CanTransition(next) {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, p.Status, next)
	}
	updated := p.Copy()
	updated.Status = next
	return writeProposal(batch, updated)
}
