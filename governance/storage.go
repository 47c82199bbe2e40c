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
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	// Storage key prefixes
	proposalCounterKey = []byte("gov-counter")
	paramsKey          = []byte("gov-params")
	proposalPrefix     = []byte("gov-p") // proposalPrefix + id -> proposalData
	proposalIndex      = []byte("gov-i") // proposalIndex + seq (uint64 big endian) -> id
	ballotPrefix       = []byte("gov-b") // ballotPrefix + id + voter -> ballotData
	tallyPrefix        = []byte("gov-t") // tallyPrefix + id -> tallyData
	noncePrefix        = []byte("gov-n") // noncePrefix + address -> uint64 big endian
)

type proposalData struct {
	ID             common.Hash
	Creator        common.Address
	Description    string
	ActionData     []byte
	CreatedAt      uint64
	VotingDeadline uint64
	Status         uint8
}

type ballotData struct {
	Weight  *big.Int
	InFavor bool
	CastAt  uint64
}

type tallyData struct {
	For     *big.Int
	Against *big.Int
}

type paramsData struct {
	VotingPeriod uint64
	Quorum       *big.Int
	Admin        common.Address
}

func proposalKey(id common.Hash) []byte {
	return append(append([]byte{}, proposalPrefix...), id.Bytes()...)
}

func proposalIndexKey(seq uint64) []byte {
	return append(append([]byte{}, proposalIndex...), encodeUint64(seq)...)
}

func ballotKey(id common.Hash, voter common.Address) []byte {
	key := append(append([]byte{}, ballotPrefix...), id.Bytes()...)
	return append(key, voter.Bytes()...)
}

func tallyKey(id common.Hash) []byte {
	return append(append([]byte{}, tallyPrefix...), id.Bytes()...)
}

func nonceKey(addr common.Address) []byte {
	return append(append([]byte{}, noncePrefix...), addr.Bytes()...)
}

func encodeUint64(n uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, n)
	return enc
}

// readEncoded loads and decodes the value at key. It reports false if the key
// is absent.
func readEncoded(db ethdb.KeyValueReader, key []byte, val interface{}) (bool, error) {
	has, err := db.Has(key)
	if err != nil || !has {
		return false, err
	}
	enc, err := db.Get(key)
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(enc, val); err != nil {
		return false, fmt.Errorf("decode %x: %w", key, err)
	}
	return true, nil
}

func writeEncoded(db ethdb.KeyValueWriter, key []byte, val interface{}) error {
	enc, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return db.Put(key, enc)
}

// ReadUint64 loads a big endian counter, returning zero if key is absent.
func ReadUint64(db ethdb.KeyValueReader, key []byte) (uint64, error) {
	has, err := db.Has(key)
	if err != nil || !has {
		return 0, err
	}
	enc, err := db.Get(key)
	if err != nil {
		return 0, err
	}
	if len(enc) != 8 {
		return 0, fmt.Errorf("corrupt counter %x: %d bytes", key, len(enc))
	}
	return binary.BigEndian.Uint64(enc), nil
}

// WriteUint64 stores a big endian counter.
func WriteUint64(db ethdb.KeyValueWriter, key []byte, n uint64) error {
	return db.Put(key, encodeUint64(n))
}

// readProposalCounter returns the number of proposals ever created.
func readProposalCounter(db ethdb.KeyValueReader) (uint64, error) {
	return ReadUint64(db, proposalCounterKey)
}

func writeProposalCounter(db ethdb.KeyValueWriter, n uint64) error {
	return WriteUint64(db, proposalCounterKey, n)
}

// readNonce returns the number of governance calls addr has made. Every
// signed call covers the current nonce and bumps it when it commits, so a
// signature is good for one call only.
func readNonce(db ethdb.KeyValueReader, addr common.Address) (uint64, error) {
	return ReadUint64(db, nonceKey(addr))
}

func writeNonce(db ethdb.KeyValueWriter, addr common.Address, n uint64) error {
	return WriteUint64(db, nonceKey(addr), n)
}

func readProposal(db ethdb.KeyValueReader, id common.Hash) (*Proposal, error) {
	var data proposalData
	ok, err := readEncoded(db, proposalKey(id), &data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProposalNotFound
	}
	return &Proposal{
		ID:             data.ID,
		Creator:        data.Creator,
		Description:    data.Description,
		ActionData:     data.ActionData,
		CreatedAt:      data.CreatedAt,
		VotingDeadline: data.VotingDeadline,
		Status:         ProposalStatus(data.Status),
	}, nil
}

func writeProposal(db ethdb.KeyValueWriter, p *Proposal) error {
	return writeEncoded(db, proposalKey(p.ID), &proposalData{
		ID:             p.ID,
		Creator:        p.Creator,
		Description:    p.Description,
		ActionData:     p.ActionData,
		CreatedAt:      p.CreatedAt,
		VotingDeadline: p.VotingDeadline,
		Status:         uint8(p.Status),
	})
}

func readBallot(db ethdb.KeyValueReader, id common.Hash, voter common.Address) (*Ballot, error) {
	var data ballotData
	ok, err := readEncoded(db, ballotKey(id, voter), &data)
	if err != nil || !ok {
		return nil, err
	}
	return &Ballot{
		ProposalID: id,
		Voter:      voter,
		Weight:     data.Weight,
		InFavor:    data.InFavor,
		CastAt:     data.CastAt,
	}, nil
}

func writeBallot(db ethdb.KeyValueWriter, b *Ballot) error {
	return writeEncoded(db, ballotKey(b.ProposalID, b.Voter), &ballotData{
		Weight:  b.Weight,
		InFavor: b.InFavor,
		CastAt:  b.CastAt,
	})
}

// iterateBallots calls fn for every ballot recorded on a proposal, in voter
// address order.
func iterateBallots(db ethdb.Iteratee, id common.Hash, fn func(*Ballot) bool) error {
	prefix := append(append([]byte{}, ballotPrefix...), id.Bytes()...)
	it := db.NewIterator(prefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+common.AddressLength {
			continue
		}
		var data ballotData
		if err := rlp.DecodeBytes(it.Value(), &data); err != nil {
			return fmt.Errorf("decode ballot %x: %w", key, err)
		}
		b := &Ballot{
			ProposalID: id,
			Voter:      common.BytesToAddress(key[len(prefix):]),
			Weight:     data.Weight,
			InFavor:    data.InFavor,
			CastAt:     data.CastAt,
		}
		if !fn(b) {
			break
		}
	}
	return it.Error()
}

func readTally(db ethdb.KeyValueReader, id common.Hash) (Tally, error) {
	var data tallyData
	ok, err := readEncoded(db, tallyKey(id), &data)
	if err != nil {
		return Tally{}, err
	}
	if !ok {
		return NewTally(), nil
	}
	return Tally{For: data.For, Against: data.Against}, nil
}

func writeTally(db ethdb.KeyValueWriter, id common.Hash, t Tally) error {
	return writeEncoded(db, tallyKey(id), &tallyData{For: t.For, Against: t.Against})
}

// ReadParams loads the DAO parameters and admin stored at initialization,
// returning ErrNotInitialized if none were written.
func ReadParams(db ethdb.KeyValueReader) (*Params, common.Address, error) {
	var data paramsData
	ok, err := readEncoded(db, paramsKey, &data)
	if err != nil {
		return nil, common.Address{}, err
	}
	if !ok {
		return nil, common.Address{}, ErrNotInitialized
	}
	return &Params{VotingPeriod: data.VotingPeriod, Quorum: data.Quorum}, data.Admin, nil
}

func writeParams(db ethdb.KeyValueWriter, params *Params, admin common.Address) error {
	return writeEncoded(db, paramsKey, &paramsData{
		VotingPeriod: params.VotingPeriod,
		Quorum:       params.Quorum,
		Admin:        admin,
	})
}
