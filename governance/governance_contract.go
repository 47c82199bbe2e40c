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
	"errors"
	"fmt"
	"iter"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

// ActionMint is the proposal action that issues new tokens. Its argument is
// "<hex address>:<decimal amount>".
const ActionMint = "mint"

// TokenLedger is the token component the DAO forwards to.
type TokenLedger interface {
	BalanceOracle

	// StartInto writes the minting authority and the initial supply to w
	StartInto(w ethdb.KeyValueWriter, admin common.Address, initialSupply *big.Int) error

	// Mint credits new tokens, admin only
	Mint(ctx context.Context, admin, to common.Address, amount *big.Int) (*big.Int, error)

	// Issue credits new tokens on behalf of an executed proposal
	Issue(to common.Address, amount *big.Int) (*big.Int, error)

	// Transfer moves tokens between holders
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
}

// DAO is the dispatch facade of the governance system. After a one-time
// initialization it forwards every call to the token ledger, the proposal
// registry or the voting engine and holds no state of its own.
type DAO struct {
	mu       sync.RWMutex
	db       ethdb.KeyValueStore
	ledger   TokenLedger
	auth     Authorizer
	clock    Clock
	actions  *ActionRouter
	registry *Registry
	engine   *Engine
	log      log.Logger
}

// NewDAO creates the facade. If db already holds DAO parameters the
// components are wired immediately, otherwise Initialize must be called.
func NewDAO(db ethdb.KeyValueStore, ledger TokenLedger, auth Authorizer, clock Clock, actions *ActionRouter) (*DAO, error) {
	if actions == nil {
		actions = NewActionRouter()
	}
	dao := &DAO{
		db:      db,
		ledger:  ledger,
		auth:    auth,
		clock:   clock,
		actions: actions,
		log:     log.New("module", "governance", "component", "dao"),
	}
	actions.Register(ActionMint, dao.mintAction)

	params, _, err := ReadParams(db)
	switch {
	case errors.Is(err, ErrNotInitialized):
	case err != nil:
		return nil, err
	default:
		dao.wire(params)
	}
	return dao, nil
}

func (d *DAO) wire(params *Params) {
	d.registry = NewRegistry(d.db, params, d.auth, d.clock)
	d.engine = NewEngine(d.registry, d.ledger, d.actions)
}

// Initialize sets up the token ledger and the quorum parameters in a single
// write. It can be called once per store.
func (d *DAO) Initialize(ctx context.Context, admin common.Address, initialSupply *big.Int, votingPeriod uint64, quorum *big.Int) error {
	params := &Params{VotingPeriod: votingPeriod, Quorum: quorum}
	if err := params.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.registry != nil {
		return ErrAlreadyInitialized
	}
	nonce, err := readNonce(d.db, admin)
	if err != nil {
		return err
	}
	if err := d.auth.Authorize(ctx, admin, InitializeDigest(admin, nonce, initialSupply, votingPeriod, quorum)); err != nil {
		return err
	}
	batch := d.db.NewBatch()
	if err := d.ledger.StartInto(batch, admin, initialSupply); err != nil {
		return fmt.Errorf("start token ledger: %w", err)
	}
	if err := writeParams(batch, params, admin); err != nil {
		return err
	}
	if err := writeNonce(batch, admin, nonce+1); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("store initialization: %w", err)
	}
	d.wire(params)
	d.log.Info("DAO initialized", "admin", admin, "supply", initialSupply, "period", votingPeriod, "quorum", quorum)
	return nil
}

func (d *DAO) components() (*Registry, *Engine, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.registry == nil {
		return nil, nil, ErrNotInitialized
	}
	return d.registry, d.engine, nil
}

// Nonce returns the nonce the next signed governance call of addr must
// cover. Token calls use the ledger's own nonces.
func (d *DAO) Nonce(addr common.Address) (uint64, error) {
	return readNonce(d.db, addr)
}

// Params returns the quorum parameters.
func (d *DAO) Params() (*Params, error) {
	registry, _, err := d.components()
	if err != nil {
		return nil, err
	}
	return &Params{VotingPeriod: registry.params.VotingPeriod, Quorum: new(big.Int).Set(registry.params.Quorum)}, nil
}

// GetRegistry returns the proposal registry
func (d *DAO) GetRegistry() (*Registry, error) {
	registry, _, err := d.components()
	return registry, err
}

// GetVotingManager returns the voting engine
func (d *DAO) GetVotingManager() (*Engine, error) {
	_, engine, err := d.components()
	return engine, err
}

// CreateTokens mints governance tokens
func (d *DAO) CreateTokens(ctx context.Context, admin, to common.Address, amount *big.Int) (*big.Int, error) {
	if _, _, err := d.components(); err != nil {
		return nil, err
	}
	return d.ledger.Mint(ctx, admin, to, amount)
}

// SendTokens transfers tokens between addresses
func (d *DAO) SendTokens(ctx context.Context, from, to common.Address, amount *big.Int) (bool, error) {
	if _, _, err := d.components(); err != nil {
		return false, err
	}
	if err := d.ledger.Transfer(ctx, from, to, amount); err != nil {
		return false, err
	}
	return true, nil
}

// CheckBalance returns the token balance of an address
func (d *DAO) CheckBalance(addr common.Address) (*big.Int, error) {
	return d.ledger.BalanceOf(addr)
}

// NewProposal submits a new proposal
func (d *DAO) NewProposal(ctx context.Context, creator common.Address, description string, actionData []byte) (common.Hash, error) {
	registry, _, err := d.components()
	if err != nil {
		return common.Hash{}, err
	}
	return registry.NewProposal(ctx, creator, description, actionData)
}

// GetProposal returns a proposal
func (d *DAO) GetProposal(id common.Hash) (*Proposal, error) {
	registry, _, err := d.components()
	if err != nil {
		return nil, err
	}
	return registry.GetProposal(id)
}

// ListProposals returns all proposals in creation order
func (d *DAO) ListProposals() (iter.Seq[*Proposal], error) {
	registry, _, err := d.components()
	if err != nil {
		return nil, err
	}
	return registry.Proposals(), nil
}

// ConsultProposals returns the proposals still open for voting
func (d *DAO) ConsultProposals() ([]*Proposal, error) {
	registry, _, err := d.components()
	if err != nil {
		return nil, err
	}
	return registry.ActiveProposals(), nil
}

// IVote casts a token-weighted vote
func (d *DAO) IVote(ctx context.Context, voter common.Address, id common.Hash, amount *big.Int, inFavor bool) (bool, error) {
	_, engine, err := d.components()
	if err != nil {
		return false, err
	}
	if _, err := engine.Vote(ctx, voter, id, amount, inFavor); err != nil {
		return false, err
	}
	return true, nil
}

// CheckVoteVoices returns the for and against totals of a proposal
func (d *DAO) CheckVoteVoices(id common.Hash) (*big.Int, *big.Int, error) {
	_, engine, err := d.components()
	if err != nil {
		return nil, nil, err
	}
	tally, err := engine.Tally(id)
	if err != nil {
		return nil, nil, err
	}
	return tally.For, tally.Against, nil
}

// ExecuteProposal executes a proposal after its voting period
func (d *DAO) ExecuteProposal(ctx context.Context, caller common.Address, id common.Hash) (bool, error) {
	_, engine, err := d.components()
	if err != nil {
		return false, err
	}
	return engine.ExecuteProposal(ctx, caller, id)
}

// CheckProposalStatus returns the projected status of a proposal
func (d *DAO) CheckProposalStatus(id common.Hash) (ProposalStatus, error) {
	_, engine, err := d.components()
	if err != nil {
		return 0, err
	}
	return engine.CheckProposalStatus(id)
}

func (d *DAO) mintAction(_ context.Context, proposal *Proposal, arg []byte) error {
	to, amount, err := ParseMintArg(arg)
	if err != nil {
		return err
	}
	balance, err := d.ledger.Issue(to, amount)
	if err != nil {
		return err
	}
	d.log.Info("Minted by proposal", "id", proposal.ID, "to", to, "amount", amount, "balance", balance)
	return nil
}

// MintAction builds the action data of a proposal minting amount tokens to to.
func MintAction(to common.Address, amount *big.Int) []byte {
	return []byte(ActionMint + ":" + to.Hex() + ":" + amount.String())
}

// ParseMintArg decodes the argument of a mint action.
func ParseMintArg(arg []byte) (common.Address, *big.Int, error) {
	addr, amount, ok := strings.Cut(string(arg), ":")
	if !ok || !common.IsHexAddress(addr) {
		return common.Address{}, nil, fmt.Errorf("%w: mint argument %q", ErrMalformedAction, arg)
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return common.Address{}, nil, fmt.Errorf("%w: malformed mint amount %q", ErrInvalidAmount, amount)
	}
	if err := ValidateAmount(value); err != nil {
		return common.Address{}, nil, err
	}
	return common.HexToAddress(addr), value, nil
}
