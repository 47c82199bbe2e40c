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

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mccoysc/daogov/governance"
	"github.com/mccoysc/daogov/internal/config"
	"github.com/urfave/cli/v2"
)

var (
	initCommand = &cli.Command{
		Name:   "init",
		Usage:  "Initialize the DAO: token ledger, voting period and quorum",
		Flags:  []cli.Flag{keyFlag, supplyFlag, votingPeriodFlag, quorumFlag},
		Action: initDAO,
	}
	mintCommand = &cli.Command{
		Name:   "mint",
		Usage:  "Create new governance tokens (admin only)",
		Flags:  []cli.Flag{keyFlag, toFlag, amountFlag},
		Action: mintTokens,
	}
	transferCommand = &cli.Command{
		Name:   "transfer",
		Usage:  "Send tokens to another address",
		Flags:  []cli.Flag{keyFlag, toFlag, amountFlag},
		Action: transferTokens,
	}
	balanceCommand = &cli.Command{
		Name:      "balance",
		Usage:     "Show the token balance of an address",
		ArgsUsage: "<address>",
		Action:    showBalance,
	}
	proposeCommand = &cli.Command{
		Name:   "propose",
		Usage:  "Submit a new proposal",
		Flags:  []cli.Flag{keyFlag, descriptionFlag, actionFlag},
		Action: propose,
	}
	proposalCommand = &cli.Command{
		Name:      "proposal",
		Usage:     "Show a proposal and its ballots",
		ArgsUsage: "<id>",
		Action:    showProposal,
	}
	proposalsCommand = &cli.Command{
		Name:   "proposals",
		Usage:  "List proposals in creation order",
		Flags:  []cli.Flag{statusFilterFlag},
		Action: listProposals,
	}
	voteCommand = &cli.Command{
		Name:   "vote",
		Usage:  "Cast a token-weighted vote",
		Flags:  []cli.Flag{keyFlag, idFlag, amountFlag, againstFlag},
		Action: vote,
	}
	tallyCommand = &cli.Command{
		Name:      "tally",
		Usage:     "Show the for and against totals of a proposal",
		ArgsUsage: "<id>",
		Action:    showTally,
	}
	statusCommand = &cli.Command{
		Name:      "status",
		Usage:     "Show the projected status of a proposal",
		ArgsUsage: "<id>",
		Action:    showStatus,
	}
	executeCommand = &cli.Command{
		Name:   "execute",
		Usage:  "Execute a proposal whose voting period has ended",
		Flags:  []cli.Flag{keyFlag, idFlag},
		Action: execute,
	}
	dumpConfigCommand = &cli.Command{
		Name:  "dumpconfig",
		Usage: "Print the effective configuration as TOML",
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			return config.Dump(ctx.App.Writer, cfg)
		},
	}
)

func initDAO(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	key, admin, err := loadKey(ctx)
	if err != nil {
		return err
	}
	params, err := n.cfg.Governance.Params()
	if err != nil {
		return err
	}
	supply, err := n.cfg.Governance.Supply()
	if err != nil {
		return err
	}
	nonce, err := n.dao.Nonce(admin)
	if err != nil {
		return err
	}
	sctx, err := signed(key, governance.InitializeDigest(admin, nonce, supply, params.VotingPeriod, params.Quorum))
	if err != nil {
		return err
	}
	if err := n.dao.Initialize(sctx, admin, supply, params.VotingPeriod, params.Quorum); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "DAO initialized\n  admin:         %s\n  supply:        %s\n  voting period: %ds\n  quorum:        %s\n",
		admin.Hex(), supply, params.VotingPeriod, params.Quorum)
	return nil
}

func mintTokens(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	key, admin, err := loadKey(ctx)
	if err != nil {
		return err
	}
	to, err := parseAddress(ctx.String(toFlag.Name))
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	nonce, err := n.ledger.Nonce(admin)
	if err != nil {
		return err
	}
	sctx, err := signed(key, governance.MintDigest(admin, nonce, to, amount))
	if err != nil {
		return err
	}
	balance, err := n.dao.CreateTokens(sctx, admin, to, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Minted %s to %s, balance %s\n", amount, to.Hex(), balance)
	return nil
}

func transferTokens(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	key, from, err := loadKey(ctx)
	if err != nil {
		return err
	}
	to, err := parseAddress(ctx.String(toFlag.Name))
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	nonce, err := n.ledger.Nonce(from)
	if err != nil {
		return err
	}
	sctx, err := signed(key, governance.TransferDigest(from, nonce, to, amount))
	if err != nil {
		return err
	}
	if _, err := n.dao.SendTokens(sctx, from, to, amount); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Sent %s from %s to %s\n", amount, from.Hex(), to.Hex())
	return nil
}

func showBalance(ctx *cli.Context) error {
	addr, err := parseAddress(ctx.Args().First())
	if err != nil {
		return err
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	balance, err := n.dao.CheckBalance(addr)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, balance)
	return nil
}

func propose(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	key, creator, err := loadKey(ctx)
	if err != nil {
		return err
	}
	description := ctx.String(descriptionFlag.Name)
	action := []byte(ctx.String(actionFlag.Name))
	nonce, err := n.dao.Nonce(creator)
	if err != nil {
		return err
	}
	sctx, err := signed(key, governance.NewProposalDigest(creator, nonce, description, action))
	if err != nil {
		return err
	}
	id, err := n.dao.NewProposal(sctx, creator, description, action)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, id.Hex())
	return nil
}

func showProposal(ctx *cli.Context) error {
	id, err := parseID(ctx.Args().First())
	if err != nil {
		return err
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	proposal, err := n.dao.GetProposal(id)
	if err != nil {
		return err
	}
	status, err := n.dao.CheckProposalStatus(id)
	if err != nil {
		return err
	}
	engine, err := n.dao.GetVotingManager()
	if err != nil {
		return err
	}
	ballots, err := engine.Ballots(id)
	if err != nil {
		return err
	}
	tally, err := engine.Tally(id)
	if err != nil {
		return err
	}
	printProposal(ctx.App.Writer, proposal, status, tally, ballots)
	return nil
}

func listProposals(ctx *cli.Context) error {
	var filter *governance.ProposalStatus
	if name := ctx.String(statusFilterFlag.Name); name != "" {
		status, err := parseStatus(name)
		if err != nil {
			return err
		}
		filter = &status
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	proposals, err := n.dao.ListProposals()
	if err != nil {
		return err
	}
	var rows []proposalRow
	for p := range proposals {
		status, err := n.dao.CheckProposalStatus(p.ID)
		if err != nil {
			return err
		}
		if filter != nil && status != *filter {
			continue
		}
		forVotes, against, err := n.dao.CheckVoteVoices(p.ID)
		if err != nil {
			return err
		}
		rows = append(rows, proposalRow{proposal: p, status: status, forVotes: forVotes, against: against})
	}
	printProposalTable(ctx.App.Writer, rows)
	return nil
}

func vote(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	key, voter, err := loadKey(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(ctx.String(idFlag.Name))
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	inFavor := !ctx.Bool(againstFlag.Name)
	nonce, err := n.dao.Nonce(voter)
	if err != nil {
		return err
	}
	sctx, err := signed(key, governance.VoteDigest(voter, nonce, id, amount, inFavor))
	if err != nil {
		return err
	}
	if _, err := n.dao.IVote(sctx, voter, id, amount, inFavor); err != nil {
		return err
	}
	forVotes, against, err := n.dao.CheckVoteVoices(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Vote recorded, for %s against %s\n", forVotes, against)
	return nil
}

func showTally(ctx *cli.Context) error {
	id, err := parseID(ctx.Args().First())
	if err != nil {
		return err
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	forVotes, against, err := n.dao.CheckVoteVoices(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "for:     %s\nagainst: %s\n", forVotes, against)
	return nil
}

func showStatus(ctx *cli.Context) error {
	id, err := parseID(ctx.Args().First())
	if err != nil {
		return err
	}
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	status, err := n.dao.CheckProposalStatus(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, statusString(status))
	return nil
}

func execute(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	key, caller, err := loadKey(ctx)
	if err != nil {
		return err
	}
	id, err := parseID(ctx.String(idFlag.Name))
	if err != nil {
		return err
	}
	nonce, err := n.dao.Nonce(caller)
	if err != nil {
		return err
	}
	sctx, err := signed(key, governance.ExecuteDigest(caller, nonce, id))
	if err != nil {
		return err
	}
	applied, err := n.dao.ExecuteProposal(sctx, caller, id)
	switch {
	case applied:
		fmt.Fprintf(ctx.App.Writer, "Proposal %s executed\n", id.Hex())
	case errors.Is(err, governance.ErrQuorumNotMet), errors.Is(err, governance.ErrProposalNotPassed):
		fmt.Fprintf(ctx.App.Writer, "Proposal %s failed: %v\n", id.Hex(), err)
		return cli.Exit("", 2)
	}
	return err
}

func parseStatus(name string) (governance.ProposalStatus, error) {
	for _, s := range []governance.ProposalStatus{
		governance.ProposalStatusActive,
		governance.ProposalStatusPassed,
		governance.ProposalStatusFailed,
		governance.ProposalStatusExecuted,
	} {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown proposal status %q", name)
}
