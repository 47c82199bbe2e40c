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
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mccoysc/daogov/governance"
)

var (
	activeStyle   = color.New(color.FgYellow)
	passedStyle   = color.New(color.FgCyan)
	failedStyle   = color.New(color.FgRed)
	executedStyle = color.New(color.FgGreen, color.Bold)
	labelStyle    = color.New(color.Faint)
)

type proposalRow struct {
	proposal *governance.Proposal
	status   governance.ProposalStatus
	forVotes *big.Int
	against  *big.Int
}

func statusString(s governance.ProposalStatus) string {
	switch s {
	case governance.ProposalStatusActive:
		return activeStyle.Sprint(s)
	case governance.ProposalStatusPassed:
		return passedStyle.Sprint(s)
	case governance.ProposalStatusFailed:
		return failedStyle.Sprint(s)
	case governance.ProposalStatusExecuted:
		return executedStyle.Sprint(s)
	}
	return s.String()
}

func formatTime(ts uint64) string {
	return time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
}

func printProposal(w io.Writer, p *governance.Proposal, projected governance.ProposalStatus, tally governance.Tally, ballots []*governance.Ballot) {
	field := func(name string, value interface{}) {
		fmt.Fprintf(w, "%s %v\n", labelStyle.Sprintf("%-10s", name+":"), value)
	}
	field("id", p.ID.Hex())
	field("creator", p.Creator.Hex())
	field("created", formatTime(p.CreatedAt))
	field("deadline", formatTime(p.VotingDeadline))
	field("status", statusString(projected))
	field("action", string(p.ActionData))
	field("for", tally.For)
	field("against", tally.Against)
	fmt.Fprintf(w, "\n%s\n", p.Description)

	if len(ballots) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Voter", "Weight", "Choice", "Cast"})
	for _, b := range ballots {
		choice := "against"
		if b.InFavor {
			choice = "for"
		}
		t.AppendRow(table.Row{b.Voter.Hex(), b.Weight, choice, formatTime(b.CastAt)})
	}
	t.Render()
}

func printProposalTable(w io.Writer, rows []proposalRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Creator", "Deadline", "Status", "For", "Against", "Description"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.proposal.ID.TerminalString(),
			r.proposal.Creator.Hex(),
			formatTime(r.proposal.VotingDeadline),
			statusString(r.status),
			r.forVotes,
			r.against,
			r.proposal.Description,
		})
	}
	t.Render()
}
