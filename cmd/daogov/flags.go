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
	"github.com/mccoysc/daogov/internal/config"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"DAOGOV_CONFIG"},
	}
	dataDirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the governance database",
	}
	dbEngineFlag = &cli.StringFlag{
		Name:  "db.engine",
		Usage: "Backing database (leveldb, pebble, memory)",
	}
	dbCacheFlag = &cli.IntFlag{
		Name:  "db.cache",
		Usage: "Megabytes of memory allocated to the database cache",
	}
	logLevelFlag = &cli.StringFlag{
		Name:  "log.level",
		Usage: "Logging verbosity (trace, debug, info, warn, error, crit)",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log.format",
		Usage: "Log format (terminal, json)",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write logs to a rotating file as well",
	}
	timeFlag = &cli.Uint64Flag{
		Name:   "time",
		Usage:  "Override the host clock (unix seconds)",
		Hidden: true,
	}

	globalFlags = []cli.Flag{
		configFileFlag,
		dataDirFlag,
		dbEngineFlag,
		dbCacheFlag,
		logLevelFlag,
		logFormatFlag,
		logFileFlag,
		timeFlag,
	}
)

var (
	keyFlag = &cli.StringFlag{
		Name:     "key",
		Usage:    "File holding the hex encoded secp256k1 private key of the caller",
		EnvVars:  []string{"DAOGOV_KEY"},
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Recipient address",
		Required: true,
	}
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "Token amount (decimal)",
		Required: true,
	}
	idFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "Proposal identifier (0x-prefixed, 32 bytes)",
		Required: true,
	}
	supplyFlag = &cli.StringFlag{
		Name:  "supply",
		Usage: "Initial token supply credited to the admin (overrides config)",
	}
	votingPeriodFlag = &cli.Uint64Flag{
		Name:  "voting-period",
		Usage: "Voting period in seconds (overrides config)",
	}
	quorumFlag = &cli.StringFlag{
		Name:  "quorum",
		Usage: "Minimum weighted participation (overrides config)",
	}
	descriptionFlag = &cli.StringFlag{
		Name:     "description",
		Usage:    "Proposal description",
		Required: true,
	}
	actionFlag = &cli.StringFlag{
		Name:  "action",
		Usage: `Action applied on execution, "name[:arg]" (e.g. mint:0xabc...:100)`,
	}
	againstFlag = &cli.BoolFlag{
		Name:  "against",
		Usage: "Vote against the proposal",
	}
	statusFilterFlag = &cli.StringFlag{
		Name:  "status",
		Usage: "Only list proposals with this status (Active, Passed, Failed, Executed)",
	}
)

// applyFlags copies explicitly set global flags onto cfg.
func applyFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(dbEngineFlag.Name) {
		cfg.DBEngine = ctx.String(dbEngineFlag.Name)
	}
	if ctx.IsSet(dbCacheFlag.Name) {
		cfg.DBCache = ctx.Int(dbCacheFlag.Name)
	}
	if ctx.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = ctx.String(logLevelFlag.Name)
	}
	if ctx.IsSet(logFormatFlag.Name) {
		cfg.Log.Format = ctx.String(logFormatFlag.Name)
	}
	if ctx.IsSet(logFileFlag.Name) {
		cfg.Log.File = ctx.String(logFileFlag.Name)
	}
	if ctx.IsSet(supplyFlag.Name) {
		cfg.Governance.InitialSupply = ctx.String(supplyFlag.Name)
	}
	if ctx.IsSet(votingPeriodFlag.Name) {
		cfg.Governance.VotingPeriod = ctx.Uint64(votingPeriodFlag.Name)
	}
	if ctx.IsSet(quorumFlag.Name) {
		cfg.Governance.Quorum = ctx.String(quorumFlag.Name)
	}
}
