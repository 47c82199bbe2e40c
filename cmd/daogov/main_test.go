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
	"bytes"
	"crypto/ecdsa"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/mccoysc/daogov/governance"
	"github.com/mccoysc/daogov/internal/config"
	"github.com/mccoysc/daogov/internal/dbutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

type testAccount struct {
	key  *ecdsa.PrivateKey
	addr common.Address
	file string
}

func newAccount(t *testing.T, dir, name string) testAccount {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	file := filepath.Join(dir, name+".key")
	require.NoError(t, crypto.SaveECDSA(file, key))
	return testAccount{key: key, addr: crypto.PubkeyToAddress(key.PublicKey), file: file}
}

// cliRunner runs daogov commands against one data directory.
type cliRunner struct {
	t       *testing.T
	datadir string
}

func (r *cliRunner) run(args ...string) (string, error) {
	r.t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}

	argv := append([]string{"daogov", "--datadir", r.datadir, "--log.level", "crit"}, args...)
	err := app.Run(argv)
	return out.String(), err
}

func (r *cliRunner) mustRun(args ...string) string {
	r.t.Helper()
	out, err := r.run(args...)
	require.NoError(r.t, err, "daogov %s\n%s", strings.Join(args, " "), out)
	return out
}

func TestCLIGovernanceRound(t *testing.T) {
	color.NoColor = true
	keys := t.TempDir()
	admin := newAccount(t, keys, "admin")
	alice := newAccount(t, keys, "alice")
	bob := newAccount(t, keys, "bob")
	r := &cliRunner{t: t, datadir: t.TempDir()}

	out := r.mustRun("--time", "1000", "init", "--key", admin.file, "--supply", "1000", "--voting-period", "100", "--quorum", "100")
	assert.Contains(t, out, "DAO initialized")

	_, err := r.run("--time", "1000", "init", "--key", admin.file)
	require.ErrorIs(t, err, governance.ErrAlreadyInitialized)

	r.mustRun("transfer", "--key", admin.file, "--to", alice.addr.Hex(), "--amount", "300")
	assert.Equal(t, "700\n", r.mustRun("balance", admin.addr.Hex()))
	assert.Equal(t, "300\n", r.mustRun("balance", alice.addr.Hex()))

	// Only the admin can mint directly
	_, err = r.run("mint", "--key", alice.file, "--to", alice.addr.Hex(), "--amount", "5")
	require.ErrorIs(t, err, governance.ErrNotAuthorized)

	action := string(governance.MintAction(bob.addr, common.Big256))
	id := strings.TrimSpace(r.mustRun("--time", "1000", "propose", "--key", alice.file,
		"--description", "Reward bob", "--action", action))
	require.Len(t, id, 66)

	r.mustRun("--time", "1050", "vote", "--key", alice.file, "--id", id, "--amount", "300")
	_, err = r.run("--time", "1050", "vote", "--key", alice.file, "--id", id, "--amount", "1")
	require.ErrorIs(t, err, governance.ErrAlreadyVoted)
	_, err = r.run("--time", "1050", "vote", "--key", bob.file, "--id", id, "--amount", "1", "--against")
	require.ErrorIs(t, err, governance.ErrInsufficientWeight)

	assert.Equal(t, "for:     300\nagainst: 0\n", r.mustRun("tally", id))
	assert.Equal(t, "Active\n", r.mustRun("--time", "1100", "status", id))
	assert.Equal(t, "Passed\n", r.mustRun("--time", "1101", "status", id))

	_, err = r.run("--time", "1100", "execute", "--key", bob.file, "--id", id)
	require.ErrorIs(t, err, governance.ErrVotingOpen)

	out = r.mustRun("--time", "1101", "execute", "--key", bob.file, "--id", id)
	assert.Contains(t, out, "executed")
	assert.Equal(t, "256\n", r.mustRun("balance", bob.addr.Hex()))

	_, err = r.run("--time", "1200", "execute", "--key", bob.file, "--id", id)
	require.ErrorIs(t, err, governance.ErrProposalAlreadyExecuted)

	out = r.mustRun("proposal", id)
	assert.Contains(t, out, "Reward bob")
	assert.Contains(t, out, alice.addr.Hex())
	assert.Contains(t, out, "Executed")
}

func TestCLIFailedProposal(t *testing.T) {
	color.NoColor = true
	keys := t.TempDir()
	admin := newAccount(t, keys, "admin")
	r := &cliRunner{t: t, datadir: t.TempDir()}

	r.mustRun("--time", "0", "init", "--key", admin.file, "--supply", "50", "--voting-period", "10", "--quorum", "100")
	id := strings.TrimSpace(r.mustRun("--time", "0", "propose", "--key", admin.file, "--description", "Too small"))
	r.mustRun("--time", "5", "vote", "--key", admin.file, "--id", id, "--amount", "50")

	out, err := r.run("--time", "11", "execute", "--key", admin.file, "--id", id)
	require.Error(t, err)
	exit, ok := err.(cli.ExitCoder)
	require.True(t, ok, "expected exit error, got %v", err)
	assert.Equal(t, 2, exit.ExitCode())
	assert.Contains(t, out, "quorum not met")

	out = r.mustRun("proposals", "--status", "failed")
	assert.Contains(t, out, "Too small")
	out = r.mustRun("proposals", "--status", "active")
	assert.NotContains(t, out, "Too small")
}

// The same round trip works on every persistent engine.
func TestCLIEngines(t *testing.T) {
	engines := []string{config.DBLevelDB}
	if dbutil.PebbleSupported {
		engines = append(engines, config.DBPebble)
	}
	for _, engine := range engines {
		t.Run(engine, func(t *testing.T) {
			keys := t.TempDir()
			admin := newAccount(t, keys, "admin")
			r := &cliRunner{t: t, datadir: t.TempDir()}

			r.mustRun("--db.engine", engine, "init", "--key", admin.file, "--supply", "10")
			r.mustRun("--db.engine", engine, "mint", "--key", admin.file, "--to", admin.addr.Hex(), "--amount", "5")
			assert.Equal(t, "15\n", r.mustRun("--db.engine", engine, "balance", admin.addr.Hex()))
		})
	}
}

func TestCLIRequiresInit(t *testing.T) {
	keys := t.TempDir()
	admin := newAccount(t, keys, "admin")
	r := &cliRunner{t: t, datadir: t.TempDir()}

	_, err := r.run("propose", "--key", admin.file, "--description", "early")
	require.ErrorIs(t, err, governance.ErrNotInitialized)
}

func TestCLIDumpConfig(t *testing.T) {
	r := &cliRunner{t: t, datadir: t.TempDir()}
	out := r.mustRun("--db.engine", "memory", "dumpconfig")
	assert.Contains(t, out, `db_engine = "memory"`)
	assert.Contains(t, out, "[governance]")
}

func TestParseID(t *testing.T) {
	_, err := parseID("0x1234")
	assert.Error(t, err)
	id, err := parseID(common.HexToHash("0xff").Hex())
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xff"), id)
}
