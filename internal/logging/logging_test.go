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

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mccoysc/daogov/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandlerWritesFile(t *testing.T) {
	dir := t.TempDir()
	stderr, err := os.CreateTemp(dir, "stderr")
	require.NoError(t, err)
	defer stderr.Close()

	cfg := config.LogConfig{Format: "json", File: filepath.Join(dir, "daogov.log"), MaxSizeMB: 1}
	handler, closer := NewHandler(cfg, log.LevelInfo, stderr)
	logger := log.NewLogger(handler)
	logger.Info("Proposal executed", "id", "0x01")
	logger.Debug("Vote rejected")
	require.NoError(t, closer.Close())

	for _, path := range []string{cfg.File, stderr.Name()} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"Proposal executed"`)
		assert.NotContains(t, string(data), "Vote rejected")
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}
