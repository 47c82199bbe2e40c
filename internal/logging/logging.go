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

// Package logging installs the root go-ethereum logger for daogov binaries.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mccoysc/daogov/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the root log handler described by cfg. The returned closer
// flushes the rotating log file, if any.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	handler, closer := NewHandler(cfg, level, os.Stderr)
	log.SetDefault(log.NewLogger(handler))
	return closer, nil
}

// NewHandler builds the handler for cfg writing to stderr, teeing into a
// rotating file when cfg.File is set. Colour is only used when stderr is a
// terminal and no file is attached.
func NewHandler(cfg config.LogConfig, level slog.Level, stderr *os.File) (slog.Handler, io.Closer) {
	var (
		output   io.Writer = stderr
		closer   io.Closer = nopCloser{}
		useColor           = cfg.File == "" && isTerminal(stderr) && os.Getenv("TERM") != "dumb"
	)
	if useColor {
		output = colorable.NewColorable(stderr)
	}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxSizeMB,
			MaxAge:   cfg.MaxAge,
			Compress: true,
		}
		output = io.MultiWriter(output, rotating)
		closer = rotating
	}
	if cfg.Format == "json" {
		return log.JSONHandlerWithLevel(output, level), closer
	}
	return log.NewTerminalHandlerWithLevel(output, level, useColor), closer
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
