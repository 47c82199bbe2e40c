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

// daogov is the command line host of the token-weighted DAO governance
// system.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mccoysc/daogov/internal/config"
	"github.com/mccoysc/daogov/internal/logging"
	"github.com/urfave/cli/v2"
)

var logCloser io.Closer

func newApp() *cli.App {
	app := &cli.App{
		Name:                 "daogov",
		Usage:                "token-weighted DAO governance",
		EnableBashCompletion: true,
		Flags:                globalFlags,
		Before: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			closer, err := logging.Setup(cfg.Log)
			if err != nil {
				return err
			}
			logCloser = closer
			return nil
		},
		After: func(ctx *cli.Context) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			initCommand,
			mintCommand,
			transferCommand,
			balanceCommand,
			proposeCommand,
			proposalCommand,
			proposalsCommand,
			voteCommand,
			tallyCommand,
			statusCommand,
			executeCommand,
			dumpConfigCommand,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Debug("Command failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, the environment and flags.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Defaults()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := config.LoadFile(file, cfg); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(ctx, cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
