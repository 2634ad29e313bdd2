// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var configFlag = &cli.StringFlag{
	Name:      "config",
	Aliases:   []string{"c"},
	Usage:     "load interpreter and store settings from the given TOML file",
	TakesFile: true,
}

var verbosityFlag = &cli.IntFlag{
	Name:  "verbosity",
	Usage: "logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
	Value: 3,
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "spvm",
		Usage:     "Stack-pointer expression VM tools",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags: []cli.Flag{
			configFlag,
			verbosityFlag,
		},
		Before: func(ctx *cli.Context) error {
			setupLogging(ctx.Int(verbosityFlag.Name))
			return nil
		},
		Commands: []*cli.Command{
			&VerifyCmd,
			&EvalCmd,
			&BenchCmd,
			&DisasmCmd,
			&CompileCmd,
			&ExamplesCmd,
		},
	}
}

func setupLogging(verbosity int) {
	handler := log.DiscardHandler()
	if verbosity > 0 {
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(verbosity), false)
	}
	log.SetDefault(log.NewLogger(handler))
}
