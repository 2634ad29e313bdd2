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

	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var contextFlag = &cli.StringSliceFlag{
	Name:  "column",
	Usage: "adds a context column of space separated words, may be repeated",
}

var EvalCmd = cli.Command{
	Action:    doEval,
	Name:      "eval",
	Usage:     "Evaluates an entrypoint of an expression",
	ArgsUsage: "<expression file>",
	Flags: []cli.Flag{
		&cli.UintFlag{
			Name:  "source",
			Usage: "the entrypoint to evaluate",
		},
		&cli.UintFlag{
			Name:  "max-outputs",
			Usage: "the maximum number of stack values reported",
			Value: 0xffff,
		},
		contextFlag,
		&cli.StringFlag{
			Name:      "store",
			Usage:     "path of the SQLite key/value store, overrides the config",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  "commit",
			Usage: "commit the entries set by the evaluation to the store",
		},
	},
}

func doEval(ctx *cli.Context) error {
	config, err := loadConfigFromContext(ctx)
	if err != nil {
		return err
	}
	if path := ctx.String("store"); path != "" {
		config.Store.Path = path
	}
	source := ctx.Uint("source")
	maxOutputs := ctx.Uint("max-outputs")
	if source > 0xffff || maxOutputs > 0xffff {
		return fmt.Errorf("source %d and max outputs %d must fit into 16 bits", source, maxOutputs)
	}
	context, err := parseContext(ctx.StringSlice(contextFlag.Name))
	if err != nil {
		return err
	}

	interpreter, err := config.newInterpreter()
	if err != nil {
		return err
	}
	expression, err := loadExpressionArg(ctx)
	if err != nil {
		return err
	}
	reference, err := interpreter.Deploy(expression)
	if err != nil {
		return err
	}

	kvStore, closeStore, err := config.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("Failed to close store", "err", err)
		}
	}()

	result, err := interpreter.Eval(expr.Parameters{
		Dispatch: expr.Dispatch{
			Expression: reference,
			Source:     uint16(source),
			MaxOutputs: uint16(maxOutputs),
		},
		Context:   context,
		Store:     kvStore,
		Caller:    config.Caller,
		Namespace: config.Namespace,
	})
	if err != nil {
		return err
	}

	out := ctx.App.Writer
	fmt.Fprintf(out, "Stack:\n")
	for i, value := range result.Stack {
		fmt.Fprintf(out, "  %d: %v\n", i, value)
	}
	if len(result.KVs) > 0 {
		fmt.Fprintf(out, "Entries:\n")
		for _, kv := range result.KVs {
			fmt.Fprintf(out, "  %v\n", kv)
		}
	}

	if ctx.Bool("commit") && len(result.KVs) > 0 {
		if err := kvStore.Commit(config.Caller, config.Namespace, result.KVs); err != nil {
			return fmt.Errorf("failed to commit entries: %w", err)
		}
		log.Info("Committed entries", "expression", reference, "entries", len(result.KVs))
	}
	return nil
}
