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
	"time"

	"github.com/Fantom-foundation/Expr/go/examples"
	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
)

var BenchCmd = cli.Command{
	Action:    doBench,
	Name:      "bench",
	Usage:     "Measures the evaluation throughput of an expression or a built-in example",
	ArgsUsage: "[<expression file>]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "example",
			Usage: "benchmark the named built-in example instead of a file",
		},
		&cli.IntFlag{
			Name:  "arg",
			Usage: "the argument passed to the example",
			Value: 10,
		},
		&cli.IntFlag{
			Name:  "iterations",
			Usage: "the number of evaluations",
			Value: 1000,
		},
		contextFlag,
	},
}

func doBench(ctx *cli.Context) error {
	config, err := loadConfigFromContext(ctx)
	if err != nil {
		return err
	}
	iterations := ctx.Int("iterations")
	if iterations <= 0 {
		return fmt.Errorf("invalid number of iterations: %d", iterations)
	}

	var expression *expr.Expression
	var context expr.Context
	if name := ctx.String("example"); name != "" {
		example, found := examples.GetExample(name)
		if !found {
			return fmt.Errorf("unknown example %q", name)
		}
		expression = example.Expression
		context = example.Context(ctx.Int("arg"))
	} else {
		if expression, err = loadExpressionArg(ctx); err != nil {
			return err
		}
		if context, err = parseContext(ctx.StringSlice(contextFlag.Name)); err != nil {
			return err
		}
	}

	interpreter, err := config.newInterpreter()
	if err != nil {
		return err
	}
	reference, err := interpreter.Deploy(expression)
	if err != nil {
		return err
	}
	profiling, isProfiling := interpreter.(expr.ProfilingInterpreter)
	if isProfiling {
		profiling.ResetProfile()
	}

	params := expr.Parameters{
		Dispatch:  expr.Dispatch{Expression: reference, MaxOutputs: 0xffff},
		Context:   context,
		Store:     nil,
		Caller:    config.Caller,
		Namespace: config.Namespace,
	}
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, err := interpreter.Eval(params); err != nil {
			return fmt.Errorf("evaluation %d failed: %w", i, err)
		}
	}
	duration := time.Since(start)

	rate := float64(iterations) / duration.Seconds()
	fmt.Fprintf(ctx.App.Writer, "Evaluations: %d, time: %v, ~%s evaluations per second\n",
		iterations, duration, unitconv.FormatPrefix(rate, unitconv.SI, 0))
	if isProfiling {
		profiling.DumpProfile()
	}
	return nil
}
