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

	"github.com/Fantom-foundation/Expr/go/examples"
	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/urfave/cli/v2"
)

var DisasmCmd = cli.Command{
	Action:    doDisasm,
	Name:      "disasm",
	Usage:     "Prints the textual form of an expression",
	ArgsUsage: "<expression file>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "listing",
			Usage: "print an annotated listing instead of the parsable form",
		},
	},
}

func doDisasm(ctx *cli.Context) error {
	expression, err := loadExpressionArg(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool("listing") {
		_, err := fmt.Fprint(ctx.App.Writer, expression.String())
		return err
	}
	text, err := formatExpression(expression)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(text)
	return err
}

var CompileCmd = cli.Command{
	Action:    doCompile,
	Name:      "compile",
	Usage:     "Converts an expression into its binary CBOR form",
	ArgsUsage: "<expression file> <output file>",
}

func doCompile(ctx *cli.Context) error {
	if ctx.Args().Len() != 2 {
		return fmt.Errorf("expected an expression file and an output file, got %d arguments", ctx.Args().Len())
	}
	expression, err := loadExpression(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	data, err := expr.MarshalExpression(expression)
	if err != nil {
		return err
	}
	if err := os.WriteFile(ctx.Args().Get(1), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ctx.Args().Get(1), err)
	}
	reference, err := expr.Reference(expression)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Wrote %d bytes, reference %v\n", len(data), reference)
	return nil
}

var ExamplesCmd = cli.Command{
	Action: doExamples,
	Name:   "examples",
	Usage:  "Lists the built-in examples usable by the bench command",
}

func doExamples(ctx *cli.Context) error {
	for _, example := range examples.GetAllExamples() {
		fmt.Fprintf(ctx.App.Writer, "%-8s %v\n", example.Name, example.Reference())
	}
	return nil
}
