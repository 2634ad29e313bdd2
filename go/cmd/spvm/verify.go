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
	"github.com/urfave/cli/v2"
)

var VerifyCmd = cli.Command{
	Action:    doVerify,
	Name:      "verify",
	Usage:     "Checks the integrity of an expression without evaluating it",
	ArgsUsage: "<expression file>",
}

func doVerify(ctx *cli.Context) error {
	config, err := loadConfigFromContext(ctx)
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
	report, err := interpreter.Verify(expression)
	if err != nil {
		return err
	}
	reference, err := expr.Reference(expression)
	if err != nil {
		return err
	}
	out := ctx.App.Writer
	fmt.Fprintf(out, "Reference: %v\n", reference)
	for i := range report.StackHeights {
		fmt.Fprintf(out, "Entrypoint %d: max stack height %d, final stack height %d\n",
			i, report.StackHeights[i], report.FinalHeights[i])
	}
	return nil
}

func loadExpressionArg(ctx *cli.Context) (*expr.Expression, error) {
	if ctx.Args().Len() != 1 {
		return nil, fmt.Errorf("expected exactly one expression file, got %d arguments", ctx.Args().Len())
	}
	return loadExpression(ctx.Args().First())
}
