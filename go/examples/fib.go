// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import "github.com/Fantom-foundation/Expr/go/expr"

func GetFibExample() Example {
	// The state of the loop is [n, a, b]; each iteration maps it to
	// [n-1, b, a+b] and continues while n-1 is non-zero.
	body := expr.Source{
		expr.Op(expr.STACK, expr.IndexOperand(0)),
		expr.Op(expr.CONSTANT, expr.IndexOperand(1)),
		expr.Op(expr.SUB, expr.InputsOperand(2)),
		expr.Op(expr.STACK, expr.IndexOperand(2)),
		expr.Op(expr.STACK, expr.IndexOperand(1)),
		expr.Op(expr.STACK, expr.IndexOperand(2)),
		expr.Op(expr.ADD, expr.InputsOperand(2)),
		expr.Op(expr.STACK, expr.IndexOperand(3)),
	}
	entry := expr.Source{
		expr.Op(expr.CONTEXT, expr.ContextOperand(0, 0)),
		expr.Op(expr.CONSTANT, expr.IndexOperand(0)),
		expr.Op(expr.CONSTANT, expr.IndexOperand(1)),
		expr.Op(expr.CONTEXT, expr.ContextOperand(0, 0)),
		expr.Op(expr.DO_WHILE, expr.DoWhileOperand(3, 1)),
		expr.Op(expr.STACK, expr.IndexOperand(1)),
	}
	return exampleSpec{
		Name: "fib",
		Expression: &expr.Expression{
			Sources:    []expr.Source{entry, body},
			Constants:  []expr.Word{expr.NewWord(0), expr.NewWord(1)},
			MinOutputs: []int{1},
		},
		reference: fib,
	}.build()
}

func fib(n int) int {
	a, b := 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a
}
