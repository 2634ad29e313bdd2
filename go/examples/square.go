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

// GetSquareExample computes x*x + x, squaring in a called source.
func GetSquareExample() Example {
	return exampleSpec{
		Name: "square",
		Expression: &expr.Expression{
			Sources: []expr.Source{
				{
					expr.Op(expr.CONTEXT, expr.ContextOperand(0, 0)),
					expr.Op(expr.STACK, expr.IndexOperand(0)),
					expr.Op(expr.CALL, expr.CallOperand(1, 1, 1)),
					expr.Op(expr.ADD, expr.InputsOperand(2)),
				},
				{
					expr.Op(expr.STACK, expr.IndexOperand(0)),
					expr.Op(expr.MUL, expr.InputsOperand(2)),
				},
			},
			MinOutputs: []int{1},
		},
		reference: func(x int) int {
			return x*x + x
		},
	}.build()
}

// GetScaleExample multiplies its argument by 1024 by doubling it in a
// fixed number of loop iterations.
func GetScaleExample() Example {
	return exampleSpec{
		Name: "scale",
		Expression: &expr.Expression{
			Sources: []expr.Source{
				{
					expr.Op(expr.CONTEXT, expr.ContextOperand(0, 0)),
					expr.Op(expr.LOOP_N, expr.LoopNOperand(10, 1, 1, 1)),
				},
				{
					expr.Op(expr.CONSTANT, expr.IndexOperand(0)),
					expr.Op(expr.MUL, expr.InputsOperand(2)),
				},
			},
			Constants:  []expr.Word{expr.NewWord(2)},
			MinOutputs: []int{1},
		},
		reference: func(x int) int {
			return x << 10
		},
	}.build()
}
