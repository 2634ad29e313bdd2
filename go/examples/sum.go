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

// GetSumExample sums up the numbers 1..n passed as the rows of the first
// context column.
func GetSumExample() Example {
	return exampleSpec{
		Name: "sum",
		Expression: &expr.Expression{
			Sources: []expr.Source{
				{
					expr.Op(expr.CONSTANT, expr.IndexOperand(0)),
					expr.Op(expr.FOLD_CONTEXT, expr.FoldContextOperand(0, 0, 1, 1, 1)),
				},
				{
					expr.Op(expr.ADD, expr.InputsOperand(2)),
				},
			},
			Constants:  []expr.Word{expr.NewWord(0)},
			MinOutputs: []int{1},
		},
		context: func(n int) expr.Context {
			column := make([]expr.Word, n)
			for i := range column {
				column[i] = expr.NewWord(uint64(i + 1))
			}
			return expr.Context{column}
		},
		reference: func(n int) int {
			return n * (n + 1) / 2
		},
	}.build()
}
