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

import (
	"encoding/binary"

	"github.com/Fantom-foundation/Expr/go/expr"
)

// GetHashChainExample hashes its argument n times, where n is the argument
// itself. The result is the lower 8 bytes of the final hash.
func GetHashChainExample() Example {
	// The state of the loop is [n, h]; each iteration maps it to
	// [n-1, keccak256(h)].
	body := expr.Source{
		expr.Op(expr.STACK, expr.IndexOperand(0)),
		expr.Op(expr.CONSTANT, expr.IndexOperand(0)),
		expr.Op(expr.SUB, expr.InputsOperand(2)),
		expr.Op(expr.STACK, expr.IndexOperand(1)),
		expr.Op(expr.HASH, expr.InputsOperand(1)),
		expr.Op(expr.STACK, expr.IndexOperand(2)),
	}
	entry := expr.Source{
		expr.Op(expr.CONTEXT, expr.ContextOperand(0, 0)),
		expr.Op(expr.CONTEXT, expr.ContextOperand(0, 0)),
		expr.Op(expr.CONTEXT, expr.ContextOperand(0, 0)),
		expr.Op(expr.DO_WHILE, expr.DoWhileOperand(2, 1)),
		expr.Op(expr.STACK, expr.IndexOperand(1)),
	}
	return exampleSpec{
		Name: "hash",
		Expression: &expr.Expression{
			Sources:    []expr.Source{entry, body},
			Constants:  []expr.Word{expr.NewWord(1)},
			MinOutputs: []int{1},
		},
		reference: func(n int) int {
			hash := expr.NewWord(uint64(n))
			for i := 0; i < n; i++ {
				hash = expr.Keccak256(hash[:])
			}
			return int(binary.BigEndian.Uint64(hash[24:]))
		},
	}.build()
}
