// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package spvm

import (
	"fmt"

	"github.com/Fantom-foundation/Expr/go/common"
	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/holiman/uint256"
)

// --- Lists and hashing ---

func opSentinel(_ expr.Operand, _, outputs []uint256.Int) error {
	outputs[0].SetBytes32(expr.Sentinel[:])
	return nil
}

func opHash(c *context, operand expr.Operand) error {
	n := operand.Field(0, 8)
	data := common.NewByteStack(common.ToWords(c.stack.topN(n))...).Bytes()
	var hash expr.Word
	if c.config.hashes != nil {
		hash = c.config.hashes.hash(data)
	} else {
		hash = keccak256(data)
	}
	c.stack.top -= n
	c.stack.pushUndefined().SetBytes32(hash[:])
	return nil
}

func packedHashOperands(operand expr.Operand) (inputs, width int, prefixed bool) {
	return operand.Field(0, 8), operand.Field(8, 8), operand.Field(16, 1) == 1
}

func packedHashEffect(operand expr.Operand) (int, int, error) {
	inputs, width, _ := packedHashOperands(operand)
	if inputs < 1 || width < 1 || width > common.WordSize {
		return 0, 0, fmt.Errorf("%w: %d inputs of %d bytes", expr.ErrInvalidOperand, inputs, width)
	}
	return inputs, 1, nil
}

// opHashPacked hashes the inputs packed unaligned into width bytes each,
// so values narrower than a word can be hashed in their compact encoding.
func opHashPacked(operand expr.Operand, inputs, outputs []uint256.Int) error {
	_, width, prefixed := packedHashOperands(operand)
	packed := common.NewByteStack()
	for i := range inputs {
		if inputs[i].ByteLen() > width {
			return fmt.Errorf("%w: input %d needs %d bytes, width %d", common.ErrValueTooLarge, i, inputs[i].ByteLen(), width)
		}
		value := inputs[i].Bytes32()
		if prefixed {
			packed.UnalignedPushWithLength(value[common.WordSize-width:])
		} else {
			packed.UnalignedPush(value[common.WordSize-width:])
		}
	}
	hash := keccak256(packed.Bytes())
	outputs[0].SetBytes32(hash[:])
	return nil
}

func opEnsure(_ expr.Operand, inputs, _ []uint256.Int) error {
	for i := range inputs {
		if inputs[i].IsZero() {
			return expr.EnsureFailedError{Index: i}
		}
	}
	return nil
}

// --- Checked arithmetic ---

func opAdd(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if _, overflow := res.AddOverflow(res, &inputs[i]); overflow {
			return expr.ErrArithmeticOverflow
		}
	}
	return nil
}

func opSub(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if _, underflow := res.SubOverflow(res, &inputs[i]); underflow {
			return expr.ErrArithmeticUnderflow
		}
	}
	return nil
}

func opMul(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if _, overflow := res.MulOverflow(res, &inputs[i]); overflow {
			return expr.ErrArithmeticOverflow
		}
	}
	return nil
}

func opDiv(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if inputs[i].IsZero() {
			return expr.ErrDivisionByZero
		}
		res.Div(res, &inputs[i])
	}
	return nil
}

func opMod(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if inputs[i].IsZero() {
			return expr.ErrDivisionByZero
		}
		res.Mod(res, &inputs[i])
	}
	return nil
}

func opExp(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if overflow := checkedExp(res, res, &inputs[i]); overflow {
			return expr.ErrArithmeticOverflow
		}
	}
	return nil
}

// checkedExp sets z to base**exponent and reports whether the result
// exceeds 256 bits.
func checkedExp(z, base, exponent *uint256.Int) bool {
	var b, e uint256.Int
	b.Set(base)
	e.Set(exponent)
	z.SetOne()
	for !e.IsZero() {
		if e.Uint64()&1 == 1 {
			if _, overflow := z.MulOverflow(z, &b); overflow {
				return true
			}
		}
		e.Rsh(&e, 1)
		if !e.IsZero() {
			if _, overflow := b.MulOverflow(&b, &b); overflow {
				return true
			}
		}
	}
	return false
}

// --- Saturating arithmetic ---

func opSaturatingAdd(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if _, overflow := res.AddOverflow(res, &inputs[i]); overflow {
			res.SetAllOne()
			return nil
		}
	}
	return nil
}

func opSaturatingSub(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if _, underflow := res.SubOverflow(res, &inputs[i]); underflow {
			res.Clear()
			return nil
		}
	}
	return nil
}

func opSaturatingMul(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if _, overflow := res.MulOverflow(res, &inputs[i]); overflow {
			res.SetAllOne()
			return nil
		}
	}
	return nil
}

// --- Comparison and logic ---

func opMin(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if inputs[i].Lt(res) {
			res.Set(&inputs[i])
		}
	}
	return nil
}

func opMax(_ expr.Operand, inputs, outputs []uint256.Int) error {
	res := outputs[0].Set(&inputs[0])
	for i := 1; i < len(inputs); i++ {
		if inputs[i].Gt(res) {
			res.Set(&inputs[i])
		}
	}
	return nil
}

func setBool(z *uint256.Int, value bool) {
	if value {
		z.SetOne()
	} else {
		z.Clear()
	}
}

func opEqualTo(_ expr.Operand, inputs, outputs []uint256.Int) error {
	setBool(&outputs[0], inputs[0].Eq(&inputs[1]))
	return nil
}

func opLessThan(_ expr.Operand, inputs, outputs []uint256.Int) error {
	setBool(&outputs[0], inputs[0].Lt(&inputs[1]))
	return nil
}

func opGreaterThan(_ expr.Operand, inputs, outputs []uint256.Int) error {
	setBool(&outputs[0], inputs[0].Gt(&inputs[1]))
	return nil
}

func opIsZero(_ expr.Operand, inputs, outputs []uint256.Int) error {
	setBool(&outputs[0], inputs[0].IsZero())
	return nil
}

// opEvery yields the first input if all inputs are non-zero, zero otherwise.
func opEvery(_ expr.Operand, inputs, outputs []uint256.Int) error {
	for i := range inputs {
		if inputs[i].IsZero() {
			outputs[0].Clear()
			return nil
		}
	}
	outputs[0].Set(&inputs[0])
	return nil
}

// opAny yields the first non-zero input, zero if there is none.
func opAny(_ expr.Operand, inputs, outputs []uint256.Int) error {
	for i := range inputs {
		if !inputs[i].IsZero() {
			outputs[0].Set(&inputs[i])
			return nil
		}
	}
	outputs[0].Clear()
	return nil
}

func opEagerIf(_ expr.Operand, inputs, outputs []uint256.Int) error {
	if !inputs[0].IsZero() {
		outputs[0].Set(&inputs[1])
	} else {
		outputs[0].Set(&inputs[2])
	}
	return nil
}

// --- Bit operations ---

func bitFieldOperands(operand expr.Operand) (start, length uint) {
	return uint(operand.Field(0, 8)), uint(operand.Field(8, 8))
}

func bitFieldEffect(inputs int) effectFn {
	return func(operand expr.Operand) (int, int, error) {
		start, length := bitFieldOperands(operand)
		if length == 0 || start+length > 256 {
			return 0, 0, fmt.Errorf("%w: start %d, length %d", expr.ErrBitFieldOutOfRange, start, length)
		}
		return inputs, 1, nil
	}
}

// opEncode256 writes the source (below) into the bit field of the target
// (top).
func opEncode256(operand expr.Operand, inputs, outputs []uint256.Int) error {
	start, length := bitFieldOperands(operand)
	_, err := common.Encode256(&outputs[0], &inputs[0], &inputs[1], start, length)
	return err
}

func opDecode256(operand expr.Operand, inputs, outputs []uint256.Int) error {
	start, length := bitFieldOperands(operand)
	_, err := common.Decode256(&outputs[0], &inputs[0], start, length)
	return err
}

// opExplode32 pushes the eight 32-bit chunks of its input, least
// significant chunk first.
func opExplode32(_ expr.Operand, inputs, outputs []uint256.Int) error {
	chunks := common.Explode32(&inputs[0])
	copy(outputs, chunks[:])
	return nil
}

func opBitwiseAnd(_ expr.Operand, inputs, outputs []uint256.Int) error {
	outputs[0].And(&inputs[0], &inputs[1])
	return nil
}

func opBitwiseOr(_ expr.Operand, inputs, outputs []uint256.Int) error {
	outputs[0].Or(&inputs[0], &inputs[1])
	return nil
}

func shiftEffect(operand expr.Operand) (int, int, error) {
	if operand.Field(0, 8) == 0 {
		return 0, 0, fmt.Errorf("%w: shift by zero bits", expr.ErrInvalidOperand)
	}
	return 1, 1, nil
}

func opShiftLeft(operand expr.Operand, inputs, outputs []uint256.Int) error {
	outputs[0].Lsh(&inputs[0], uint(operand.Field(0, 8)))
	return nil
}

func opShiftRight(operand expr.Operand, inputs, outputs []uint256.Int) error {
	outputs[0].Rsh(&inputs[0], uint(operand.Field(0, 8)))
	return nil
}
