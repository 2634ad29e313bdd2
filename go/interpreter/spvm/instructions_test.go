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
	"errors"
	"testing"

	"github.com/Fantom-foundation/Expr/go/common"
	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/holiman/uint256"
)

func maxUint256() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

func values(args ...uint64) []uint256.Int {
	res := make([]uint256.Int, len(args))
	for i, arg := range args {
		res[i].SetUint64(arg)
	}
	return res
}

func hashOfBytes(data ...byte) []byte {
	hash := expr.Keccak256(data)
	return hash[:]
}

func TestInstructions_HashPackedOfFullWidthMatchesHash(t *testing.T) {
	inputs := values(1, 2, 3)
	results := make([]uint256.Int, 1)
	if err := opHashPacked(expr.PackedHashOperand(3, 32, false), inputs, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := expr.Keccak256(common.WordsToBytes(common.ToWords(inputs)))
	if got := expr.Word(results[0].Bytes32()); want != got {
		t.Errorf("unexpected hash, wanted %v, got %v", want, got)
	}
}

func TestInstructions_HashPackedRejectsInvalidOperands(t *testing.T) {
	tests := map[string]expr.Operand{
		"no inputs":       expr.PackedHashOperand(0, 1, false),
		"zero width":      expr.PackedHashOperand(1, 0, false),
		"wider than word": expr.PackedHashOperand(1, 33, true),
	}
	for name, operand := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := packedHashEffect(operand); !errors.Is(err, expr.ErrInvalidOperand) {
				t.Errorf("unexpected error, wanted %v, got %v", expr.ErrInvalidOperand, err)
			}
		})
	}
}

func TestInstructions_LeafOpcodes(t *testing.T) {
	maxValue := *maxUint256()
	tests := []struct {
		op      expr.OpCode
		operand expr.Operand
		inputs  []uint256.Int
		want    uint256.Int
		err     error
	}{
		{op: expr.ADD, inputs: values(1, 2, 3), want: *uint256.NewInt(6)},
		{op: expr.ADD, inputs: []uint256.Int{maxValue, *uint256.NewInt(1)}, err: expr.ErrArithmeticOverflow},
		{op: expr.SUB, inputs: values(10, 3, 2), want: *uint256.NewInt(5)},
		{op: expr.SUB, inputs: values(1, 2), err: expr.ErrArithmeticUnderflow},
		{op: expr.MUL, inputs: values(2, 3, 4), want: *uint256.NewInt(24)},
		{op: expr.MUL, inputs: []uint256.Int{maxValue, *uint256.NewInt(2)}, err: expr.ErrArithmeticOverflow},
		{op: expr.DIV, inputs: values(100, 5, 2), want: *uint256.NewInt(10)},
		{op: expr.DIV, inputs: values(1, 0), err: expr.ErrDivisionByZero},
		{op: expr.MOD, inputs: values(17, 5), want: *uint256.NewInt(2)},
		{op: expr.MOD, inputs: values(1, 0), err: expr.ErrDivisionByZero},
		{op: expr.EXP, inputs: values(2, 10), want: *uint256.NewInt(1024)},
		{op: expr.EXP, inputs: values(2, 3, 2), want: *uint256.NewInt(64)},
		{op: expr.EXP, inputs: values(5, 0), want: *uint256.NewInt(1)},
		{op: expr.EXP, inputs: values(2, 255), want: *new(uint256.Int).Lsh(uint256.NewInt(1), 255)},
		{op: expr.EXP, inputs: values(2, 256), err: expr.ErrArithmeticOverflow},
		{op: expr.SATURATING_ADD, inputs: []uint256.Int{maxValue, *uint256.NewInt(1)}, want: maxValue},
		{op: expr.SATURATING_ADD, inputs: values(1, 2), want: *uint256.NewInt(3)},
		{op: expr.SATURATING_SUB, inputs: values(1, 2), want: *uint256.NewInt(0)},
		{op: expr.SATURATING_SUB, inputs: values(5, 2), want: *uint256.NewInt(3)},
		{op: expr.SATURATING_MUL, inputs: []uint256.Int{maxValue, *uint256.NewInt(2)}, want: maxValue},
		{op: expr.MIN, inputs: values(5, 2, 7), want: *uint256.NewInt(2)},
		{op: expr.MAX, inputs: values(5, 2, 7), want: *uint256.NewInt(7)},
		{op: expr.EQUAL_TO, inputs: values(5, 5), want: *uint256.NewInt(1)},
		{op: expr.EQUAL_TO, inputs: values(5, 6), want: *uint256.NewInt(0)},
		{op: expr.LESS_THAN, inputs: values(5, 6), want: *uint256.NewInt(1)},
		{op: expr.LESS_THAN, inputs: values(6, 5), want: *uint256.NewInt(0)},
		{op: expr.GREATER_THAN, inputs: values(6, 5), want: *uint256.NewInt(1)},
		{op: expr.IS_ZERO, inputs: values(0), want: *uint256.NewInt(1)},
		{op: expr.IS_ZERO, inputs: values(3), want: *uint256.NewInt(0)},
		{op: expr.EVERY, inputs: values(3, 4), want: *uint256.NewInt(3)},
		{op: expr.EVERY, inputs: values(3, 0), want: *uint256.NewInt(0)},
		{op: expr.ANY, inputs: values(0, 4, 5), want: *uint256.NewInt(4)},
		{op: expr.ANY, inputs: values(0, 0), want: *uint256.NewInt(0)},
		{op: expr.EAGER_IF, inputs: values(1, 2, 3), want: *uint256.NewInt(2)},
		{op: expr.EAGER_IF, inputs: values(0, 2, 3), want: *uint256.NewInt(3)},
		{op: expr.ENCODE_256, operand: expr.BitFieldOperand(8, 4), inputs: values(0xff, 0), want: *uint256.NewInt(0xf00)},
		{op: expr.ENCODE_256, operand: expr.BitFieldOperand(0, 8), inputs: values(0x12, 0xff00), want: *uint256.NewInt(0xff12)},
		{op: expr.DECODE_256, operand: expr.BitFieldOperand(8, 8), inputs: values(0x1234), want: *uint256.NewInt(0x12)},
		{op: expr.BITWISE_AND, inputs: values(0b1100, 0b1010), want: *uint256.NewInt(0b1000)},
		{op: expr.BITWISE_OR, inputs: values(0b1100, 0b1010), want: *uint256.NewInt(0b1110)},
		{op: expr.SHIFT_LEFT, operand: expr.ShiftOperand(4), inputs: values(1), want: *uint256.NewInt(16)},
		{op: expr.SHIFT_RIGHT, operand: expr.ShiftOperand(4), inputs: values(32), want: *uint256.NewInt(2)},
		{op: expr.HASH_PACKED, operand: expr.PackedHashOperand(2, 2, false), inputs: values(0x1234, 0x56), want: *new(uint256.Int).SetBytes(hashOfBytes(0x12, 0x34, 0x00, 0x56))},
		{op: expr.HASH_PACKED, operand: expr.PackedHashOperand(1, 1, true), inputs: values(0xab), want: *new(uint256.Int).SetBytes(hashOfBytes(0, 0, 0, 1, 0xab))},
		{op: expr.HASH_PACKED, operand: expr.PackedHashOperand(2, 1, false), inputs: values(1, 0x100), err: common.ErrValueTooLarge},
		{op: expr.ENSURE, inputs: values(1, 2)},
		{op: expr.ENSURE, inputs: values(1, 0), err: expr.EnsureFailedError{Index: 1}},
	}

	specs := coreOpSpecs()
	for _, test := range tests {
		operand := test.operand
		if operand == 0 {
			operand = expr.InputsOperand(len(test.inputs))
		}
		_, outputs, err := specs[test.op].effect(operand)
		if err != nil {
			t.Fatalf("invalid operand for %v: %v", test.op, err)
		}
		results := make([]uint256.Int, outputs)
		err = specs[test.op].eval(operand, test.inputs, results)
		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("%v%v: unexpected error, wanted %v, got %v", test.op, test.inputs, test.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v%v: unexpected error: %v", test.op, test.inputs, err)
			continue
		}
		if outputs == 0 {
			continue
		}
		if want, got := test.want, results[0]; !want.Eq(&got) {
			t.Errorf("%v%v: wanted %v, got %v", test.op, test.inputs, want.Dec(), got.Dec())
		}
	}
}

func TestInstructions_Explode32ProducesChunksLeastSignificantFirst(t *testing.T) {
	value := uint256.NewInt(0)
	for i := 7; i >= 0; i-- {
		value.Lsh(value, 32)
		value.Or(value, uint256.NewInt(uint64(i+1)))
	}
	results := make([]uint256.Int, 8)
	if err := opExplode32(0, []uint256.Int{*value}, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range results {
		if want, got := uint64(i+1), results[i].Uint64(); want != got {
			t.Errorf("unexpected chunk %d, wanted %d, got %d", i, want, got)
		}
	}
}

func TestInstructions_CheckedExpMatchesRepeatedMultiplication(t *testing.T) {
	for base := uint64(0); base < 8; base++ {
		for exponent := uint64(0); exponent < 30; exponent++ {
			want := uint256.NewInt(1)
			for i := uint64(0); i < exponent; i++ {
				want.Mul(want, uint256.NewInt(base))
			}
			var got uint256.Int
			if overflow := checkedExp(&got, uint256.NewInt(base), uint256.NewInt(exponent)); overflow {
				t.Fatalf("unexpected overflow for %d^%d", base, exponent)
			}
			if !want.Eq(&got) {
				t.Errorf("%d^%d: wanted %v, got %v", base, exponent, want, &got)
			}
		}
	}
}
