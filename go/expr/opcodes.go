// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package expr

import (
	"fmt"
	"strings"
)

// OpCode identifies the handler of an instruction in the dispatch table of
// an interpreter.
type OpCode uint16

// Operand is the per-instruction payload. Its sub-fields are packed per
// opcode and only interpreted by the handler of the opcode.
type Operand uint32

// The core instruction set. Ids at or above FirstExtensionOpCode are free to
// be bound to additional leaf opcodes by interpreter configurations.
const (
	// Memory reads
	CONSTANT OpCode = iota
	STACK
	CONTEXT
	CONTEXT_ROW

	// Control flow
	CALL
	LOOP_N
	DO_WHILE
	FOLD_CONTEXT
	EXTERN

	// Key-value store
	GET
	SET

	// Lists and hashing
	SENTINEL
	HASH
	HASH_PACKED
	ENSURE

	// Checked arithmetic
	ADD
	SUB
	MUL
	DIV
	MOD
	EXP

	// Saturating arithmetic
	SATURATING_ADD
	SATURATING_SUB
	SATURATING_MUL

	// Comparison and logic
	MIN
	MAX
	EQUAL_TO
	LESS_THAN
	GREATER_THAN
	IS_ZERO
	EVERY
	ANY
	EAGER_IF

	// Bit operations
	ENCODE_256
	DECODE_256
	EXPLODE_32
	BITWISE_AND
	BITWISE_OR
	SHIFT_LEFT
	SHIFT_RIGHT

	// NUM_OPCODES is the number of opcodes of the core instruction set.
	NUM_OPCODES
)

// FirstExtensionOpCode is the smallest id available for extension opcodes.
const FirstExtensionOpCode OpCode = 0x100

// MaxOpCode is the largest opcode id an interpreter can bind a handler to.
const MaxOpCode OpCode = 0x1ff

var opCodeNames = [NUM_OPCODES]string{
	CONSTANT:       "CONSTANT",
	STACK:          "STACK",
	CONTEXT:        "CONTEXT",
	CONTEXT_ROW:    "CONTEXT_ROW",
	CALL:           "CALL",
	LOOP_N:         "LOOP_N",
	DO_WHILE:       "DO_WHILE",
	FOLD_CONTEXT:   "FOLD_CONTEXT",
	EXTERN:         "EXTERN",
	GET:            "GET",
	SET:            "SET",
	SENTINEL:       "SENTINEL",
	HASH:           "HASH",
	HASH_PACKED:    "HASH_PACKED",
	ENSURE:         "ENSURE",
	ADD:            "ADD",
	SUB:            "SUB",
	MUL:            "MUL",
	DIV:            "DIV",
	MOD:            "MOD",
	EXP:            "EXP",
	SATURATING_ADD: "SATURATING_ADD",
	SATURATING_SUB: "SATURATING_SUB",
	SATURATING_MUL: "SATURATING_MUL",
	MIN:            "MIN",
	MAX:            "MAX",
	EQUAL_TO:       "EQUAL_TO",
	LESS_THAN:      "LESS_THAN",
	GREATER_THAN:   "GREATER_THAN",
	IS_ZERO:        "IS_ZERO",
	EVERY:          "EVERY",
	ANY:            "ANY",
	EAGER_IF:       "EAGER_IF",
	ENCODE_256:     "ENCODE_256",
	DECODE_256:     "DECODE_256",
	EXPLODE_32:     "EXPLODE_32",
	BITWISE_AND:    "BITWISE_AND",
	BITWISE_OR:     "BITWISE_OR",
	SHIFT_LEFT:     "SHIFT_LEFT",
	SHIFT_RIGHT:    "SHIFT_RIGHT",
}

func (op OpCode) String() string {
	if op < NUM_OPCODES {
		return opCodeNames[op]
	}
	return fmt.Sprintf("op(0x%04x)", uint16(op))
}

// OpCodeFromString resolves an opcode name as printed by OpCode.String.
func OpCodeFromString(name string) (OpCode, bool) {
	for i, cur := range opCodeNames {
		if strings.EqualFold(cur, name) {
			return OpCode(i), true
		}
	}
	var id uint16
	if _, err := fmt.Sscanf(name, "op(0x%04x)", &id); err == nil {
		return OpCode(id), true
	}
	return 0, false
}

// --- operand layouts ---

// Field extracts the unsigned value of width bits starting at the given bit
// offset of the operand.
func (o Operand) Field(offset, width uint) int {
	return int((uint32(o) >> offset) & (1<<width - 1))
}

// Bit widths of the control flow operand fields. They double as the
// static bounds of nested evaluation.
const (
	callInputsBits  = 4
	callOutputsBits = 4
	sourceIndexBits = 8
	loopCountBits   = 8
)

// MaxLoopIterations is the maximum number of iterations of a LOOP_N.
const MaxLoopIterations = 1<<loopCountBits - 1

// MaxCallInputs and MaxCallOutputs bound the values passed into and
// returned by a CALL.
const (
	MaxCallInputs  = 1<<callInputsBits - 1
	MaxCallOutputs = 1<<callOutputsBits - 1
)

func pack(fields ...[3]uint) Operand {
	var res uint32
	for _, f := range fields {
		value, offset, width := f[0], f[1], f[2]
		if value >= 1<<width {
			panic(fmt.Sprintf("operand field value %d exceeds %d bits", value, width))
		}
		res |= uint32(value) << offset
	}
	return Operand(res)
}

func field(value int, offset, width uint) [3]uint {
	if value < 0 {
		panic(fmt.Sprintf("negative operand field value %d", value))
	}
	return [3]uint{uint(value), offset, width}
}

// IndexOperand is the operand of CONSTANT and STACK reads.
func IndexOperand(index int) Operand {
	return pack(field(index, 0, 16))
}

// ContextOperand is the operand of CONTEXT (row is ignored by CONTEXT_ROW).
func ContextOperand(column, row int) Operand {
	return pack(field(column, 0, 8), field(row, 8, 8))
}

// CallOperand is the operand of a CALL of the given source.
func CallOperand(inputs, outputs, source int) Operand {
	return pack(
		field(inputs, 0, callInputsBits),
		field(outputs, 4, callOutputsBits),
		field(source, 8, sourceIndexBits),
	)
}

// LoopNOperand is the operand of a LOOP_N running the given source n times.
func LoopNOperand(n, inputs, outputs, source int) Operand {
	return CallOperand(inputs, outputs, source) | pack(field(n, 16, loopCountBits))
}

// DoWhileOperand is the operand of a DO_WHILE carrying inputs state values.
func DoWhileOperand(inputs, source int) Operand {
	return pack(field(inputs, 0, 8), field(source, 8, sourceIndexBits))
}

// FoldContextOperand is the operand of a FOLD_CONTEXT.
func FoldContextOperand(column, startRow, width, accumulators, source int) Operand {
	return pack(
		field(column, 0, 8),
		field(source, 8, sourceIndexBits),
		field(width, 16, 4),
		field(accumulators, 20, 4),
		field(startRow, 24, 8),
	)
}

// ExternOperand is the operand of an EXTERN delegating to the given opcode
// of the given provider.
func ExternOperand(provider, opcode, inputs, outputs int) Operand {
	return pack(
		field(inputs, 0, 8),
		field(outputs, 8, 8),
		field(opcode, 16, 8),
		field(provider, 24, 8),
	)
}

// InputsOperand is the operand of opcodes with a variable number of inputs.
func InputsOperand(inputs int) Operand {
	return pack(field(inputs, 0, 8))
}

// PackedHashOperand is the operand of HASH_PACKED hashing the lowest width
// bytes of each input, each preceded by its length if prefixed is set.
func PackedHashOperand(inputs, width int, prefixed bool) Operand {
	flag := 0
	if prefixed {
		flag = 1
	}
	return pack(field(inputs, 0, 8), field(width, 8, 8), field(flag, 16, 1))
}

// BitFieldOperand is the operand of ENCODE_256 and DECODE_256.
func BitFieldOperand(start, length int) Operand {
	return pack(field(start, 0, 8), field(length, 8, 8))
}

// ShiftOperand is the operand of SHIFT_LEFT and SHIFT_RIGHT.
func ShiftOperand(bits int) Operand {
	return pack(field(bits, 0, 8))
}
