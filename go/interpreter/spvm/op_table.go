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

	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/holiman/uint256"
)

// effectFn derives the number of values consumed and produced by an
// instruction from its operand only. It fails for malformed operands.
type effectFn func(operand expr.Operand) (inputs, outputs int, err error)

// evalFn is the pure computation of a leaf opcode. The inputs are ordered
// bottom to top; the function must fill all outputs.
type evalFn func(operand expr.Operand, inputs, outputs []uint256.Int) error

// runFn implements opcodes depending on the evaluation context, such as
// memory reads, control flow, or store access.
type runFn func(c *context, operand expr.Operand) error

// integrityFn replaces the default pop/push simulation of the verifier for
// opcodes with additional static checks. It returns the nesting depth of
// the sources called by the instruction.
type integrityFn func(s *integrityState, operand expr.Operand) (int, error)

// opSpec is a single entry of the dispatch table. Exactly one of eval and
// run is set.
type opSpec struct {
	name      string
	effect    effectFn
	eval      evalFn
	run       runFn
	integrity integrityFn
}

// opTable maps opcode ids to their specification. Tables are created once
// per interpreter instance and are read-only afterwards.
type opTable struct {
	specs   [expr.MaxOpCode + 1]*opSpec
	externs []expr.Extern
}

func (t *opTable) get(op expr.OpCode) *opSpec {
	if op > expr.MaxOpCode {
		return nil
	}
	return t.specs[op]
}

// OpcodeDefinition describes a leaf opcode provided in addition to the core
// instruction set. Both functions must be pure.
type OpcodeDefinition struct {
	Name string
	// Effect returns the number of inputs and outputs of an instruction with
	// the given operand.
	Effect func(operand expr.Operand) (inputs, outputs int, err error)
	// Eval computes the outputs of the opcode from its inputs, ordered
	// bottom to top. The number of returned values must match the number of
	// outputs declared by Effect.
	Eval func(operand expr.Operand, inputs []expr.Word) ([]expr.Word, error)
}

func newOpTable(config Config) (*opTable, error) {
	res := &opTable{externs: config.Externs}
	for op, spec := range coreOpSpecs() {
		spec.name = op.String()
		res.specs[op] = spec
	}
	for op, definition := range config.Extensions {
		if op < expr.FirstExtensionOpCode || op > expr.MaxOpCode {
			return nil, fmt.Errorf("invalid extension opcode %v, must be in range [%v, %v]", op, expr.FirstExtensionOpCode, expr.MaxOpCode)
		}
		if definition.Effect == nil || definition.Eval == nil {
			return nil, fmt.Errorf("incomplete definition of extension opcode %v", op)
		}
		spec := extensionSpec(definition)
		if spec.name == "" {
			spec.name = op.String()
		}
		res.specs[op] = spec
	}
	return res, nil
}

func extensionSpec(definition OpcodeDefinition) *opSpec {
	return &opSpec{
		name:   definition.Name,
		effect: definition.Effect,
		eval: func(operand expr.Operand, inputs, outputs []uint256.Int) error {
			words := make([]expr.Word, len(inputs))
			for i := range inputs {
				words[i] = inputs[i].Bytes32()
			}
			results, err := definition.Eval(operand, words)
			if err != nil {
				return err
			}
			if len(results) != len(outputs) {
				return expr.BadOutputsError{Expected: len(outputs), Actual: len(results)}
			}
			for i := range results {
				outputs[i].SetBytes32(results[i][:])
			}
			return nil
		},
	}
}

// --- effect helpers ---

func fixed(inputs, outputs int) effectFn {
	return func(expr.Operand) (int, int, error) {
		return inputs, outputs, nil
	}
}

// nary is the effect of opcodes with a variable number of inputs encoded in
// the lowest 8 bits of the operand and a single output.
func nary(minInputs int) effectFn {
	return func(operand expr.Operand) (int, int, error) {
		inputs := operand.Field(0, 8)
		if inputs < minInputs {
			return 0, 0, fmt.Errorf("%w: %d inputs, at least %d required", expr.ErrInvalidOperand, inputs, minInputs)
		}
		return inputs, 1, nil
	}
}

func naryToNone(minInputs int) effectFn {
	return func(operand expr.Operand) (int, int, error) {
		inputs := operand.Field(0, 8)
		if inputs < minInputs {
			return 0, 0, fmt.Errorf("%w: %d inputs, at least %d required", expr.ErrInvalidOperand, inputs, minInputs)
		}
		return inputs, 0, nil
	}
}

func coreOpSpecs() map[expr.OpCode]*opSpec {
	return map[expr.OpCode]*opSpec{
		// Memory reads
		expr.CONSTANT:    {effect: fixed(0, 1), run: opConstant, integrity: checkConstant},
		expr.STACK:       {effect: fixed(0, 1), run: opStack, integrity: checkStack},
		expr.CONTEXT:     {effect: fixed(0, 1), run: opContext},
		expr.CONTEXT_ROW: {effect: fixed(1, 1), run: opContextRow},

		// Control flow
		expr.CALL:         {effect: callEffect, run: opCall, integrity: checkCall},
		expr.LOOP_N:       {effect: loopNEffect, run: opLoopN, integrity: checkLoopN},
		expr.DO_WHILE:     {effect: doWhileEffect, run: opDoWhile, integrity: checkDoWhile},
		expr.FOLD_CONTEXT: {effect: foldContextEffect, run: opFoldContext, integrity: checkFoldContext},
		expr.EXTERN:       {effect: externEffect, run: opExtern, integrity: checkExtern},

		// Key-value store
		expr.GET: {effect: fixed(1, 1), run: opGet},
		expr.SET: {effect: fixed(2, 0), run: opSet},

		// Lists and hashing
		expr.SENTINEL:    {effect: fixed(0, 1), eval: opSentinel},
		expr.HASH:        {effect: nary(1), run: opHash},
		expr.HASH_PACKED: {effect: packedHashEffect, eval: opHashPacked},
		expr.ENSURE:      {effect: naryToNone(1), eval: opEnsure},

		// Checked arithmetic
		expr.ADD: {effect: nary(2), eval: opAdd},
		expr.SUB: {effect: nary(2), eval: opSub},
		expr.MUL: {effect: nary(2), eval: opMul},
		expr.DIV: {effect: nary(2), eval: opDiv},
		expr.MOD: {effect: nary(2), eval: opMod},
		expr.EXP: {effect: nary(2), eval: opExp},

		// Saturating arithmetic
		expr.SATURATING_ADD: {effect: nary(2), eval: opSaturatingAdd},
		expr.SATURATING_SUB: {effect: nary(2), eval: opSaturatingSub},
		expr.SATURATING_MUL: {effect: nary(2), eval: opSaturatingMul},

		// Comparison and logic
		expr.MIN:          {effect: nary(2), eval: opMin},
		expr.MAX:          {effect: nary(2), eval: opMax},
		expr.EQUAL_TO:     {effect: fixed(2, 1), eval: opEqualTo},
		expr.LESS_THAN:    {effect: fixed(2, 1), eval: opLessThan},
		expr.GREATER_THAN: {effect: fixed(2, 1), eval: opGreaterThan},
		expr.IS_ZERO:      {effect: fixed(1, 1), eval: opIsZero},
		expr.EVERY:        {effect: nary(1), eval: opEvery},
		expr.ANY:          {effect: nary(1), eval: opAny},
		expr.EAGER_IF:     {effect: fixed(3, 1), eval: opEagerIf},

		// Bit operations
		expr.ENCODE_256:  {effect: bitFieldEffect(2), eval: opEncode256},
		expr.DECODE_256:  {effect: bitFieldEffect(1), eval: opDecode256},
		expr.EXPLODE_32:  {effect: fixed(1, 8), eval: opExplode32},
		expr.BITWISE_AND: {effect: fixed(2, 1), eval: opBitwiseAnd},
		expr.BITWISE_OR:  {effect: fixed(2, 1), eval: opBitwiseOr},
		expr.SHIFT_LEFT:  {effect: shiftEffect, eval: opShiftLeft},
		expr.SHIFT_RIGHT: {effect: shiftEffect, eval: opShiftRight},
	}
}

func init() {
	for op, spec := range coreOpSpecs() {
		if spec.effect == nil || (spec.eval == nil) == (spec.run == nil) {
			panic(fmt.Sprintf("invalid specification of %v", op))
		}
	}
}
