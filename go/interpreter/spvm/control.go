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
)

// This file contains the memory read and control flow opcodes. Each opcode
// consists of an effect, an integrity check, and a run function.

// --- Memory reads ---

func checkConstant(s *integrityState, operand expr.Operand) (int, error) {
	index := operand.Field(0, 16)
	if length := len(s.expression.Constants); index >= length {
		return 0, expr.OutOfBoundsConstantReadError{Length: length, Index: index}
	}
	return 0, s.push(1)
}

func opConstant(c *context, operand expr.Operand) error {
	c.stack.push(&c.program.constants[operand.Field(0, 16)])
	return nil
}

func checkStack(s *integrityState, operand expr.Operand) (int, error) {
	index := operand.Field(0, 16)
	if height := s.stackTop - s.stackBottom; index >= height {
		return 0, expr.OutOfBoundsStackReadError{Height: height, Index: index}
	}
	return 0, s.push(1)
}

func opStack(c *context, operand expr.Operand) error {
	value := *c.stack.get(operand.Field(0, 16))
	c.stack.push(&value)
	return nil
}

func opContext(c *context, operand expr.Operand) error {
	column, row := operand.Field(0, 8), operand.Field(8, 8)
	value, found := c.params.Context.Get(column, row)
	if !found {
		return expr.OutOfBoundsContextReadError{Column: column, Row: row}
	}
	c.stack.pushUndefined().SetBytes32(value[:])
	return nil
}

func opContextRow(c *context, operand expr.Operand) error {
	column := operand.Field(0, 8)
	top := c.stack.peek()
	row := -1
	if top.IsUint64() && top.Uint64() <= uint64(maxContextRow) {
		row = int(top.Uint64())
	}
	value, found := c.params.Context.Get(column, row)
	if !found {
		return expr.OutOfBoundsContextReadError{Column: column, Row: row}
	}
	top.SetBytes32(value[:])
	return nil
}

const maxContextRow = 1<<31 - 1

// --- CALL ---

func callOperands(operand expr.Operand) (inputs, outputs, source int) {
	return operand.Field(0, 4), operand.Field(4, 4), operand.Field(8, 8)
}

func callEffect(operand expr.Operand) (int, int, error) {
	inputs, outputs, _ := callOperands(operand)
	return inputs, outputs, nil
}

func checkCall(s *integrityState, operand expr.Operand) (int, error) {
	inputs, outputs, source := callOperands(operand)
	if err := s.pop(inputs); err != nil {
		return 0, err
	}
	res, err := s.calleeWithOutputs(source, inputs, outputs)
	if err != nil {
		return 0, err
	}
	if err := s.reach(s.stackTop + res.peak); err != nil {
		return 0, err
	}
	return res.depth, s.push(outputs)
}

// calleeWithOutputs verifies the given source and checks that it leaves at
// least the given number of values.
func (s *integrityState) calleeWithOutputs(source, inputs, outputs int) (calleeResult, error) {
	res, err := s.callee(source, inputs)
	if err != nil {
		return calleeResult{}, err
	}
	if res.height < outputs {
		return calleeResult{}, expr.MinFinalStackError{Min: outputs, Actual: res.height}
	}
	return res, nil
}

func opCall(c *context, operand expr.Operand) error {
	inputs, outputs, source := callOperands(operand)
	return c.call(source, inputs, outputs)
}

// call evaluates the given source in a nested scope consisting of the
// topmost inputs values. The topmost outputs values left by the source
// replace the inputs.
func (c *context) call(source, inputs, outputs int) error {
	if c.depth >= MaxCallDepth {
		return expr.ErrCallDepth
	}
	c.depth++
	outer := c.stack.enter(inputs)
	err := c.runSource(source)
	c.depth--
	if err != nil {
		return err
	}
	if c.stack.len() < outputs {
		return expr.StackUnderflowError{Needed: outputs, Available: c.stack.len()}
	}
	c.stack.leave(outputs, outer)
	return nil
}

// --- LOOP_N ---

func loopNOperands(operand expr.Operand) (n, inputs, outputs, source int) {
	inputs, outputs, source = callOperands(operand)
	return operand.Field(16, 8), inputs, outputs, source
}

func loopNEffect(operand expr.Operand) (int, int, error) {
	n, inputs, outputs, _ := loopNOperands(operand)
	if outputs < inputs {
		return 0, 0, expr.InsufficientLoopOutputsError{Inputs: inputs, Outputs: outputs}
	}
	return inputs, inputs + n*(outputs-inputs), nil
}

func checkLoopN(s *integrityState, operand expr.Operand) (int, error) {
	n, inputs, outputs, source := loopNOperands(operand)
	if err := s.pop(inputs); err != nil {
		return 0, err
	}
	res, err := s.calleeWithOutputs(source, inputs, outputs)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		s.stackTop += inputs
		return res.depth, nil
	}
	// Iterations are threaded without intermediate highwater marks; the
	// last iteration starts at the highest position and reaches the peak.
	last := s.stackTop + (n-1)*(outputs-inputs)
	if err := s.reach(last + res.peak); err != nil {
		return 0, err
	}
	s.stackTop = last
	return res.depth, s.push(outputs)
}

func opLoopN(c *context, operand expr.Operand) error {
	n, inputs, outputs, source := loopNOperands(operand)
	for i := 0; i < n; i++ {
		if err := c.call(source, inputs, outputs); err != nil {
			return err
		}
	}
	return nil
}

// --- DO_WHILE ---

func doWhileOperands(operand expr.Operand) (inputs, source int) {
	return operand.Field(0, 8), operand.Field(8, 8)
}

func doWhileEffect(operand expr.Operand) (int, int, error) {
	inputs, _ := doWhileOperands(operand)
	if inputs > MaxDoWhileInputs {
		return 0, 0, expr.DoWhileMaxInputsError{Inputs: inputs}
	}
	return inputs + 1, inputs, nil
}

func checkDoWhile(s *integrityState, operand expr.Operand) (int, error) {
	inputs, source := doWhileOperands(operand)
	// The state values and the condition are consumed at once.
	if err := s.pop(inputs + 1); err != nil {
		return 0, err
	}
	// The body maps the state to a new state and a new condition.
	res, err := s.calleeWithOutputs(source, inputs, inputs+1)
	if err != nil {
		return 0, err
	}
	if err := s.reach(s.stackTop + res.peak); err != nil {
		return 0, err
	}
	return res.depth, s.push(inputs)
}

func opDoWhile(c *context, operand expr.Operand) error {
	inputs, source := doWhileOperands(operand)
	condition := c.stack.pop()
	for iterations := 0; !condition.IsZero(); iterations++ {
		if iterations >= c.config.maxDoWhileIterations {
			return fmt.Errorf("%w: %d do-while iterations", expr.ErrLoopLimit, iterations)
		}
		if err := c.call(source, inputs, inputs+1); err != nil {
			return err
		}
		condition = c.stack.pop()
	}
	return nil
}

// --- FOLD_CONTEXT ---

func foldContextOperands(operand expr.Operand) (column, source, width, accumulators, startRow int) {
	return operand.Field(0, 8), operand.Field(8, 8), operand.Field(16, 4), operand.Field(20, 4), operand.Field(24, 8)
}

func foldContextEffect(operand expr.Operand) (int, int, error) {
	_, _, _, accumulators, _ := foldContextOperands(operand)
	return accumulators, accumulators, nil
}

func checkFoldContext(s *integrityState, operand expr.Operand) (int, error) {
	_, source, width, accumulators, _ := foldContextOperands(operand)
	if err := s.pop(accumulators); err != nil {
		return 0, err
	}
	// The reducer receives the accumulators followed by the row values.
	res, err := s.calleeWithOutputs(source, accumulators+width, accumulators)
	if err != nil {
		return 0, err
	}
	if err := s.reach(s.stackTop + res.peak); err != nil {
		return 0, err
	}
	return res.depth, s.push(accumulators)
}

func opFoldContext(c *context, operand expr.Operand) error {
	column, source, width, accumulators, startRow := foldContextOperands(operand)
	if column >= len(c.params.Context) {
		return expr.OutOfBoundsContextReadError{Column: column, Row: startRow}
	}
	rows := len(c.params.Context[column])
	for row := startRow; row < rows; row++ {
		if c.stack.top+width > c.stack.capacity() {
			return expr.ErrStackOverflow
		}
		for j := 0; j < width; j++ {
			value, found := c.params.Context.Get(column+j, row)
			if !found {
				return expr.OutOfBoundsContextReadError{Column: column + j, Row: row}
			}
			c.stack.pushUndefined().SetBytes32(value[:])
		}
		if err := c.call(source, accumulators+width, accumulators); err != nil {
			return err
		}
	}
	return nil
}

// --- EXTERN ---

func externOperands(operand expr.Operand) (inputs, outputs, opcode, provider int) {
	return operand.Field(0, 8), operand.Field(8, 8), operand.Field(16, 8), operand.Field(24, 8)
}

func externEffect(operand expr.Operand) (int, int, error) {
	inputs, outputs, _, _ := externOperands(operand)
	return inputs, outputs, nil
}

func checkExtern(s *integrityState, operand expr.Operand) (int, error) {
	inputs, outputs, _, provider := externOperands(operand)
	if provider >= len(s.table.externs) || s.table.externs[provider] == nil {
		return 0, fmt.Errorf("%w: %d", expr.ErrUndefinedExtern, provider)
	}
	if err := s.pop(inputs); err != nil {
		return 0, err
	}
	return 0, s.push(outputs)
}

func opExtern(c *context, operand expr.Operand) error {
	inputs, outputs, opcode, provider := externOperands(operand)
	results, err := c.table.externs[provider].Extern(uint8(opcode), common.ToWords(c.stack.topN(inputs)))
	if err != nil {
		return fmt.Errorf("extern %d, opcode %d: %w", provider, opcode, err)
	}
	if len(results) != outputs {
		return expr.BadOutputsError{Expected: outputs, Actual: len(results)}
	}
	c.stack.top -= inputs
	for i := range results {
		c.stack.pushUndefined().SetBytes32(results[i][:])
	}
	return nil
}
