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
	"fmt"

	"github.com/Fantom-foundation/Expr/go/expr"
)

// MaxCallDepth is the maximum nesting depth of sources reached through
// CALL, LOOP_N, DO_WHILE, and FOLD_CONTEXT instructions.
const MaxCallDepth = 15

// MaxDoWhileInputs is the maximum number of state values carried by a
// DO_WHILE loop.
const MaxDoWhileInputs = 15

// integrityState is the state of a single verification run. Stack positions
// are absolute word offsets of the simulated stack.
type integrityState struct {
	expression *expr.Expression
	table      *opTable
	maxHeight  int

	// the scope of the source currently walked
	stackBottom    int
	stackHighwater int
	stackTop       int
	stackMaxTop    int

	// callee results by source and number of inputs
	callees map[calleeKey]calleeResult
	// sources currently being walked
	active map[int]bool
}

type calleeKey struct {
	source int
	inputs int
}

// calleeResult summarizes the verification of a source in a fresh scope
// with a given number of inputs. All heights are relative to the bottom of
// the scope.
type calleeResult struct {
	height int // the final height
	peak   int // the maximum height
	depth  int // the nesting depth, 1 for sources without nested calls
}

func newIntegrityState(expression *expr.Expression, table *opTable, maxHeight int) *integrityState {
	return &integrityState{
		expression: expression,
		table:      table,
		maxHeight:  maxHeight,
		callees:    map[calleeKey]calleeResult{},
		active:     map[int]bool{},
	}
}

// verify checks all entrypoints of the given expression.
func verify(expression *expr.Expression, table *opTable, maxHeight int) (expr.IntegrityReport, error) {
	if len(expression.Sources) == 0 {
		return expr.IntegrityReport{}, &expr.IntegrityError{Source: 0, Position: -1, Err: expr.ErrNoSources}
	}
	if len(expression.MinOutputs) > len(expression.Sources) {
		return expr.IntegrityReport{}, &expr.IntegrityError{
			Source:   len(expression.Sources),
			Position: -1,
			Err:      fmt.Errorf("%w: %d entrypoints, %d sources", expr.ErrInvalidSourceIndex, len(expression.MinOutputs), len(expression.Sources)),
		}
	}

	if err := checkOpCodes(expression, table); err != nil {
		return expr.IntegrityReport{}, err
	}

	s := newIntegrityState(expression, table, maxHeight)
	report := expr.IntegrityReport{
		StackHeights: make([]int, len(expression.MinOutputs)),
		FinalHeights: make([]int, len(expression.MinOutputs)),
	}
	for i, minOutputs := range expression.MinOutputs {
		res, err := s.callee(i, 0)
		if err != nil {
			return expr.IntegrityReport{}, err
		}
		if res.height < minOutputs {
			return expr.IntegrityReport{}, &expr.IntegrityError{
				Source:   i,
				Position: -1,
				Err:      expr.MinFinalStackError{Min: minOutputs, Actual: res.height},
			}
		}
		if nested := res.depth - 1; nested > MaxCallDepth {
			return expr.IntegrityReport{}, &expr.IntegrityError{
				Source:   i,
				Position: -1,
				Err:      fmt.Errorf("%w: depth %d, limit %d", expr.ErrCallDepth, nested, MaxCallDepth),
			}
		}
		report.StackHeights[i] = res.peak
		report.FinalHeights[i] = res.height
	}
	return report, nil
}

// checkOpCodes resolves the opcode and the effect of every instruction of
// every source, including sources not reachable from any entrypoint.
func checkOpCodes(expression *expr.Expression, table *opTable) error {
	for i, source := range expression.Sources {
		for pc, instruction := range source {
			spec := table.get(instruction.Op)
			var err error
			if spec == nil {
				err = fmt.Errorf("%w: %v", expr.ErrUndefinedOpCode, instruction.Op)
			} else {
				_, _, err = spec.effect(instruction.Operand)
			}
			if err != nil {
				return &expr.IntegrityError{
					Source:   i,
					Position: pc,
					Op:       instruction.Op,
					Err:      err,
				}
			}
		}
	}
	return nil
}

// callee verifies the given source in a fresh scope holding the given
// number of inputs. Results are memoized, so each combination of source and
// inputs is walked at most once per verification run.
func (s *integrityState) callee(source, inputs int) (calleeResult, error) {
	if source < 0 || source >= len(s.expression.Sources) {
		return calleeResult{}, fmt.Errorf("%w: %d, have %d sources", expr.ErrInvalidSourceIndex, source, len(s.expression.Sources))
	}
	key := calleeKey{source: source, inputs: inputs}
	if res, found := s.callees[key]; found {
		return res, nil
	}
	// Without conditional branching, a cyclic call never terminates.
	if s.active[source] {
		return calleeResult{}, fmt.Errorf("%w: source %d", expr.ErrRecursiveCall, source)
	}
	s.active[source] = true
	defer delete(s.active, source)

	// Enter a fresh scope.
	outerBottom, outerHighwater := s.stackBottom, s.stackHighwater
	outerTop, outerMaxTop := s.stackTop, s.stackMaxTop
	s.stackBottom, s.stackHighwater = 0, 0
	s.stackTop, s.stackMaxTop = inputs, inputs

	depth, err := s.walk(source)

	res := calleeResult{
		height: s.stackTop,
		peak:   s.stackMaxTop,
		depth:  depth + 1,
	}
	s.stackBottom, s.stackHighwater = outerBottom, outerHighwater
	s.stackTop, s.stackMaxTop = outerTop, outerMaxTop
	if err != nil {
		return calleeResult{}, err
	}
	s.callees[key] = res
	return res, nil
}

// walk simulates the instructions of the given source in the current scope.
// It returns the maximum nesting depth of sources called by the source.
func (s *integrityState) walk(source int) (int, error) {
	depth := 0
	for pc, instruction := range s.expression.Sources[source] {
		nested, err := s.check(instruction)
		if err != nil {
			// Failures in nested sources are reported where they occur.
			var located *expr.IntegrityError
			if errors.As(err, &located) {
				return 0, err
			}
			return 0, &expr.IntegrityError{
				Source:   source,
				Position: pc,
				Op:       instruction.Op,
				Err:      err,
			}
		}
		depth = max(depth, nested)
	}
	return depth, nil
}

// check simulates a single instruction. It returns the nesting depth of the
// sources called by the instruction.
func (s *integrityState) check(instruction expr.Instruction) (int, error) {
	spec := s.table.get(instruction.Op)
	if spec == nil {
		return 0, fmt.Errorf("%w: %v", expr.ErrUndefinedOpCode, instruction.Op)
	}
	inputs, outputs, err := spec.effect(instruction.Operand)
	if err != nil {
		return 0, err
	}
	if spec.integrity != nil {
		return spec.integrity(s, instruction.Operand)
	}
	if err := s.pop(inputs); err != nil {
		return 0, err
	}
	return 0, s.push(outputs)
}

// pop removes n values from the simulated stack. Values may neither be
// taken from below the bottom of the current scope nor from below the
// highwater mark.
func (s *integrityState) pop(n int) error {
	if s.stackTop-n < s.stackBottom {
		return expr.StackUnderflowError{Needed: n, Available: s.stackTop - s.stackBottom}
	}
	if s.stackTop-n < s.stackHighwater {
		return expr.StackPopUnderflowError{
			Highwater: s.stackHighwater - s.stackBottom,
			Top:       s.stackTop - s.stackBottom,
		}
	}
	s.stackTop -= n
	return nil
}

// push adds n values to the simulated stack. Results of multi-output
// instructions below the topmost may not be popped afterwards.
func (s *integrityState) push(n int) error {
	s.stackTop += n
	if n > 1 {
		s.stackHighwater = s.stackTop - 1
	}
	return s.reach(s.stackTop)
}

// reach records that the stack grows up to the given absolute height.
func (s *integrityState) reach(height int) error {
	s.stackMaxTop = max(s.stackMaxTop, height)
	if s.stackMaxTop > s.maxHeight {
		return fmt.Errorf("%w: height %d, limit %d", expr.ErrStackOverflow, s.stackMaxTop, s.maxHeight)
	}
	return nil
}
