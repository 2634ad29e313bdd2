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

import "fmt"

// ConstError is an error type that can be used to define immutable error
// constants. Two ConstErrors with the same message are equal, so they can be
// compared using errors.Is.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

const (
	ErrUndefinedOpCode     = ConstError("undefined opcode")
	ErrUndefinedExtern     = ConstError("undefined extern provider")
	ErrInvalidOperand      = ConstError("invalid operand")
	ErrInvalidSourceIndex  = ConstError("invalid source index")
	ErrStackOverflow       = ConstError("stack overflow")
	ErrStackUnderflow      = ConstError("stack underflow")
	ErrCallDepth           = ConstError("call depth exceeded")
	ErrRecursiveCall       = ConstError("recursive source call")
	ErrBitFieldOutOfRange  = ConstError("bit field out of range")
	ErrNoSources           = ConstError("expression has no sources")
	ErrUnknownExpression   = ConstError("unknown expression")
	ErrInvalidEntrypoint   = ConstError("invalid entrypoint")
	ErrArithmeticOverflow  = ConstError("arithmetic overflow")
	ErrArithmeticUnderflow = ConstError("arithmetic underflow")
	ErrDivisionByZero      = ConstError("division by zero")
	ErrLoopLimit           = ConstError("loop iteration limit reached")
)

// --- verification errors ---

// StackUnderflowError is reported when an instruction requires more values
// than the current scope of the stack provides.
type StackUnderflowError struct {
	Needed    int
	Available int
}

func (e StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow: needed %d, available %d, deficit %d",
		e.Needed, e.Available, e.Needed-e.Available)
}

func (e StackUnderflowError) Is(target error) bool {
	return target == ErrStackUnderflow
}

// StackPopUnderflowError is reported when an instruction would pop values
// below the highwater mark left behind by a multi-output instruction.
type StackPopUnderflowError struct {
	Highwater int
	Top       int
}

func (e StackPopUnderflowError) Error() string {
	return fmt.Sprintf("stack pop underflow: highwater %d, top %d", e.Highwater, e.Top)
}

// MinFinalStackError is reported when a source ends with fewer values on the
// stack than required by its caller.
type MinFinalStackError struct {
	Min    int
	Actual int
}

func (e MinFinalStackError) Error() string {
	return fmt.Sprintf("min final stack: required %d, got %d", e.Min, e.Actual)
}

// OutOfBoundsConstantReadError is reported for constant references beyond
// the constants of an expression.
type OutOfBoundsConstantReadError struct {
	Length int
	Index  int
}

func (e OutOfBoundsConstantReadError) Error() string {
	return fmt.Sprintf("out of bounds constant read: index %d, length %d", e.Index, e.Length)
}

// OutOfBoundsStackReadError is reported for stack copies of values that are
// not (yet) on the stack of the current scope.
type OutOfBoundsStackReadError struct {
	Height int
	Index  int
}

func (e OutOfBoundsStackReadError) Error() string {
	return fmt.Sprintf("out of bounds stack read: index %d, height %d", e.Index, e.Height)
}

// InsufficientLoopOutputsError is reported for loops whose body produces
// fewer values than it consumes.
type InsufficientLoopOutputsError struct {
	Inputs  int
	Outputs int
}

func (e InsufficientLoopOutputsError) Error() string {
	return fmt.Sprintf("insufficient loop outputs: %d inputs, %d outputs", e.Inputs, e.Outputs)
}

// DoWhileMaxInputsError is reported for do-while loops carrying more state
// values than supported.
type DoWhileMaxInputsError struct {
	Inputs int
}

func (e DoWhileMaxInputsError) Error() string {
	return fmt.Sprintf("do-while max inputs exceeded: %d", e.Inputs)
}

// IntegrityError locates a verification failure within an expression. Use
// errors.As to obtain the details of the wrapped error.
type IntegrityError struct {
	Source   int
	Position int // -1 if the failure concerns the source as a whole
	Op       OpCode
	Err      error
}

func (e *IntegrityError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("integrity check of source %d failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("integrity check failed at %d:%d (%v): %v", e.Source, e.Position, e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// --- evaluation errors ---

// OutOfBoundsContextReadError is reported if an evaluation reads a context
// cell not provided by the caller.
type OutOfBoundsContextReadError struct {
	Column int
	Row    int
}

func (e OutOfBoundsContextReadError) Error() string {
	return fmt.Sprintf("out of bounds context read: column %d, row %d", e.Column, e.Row)
}

// BadInputsError is to be reported by extern providers receiving a number of
// inputs they do not support.
type BadInputsError struct {
	Expected int
	Actual   int
}

func (e BadInputsError) Error() string {
	return fmt.Sprintf("bad inputs: expected %d, got %d", e.Expected, e.Actual)
}

// BadOutputsError is reported if an extern provider returns a number of
// values different from the number declared by the calling instruction.
type BadOutputsError struct {
	Expected int
	Actual   int
}

func (e BadOutputsError) Error() string {
	return fmt.Sprintf("bad extern outputs: expected %d, got %d", e.Expected, e.Actual)
}

// EnsureFailedError is reported if a value checked by ENSURE is zero.
type EnsureFailedError struct {
	Index int
}

func (e EnsureFailedError) Error() string {
	return fmt.Sprintf("ensure failed for input %d", e.Index)
}

// EvalError locates a runtime failure aborting an evaluation.
type EvalError struct {
	Source   int
	Position int
	Op       OpCode
	Err      error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluation failed at %d:%d (%v): %v", e.Source, e.Position, e.Op, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
