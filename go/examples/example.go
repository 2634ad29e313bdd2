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
	"fmt"

	"github.com/Fantom-foundation/Expr/go/expr"
)

// Example is an executable description of an expression with a (int)->int
// signature.
type Example struct {
	exampleSpec
	expressionRef expr.Address // the reference of the expression
}

// exampleSpec specifies an expression and the way an argument is passed to it.
type exampleSpec struct {
	Name       string
	Expression *expr.Expression
	context    func(int) expr.Context // builds the context passing the argument
	reference  func(int) int          // a reference function computing the same function
}

func (s exampleSpec) build() Example {
	if s.context == nil {
		s.context = argumentContext
	}
	reference, err := expr.Reference(s.Expression)
	if err != nil {
		panic(fmt.Sprintf("invalid example %s: %v", s.Name, err))
	}
	return Example{
		exampleSpec:   s,
		expressionRef: reference,
	}
}

type Result struct {
	Result int
}

// Reference returns the reference of the example's expression.
func (e *Example) Reference() expr.Address {
	return e.expressionRef
}

// Context returns the context passing the given argument to the example.
func (e *Example) Context(argument int) expr.Context {
	return e.context(argument)
}

// RunOn runs this example on the given interpreter, using the given argument.
func (e *Example) RunOn(interpreter expr.Interpreter, argument int) (Result, error) {
	reference, err := interpreter.Deploy(e.Expression)
	if err != nil {
		return Result{}, err
	}
	if reference != e.expressionRef {
		return Result{}, fmt.Errorf("unexpected expression reference, wanted %v, got %v", e.expressionRef, reference)
	}

	res, err := interpreter.Eval(expr.Parameters{
		Dispatch: expr.Dispatch{Expression: reference, MaxOutputs: 1},
		Context:  e.context(argument),
	})
	if err != nil {
		return Result{}, err
	}

	result, err := decodeOutput(res.Stack)
	if err != nil {
		return Result{}, err
	}
	return Result{Result: result}, nil
}

// RunReference runs the reference function of this example to produce the expected result.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

// GetAllExamples lists all examples of this package.
func GetAllExamples() []Example {
	return []Example{
		GetFibExample(),
		GetSumExample(),
		GetSquareExample(),
		GetScaleExample(),
		GetHashChainExample(),
	}
}

// GetExample looks up an example by its name.
func GetExample(name string) (Example, bool) {
	for _, example := range GetAllExamples() {
		if example.Name == name {
			return example, true
		}
	}
	return Example{}, false
}

// argumentContext passes the argument as the single cell of the context.
func argumentContext(argument int) expr.Context {
	return expr.Context{{expr.NewWord(uint64(argument))}}
}

// decodeOutput interprets the lower 8 bytes of the single output as an int.
func decodeOutput(output []expr.Word) (int, error) {
	if len(output) != 1 {
		return 0, fmt.Errorf("unexpected number of outputs; wanted 1, got %d", len(output))
	}
	return int(binary.BigEndian.Uint64(output[0][24:])), nil
}
