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
	"github.com/holiman/uint256"
)

// context is the execution environment of a single evaluation. It contains
// all the necessary state to evaluate an entrypoint, including the input
// parameters, the deployed program, and internal state such as the stack
// and the staged key/value entries. For each evaluation, a new context is
// created.
type context struct {
	// Inputs
	params  expr.Parameters
	program *program
	table   *opTable
	config  interpreterConfig

	// Execution state
	stack *stack
	kvs   kvStaging
	depth int

	// observer, if set, is notified before each instruction is executed.
	observer func(c *context, source int, pc int, op expr.OpCode)
}

// interpreterConfig summarizes the configuration options relevant during
// evaluation.
type interpreterConfig struct {
	maxDoWhileIterations int
	hashes               *sha3HashCache
	runner               runner
}

// --- Interpreter ---

type runner interface {
	// run evaluates the source of the context's dispatch. Any failure of the
	// evaluation is returned as an error.
	run(c *context, source int) error
}

func run(
	config interpreterConfig,
	table *opTable,
	params expr.Parameters,
	program *program,
) (expr.Result, error) {
	source := int(params.Dispatch.Source)
	if source >= len(program.heights) {
		return expr.Result{}, fmt.Errorf("%w: source %d, expression has %d entrypoints", expr.ErrInvalidEntrypoint, source, len(program.heights))
	}

	// Set up execution context.
	var ctxt = context{
		params:  params,
		program: program,
		table:   table,
		config:  config,
		stack:   newStack(program.heights[source]),
	}
	defer returnStack(ctxt.stack)

	if config.runner == nil {
		config.runner = vanillaRunner{}
	}
	if err := config.runner.run(&ctxt, source); err != nil {
		return expr.Result{}, err
	}

	return generateResult(&ctxt), nil
}

func generateResult(ctxt *context) expr.Result {
	outputs := min(int(ctxt.params.Dispatch.MaxOutputs), ctxt.stack.len())
	stack := make([]expr.Word, outputs)
	for i, value := range ctxt.stack.topN(outputs) {
		stack[i] = value.Bytes32()
	}
	return expr.Result{
		Stack: stack,
		KVs:   ctxt.kvs.list(),
	}
}

// --- Runners ---

// vanillaRunner is the default runner that evaluates expressions without
// any additional features.
type vanillaRunner struct{}

func (r vanillaRunner) run(c *context, source int) error {
	return c.runSource(source)
}

// --- Execution ---

// runSource evaluates the instructions of the given source in the active
// scope of the stack. Failures are reported as *expr.EvalError locating the
// innermost failing instruction.
func (c *context) runSource(source int) error {
	code := c.program.code[source]
	for pc := range code {
		instruction := &code[pc]
		if c.observer != nil {
			c.observer(c, source, pc, instruction.op)
		}
		if err := c.step(instruction); err != nil {
			var located *expr.EvalError
			if errors.As(err, &located) {
				return err
			}
			return &expr.EvalError{
				Source:   source,
				Position: pc,
				Op:       instruction.op,
				Err:      err,
			}
		}
	}
	return nil
}

// step executes a single instruction.
func (c *context) step(instruction *instruction) error {
	spec := instruction.spec
	if spec == nil {
		return fmt.Errorf("%w: %v", expr.ErrUndefinedOpCode, instruction.op)
	}

	// Check stack boundary for every instruction
	if err := checkStackLimits(c.stack, instruction.inputs, instruction.outputs); err != nil {
		return err
	}

	if spec.run != nil {
		return spec.run(c, instruction.operand)
	}
	_, err := c.stack.applyFn(instruction.inputs, instruction.outputs, func(inputs, outputs []uint256.Int) error {
		return spec.eval(instruction.operand, inputs, outputs)
	})
	return err
}

// checkStackLimits checks that the active scope holds enough values for the
// given instruction and that its results fit into the stack.
func checkStackLimits(s *stack, inputs, outputs int) error {
	if s.len() < inputs {
		return expr.StackUnderflowError{Needed: inputs, Available: s.len()}
	}
	if s.top-inputs+outputs > s.capacity() {
		return expr.ErrStackOverflow
	}
	return nil
}
