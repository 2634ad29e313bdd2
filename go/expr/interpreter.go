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

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package expr

// Interpreter is a component capable of verifying, deploying, and evaluating
// expressions. To obtain an Interpreter instance, client code should use
// NewInterpreter() provided by the registry file in this package.
//
// Interpreters are required to be thread-safe. Thus, multiple evaluations
// may be conducted in parallel.
type Interpreter interface {
	// Verify statically checks the given expression without evaluating any
	// of its instructions. On success, the report lists the stack heights
	// required for evaluating the expression's entrypoints. Verification
	// failures are reported as *IntegrityError.
	Verify(*Expression) (IntegrityReport, error)

	// Deploy verifies the given expression and, if successful, makes it
	// available for evaluation under the returned reference. Deploying the
	// same expression twice yields the same reference.
	Deploy(*Expression) (Address, error)

	// Eval evaluates the entrypoint selected by the dispatch of the given
	// parameters. The evaluation is all-or-nothing: on failure, no stack or
	// staged key/value entries are returned. Runtime failures are reported
	// as *EvalError.
	Eval(Parameters) (Result, error)
}

// ProfilingInterpreter is an optional extension to the Interpreter interface
// above which may be implemented by interpreters collecting statistical data
// on their evaluations.
type ProfilingInterpreter interface {
	Interpreter

	// ResetProfile resets the operation statistic collected by the underlying
	// Interpreter implementation. It should not be called while evaluations
	// are running on the Interpreter in parallel.
	ResetProfile()

	// DumpProfile prints a snapshot of the profiling data collected since the
	// last reset to stdout.
	DumpProfile()
}

// Parameters summarizes the inputs of an evaluation.
type Parameters struct {
	Dispatch  Dispatch
	Context   Context
	Store     Store // may be nil, in which case all reads of committed entries yield zero
	Caller    Address
	Namespace Namespace
}

// Result is the outcome of a successful evaluation.
type Result struct {
	// Stack lists the values left on the stack by the entrypoint, bottom
	// to top, truncated to the maximum number of outputs requested by the
	// dispatch.
	Stack []Word
	// KVs lists the entries staged by SET instructions in the order of
	// their first write. It is up to the caller to commit them.
	KVs []KV
}

// IntegrityReport is the result of a successful verification.
type IntegrityReport struct {
	// StackHeights lists the maximum stack height reached by each
	// entrypoint, including nested sources.
	StackHeights []int
	// FinalHeights lists the stack height at the end of each entrypoint.
	FinalHeights []int
}

// MaxStackHeight is the maximum of all entrypoint stack heights.
func (r IntegrityReport) MaxStackHeight() int {
	res := 0
	for _, cur := range r.StackHeights {
		res = max(res, cur)
	}
	return res
}
