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
	"os"

	"github.com/Fantom-foundation/Expr/go/expr"
)

// Registers the stack-pointer VM as a possible interpreter implementation.
func init() {
	modes := map[string]func() runner{
		// This is the officially supported configuration to be used for
		// production purposes.
		"spvm": nil,

		// Diagnostic configurations tracing instructions to stderr or
		// collecting instruction statistics.
		"spvm-logging": func() runner { return newLogger(os.Stderr) },
		"spvm-stats":   func() runner { return &statisticRunner{stats: newStatistics()} },
	}

	for name, mode := range modes {
		mode := mode
		err := expr.RegisterInterpreterFactory(name, func(config any) (expr.Interpreter, error) {
			var c Config
			switch cur := config.(type) {
			case nil:
				c = Config{WithHashCache: true}
			case Config:
				c = cur
			default:
				return nil, fmt.Errorf("unsupported configuration type %T", config)
			}
			if mode != nil {
				c.runner = mode()
			}
			return NewVm(c)
		})
		if err != nil {
			panic(err)
		}
	}
}

type Config struct {
	// MaxStackHeight is the maximum stack height a verified expression may
	// reach. If zero, a default of 1024 is used.
	MaxStackHeight int
	// MaxDoWhileIterations bounds the number of iterations of a single
	// DO_WHILE instruction. If zero, a default of 65536 is used.
	MaxDoWhileIterations int
	// VerificationCacheSize is the number of verification results kept. If
	// zero, a default size is used. If negative, no cache is used.
	VerificationCacheSize int
	// WithHashCache enables caching of one and two word HASH inputs.
	WithHashCache bool
	// Externs lists the extern providers by the id used in EXTERN operands.
	Externs []expr.Extern
	// Extensions binds additional leaf opcodes.
	Extensions map[expr.OpCode]OpcodeDefinition

	runner runner
}

const defaultMaxDoWhileIterations = 1 << 16

type spvm struct {
	config   Config
	table    *opTable
	hashes   *sha3HashCache
	deployer *deployer
}

func NewVm(config Config) (*spvm, error) {
	if config.MaxStackHeight == 0 {
		config.MaxStackHeight = defaultMaxStackHeight
	}
	if config.MaxDoWhileIterations == 0 {
		config.MaxDoWhileIterations = defaultMaxDoWhileIterations
	}
	if config.MaxStackHeight < 0 || config.MaxDoWhileIterations < 0 {
		return nil, fmt.Errorf("invalid limits: stack height %d, do-while iterations %d", config.MaxStackHeight, config.MaxDoWhileIterations)
	}
	if len(config.Externs) > 256 {
		return nil, fmt.Errorf("too many extern providers: %d, at most 256 supported", len(config.Externs))
	}
	table, err := newOpTable(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch table: %w", err)
	}
	deployer, err := newDeployer(table, config.MaxStackHeight, config.VerificationCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create deployer: %w", err)
	}
	var hashes *sha3HashCache
	if config.WithHashCache {
		hashes, err = newSha3HashCache(1<<12, 1<<12)
		if err != nil {
			return nil, fmt.Errorf("failed to create hash cache: %w", err)
		}
	}
	return &spvm{
		config:   config,
		table:    table,
		hashes:   hashes,
		deployer: deployer,
	}, nil
}

func (v *spvm) Verify(expression *expr.Expression) (expr.IntegrityReport, error) {
	_, report, err := v.deployer.verify(expression)
	return report, err
}

func (v *spvm) Deploy(expression *expr.Expression) (expr.Address, error) {
	return v.deployer.deploy(expression)
}

func (v *spvm) Eval(params expr.Parameters) (expr.Result, error) {
	program, found := v.deployer.get(params.Dispatch.Expression)
	if !found {
		return expr.Result{}, fmt.Errorf("%w: %v", expr.ErrUnknownExpression, params.Dispatch.Expression)
	}
	config := interpreterConfig{
		maxDoWhileIterations: v.config.MaxDoWhileIterations,
		hashes:               v.hashes,
		runner:               v.config.runner,
	}
	return run(config, v.table, params, program)
}

var _ expr.ProfilingInterpreter = (*spvm)(nil)

func (v *spvm) DumpProfile() {
	if statsRunner, ok := v.config.runner.(*statisticRunner); ok {
		fmt.Print(statsRunner.getSummary())
	}
}

func (v *spvm) ResetProfile() {
	if statsRunner, ok := v.config.runner.(*statisticRunner); ok {
		statsRunner.reset()
	}
}
