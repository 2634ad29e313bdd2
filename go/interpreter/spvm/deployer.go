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
	"slices"
	"sync"

	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
)

// instruction is the evaluation form of an expr.Instruction with its
// dispatch table entry and stack effect resolved.
type instruction struct {
	op      expr.OpCode
	operand expr.Operand
	spec    *opSpec
	inputs  int
	outputs int
}

// program is a verified expression prepared for evaluation.
type program struct {
	reference expr.Address
	code      [][]instruction
	constants []uint256.Int
	heights   []int // verified stack height of each entrypoint
}

// compile resolves the instructions of a verified expression. Instructions
// of sources not reachable from any entrypoint are never verified; those
// failing to resolve are kept without a specification and fail if run.
func compile(reference expr.Address, expression *expr.Expression, report expr.IntegrityReport, table *opTable) *program {
	res := &program{
		reference: reference,
		code:      make([][]instruction, len(expression.Sources)),
		constants: make([]uint256.Int, len(expression.Constants)),
		heights:   slices.Clone(report.StackHeights),
	}
	for i, source := range expression.Sources {
		code := make([]instruction, len(source))
		for pc, cur := range source {
			code[pc] = instruction{op: cur.Op, operand: cur.Operand}
			spec := table.get(cur.Op)
			if spec == nil {
				continue
			}
			inputs, outputs, err := spec.effect(cur.Operand)
			if err != nil {
				continue
			}
			code[pc].spec = spec
			code[pc].inputs = inputs
			code[pc].outputs = outputs
		}
		res.code[i] = code
	}
	for i, constant := range expression.Constants {
		res.constants[i].SetBytes32(constant[:])
	}
	return res
}

// verification is the memoized outcome of verifying an expression.
type verification struct {
	report expr.IntegrityReport
	err    error
}

// deployer keeps track of deployed expressions and caches verification
// results by expression reference.
type deployer struct {
	table     *opTable
	maxHeight int

	mutex    sync.RWMutex
	deployed map[expr.Address]*program
	verified *lru.Cache[expr.Address, verification] // nil if caching is disabled
}

func newDeployer(table *opTable, maxHeight int, cacheSize int) (*deployer, error) {
	if cacheSize == 0 {
		cacheSize = defaultVerificationCacheSize
	}
	var cache *lru.Cache[expr.Address, verification]
	if cacheSize > 0 {
		var err error
		cache, err = lru.New[expr.Address, verification](cacheSize)
		if err != nil {
			return nil, err
		}
	}
	return &deployer{
		table:     table,
		maxHeight: maxHeight,
		deployed:  map[expr.Address]*program{},
		verified:  cache,
	}, nil
}

const defaultVerificationCacheSize = 1 << 10

func (d *deployer) verify(expression *expr.Expression) (expr.Address, expr.IntegrityReport, error) {
	reference, err := expr.Reference(expression)
	if err != nil {
		return expr.Address{}, expr.IntegrityReport{}, fmt.Errorf("failed to encode expression: %w", err)
	}
	if d.verified != nil {
		if res, found := d.verified.Get(reference); found {
			return reference, res.report, res.err
		}
	}
	report, err := verify(expression, d.table, d.maxHeight)
	if d.verified != nil {
		d.verified.Add(reference, verification{report: report, err: err})
	}
	return reference, report, err
}

func (d *deployer) deploy(expression *expr.Expression) (expr.Address, error) {
	reference, report, err := d.verify(expression)
	if err != nil {
		log.Debug("Rejected expression", "reference", reference, "err", err)
		return expr.Address{}, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if _, found := d.deployed[reference]; found {
		return reference, nil
	}
	d.deployed[reference] = compile(reference, expression, report, d.table)
	log.Debug("Deployed expression", "reference", reference,
		"sources", len(expression.Sources), "entrypoints", len(expression.MinOutputs),
		"stack", report.MaxStackHeight())
	return reference, nil
}

func (d *deployer) get(reference expr.Address) (*program, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	res, found := d.deployed[reference]
	return res, found
}
