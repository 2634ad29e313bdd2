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
)

// kvStaging collects the entries written by SET instructions of a single
// evaluation. A later write of a key supersedes earlier ones.
type kvStaging struct {
	entries []expr.KV
	index   map[expr.Word]int
}

func (s *kvStaging) set(key, value expr.Word) {
	if pos, found := s.index[key]; found {
		s.entries[pos].Value = value
		return
	}
	if s.index == nil {
		s.index = map[expr.Word]int{}
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, expr.KV{Key: key, Value: value})
}

func (s *kvStaging) get(key expr.Word) (expr.Word, bool) {
	pos, found := s.index[key]
	if !found {
		return expr.Word{}, false
	}
	return s.entries[pos].Value, true
}

// list returns the staged entries in the order of their first write.
func (s *kvStaging) list() []expr.KV {
	return s.entries
}

// get resolves a key visible to the evaluation: staged entries take
// precedence over committed ones. Keys never written read as zero.
func (c *context) get(key expr.Word) (expr.Word, error) {
	if value, found := c.kvs.get(key); found {
		return value, nil
	}
	if c.params.Store == nil {
		return expr.Word{}, nil
	}
	value, err := c.params.Store.Get(c.params.Caller, c.params.Namespace, key)
	if err != nil {
		return expr.Word{}, fmt.Errorf("failed to read key %v: %w", key, err)
	}
	return value, nil
}

func opGet(c *context, _ expr.Operand) error {
	top := c.stack.peek()
	value, err := c.get(top.Bytes32())
	if err != nil {
		return err
	}
	top.SetBytes32(value[:])
	return nil
}

// opSet stages the value on top of the stack under the key below it.
func opSet(c *context, _ expr.Operand) error {
	value := c.stack.pop().Bytes32()
	key := c.stack.pop().Bytes32()
	c.kvs.set(key, value)
	return nil
}
