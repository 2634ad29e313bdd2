// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package store provides implementations of the expr.Store interface.
package store

import (
	"sync"

	"github.com/Fantom-foundation/Expr/go/expr"
)

// Memory is a volatile store keeping all entries in a map. It is safe for
// concurrent use.
type Memory struct {
	mutex   sync.RWMutex
	entries map[expr.StoreKey]expr.Word
}

func NewMemory() *Memory {
	return &Memory{entries: map[expr.StoreKey]expr.Word{}}
}

func (m *Memory) Get(caller expr.Address, namespace expr.Namespace, key expr.Word) (expr.Word, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.entries[expr.StoreKey{Caller: caller, Namespace: namespace, Key: key}], nil
}

func (m *Memory) Commit(caller expr.Address, namespace expr.Namespace, kvs []expr.KV) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, kv := range kvs {
		m.entries[expr.StoreKey{Caller: caller, Namespace: namespace, Key: kv.Key}] = kv.Value
	}
	return nil
}

// Len returns the number of entries ever committed under distinct keys.
func (m *Memory) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.entries)
}
