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

//go:generate mockgen -source store.go -destination store_mock.go -package expr

// Store persists committed key/value entries. Entries are partitioned by
// the calling contract and the namespace; an entry written under one
// partition is never visible under another, even for the same key.
//
// Interpreters only read from a store. Entries produced by an evaluation are
// handed to the caller, which decides whether to commit them.
type Store interface {
	// Get returns the committed value of the key in the given partition, or
	// zero if it was never set.
	Get(caller Address, namespace Namespace, key Word) (Word, error)

	// Commit writes the given entries in order into the given partition.
	Commit(caller Address, namespace Namespace, kvs []KV) error
}

// StoreKey is the composite key of a single store entry.
type StoreKey struct {
	Caller    Address
	Namespace Namespace
	Key       Word
}

func (k StoreKey) String() string {
	return fmt.Sprintf("%v/%v/%v", k.Caller, k.Namespace, k.Key)
}
