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
	"github.com/Fantom-foundation/Expr/go/expr"
	lru "github.com/hashicorp/golang-lru/v2"
)

// sha3HashCache caches the hashes of one and two word inputs, the most
// common inputs of HASH instructions.
type sha3HashCache struct {
	cache32 *lru.Cache[[32]byte, expr.Word]
	cache64 *lru.Cache[[64]byte, expr.Word]
}

func newSha3HashCache(capacity32 int, capacity64 int) (*sha3HashCache, error) {
	cache32, err := lru.New[[32]byte, expr.Word](max(capacity32, 2))
	if err != nil {
		return nil, err
	}
	cache64, err := lru.New[[64]byte, expr.Word](max(capacity64, 2))
	if err != nil {
		return nil, err
	}
	return &sha3HashCache{cache32: cache32, cache64: cache64}, nil
}

func (h *sha3HashCache) hash(data []byte) expr.Word {
	if len(data) == 32 {
		var key [32]byte
		copy(key[:], data)
		return getHash(h.cache32, key, key[:])
	}
	if len(data) == 64 {
		var key [64]byte
		copy(key[:], data)
		return getHash(h.cache64, key, key[:])
	}
	return keccak256(data)
}

func getHash[K comparable](cache *lru.Cache[K, expr.Word], key K, data []byte) expr.Word {
	if hash, found := cache.Get(key); found {
		return hash
	}
	hash := keccak256(data)
	cache.Add(key, hash)
	return hash
}
