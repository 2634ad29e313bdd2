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

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// Expression is a deployable unit of sources and constants. The first
// len(MinOutputs) sources are entrypoints which may be dispatched by
// callers; MinOutputs[i] is the minimum final stack height of source i.
// The remaining sources are only reachable through control flow opcodes.
type Expression struct {
	Sources    []Source `cbor:"1,keyasint"`
	Constants  []Word   `cbor:"2,keyasint"`
	MinOutputs []int    `cbor:"3,keyasint"`
}

// NumEntrypoints returns the number of sources that may be dispatched.
func (e *Expression) NumEntrypoints() int {
	return len(e.MinOutputs)
}

func (e *Expression) String() string {
	res := ""
	for i, source := range e.Sources {
		kind := "source"
		if i < len(e.MinOutputs) {
			kind = fmt.Sprintf("entrypoint (min outputs %d)", e.MinOutputs[i])
		}
		res += fmt.Sprintf("--- %d: %s ---\n%v", i, kind, source)
	}
	for i, constant := range e.Constants {
		res += fmt.Sprintf("constant %d: %v\n", i, constant)
	}
	return res
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("expr: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalExpression serializes an expression to canonical CBOR. Equal
// expressions always produce the same bytes.
func MarshalExpression(e *Expression) ([]byte, error) {
	return cborEncMode.Marshal(e)
}

// UnmarshalExpression deserializes an expression from CBOR bytes.
func UnmarshalExpression(data []byte) (*Expression, error) {
	var e Expression
	if err := cbor.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("expr: unmarshal expression: %w", err)
	}
	return &e, nil
}

// Reference computes the address identifying the given expression: the
// lower 20 bytes of the keccak256 hash of its canonical encoding.
func Reference(e *Expression) (Address, error) {
	data, err := MarshalExpression(e)
	if err != nil {
		return Address{}, err
	}
	hash := Keccak256(data)
	return common.BytesToAddress(hash[12:]), nil
}

// Keccak256 computes the legacy keccak256 hash of the given data.
func Keccak256(data ...[]byte) (res Word) {
	hasher := sha3.NewLegacyKeccak256()
	for _, cur := range data {
		hasher.Write(cur)
	}
	hasher.Sum(res[:0])
	return res
}

// sentinelTag is the pattern forced into the most significant bits of the
// sentinel.
const sentinelTag = 0xF0

// Sentinel is the reserved word delimiting variable-length lists on the
// stack. It is derived from a fixed domain string, with the top four bits
// set to a fixed tag.
var Sentinel = newSentinel("spvm.sentinel")

func newSentinel(domain string) Word {
	res := Keccak256([]byte(domain))
	res[0] |= sentinelTag
	return res
}
