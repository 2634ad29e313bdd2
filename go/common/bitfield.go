// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"

	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/holiman/uint256"
)

func checkBitField(start, length uint) error {
	if length == 0 || start >= 256 || length > 256-start {
		return fmt.Errorf("%w: start %d, length %d", expr.ErrBitFieldOutOfRange, start, length)
	}
	return nil
}

func bitMask(length uint) *uint256.Int {
	mask := uint256.NewInt(1)
	mask.Lsh(mask, length)
	return mask.SubUint64(mask, 1)
}

// Encode256 writes the lowest length bits of source into the bit range
// [start, start+length) of target. All other bits of target are preserved.
// The result is written to z, which is also returned.
func Encode256(z, source, target *uint256.Int, start, length uint) (*uint256.Int, error) {
	if err := checkBitField(start, length); err != nil {
		return nil, err
	}
	var mask, value uint256.Int
	if length == 256 {
		mask.SetAllOne()
	} else {
		mask.Set(bitMask(length))
	}
	value.And(source, &mask)
	value.Lsh(&value, start)
	mask.Lsh(&mask, start)
	mask.Not(&mask)
	z.And(target, &mask)
	return z.Or(z, &value), nil
}

// Decode256 extracts the bit range [start, start+length) of value.
func Decode256(z, value *uint256.Int, start, length uint) (*uint256.Int, error) {
	if err := checkBitField(start, length); err != nil {
		return nil, err
	}
	z.Rsh(value, start)
	if length < 256 {
		z.And(z, bitMask(length))
	}
	return z, nil
}

// EncodeWord is Encode256 on words.
func EncodeWord(source, target expr.Word, start, length uint) (expr.Word, error) {
	var res uint256.Int
	if _, err := Encode256(&res, source.ToUint256(), target.ToUint256(), start, length); err != nil {
		return expr.Word{}, err
	}
	return res.Bytes32(), nil
}

// DecodeWord is Decode256 on words.
func DecodeWord(value expr.Word, start, length uint) (expr.Word, error) {
	var res uint256.Int
	if _, err := Decode256(&res, value.ToUint256(), start, length); err != nil {
		return expr.Word{}, err
	}
	return res.Bytes32(), nil
}

// Explode32 splits a word into eight 32-bit chunks, least significant chunk
// first.
func Explode32(value *uint256.Int) [8]uint256.Int {
	var res [8]uint256.Int
	var cur uint256.Int
	cur.Set(value)
	for i := range res {
		res[i].SetUint64(cur.Uint64() & 0xffffffff)
		cur.Rsh(&cur, 32)
	}
	return res
}
