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
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/holiman/uint256"
)

const ErrValueTooLarge = ConstError("value does not fit into target width")

// WordSize is the size of a word in bytes.
const WordSize = 32

// SizeInWords returns the number of words required to hold the given number
// of bytes.
func SizeInWords(size uint64) uint64 {
	if size > ^uint64(0)-(WordSize-1) {
		return (^uint64(0) / WordSize) + 1
	}
	return (size + WordSize - 1) / WordSize
}

// PackTo16Bit packs the given words into consecutive big-endian 16-bit
// elements. Each word must fit into 16 bits.
func PackTo16Bit(words []expr.Word) ([]byte, error) {
	res := make([]byte, 2*len(words))
	for i, word := range words {
		value := word.ToUint256()
		if !value.IsUint64() || value.Uint64() > 0xffff {
			return nil, fmt.Errorf("%w: element %d is %v", ErrValueTooLarge, i, word)
		}
		binary.BigEndian.PutUint16(res[2*i:], uint16(value.Uint64()))
	}
	return res, nil
}

// UnpackFrom16Bit is the inverse of PackTo16Bit.
func UnpackFrom16Bit(data []byte) ([]expr.Word, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("invalid packed length %d", len(data))
	}
	res := make([]expr.Word, len(data)/2)
	for i := range res {
		res[i] = expr.NewWord(uint64(binary.BigEndian.Uint16(data[2*i:])))
	}
	return res, nil
}

// WordsToBytes concatenates the given words.
func WordsToBytes(words []expr.Word) []byte {
	res := make([]byte, 0, len(words)*WordSize)
	for _, word := range words {
		res = append(res, word[:]...)
	}
	return res
}

// BytesToWords splits the given data into words. A trailing partial word is
// right-padded with zeros.
func BytesToWords(data []byte) []expr.Word {
	res := make([]expr.Word, SizeInWords(uint64(len(data))))
	for i := range res {
		copy(res[i][:], data[i*WordSize:])
	}
	return res
}

// ToWords converts the given stack values to words.
func ToWords(values []uint256.Int) []expr.Word {
	res := make([]expr.Word, len(values))
	for i := range values {
		res[i] = values[i].Bytes32()
	}
	return res
}
