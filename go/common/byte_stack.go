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

	"github.com/Fantom-foundation/Expr/go/expr"
)

// ByteStack is a byte buffer for packing values which are not word sized.
// Pushes are unaligned: each push is written flush against the end of the
// previous one.
type ByteStack struct {
	data []byte
}

func NewByteStack(words ...expr.Word) *ByteStack {
	return &ByteStack{data: WordsToBytes(words)}
}

// UnalignedPush appends the given bytes to the stack.
func (s *ByteStack) UnalignedPush(data []byte) {
	s.data = append(s.data, data...)
}

// UnalignedPushWithLength appends the big-endian 32-bit length of the given
// bytes followed by the bytes themselves.
func (s *ByteStack) UnalignedPushWithLength(data []byte) {
	s.data = binary.BigEndian.AppendUint32(s.data, uint32(len(data)))
	s.data = append(s.data, data...)
}

// Len returns the number of bytes pushed so far.
func (s *ByteStack) Len() int {
	return len(s.data)
}

func (s *ByteStack) Bytes() []byte {
	return s.data
}

// Words returns the content of the stack as words. A trailing partial word
// is right-padded with zeros.
func (s *ByteStack) Words() []expr.Word {
	return BytesToWords(s.data)
}
