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
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Word represents an arbitrary 256-bit (32 byte) value processed by
// expressions. Words are stored in big-endian order.
type Word [32]byte

// Address identifies a calling contract and doubles as the reference to a
// deployed expression.
type Address = common.Address

// Namespace is an isolation partition of the key-value store in addition to
// the partition by calling contract.
type Namespace [32]byte

// NoNamespace is the namespace used by callers not evaluating "with
// namespace". Entries are then scoped by the calling contract only.
var NoNamespace = Namespace{}

// KV is a single key/value pair written by an evaluation.
type KV struct {
	Key   Word
	Value Word
}

// Context is the read-only matrix of values provided by the caller of an
// evaluation. Context[column][row] addresses a single cell. Columns may
// have different lengths.
type Context [][]Word

// Get returns the cell at the given column and row, and false if the cell
// is not part of the matrix.
func (c Context) Get(column, row int) (Word, bool) {
	if column < 0 || column >= len(c) || row < 0 || row >= len(c[column]) {
		return Word{}, false
	}
	return c[column][row], true
}

// NewWord creates a new Word instance from up to 4 uint64 arguments. The
// arguments are given in the order from most significant to least
// significant by padding leading zeros as needed. No argument results in a
// value of zero.
func NewWord(args ...uint64) (result Word) {
	if len(args) > 4 {
		panic("Too many arguments")
	}
	offset := 4 - len(args)
	for i := 0; i < len(args); i++ {
		start := (offset * 8) + i*8
		binary.BigEndian.PutUint64(result[start:start+8], args[i])
	}
	return
}

// WordFromUint256 converts a *uint256.Int to a Word. A nil input results in
// zero.
func WordFromUint256(value *uint256.Int) (result Word) {
	if value == nil {
		return result
	}
	return value.Bytes32()
}

// WordFromAddress left-pads the given address to a word.
func WordFromAddress(address Address) (result Word) {
	copy(result[12:], address[:])
	return
}

func (w Word) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

func (w Word) ToBig() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

// Address interprets the lower 20 bytes of the word as an address.
func (w Word) Address() Address {
	return common.BytesToAddress(w[12:])
}

func (w Word) IsZero() bool {
	return w == Word{}
}

// IsSentinel reports whether the word is the list delimiter Sentinel.
func (w Word) IsSentinel() bool {
	return w == Sentinel
}

func (w Word) String() string {
	return fmt.Sprintf("0x%x", w[:])
}

func (w Word) MarshalText() ([]byte, error) {
	return bytesToText(w[:])
}

// UnmarshalText accepts 0x-prefixed hex strings of up to 32 bytes, which
// are left-padded, as well as decimal numbers.
func (w *Word) UnmarshalText(data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		value, err := uint256.FromDecimal(s)
		if err != nil {
			return fmt.Errorf("invalid word %q: %w", s, err)
		}
		*w = value.Bytes32()
		return nil
	}
	return textToLeftPaddedBytes(w[:], data)
}

func (n Namespace) String() string {
	return fmt.Sprintf("0x%x", n[:])
}

func (n Namespace) MarshalText() ([]byte, error) {
	return bytesToText(n[:])
}

func (n *Namespace) UnmarshalText(data []byte) error {
	return textToLeftPaddedBytes(n[:], data)
}

func (kv KV) String() string {
	return fmt.Sprintf("%v => %v", kv.Key, kv.Value)
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToLeftPaddedBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	s = s[2:]
	if len(s)%2 == 1 {
		s = "0" + s
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(decoded) > len(trg) {
		return fmt.Errorf("invalid format, wanted at most %d bytes, got %d", len(trg), len(decoded))
	}
	clear(trg)
	copy(trg[len(trg)-len(decoded):], decoded)
	return nil
}
