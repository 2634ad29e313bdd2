// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package common contains word-array and byte helpers shared by the
// interpreter, its opcodes, and its tooling.
package common

import "fmt"

const ErrOutOfBoundsTruncate = ConstError("out of bounds truncate")

// ConstError is an error type that can be used to define immutable error
// constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// Truncate returns the first n elements of the given slice. It fails if the
// slice holds fewer than n elements. The result shares the backing array of
// the input.
func Truncate[T any](s []T, n int) ([]T, error) {
	if n < 0 || n > len(s) {
		return nil, fmt.Errorf("%w: length %d, requested %d", ErrOutOfBoundsTruncate, len(s), n)
	}
	return s[:n:n], nil
}

// RightPadSlice returns a slice of at least the given size. If the input is
// shorter, a copy padded with zero values is returned.
func RightPadSlice[T any](source []T, size int) []T {
	if len(source) >= size {
		return source
	}
	res := make([]T, size)
	copy(res, source)
	return res
}

// LeftPadSlice returns a slice of at least the given size. If the input is
// shorter, a copy with leading zero values is returned.
func LeftPadSlice[T any](source []T, size int) []T {
	if len(source) >= size {
		return source
	}
	res := make([]T, size)
	copy(res[size-len(source):], source)
	return res
}
