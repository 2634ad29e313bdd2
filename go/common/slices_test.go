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
	"errors"
	"slices"
	"testing"
)

func TestTruncate_ShortensToRequestedLength(t *testing.T) {
	got, err := Truncate([]int{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{1, 2}; !slices.Equal(want, got) {
		t.Errorf("unexpected result, wanted %v, got %v", want, got)
	}
}

func TestTruncate_BeyondLengthFails(t *testing.T) {
	_, err := Truncate([]int{1, 2, 3}, 4)
	if !errors.Is(err, ErrOutOfBoundsTruncate) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrOutOfBoundsTruncate, err)
	}
}

func TestTruncate_ResultCanNotGrowIntoSource(t *testing.T) {
	source := []int{1, 2, 3}
	got, err := Truncate(source, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = append(got, 7)
	if want := []int{1, 2, 3}; !slices.Equal(want, source) {
		t.Errorf("source was modified: %v", source)
	}
}

func TestPadSlice(t *testing.T) {
	tests := []struct {
		source []int
		size   int
		right  []int
		left   []int
	}{
		{[]int{}, 2, []int{0, 0}, []int{0, 0}},
		{[]int{1}, 3, []int{1, 0, 0}, []int{0, 0, 1}},
		{[]int{1, 2}, 1, []int{1, 2}, []int{1, 2}},
	}
	for _, test := range tests {
		if got := RightPadSlice(test.source, test.size); !slices.Equal(test.right, got) {
			t.Errorf("unexpected right padding of %v, wanted %v, got %v", test.source, test.right, got)
		}
		if got := LeftPadSlice(test.source, test.size); !slices.Equal(test.left, got) {
			t.Errorf("unexpected left padding of %v, wanted %v, got %v", test.source, test.left, got)
		}
	}
}
