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

	"github.com/Fantom-foundation/Expr/go/expr"
)

func TestSizeInWords(t *testing.T) {
	tests := map[uint64]uint64{
		0:  0,
		1:  1,
		32: 1,
		33: 2,
		64: 2,
	}
	for size, want := range tests {
		if got := SizeInWords(size); want != got {
			t.Errorf("SizeInWords(%d): wanted %d, got %d", size, want, got)
		}
	}
	if want, got := uint64(1<<59), SizeInWords(^uint64(0)); want != got {
		t.Errorf("unexpected size for max input, wanted %d, got %d", want, got)
	}
}

func TestPackTo16Bit_PacksIntoHalfWidthElements(t *testing.T) {
	got, err := PackTo16Bit([]expr.Word{expr.NewWord(1), expr.NewWord(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []byte{0x00, 0x01, 0x00, 0x02}; !slices.Equal(want, got) {
		t.Errorf("unexpected packing, wanted %x, got %x", want, got)
	}

	restored, err := UnpackFrom16Bit(got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []expr.Word{expr.NewWord(1), expr.NewWord(2)}; !slices.Equal(want, restored) {
		t.Errorf("unexpected unpacking, wanted %v, got %v", want, restored)
	}
}

func TestPackTo16Bit_RejectsWideValues(t *testing.T) {
	_, err := PackTo16Bit([]expr.Word{expr.NewWord(0x10000)})
	if !errors.Is(err, ErrValueTooLarge) {
		t.Errorf("unexpected error, wanted %v, got %v", ErrValueTooLarge, err)
	}
	if _, err := UnpackFrom16Bit([]byte{1}); err == nil {
		t.Errorf("expected odd length to be rejected")
	}
}

func TestWordsToBytes_BytesToWords(t *testing.T) {
	words := []expr.Word{expr.NewWord(1), expr.NewWord(2)}
	data := WordsToBytes(words)
	if want, got := 64, len(data); want != got {
		t.Fatalf("unexpected length, wanted %d, got %d", want, got)
	}
	if want, got := words, BytesToWords(data); !slices.Equal(want, got) {
		t.Errorf("unexpected round trip, wanted %v, got %v", want, got)
	}

	partial := BytesToWords([]byte{0xab})
	if want, got := 1, len(partial); want != got {
		t.Fatalf("unexpected number of words, wanted %d, got %d", want, got)
	}
	if want, got := byte(0xab), partial[0][0]; want != got {
		t.Errorf("partial word not right-padded, got %v", partial[0])
	}
}
