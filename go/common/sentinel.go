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
)

const ErrMissingSentinel = ConstError("missing sentinel")

// ListView is a read-only view on a region of words which may contain
// sentinel-delimited lists. The last element of the region is its top.
type ListView struct {
	words []expr.Word
}

func NewListView(words []expr.Word) ListView {
	return ListView{words: words}
}

func (v ListView) Len() int {
	return len(v.words)
}

// Words returns the words covered by the view, bottom to top.
func (v ListView) Words() []expr.Word {
	return v.words
}

// ConsumeSentinel scans the view from its top downwards in steps of
// stepSize words until a word equal to sentinel is found. It returns the
// words above the sentinel, bottom to top, and a view of the words below
// it. Only the topmost word of each step is compared against the sentinel,
// so the lower words of list elements spanning several words may contain
// any value.
func (v ListView) ConsumeSentinel(sentinel expr.Word, stepSize int) ([]expr.Word, ListView, error) {
	if stepSize <= 0 {
		return nil, v, fmt.Errorf("invalid sentinel step size %d", stepSize)
	}
	for i := len(v.words) - 1; i >= 0; i -= stepSize {
		if v.words[i] == sentinel {
			return v.words[i+1:], ListView{words: v.words[:i]}, nil
		}
	}
	return nil, v, fmt.Errorf("%w in %d words with step size %d", ErrMissingSentinel, len(v.words), stepSize)
}

// ConsumeSentinels consumes count lists in a row. The result lists the
// found lists, topmost list first.
func (v ListView) ConsumeSentinels(sentinel expr.Word, stepSize int, count int) ([][]expr.Word, ListView, error) {
	res := make([][]expr.Word, 0, count)
	rest := v
	for i := 0; i < count; i++ {
		list, next, err := rest.ConsumeSentinel(sentinel, stepSize)
		if err != nil {
			return nil, v, err
		}
		res = append(res, list)
		rest = next
	}
	return res, rest, nil
}
