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
	"fmt"
)

// Dispatch identifies an entrypoint of a deployed expression and the maximum
// number of values the caller is interested in.
type Dispatch struct {
	Expression Address
	Source     uint16
	MaxOutputs uint16
}

// Encode packs the dispatch into a single word with the layout
// expression << 32 | source << 16 | maxOutputs.
func (d Dispatch) Encode() (res Word) {
	copy(res[8:28], d.Expression[:])
	binary.BigEndian.PutUint16(res[28:30], d.Source)
	binary.BigEndian.PutUint16(res[30:32], d.MaxOutputs)
	return res
}

// DecodeDispatch unpacks a dispatch encoded by Dispatch.Encode.
func DecodeDispatch(encoded Word) (Dispatch, error) {
	for _, cur := range encoded[:8] {
		if cur != 0 {
			return Dispatch{}, fmt.Errorf("invalid dispatch encoding: %v", encoded)
		}
	}
	var res Dispatch
	copy(res.Expression[:], encoded[8:28])
	res.Source = binary.BigEndian.Uint16(encoded[28:30])
	res.MaxOutputs = binary.BigEndian.Uint16(encoded[30:32])
	return res, nil
}

func (d Dispatch) String() string {
	return fmt.Sprintf("%v:%d/%d", d.Expression, d.Source, d.MaxOutputs)
}
