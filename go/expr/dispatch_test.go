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

import "testing"

func TestDispatch_EncodeDecodeRoundTrip(t *testing.T) {
	dispatch := Dispatch{
		Expression: Address{0xaa, 19: 0xbb},
		Source:     0x0102,
		MaxOutputs: 0x0304,
	}
	encoded := dispatch.Encode()

	if want, got := byte(0xaa), encoded[8]; want != got {
		t.Errorf("unexpected address start, wanted %x, got %x", want, got)
	}
	low := encoded[27:32]
	if want := []byte{0xbb, 0x01, 0x02, 0x03, 0x04}; string(want) != string(low) {
		t.Errorf("unexpected low bytes, wanted %x, got %x", want, low)
	}

	decoded, err := DecodeDispatch(encoded)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if want, got := dispatch, decoded; want != got {
		t.Errorf("unexpected dispatch, wanted %v, got %v", want, got)
	}
}

func TestDispatch_DecodeRejectsHighBits(t *testing.T) {
	encoded := Dispatch{}.Encode()
	encoded[0] = 1
	if _, err := DecodeDispatch(encoded); err == nil {
		t.Errorf("expected decoding to fail")
	}
}
