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

//go:generate mockgen -source extern.go -destination extern_mock.go -package expr

// Extern is an opcode provider outside the dispatch table of an interpreter,
// invoked through the EXTERN instruction. Providers are responsible for
// validating the number of inputs and should report mismatches using
// BadInputsError. The number of returned values must match the number of
// outputs declared by the calling instruction.
type Extern interface {
	Extern(opcode uint8, inputs []Word) ([]Word, error)
}

// ExternFunc adapts a plain function to the Extern interface.
type ExternFunc func(opcode uint8, inputs []Word) ([]Word, error)

func (f ExternFunc) Extern(opcode uint8, inputs []Word) ([]Word, error) {
	return f(opcode, inputs)
}
