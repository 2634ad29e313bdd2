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
	"strings"
	"testing"
)

func TestOpCode_NamesAreUniqueAndParsable(t *testing.T) {
	seen := map[string]OpCode{}
	for i := OpCode(0); i < NUM_OPCODES; i++ {
		name := i.String()
		if name == "" || strings.HasPrefix(name, "op(") {
			t.Errorf("opcode %d has no name", i)
		}
		if other, found := seen[name]; found {
			t.Errorf("opcodes %d and %d share name %s", other, i, name)
		}
		seen[name] = i

		op, found := OpCodeFromString(name)
		if !found || op != i {
			t.Errorf("failed to resolve %s, got %v, %t", name, op, found)
		}
	}
}

func TestOpCode_UnknownOpCodesArePrintedAsNumbers(t *testing.T) {
	op := FirstExtensionOpCode + 3
	if want, got := "op(0x0103)", op.String(); want != got {
		t.Errorf("unexpected name, wanted %s, got %s", want, got)
	}
	parsed, found := OpCodeFromString(op.String())
	if !found || parsed != op {
		t.Errorf("failed to parse %v, got %v", op, parsed)
	}
}

func TestOperand_FieldsAreRecoverable(t *testing.T) {
	operand := FoldContextOperand(3, 200, 2, 5, 7)
	tests := []struct {
		name          string
		offset, width uint
		want          int
	}{
		{"column", 0, 8, 3},
		{"source", 8, 8, 7},
		{"width", 16, 4, 2},
		{"accumulators", 20, 4, 5},
		{"startRow", 24, 8, 200},
	}
	for _, test := range tests {
		if got := operand.Field(test.offset, test.width); test.want != got {
			t.Errorf("unexpected %s, wanted %d, got %d", test.name, test.want, got)
		}
	}
}

func TestOperand_LoopNExtendsCallLayout(t *testing.T) {
	operand := LoopNOperand(9, 2, 3, 4)
	if want, got := CallOperand(2, 3, 4), operand&0xffff; want != got {
		t.Errorf("unexpected call part, wanted %x, got %x", want, got)
	}
	if want, got := 9, operand.Field(16, 8); want != got {
		t.Errorf("unexpected count, wanted %d, got %d", want, got)
	}
}

func TestOperand_BuildersPanicOnOverflow(t *testing.T) {
	tests := map[string]func(){
		"call inputs":   func() { CallOperand(MaxCallInputs+1, 0, 0) },
		"call outputs":  func() { CallOperand(0, MaxCallOutputs+1, 0) },
		"loop count":    func() { LoopNOperand(MaxLoopIterations+1, 0, 0, 0) },
		"negative":      func() { IndexOperand(-1) },
		"index":         func() { IndexOperand(1 << 16) },
		"extern opcode": func() { ExternOperand(0, 256, 0, 0) },
	}
	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic")
				}
			}()
			build()
		})
	}
}
