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
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// InstructionSize is the size of the binary encoding of an instruction: a
// big-endian 2-byte opcode followed by a big-endian 4-byte operand.
const InstructionSize = 6

// Instruction is a single (opcode, operand) pair.
type Instruction struct {
	Op      OpCode
	Operand Operand
}

// Source is an ordered sequence of instructions. Sources are immutable once
// they are part of an expression.
type Source []Instruction

// Op is a convenience constructor for instructions.
func Op(op OpCode, operand ...Operand) Instruction {
	res := Instruction{Op: op}
	for _, cur := range operand {
		res.Operand |= cur
	}
	return res
}

func (i Instruction) String() string {
	if i.Operand == 0 {
		return i.Op.String()
	}
	return fmt.Sprintf("%v 0x%08x", i.Op, uint32(i.Operand))
}

// ParseInstruction parses the textual form produced by Instruction.String.
// The operand may be given in hex (0x-prefixed) or decimal notation.
func ParseInstruction(text string) (Instruction, error) {
	parts := strings.Fields(text)
	if len(parts) == 0 || len(parts) > 2 {
		return Instruction{}, fmt.Errorf("invalid instruction %q", text)
	}
	op, found := OpCodeFromString(parts[0])
	if !found {
		return Instruction{}, fmt.Errorf("unknown opcode %q", parts[0])
	}
	res := Instruction{Op: op}
	if len(parts) == 2 {
		operand, err := strconv.ParseUint(parts[1], 0, 32)
		if err != nil {
			return Instruction{}, fmt.Errorf("invalid operand in %q: %w", text, err)
		}
		res.Operand = Operand(operand)
	}
	return res, nil
}

func (s Source) String() string {
	var buffer bytes.Buffer
	for i, instruction := range s {
		buffer.WriteString(fmt.Sprintf("0x%04x: %v\n", i, instruction))
	}
	return buffer.String()
}

// MarshalBinary encodes the source as the concatenation of its instructions.
func (s Source) MarshalBinary() ([]byte, error) {
	res := make([]byte, len(s)*InstructionSize)
	for i, instruction := range s {
		cur := res[i*InstructionSize:]
		binary.BigEndian.PutUint16(cur[0:2], uint16(instruction.Op))
		binary.BigEndian.PutUint32(cur[2:6], uint32(instruction.Operand))
	}
	return res, nil
}

func (s *Source) UnmarshalBinary(data []byte) error {
	res, err := ParseSource(data)
	if err != nil {
		return err
	}
	*s = res
	return nil
}

// ParseSource decodes the binary form of a source.
func ParseSource(data []byte) (Source, error) {
	if len(data)%InstructionSize != 0 {
		return nil, fmt.Errorf("invalid source encoding: %d bytes is not a multiple of %d", len(data), InstructionSize)
	}
	res := make(Source, len(data)/InstructionSize)
	for i := range res {
		cur := data[i*InstructionSize:]
		res[i] = Instruction{
			Op:      OpCode(binary.BigEndian.Uint16(cur[0:2])),
			Operand: Operand(binary.BigEndian.Uint32(cur[2:6])),
		}
	}
	return res, nil
}
