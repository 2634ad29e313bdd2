// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Fantom-foundation/Expr/go/expr"
)

// expressionFile is the textual form of an expression, e.g.
//
//	constants = ["2"]
//	min-outputs = [1]
//
//	[[sources]]
//	code = ["CONTEXT", "CONSTANT", "MUL 0x2"]
type expressionFile struct {
	Constants  []expr.Word  `toml:"constants"`
	MinOutputs []int        `toml:"min-outputs"`
	Sources    []sourceFile `toml:"sources"`
}

type sourceFile struct {
	Code []string `toml:"code"`
}

// loadExpression reads an expression from a file. Files with a .cbor
// extension hold the binary encoding, all others the textual form.
func loadExpression(path string) (*expr.Expression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read expression %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return expr.UnmarshalExpression(data)
	}
	res, err := parseExpression(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return res, nil
}

func parseExpression(data []byte) (*expr.Expression, error) {
	var file expressionFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	res := &expr.Expression{
		Constants:  file.Constants,
		MinOutputs: file.MinOutputs,
		Sources:    make([]expr.Source, len(file.Sources)),
	}
	for i, source := range file.Sources {
		res.Sources[i] = make(expr.Source, len(source.Code))
		for j, text := range source.Code {
			instruction, err := expr.ParseInstruction(text)
			if err != nil {
				return nil, fmt.Errorf("source %d, instruction %d: %w", i, j, err)
			}
			res.Sources[i][j] = instruction
		}
	}
	return res, nil
}

// formatExpression produces the textual form of an expression accepted by
// parseExpression.
func formatExpression(expression *expr.Expression) ([]byte, error) {
	file := expressionFile{
		Constants:  expression.Constants,
		MinOutputs: expression.MinOutputs,
		Sources:    make([]sourceFile, len(expression.Sources)),
	}
	for i, source := range expression.Sources {
		code := make([]string, len(source))
		for j, instruction := range source {
			code[j] = instruction.String()
		}
		file.Sources[i] = sourceFile{Code: code}
	}
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(file); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// parseContext builds a context from columns of space separated words.
func parseContext(columns []string) (expr.Context, error) {
	res := make(expr.Context, len(columns))
	for i, column := range columns {
		fields := strings.Fields(column)
		res[i] = make([]expr.Word, len(fields))
		for j, field := range fields {
			if err := res[i][j].UnmarshalText([]byte(field)); err != nil {
				return nil, fmt.Errorf("column %d, row %d: %w", i, j, err)
			}
		}
	}
	return res, nil
}
