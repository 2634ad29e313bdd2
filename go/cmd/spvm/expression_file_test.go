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
	"reflect"
	"testing"

	"github.com/Fantom-foundation/Expr/go/expr"
)

func TestParseExpression_ParsesInstructionsAndConstants(t *testing.T) {
	got, err := parseExpression([]byte(`
constants = ["0x10", "42"]
min-outputs = [2]

[[sources]]
code = ["CONSTANT", "STACK 0x0", "CALL 0x00000111"]

[[sources]]
code = ["ADD 2"]
`))
	if err != nil {
		t.Fatalf("failed to parse expression: %v", err)
	}
	want := &expr.Expression{
		Constants:  []expr.Word{expr.NewWord(16), expr.NewWord(42)},
		MinOutputs: []int{2},
		Sources: []expr.Source{
			{
				expr.Op(expr.CONSTANT),
				expr.Op(expr.STACK),
				expr.Op(expr.CALL, expr.CallOperand(1, 1, 1)),
			},
			{
				expr.Op(expr.ADD, expr.InputsOperand(2)),
			},
		},
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected expression, wanted %v, got %v", want, got)
	}
}

func TestParseExpression_ReportsInvalidInput(t *testing.T) {
	tests := map[string]string{
		"invalid toml":     `constants = [`,
		"unknown opcode":   "[[sources]]\ncode = [\"JUMP\"]",
		"invalid operand":  "[[sources]]\ncode = [\"ADD two\"]",
		"too many fields":  "[[sources]]\ncode = [\"ADD 1 2\"]",
		"invalid constant": `constants = ["forty-two"]`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseExpression([]byte(text)); err == nil {
				t.Errorf("expected parsing to fail")
			}
		})
	}
}

func TestFormatExpression_CanBeParsed(t *testing.T) {
	want := &expr.Expression{
		Constants:  []expr.Word{expr.NewWord(1), expr.Sentinel},
		MinOutputs: []int{1},
		Sources: []expr.Source{
			{
				expr.Op(expr.CONSTANT, expr.IndexOperand(1)),
				expr.Op(expr.LOOP_N, expr.LoopNOperand(3, 1, 1, 1)),
			},
			{
				expr.Op(expr.HASH, expr.InputsOperand(1)),
			},
		},
	}
	text, err := formatExpression(want)
	if err != nil {
		t.Fatalf("failed to format expression: %v", err)
	}
	got, err := parseExpression(text)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", text, err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected expression, wanted %v, got %v", want, got)
	}
}

func TestParseContext_ColumnsOfWords(t *testing.T) {
	got, err := parseContext([]string{"1 2 0x03", "", "4"})
	if err != nil {
		t.Fatalf("failed to parse context: %v", err)
	}
	want := expr.Context{
		{expr.NewWord(1), expr.NewWord(2), expr.NewWord(3)},
		{},
		{expr.NewWord(4)},
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected context, wanted %v, got %v", want, got)
	}
}

func TestLoadConfig_DefaultsAndOverrides(t *testing.T) {
	got, err := loadConfig("")
	if err != nil {
		t.Fatalf("failed to load default config: %v", err)
	}
	if want := defaultConfig(); !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected default config, wanted %v, got %v", want, got)
	}

	path := writeFile(t, "config.toml", `
interpreter = "spvm-stats"

[limits]
max-do-while-iterations = 10
`)
	got, err = loadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if want, got := "spvm-stats", got.Interpreter; want != got {
		t.Errorf("unexpected interpreter, wanted %s, got %s", want, got)
	}
	if want, got := 10, got.Limits.MaxDoWhileIterations; want != got {
		t.Errorf("unexpected iteration limit, wanted %d, got %d", want, got)
	}
	if !got.HashCache {
		t.Errorf("defaults not covered by the file should be retained")
	}

	if _, err := loadConfig(writeFile(t, "broken.toml", "interpreter = ")); err == nil {
		t.Errorf("broken config should be rejected")
	}
	if _, err := loadConfig(path + ".missing"); err == nil {
		t.Errorf("missing config should be rejected")
	}
}

func TestConfig_UnknownInterpreterIsRejected(t *testing.T) {
	config := defaultConfig()
	config.Interpreter = "unknown"
	if _, err := config.newInterpreter(); err == nil {
		t.Errorf("unknown interpreter should be rejected")
	}
}
