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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Expr/go/expr"
	"github.com/Fantom-foundation/Expr/go/store"
)

const doubleExpression = `
constants = ["2"]
min-outputs = [1]

[[sources]]
code = ["CONTEXT", "CONSTANT", "MUL 0x2"]
`

const setExpression = `
constants = ["7", "9"]
min-outputs = [0]

[[sources]]
code = ["CONSTANT 0x0", "CONSTANT 0x1", "SET"]
`

const getExpression = `
constants = ["7"]
min-outputs = [1]

[[sources]]
code = ["CONSTANT", "GET"]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"spvm", "--verbosity", "0"}, args...))
	return out.String(), err
}

func TestApp_EvalPrintsStack(t *testing.T) {
	path := writeFile(t, "double.toml", doubleExpression)
	out, err := runApp(t, "eval", "--column", "21", path)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if want := "0: " + expr.NewWord(42).String(); !strings.Contains(out, want) {
		t.Errorf("unexpected output, wanted it to contain %q, got %q", want, out)
	}
}

func TestApp_EvalReportsFailures(t *testing.T) {
	path := writeFile(t, "double.toml", doubleExpression)
	// The context is missing.
	if _, err := runApp(t, "eval", path); err == nil {
		t.Errorf("evaluation without context should fail")
	}
	if _, err := runApp(t, "eval"); err == nil {
		t.Errorf("evaluation without expression should fail")
	}
	if _, err := runApp(t, "eval", "--column", "x", path); err == nil {
		t.Errorf("invalid context should be rejected")
	}
}

func TestApp_EvalCommitsEntriesToStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kv.db")
	setPath := writeFile(t, "set.toml", setExpression)
	out, err := runApp(t, "eval", "--store", db, "--commit", setPath)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if want := (expr.KV{Key: expr.NewWord(7), Value: expr.NewWord(9)}).String(); !strings.Contains(out, want) {
		t.Errorf("unexpected output, wanted it to contain %q, got %q", want, out)
	}

	getPath := writeFile(t, "get.toml", getExpression)
	out, err = runApp(t, "eval", "--store", db, getPath)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if want := "0: " + expr.NewWord(9).String(); !strings.Contains(out, want) {
		t.Errorf("unexpected output, wanted it to contain %q, got %q", want, out)
	}

	sqlite, err := store.OpenSQLite(db)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer sqlite.Close()
	got, err := sqlite.Get(expr.Address{}, expr.NoNamespace, expr.NewWord(7))
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	if want := expr.NewWord(9); want != got {
		t.Errorf("unexpected stored value, wanted %v, got %v", want, got)
	}
}

func TestApp_EvalWithoutCommitLeavesStoreUntouched(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kv.db")
	setPath := writeFile(t, "set.toml", setExpression)
	if _, err := runApp(t, "eval", "--store", db, setPath); err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	sqlite, err := store.OpenSQLite(db)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer sqlite.Close()
	count, err := sqlite.Len()
	if err != nil {
		t.Fatalf("failed to count entries: %v", err)
	}
	if want, got := 0, count; want != got {
		t.Errorf("unexpected number of entries, wanted %d, got %d", want, got)
	}
}

func TestApp_EvalUsesCallerAndNamespaceOfConfig(t *testing.T) {
	db := filepath.Join(t.TempDir(), "kv.db")
	config := writeFile(t, "config.toml", `
caller = "0x00000000000000000000000000000000000000aa"
namespace = "0x01"

[store]
path = "`+filepath.ToSlash(db)+`"
`)
	setPath := writeFile(t, "set.toml", setExpression)
	if _, err := runApp(t, "--config", config, "eval", "--commit", setPath); err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	sqlite, err := store.OpenSQLite(db)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer sqlite.Close()

	caller := expr.Address{19: 0xaa}
	namespace := expr.Namespace{31: 0x01}
	got, err := sqlite.Get(caller, namespace, expr.NewWord(7))
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	if want := expr.NewWord(9); want != got {
		t.Errorf("unexpected stored value, wanted %v, got %v", want, got)
	}
	got, err = sqlite.Get(expr.Address{}, expr.NoNamespace, expr.NewWord(7))
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("entry should not be visible to other callers, got %v", got)
	}
}

func TestApp_VerifyPrintsReport(t *testing.T) {
	path := writeFile(t, "double.toml", doubleExpression)
	out, err := runApp(t, "verify", path)
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if want := "Entrypoint 0: max stack height 2, final stack height 1"; !strings.Contains(out, want) {
		t.Errorf("unexpected output, wanted it to contain %q, got %q", want, out)
	}
}

func TestApp_VerifyRejectsInvalidExpressions(t *testing.T) {
	path := writeFile(t, "invalid.toml", `
min-outputs = [1]

[[sources]]
code = ["ADD 0x2"]
`)
	if _, err := runApp(t, "verify", path); err == nil {
		t.Errorf("verification of an invalid expression should fail")
	}
}

func TestApp_VerifyHonorsConfiguredLimits(t *testing.T) {
	config := writeFile(t, "config.toml", `
[limits]
max-stack-height = 1
`)
	path := writeFile(t, "double.toml", doubleExpression)
	if _, err := runApp(t, "--config", config, "verify", path); err == nil {
		t.Errorf("verification should exceed the configured stack height")
	}
}

func TestApp_CompileAndDisasmRoundTrip(t *testing.T) {
	path := writeFile(t, "double.toml", doubleExpression)
	binary := filepath.Join(t.TempDir(), "double.cbor")
	if _, err := runApp(t, "compile", path, binary); err != nil {
		t.Fatalf("compilation failed: %v", err)
	}

	want, err := loadExpression(path)
	if err != nil {
		t.Fatalf("failed to load expression: %v", err)
	}
	got, err := loadExpression(binary)
	if err != nil {
		t.Fatalf("failed to load compiled expression: %v", err)
	}
	wantRef, _ := expr.Reference(want)
	gotRef, _ := expr.Reference(got)
	if wantRef != gotRef {
		t.Fatalf("compiled expression differs, wanted %v, got %v", want, got)
	}

	text, err := runApp(t, "disasm", binary)
	if err != nil {
		t.Fatalf("disassembly failed: %v", err)
	}
	parsed, err := parseExpression([]byte(text))
	if err != nil {
		t.Fatalf("failed to parse disassembly: %v", err)
	}
	parsedRef, _ := expr.Reference(parsed)
	if wantRef != parsedRef {
		t.Errorf("disassembly does not round trip, wanted %v, got %v", want, parsed)
	}
}

func TestApp_BenchRunsExamples(t *testing.T) {
	out, err := runApp(t, "bench", "--example", "fib", "--arg", "10", "--iterations", "10")
	if err != nil {
		t.Fatalf("benchmark failed: %v", err)
	}
	if want := "Evaluations: 10"; !strings.Contains(out, want) {
		t.Errorf("unexpected output, wanted it to contain %q, got %q", want, out)
	}
	if _, err := runApp(t, "bench", "--example", "unknown"); err == nil {
		t.Errorf("unknown examples should be rejected")
	}
}

func TestApp_BenchRunsExpressionFiles(t *testing.T) {
	path := writeFile(t, "double.toml", doubleExpression)
	if _, err := runApp(t, "bench", "--iterations", "5", "--column", "3", path); err != nil {
		t.Fatalf("benchmark failed: %v", err)
	}
	if _, err := runApp(t, "bench", "--iterations", "0", "--column", "3", path); err == nil {
		t.Errorf("benchmark without iterations should fail")
	}
}

func TestApp_ExamplesAreListed(t *testing.T) {
	out, err := runApp(t, "examples")
	if err != nil {
		t.Fatalf("listing examples failed: %v", err)
	}
	for _, name := range []string{"fib", "sum", "square", "scale", "hash"} {
		if !strings.Contains(out, name) {
			t.Errorf("example %s is not listed in %q", name, out)
		}
	}
}
