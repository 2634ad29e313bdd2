// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/Fantom-foundation/Expr/go/expr"
)

func getStoreFactories() map[string]func(t *testing.T) expr.Store {
	return map[string]func(t *testing.T) expr.Store{
		"memory": func(*testing.T) expr.Store {
			return NewMemory()
		},
		"sqlite": func(t *testing.T) expr.Store {
			store, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
			if err != nil {
				t.Fatalf("failed to open store: %v", err)
			}
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
}

func TestStore_UnsetKeysAreZero(t *testing.T) {
	for name, factory := range getStoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			value, err := store.Get(expr.Address{1}, expr.NoNamespace, expr.NewWord(1))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want, got := (expr.Word{}), value; want != got {
				t.Errorf("unexpected value, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestStore_CommittedEntriesCanBeRead(t *testing.T) {
	for name, factory := range getStoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			caller, namespace := expr.Address{1}, expr.Namespace{2}
			kvs := []expr.KV{
				{Key: expr.NewWord(1), Value: expr.NewWord(10)},
				{Key: expr.NewWord(2), Value: expr.NewWord(20)},
			}
			if err := store.Commit(caller, namespace, kvs); err != nil {
				t.Fatalf("failed to commit: %v", err)
			}
			for _, kv := range kvs {
				value, err := store.Get(caller, namespace, kv.Key)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if want, got := kv.Value, value; want != got {
					t.Errorf("unexpected value of %v, wanted %v, got %v", kv.Key, want, got)
				}
			}
		})
	}
}

func TestStore_LaterCommitsOverwriteEarlierOnes(t *testing.T) {
	for name, factory := range getStoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			caller, key := expr.Address{1}, expr.NewWord(1)
			for i := uint64(1); i <= 3; i++ {
				kvs := []expr.KV{{Key: key, Value: expr.NewWord(i)}}
				if err := store.Commit(caller, expr.NoNamespace, kvs); err != nil {
					t.Fatalf("failed to commit: %v", err)
				}
			}
			value, err := store.Get(caller, expr.NoNamespace, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want, got := expr.NewWord(3), value; want != got {
				t.Errorf("unexpected value, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestStore_DuplicateKeysInOneCommitKeepLastValue(t *testing.T) {
	for name, factory := range getStoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			key := expr.NewWord(1)
			kvs := []expr.KV{{Key: key, Value: expr.NewWord(1)}, {Key: key, Value: expr.NewWord(2)}}
			if err := store.Commit(expr.Address{}, expr.NoNamespace, kvs); err != nil {
				t.Fatalf("failed to commit: %v", err)
			}
			value, err := store.Get(expr.Address{}, expr.NoNamespace, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want, got := expr.NewWord(2), value; want != got {
				t.Errorf("unexpected value, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestStore_EntriesAreIsolatedByCallerAndNamespace(t *testing.T) {
	for name, factory := range getStoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			key := expr.NewWord(1)
			partitions := []struct {
				caller    expr.Address
				namespace expr.Namespace
			}{
				{expr.Address{1}, expr.Namespace{1}},
				{expr.Address{1}, expr.Namespace{2}},
				{expr.Address{2}, expr.Namespace{1}},
			}
			for i, p := range partitions {
				kvs := []expr.KV{{Key: key, Value: expr.NewWord(uint64(i + 1))}}
				if err := store.Commit(p.caller, p.namespace, kvs); err != nil {
					t.Fatalf("failed to commit: %v", err)
				}
			}
			for i, p := range partitions {
				value, err := store.Get(p.caller, p.namespace, key)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if want, got := expr.NewWord(uint64(i+1)), value; want != got {
					t.Errorf("unexpected value in partition %d, wanted %v, got %v", i, want, got)
				}
			}
			value, err := store.Get(expr.Address{2}, expr.Namespace{2}, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !value.IsZero() {
				t.Errorf("unexpected value in unused partition: %v", value)
			}
		})
	}
}

func TestStore_ConcurrentCommitsAndReads(t *testing.T) {
	for name, factory := range getStoreFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			const goroutines = 8
			var wg sync.WaitGroup
			errs := make([]error, goroutines)
			for i := 0; i < goroutines; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					caller := expr.Address{byte(i)}
					kvs := []expr.KV{{Key: expr.NewWord(1), Value: expr.NewWord(uint64(i))}}
					if err := store.Commit(caller, expr.NoNamespace, kvs); err != nil {
						errs[i] = err
						return
					}
					_, errs[i] = store.Get(caller, expr.NoNamespace, expr.NewWord(1))
				}(i)
			}
			wg.Wait()
			for i, err := range errs {
				if err != nil {
					t.Errorf("goroutine %d failed: %v", i, err)
				}
			}
		})
	}
}

func TestMemory_LenCountsDistinctKeys(t *testing.T) {
	memory := NewMemory()
	kvs := []expr.KV{{Key: expr.NewWord(1)}, {Key: expr.NewWord(2)}, {Key: expr.NewWord(1)}}
	if err := memory.Commit(expr.Address{}, expr.NoNamespace, kvs); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	if want, got := 2, memory.Len(); want != got {
		t.Errorf("unexpected length, wanted %d, got %d", want, got)
	}
}

func TestSQLite_EntriesSurviveReopening(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	kvs := []expr.KV{{Key: expr.NewWord(1), Value: expr.NewWord(42)}}
	if err := store.Commit(expr.Address{1}, expr.NoNamespace, kvs); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	store, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()
	value, err := store.Get(expr.Address{1}, expr.NoNamespace, expr.NewWord(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := expr.NewWord(42), value; want != got {
		t.Errorf("unexpected value, wanted %v, got %v", want, got)
	}
	count, err := store.Len()
	if err != nil {
		t.Fatalf("failed to count entries: %v", err)
	}
	if want, got := 1, count; want != got {
		t.Errorf("unexpected number of entries, wanted %d, got %d", want, got)
	}
}

func TestSQLite_InMemoryDatabase(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()
	kvs := []expr.KV{{Key: expr.NewWord(1), Value: expr.NewWord(7)}}
	if err := store.Commit(expr.Address{}, expr.NoNamespace, kvs); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	value, err := store.Get(expr.Address{}, expr.NoNamespace, expr.NewWord(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := expr.NewWord(7), value; want != got {
		t.Errorf("unexpected value, wanted %v, got %v", want, got)
	}
}
