package benchmarks

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/codestore"
)

func chainCode(b *testing.B) (string, string) {
	b.Helper()
	c := mustCompile(b, buildChain(100))
	defer c.Release()
	return c.Key(), c.PrintCode()
}

// BenchmarkMemoryStore_Record measures recording an unchanged dump.
func BenchmarkMemoryStore_Record(b *testing.B) {
	store := codestore.NewMemoryStore()
	key, code := chainCode(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codestore.Record(store, key, "Bench", code); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSQLiteStore_Save measures SQLite saves across 100 keys.
func BenchmarkSQLiteStore_Save(b *testing.B) {
	store, err := codestore.NewSQLiteStore(filepath.Join(b.TempDir(), "code.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	key, code := chainCode(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Save(fmt.Sprintf("%s-%d", key, i%100), "Bench", code); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSQLiteStore_Load measures SQLite loads of one key.
func BenchmarkSQLiteStore_Load(b *testing.B) {
	store, err := codestore.NewSQLiteStore(filepath.Join(b.TempDir(), "code.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	key, code := chainCode(b)
	if _, err := store.Save(key, "Bench", code); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := store.Load(key); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCompileAll_8 compiles eight chains with up to four in flight.
func BenchmarkCompileAll_8(b *testing.B) {
	reqs := make([]flowjit.Request, 8)
	for i := range reqs {
		c := buildChain(50)
		reqs[i] = flowjit.Request{Name: fmt.Sprintf("Chain%d", i), Graph: c.g, Inputs: c.inputs, Outputs: c.outputs}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		callables, err := flowjit.CompileAll(context.Background(), reqs, 4)
		if err != nil {
			b.Fatal(err)
		}
		for _, c := range callables {
			c.Release()
		}
	}
}
