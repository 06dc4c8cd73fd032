package all

import (
	"slices"
	"testing"

	"hretl/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	kinds := storage.ListKinds()
	for _, want := range []string{"mssql", "mysql", "postgres", "sqlite"} {
		if !slices.Contains(kinds, want) {
			t.Fatalf("kind %q not registered: %v", want, kinds)
		}
	}
}
