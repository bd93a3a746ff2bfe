package db

import "testing"

func TestMigrationNamesSorted(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migrationNames: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if names[0] != "0001_catalog.sql" {
		t.Errorf("first migration = %q, want 0001_catalog.sql", names[0])
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("migrations not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
