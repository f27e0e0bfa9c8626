package internal

import (
	"path/filepath"
	"testing"

	"localchat/testutil"
)

func TestOpenDatabaseCreatesStateTable(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	db, err := OpenDatabase(filepath.Join(dir, "state.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer db.Close()

	if err := SetStateValue(db, "probe", "value"); err != nil {
		t.Fatalf("SetStateValue on a fresh database failed: %v", err)
	}
}

func TestStateValueRoundTrip(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	defer db.Close()

	if err := SetStateValue(db, "k", "v1"); err != nil {
		t.Fatalf("SetStateValue failed: %v", err)
	}
	got, ok, err := GetStateValue(db, "k")
	if err != nil || !ok || got != "v1" {
		t.Fatalf("GetStateValue = (%q, %v, %v), want (v1, true, nil)", got, ok, err)
	}

	// Upsert replaces the previous value.
	if err := SetStateValue(db, "k", "v2"); err != nil {
		t.Fatalf("SetStateValue overwrite failed: %v", err)
	}
	got, ok, _ = GetStateValue(db, "k")
	if !ok || got != "v2" {
		t.Errorf("Expected overwritten value v2, got %q", got)
	}
}

func TestGetStateValueMissingKey(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	defer db.Close()

	got, ok, err := GetStateValue(db, "absent")
	if err != nil {
		t.Fatalf("Expected no error for a missing key, got %v", err)
	}
	if ok || got != "" {
		t.Errorf("Expected (\"\", false), got (%q, %v)", got, ok)
	}
}

func TestOpenDatabasePersistsAcrossReopen(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "state.db")

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	if err := SetStateValue(db, "durable", "yes"); err != nil {
		t.Fatalf("SetStateValue failed: %v", err)
	}
	db.Close()

	db, err = OpenDatabase(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer db.Close()
	got, ok, err := GetStateValue(db, "durable")
	if err != nil || !ok || got != "yes" {
		t.Fatalf("Expected value to survive reopen, got (%q, %v, %v)", got, ok, err)
	}
}
