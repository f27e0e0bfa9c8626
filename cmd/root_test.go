package cmd

import (
	"strings"
	"testing"

	"localchat/internal"
	"localchat/testutil"
)

func newCmdStore(t *testing.T, ids ...string) *internal.Store {
	t.Helper()
	db := testutil.CreateInMemoryDB(t)
	t.Cleanup(func() { _ = db.Close() })
	store := internal.NewStore(internal.NewPersister(db), nil)

	var records []string
	for _, id := range ids {
		records = append(records, `{"id":"`+id+`","name":"Session `+id+`"}`)
	}
	payload := "[" + strings.Join(records, ",") + "]"
	if err := store.ImportAll([]byte(payload)); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}
	return store
}

func TestResolveSessionIDExactMatch(t *testing.T) {
	store := newCmdStore(t, "abcd1234-full-id", "efgh5678-full-id")

	got, err := resolveSessionID(store, "abcd1234-full-id")
	if err != nil {
		t.Fatalf("resolveSessionID failed: %v", err)
	}
	if got != "abcd1234-full-id" {
		t.Errorf("Expected exact match, got %q", got)
	}
}

func TestResolveSessionIDUniquePrefix(t *testing.T) {
	store := newCmdStore(t, "abcd1234-full-id", "efgh5678-full-id")

	got, err := resolveSessionID(store, "abcd")
	if err != nil {
		t.Fatalf("resolveSessionID failed: %v", err)
	}
	if got != "abcd1234-full-id" {
		t.Errorf("Expected prefix expansion, got %q", got)
	}
}

func TestResolveSessionIDAmbiguousPrefix(t *testing.T) {
	store := newCmdStore(t, "abcd1234", "abcd5678")

	if _, err := resolveSessionID(store, "abcd"); err == nil {
		t.Error("Expected error for ambiguous prefix")
	}
}

func TestResolveSessionIDNotFound(t *testing.T) {
	store := newCmdStore(t, "abcd1234")

	if _, err := resolveSessionID(store, "zzzz"); err == nil {
		t.Error("Expected error for unknown id")
	}
}

func TestResolveSessionIDExactBeatsPrefix(t *testing.T) {
	// One id is a prefix of another; the exact match must win.
	store := newCmdStore(t, "abcd", "abcd1234")

	got, err := resolveSessionID(store, "abcd")
	if err != nil {
		t.Fatalf("resolveSessionID failed: %v", err)
	}
	if got != "abcd" {
		t.Errorf("Expected exact match to win over prefix, got %q", got)
	}
}
