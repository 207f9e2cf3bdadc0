package sessionmeta

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cockpit/internal/logging"
	"cockpit/internal/types"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	return NewStore(logging.Nop()), t.TempDir()
}

func readStoreFile(t *testing.T, workspacePath string) types.WorkspaceSessionStore {
	t.Helper()
	raw, err := os.ReadFile(StorePath(workspacePath))
	if err != nil {
		t.Fatal(err)
	}
	var file types.WorkspaceSessionStore
	if err := json.Unmarshal(raw, &file); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestEnsureWritesOnlyOnChange(t *testing.T) {
	s, ws := newTestStore(t)

	if err := s.Ensure(ws, "t1", "Agent 1"); err != nil {
		t.Fatal(err)
	}
	file := readStoreFile(t, ws)
	if file.Version != 1 {
		t.Fatalf("version = %d", file.Version)
	}
	meta := file.Sessions["t1"]
	if meta.Name != "Agent 1" || meta.NameSource != types.NameSourceDefault {
		t.Fatalf("unexpected entry: %+v", meta)
	}

	// Identical ensure must not rewrite the file.
	if err := os.Remove(StorePath(ws)); err != nil {
		t.Fatal(err)
	}
	if err := s.Ensure(ws, "t1", "Agent 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(StorePath(ws)); !os.IsNotExist(err) {
		t.Fatalf("redundant ensure rewrote the store")
	}
}

func TestRenameSetsCustomAndBlocksPreviews(t *testing.T) {
	s, ws := newTestStore(t)

	if err := s.Rename(ws, "t1", "refactor auth"); err != nil {
		t.Fatal(err)
	}
	meta, ok := s.Get(ws, "t1")
	if !ok || meta.NameSource != types.NameSourceCustom {
		t.Fatalf("rename should mark custom: %+v", meta)
	}

	name, changed, err := s.ApplyPreview(ws, "t1", "some new preview text")
	if err != nil {
		t.Fatal(err)
	}
	if changed || name != "refactor auth" {
		t.Fatalf("preview must not overwrite custom name: %q changed=%v", name, changed)
	}
}

func TestApplyPreviewDerivesAndTruncates(t *testing.T) {
	s, ws := newTestStore(t)

	name, changed, err := s.ApplyPreview(ws, "t1", "fix the   flaky\nwatcher test")
	if err != nil {
		t.Fatal(err)
	}
	if !changed || name != "fix the flaky watcher test" {
		t.Fatalf("derived name = %q changed=%v", name, changed)
	}

	long := strings.Repeat("word ", 30)
	name, changed, err = s.ApplyPreview(ws, "t1", long)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || !strings.HasSuffix(name, "…") {
		t.Fatalf("expected truncated name, got %q", name)
	}

	// Same preview again is a no-op.
	_, changed, err = s.ApplyPreview(ws, "t1", long)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatalf("repeat preview should not persist")
	}
}

func TestMergeListingBatchesOneWrite(t *testing.T) {
	s, ws := newTestStore(t)

	resolved, err := s.MergeListing(ws, []ListingEntry{
		{ThreadID: "a", Preview: "first thread preview"},
		{ThreadID: "b", Preview: "second thread preview"},
		{ThreadID: "c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resolved["a"].Name != "first thread preview" {
		t.Fatalf("unexpected name: %+v", resolved["a"])
	}
	if resolved["c"].Name != "Agent 3" {
		t.Fatalf("expected positional fallback, got %q", resolved["c"].Name)
	}

	file := readStoreFile(t, ws)
	if len(file.Sessions) != 3 {
		t.Fatalf("expected 3 persisted entries, got %d", len(file.Sessions))
	}

	// Unchanged refresh must not write at all.
	if err := os.Remove(StorePath(ws)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MergeListing(ws, []ListingEntry{
		{ThreadID: "a", Preview: "first thread preview"},
		{ThreadID: "b", Preview: "second thread preview"},
		{ThreadID: "c"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(StorePath(ws)); !os.IsNotExist(err) {
		t.Fatalf("unchanged merge rewrote the store")
	}
}

func TestMergeListingKeepsCustomNames(t *testing.T) {
	s, ws := newTestStore(t)

	if err := s.Rename(ws, "a", "my thread"); err != nil {
		t.Fatal(err)
	}
	resolved, err := s.MergeListing(ws, []ListingEntry{{ThreadID: "a", Preview: "something else"}})
	if err != nil {
		t.Fatal(err)
	}
	if resolved["a"].Name != "my thread" || resolved["a"].NameSource != types.NameSourceCustom {
		t.Fatalf("merge clobbered custom name: %+v", resolved["a"])
	}
}

func TestCorruptFileYieldsEmptyDefault(t *testing.T) {
	s, ws := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(StorePath(ws)), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(StorePath(ws), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(ws, "t1"); ok {
		t.Fatalf("corrupt store should read as empty")
	}
}

func TestSetArchived(t *testing.T) {
	s, ws := newTestStore(t)
	if err := s.SetArchived(ws, "t1", true); err != nil {
		t.Fatal(err)
	}
	meta, _ := s.Get(ws, "t1")
	if !meta.Archived {
		t.Fatalf("expected archived")
	}
	// No change, no write.
	if err := os.Remove(StorePath(ws)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetArchived(ws, "t1", true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(StorePath(ws)); !os.IsNotExist(err) {
		t.Fatalf("redundant archive write")
	}
}
