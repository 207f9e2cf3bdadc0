package app

import (
	"testing"

	"cockpit/internal/engine"
	"cockpit/internal/types"
)

func TestBuildSidebarRowsHidesArchived(t *testing.T) {
	workspaces := []*types.Workspace{{ID: "ws1", Name: "demo"}}
	state := engine.NewState()
	state.Threads["ws1"] = []types.Thread{
		{ID: "t1", Name: "Agent 1"},
		{ID: "t2", Name: "old", Archived: true},
	}

	rows := buildSidebarRows(workspaces, state, false)
	if len(rows) != 2 {
		t.Fatalf("expected workspace + one thread, got %d rows", len(rows))
	}
	if rows[0].kind != rowWorkspace || rows[1].threadID != "t1" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	rows = buildSidebarRows(workspaces, state, true)
	if len(rows) != 3 {
		t.Fatalf("expected archived thread visible, got %d rows", len(rows))
	}
	if rows[2].threadID != "t2" {
		t.Fatalf("archived thread missing: %+v", rows)
	}
}

func TestBuildSidebarRowsMultipleWorkspaces(t *testing.T) {
	workspaces := []*types.Workspace{
		{ID: "ws1", Name: "alpha"},
		{ID: "ws2", Name: "beta"},
	}
	state := engine.NewState()
	state.Threads["ws2"] = []types.Thread{{ID: "t1", Name: "Agent 1"}}

	rows := buildSidebarRows(workspaces, state, false)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1].kind != rowWorkspace || rows[1].workspaceID != "ws2" {
		t.Fatalf("workspace without threads should still get a header row: %+v", rows[1])
	}
	if rows[2].workspaceID != "ws2" || rows[2].threadID != "t1" {
		t.Fatalf("thread row misattributed: %+v", rows[2])
	}
}

func TestFitLine(t *testing.T) {
	if got := fitLine("abc", 6); got != "abc   " {
		t.Fatalf("pad = %q", got)
	}
	if got := fitLine("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestClampToCursor(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	got := clampToCursor(lines, 4, 3)
	if len(got) != 3 || got[2] != "e" {
		t.Fatalf("cursor row should stay visible: %v", got)
	}
	got = clampToCursor(lines, 0, 3)
	if got[0] != "a" {
		t.Fatalf("top window wrong: %v", got)
	}
}

func TestStatusGlyphsCancelWinsOverProcessing(t *testing.T) {
	glyphs := statusGlyphs(types.ThreadStatus{Processing: true, Canceling: true}, "|")
	if stripGlyphs(glyphs) != "×" {
		t.Fatalf("glyphs = %q", stripGlyphs(glyphs))
	}
	glyphs = statusGlyphs(types.ThreadStatus{Processing: true, Reviewing: true, Unread: true}, "|")
	if stripGlyphs(glyphs) != "|R*" {
		t.Fatalf("glyphs = %q", stripGlyphs(glyphs))
	}
}
