package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cockpit/internal/types"
)

func openBackends(t *testing.T) map[string]Repository {
	t.Helper()
	dir := t.TempDir()
	file := NewFileRepository(RepositoryPaths{
		WorkspacesPath: filepath.Join(dir, "workspaces.json"),
		AppStatePath:   filepath.Join(dir, "app_state.json"),
	})
	bbolt, err := NewBboltRepository(filepath.Join(dir, "cockpit.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = file.Close()
		_ = bbolt.Close()
	})
	return map[string]Repository{"file": file, "bbolt": bbolt}
}

func TestWorkspaceStoreRoundTrip(t *testing.T) {
	for name, repo := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ws := repo.Workspaces()

			added, err := ws.Add(ctx, &types.Workspace{Path: "/tmp/проект"})
			if err != nil {
				t.Fatal(err)
			}
			if added.ID == "" {
				t.Fatalf("expected generated id")
			}
			if added.Name == "" {
				t.Fatalf("expected name derived from path")
			}
			if added.CreatedAt.IsZero() {
				t.Fatalf("expected created timestamp")
			}

			got, ok, err := ws.Get(ctx, added.ID)
			if err != nil || !ok {
				t.Fatalf("Get failed: ok=%v err=%v", ok, err)
			}
			if got.Path != "/tmp/проект" {
				t.Fatalf("unexpected path %q", got.Path)
			}

			got.Name = "renamed"
			if _, err := ws.Update(ctx, got); err != nil {
				t.Fatal(err)
			}
			got, _, _ = ws.Get(ctx, added.ID)
			if got.Name != "renamed" {
				t.Fatalf("update lost: %q", got.Name)
			}
			if got.CreatedAt.IsZero() {
				t.Fatalf("update should keep created timestamp")
			}

			if err := ws.Delete(ctx, added.ID); err != nil {
				t.Fatal(err)
			}
			if err := ws.Delete(ctx, added.ID); !errors.Is(err, ErrWorkspaceNotFound) {
				t.Fatalf("expected not found, got %v", err)
			}
			list, err := ws.List(ctx)
			if err != nil || len(list) != 0 {
				t.Fatalf("expected empty list, got %v, %v", list, err)
			}
		})
	}
}

func TestWorkspaceStoreRejectsEmptyPath(t *testing.T) {
	for name, repo := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := repo.Workspaces().Add(context.Background(), &types.Workspace{Path: "  "}); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestAppStateRoundTrip(t *testing.T) {
	for name, repo := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			state, err := repo.AppState().Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if state.ActiveWorkspaceID != "" {
				t.Fatalf("expected empty initial state")
			}
			state.ActiveWorkspaceID = "ws1"
			state.ActiveThreadID = "t1"
			if err := repo.AppState().Save(ctx, state); err != nil {
				t.Fatal(err)
			}
			got, err := repo.AppState().Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got.ActiveWorkspaceID != "ws1" || got.ActiveThreadID != "t1" {
				t.Fatalf("unexpected state %+v", got)
			}
		})
	}
}

func TestOpenBackendSelection(t *testing.T) {
	dir := t.TempDir()
	paths := RepositoryPaths{
		WorkspacesPath: filepath.Join(dir, "workspaces.json"),
		AppStatePath:   filepath.Join(dir, "app_state.json"),
		DBPath:         filepath.Join(dir, "cockpit.db"),
	}
	repo, err := Open("", paths)
	if err != nil || repo.Backend() != RepositoryBackendFile {
		t.Fatalf("default backend: %v, %v", repo, err)
	}
	repo, err = Open("bbolt", paths)
	if err != nil || repo.Backend() != RepositoryBackendBbolt {
		t.Fatalf("bbolt backend: %v, %v", repo, err)
	}
	_ = repo.Close()
	if _, err := Open("sqlite", paths); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
