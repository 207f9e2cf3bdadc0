package workspace

import (
	"context"
	"path/filepath"
	"testing"

	"cockpit/internal/config"
	"cockpit/internal/logging"
	"cockpit/internal/notify"
	"cockpit/internal/prompts"
	"cockpit/internal/sessionmeta"
	"cockpit/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	repo := store.NewFileRepository(store.RepositoryPaths{
		WorkspacesPath: filepath.Join(dir, "workspaces.json"),
		AppStatePath:   filepath.Join(dir, "app_state.json"),
	})
	t.Cleanup(func() { _ = repo.Close() })
	meta := sessionmeta.NewStore(logging.Nop())
	return NewService(logging.Nop(), config.DefaultCoreConfig(), repo, meta, nil)
}

func TestExpandPromptFallsBackAsTyped(t *testing.T) {
	s := newTestService(t)
	s.library = map[string]prompts.Prompt{
		"plan": {Name: "plan", Body: "Plan $ARGUMENTS carefully."},
	}

	if got := s.expandPrompt("/prompts:plan the parser"); got != "Plan the parser carefully." {
		t.Fatalf("expansion = %q", got)
	}
	// Unknown prompt name sends the original text.
	if got := s.expandPrompt("/prompts:missing arg"); got != "/prompts:missing arg" {
		t.Fatalf("unknown prompt should fall back, got %q", got)
	}
	// Unterminated quote is a parse failure, also falls back.
	if got := s.expandPrompt(`/prompts:plan "broken`); got != `/prompts:plan "broken` {
		t.Fatalf("parse failure should fall back, got %q", got)
	}
	// Non-invocations pass through untouched.
	if got := s.expandPrompt("just a message"); got != "just a message" {
		t.Fatalf("plain text modified: %q", got)
	}
}

func TestNotificationSettingsFromConfig(t *testing.T) {
	dir := t.TempDir()
	repo := store.NewFileRepository(store.RepositoryPaths{
		WorkspacesPath: filepath.Join(dir, "workspaces.json"),
		AppStatePath:   filepath.Join(dir, "app_state.json"),
	})
	defer repo.Close()

	off := false
	cfg := config.DefaultCoreConfig()
	cfg.Notifications.Enabled = &off
	cfg.Notifications.Methods = []string{"bell", "growl"}
	cfg.Notifications.TimeoutSeconds = 3

	s := NewService(logging.Nop(), cfg, repo, sessionmeta.NewStore(logging.Nop()), nil)
	if s.notifySet.Enabled {
		t.Fatalf("notifications should be disabled")
	}
	if len(s.notifySet.Methods) != 1 || s.notifySet.Methods[0] != notify.MethodBell {
		t.Fatalf("methods = %v", s.notifySet.Methods)
	}
	if s.notifySet.TimeoutSeconds != 3 {
		t.Fatalf("timeout = %d", s.notifySet.TimeoutSeconds)
	}
}

func TestPushDropsOldestWhenFull(t *testing.T) {
	s := newTestService(t)
	s.updates = make(chan Update, 1)

	s.push(Update{WorkspaceID: "first"})
	s.push(Update{WorkspaceID: "second"})

	got := <-s.updates
	if got.WorkspaceID != "second" {
		t.Fatalf("expected newest update to survive, got %q", got.WorkspaceID)
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.ListThreads(ctx, "nope"); err == nil {
		t.Fatal("expected error for unconnected workspace")
	}
	if _, err := s.SendMessage(ctx, "nope", "t1", "hello"); err == nil {
		t.Fatal("expected error for unconnected workspace")
	}
	if err := s.Interrupt(ctx, "nope", "t1"); err == nil {
		t.Fatal("expected error for unconnected workspace")
	}
}

func TestAddAndRemoveWorkspace(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	ws, err := s.AddWorkspace(ctx, t.TempDir(), "demo")
	if err != nil {
		t.Fatal(err)
	}
	list, err := s.Workspaces(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 workspace, got %v, %v", list, err)
	}
	if err := s.RemoveWorkspace(ctx, ws.ID); err != nil {
		t.Fatal(err)
	}
	// Removing twice is fine.
	if err := s.RemoveWorkspace(ctx, ws.ID); err != nil {
		t.Fatal(err)
	}
}
