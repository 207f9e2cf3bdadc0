package engine

import (
	"reflect"
	"testing"

	"cockpit/internal/types"
)

func TestEnsureThreadPrependsAndNames(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t2"})
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})

	list := s.Threads["ws"]
	if len(list) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(list))
	}
	if list[0].ID != "t2" || list[1].ID != "t1" {
		t.Fatalf("expected newest first, got %q then %q", list[0].ID, list[1].ID)
	}
	if list[1].Name != "Agent 1" || list[0].Name != "Agent 2" {
		t.Fatalf("unexpected names: %q, %q", list[1].Name, list[0].Name)
	}
	if s.Active["ws"] != "t1" {
		t.Fatalf("expected first thread to stay active, got %q", s.Active["ws"])
	}
	if s.Owner["t2"] != "ws" {
		t.Fatalf("owner not recorded for t2")
	}
}

func TestAgentDeltaConcatenation(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, TurnStarted{ThreadID: "t1"})
	s = Reduce(s, AppendAgentDelta{ThreadID: "t1", ItemID: "m1", Delta: "Hel"})
	s = Reduce(s, AppendAgentDelta{ThreadID: "t1", ItemID: "m1", Delta: "lo"})

	msg, ok := s.Items["t1"][0].(types.Message)
	if !ok {
		t.Fatalf("expected message item, got %T", s.Items["t1"][0])
	}
	if msg.Text != "Hello" {
		t.Fatalf("expected concatenated text %q, got %q", "Hello", msg.Text)
	}
	if msg.Role != types.RoleAssistant {
		t.Fatalf("expected assistant role, got %q", msg.Role)
	}

	s = Reduce(s, CompleteAgentMessage{ThreadID: "t1", ItemID: "m1", Text: "Hello!"})
	msg = s.Items["t1"][0].(types.Message)
	if msg.Text != "Hello!" {
		t.Fatalf("final text not applied verbatim: %q", msg.Text)
	}
	if s.Status["t1"].Processing {
		t.Fatalf("completed agent message should end the turn")
	}
}

func TestCompleteAgentMessageEmptyKeepsAccumulated(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, AppendAgentDelta{ThreadID: "t1", ItemID: "m1", Delta: "partial"})
	s = Reduce(s, CompleteAgentMessage{ThreadID: "t1", ItemID: "m1", Text: ""})

	msg := s.Items["t1"][0].(types.Message)
	if msg.Text != "partial" {
		t.Fatalf("expected accumulated text to survive, got %q", msg.Text)
	}
}

func TestCompleteAgentMessageMarksUnreadWhenUnfocused(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, EnsureThread{WorkspaceID: "other", ThreadID: "t9"})
	s = Reduce(s, FocusWorkspace{WorkspaceID: "other"})
	s = Reduce(s, CompleteAgentMessage{ThreadID: "t1", ItemID: "m1", Text: "done"})

	if !s.Status["t1"].Unread {
		t.Fatalf("expected unfocused thread to become unread")
	}

	s = Reduce(s, FocusWorkspace{WorkspaceID: "ws"})
	s = Reduce(s, SelectThread{WorkspaceID: "ws", ThreadID: "t1"})
	if s.Status["t1"].Unread {
		t.Fatalf("selecting the thread should clear unread")
	}
}

func TestAppendToolOutputMissIsNoOp(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	next := Reduce(s, AppendToolOutput{ThreadID: "t1", ItemID: "missing", Chunk: "x"})

	if reflect.ValueOf(next.Items).Pointer() != reflect.ValueOf(s.Items).Pointer() {
		t.Fatalf("miss should return the state unchanged")
	}
}

func TestAppendToolOutputAccumulates(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, UpsertItem{ThreadID: "t1", Item: types.Tool{ItemID: "c1", ToolType: types.ToolCommand, Title: "Command: ls"}})
	s = Reduce(s, AppendToolOutput{ThreadID: "t1", ItemID: "c1", Chunk: "a\n"})
	s = Reduce(s, AppendToolOutput{ThreadID: "t1", ItemID: "c1", Chunk: "b\n"})

	tool := s.Items["t1"][0].(types.Tool)
	if tool.Output != "a\nb\n" {
		t.Fatalf("expected accumulated output, got %q", tool.Output)
	}

	// Completion without output must not wipe what streamed in.
	s = Reduce(s, UpsertItem{ThreadID: "t1", Item: types.Tool{ItemID: "c1", ToolType: types.ToolCommand, Status: "completed"}})
	tool = s.Items["t1"][0].(types.Tool)
	if tool.Output != "a\nb\n" {
		t.Fatalf("completion wiped streamed output: %q", tool.Output)
	}
	if tool.Status != "completed" || tool.Title != "Command: ls" {
		t.Fatalf("merge lost fields: %+v", tool)
	}
}

func TestTurnLifecycle(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, TurnStarted{ThreadID: "t1"})
	if !s.Status["t1"].Processing {
		t.Fatalf("expected processing after turn start")
	}

	s = Reduce(s, CancelRequested{ThreadID: "t1"})
	if !s.Status["t1"].Canceling {
		t.Fatalf("expected canceling after cancel request")
	}
	again := Reduce(s, CancelRequested{ThreadID: "t1"})
	if reflect.ValueOf(again.Status).Pointer() != reflect.ValueOf(s.Status).Pointer() {
		t.Fatalf("second cancel request should be a no-op")
	}

	s = Reduce(s, TurnCanceled{ThreadID: "t1"})
	st := s.Status["t1"]
	if st.Processing || st.Canceling || st.Reviewing {
		t.Fatalf("turn end should clear flags: %+v", st)
	}
}

func TestCancelRequestedIgnoredWhenIdle(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	next := Reduce(s, CancelRequested{ThreadID: "t1"})
	if next.Status["t1"].Canceling {
		t.Fatalf("cancel without a running turn should do nothing")
	}
}

func TestReviewExitEndsTurn(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, TurnStarted{ThreadID: "t1"})
	s = Reduce(s, ReviewEntered{ThreadID: "t1"})
	if !s.Status["t1"].Reviewing {
		t.Fatalf("expected reviewing after review enter")
	}
	s = Reduce(s, ReviewExited{ThreadID: "t1"})
	st := s.Status["t1"]
	if st.Reviewing || st.Processing || st.Canceling {
		t.Fatalf("review exit should end the turn: %+v", st)
	}
}

func TestReplaceItemsSetsReviewing(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, ReplaceItems{
		ThreadID:  "t1",
		Items:     []types.Item{types.Message{ItemID: "m1", Role: types.RoleUser, Text: "hi"}},
		Reviewing: true,
	})
	if len(s.Items["t1"]) != 1 {
		t.Fatalf("expected snapshot items to replace")
	}
	if !s.Status["t1"].Reviewing {
		t.Fatalf("expected reviewing from snapshot")
	}
}

func TestReasoningFieldsAccumulateIndependently(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, AppendReasoningSummary{ThreadID: "t1", ItemID: "r1", Delta: "sum"})
	s = Reduce(s, AppendReasoningContent{ThreadID: "t1", ItemID: "r1", Delta: "body"})
	s = Reduce(s, AppendReasoningSummary{ThreadID: "t1", ItemID: "r1", Delta: "mary"})

	reasoning := s.Items["t1"][0].(types.Reasoning)
	if reasoning.Summary != "summary" || reasoning.Content != "body" {
		t.Fatalf("unexpected reasoning fields: %+v", reasoning)
	}
}

func TestUpsertItemKindChangeReplaces(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, UpsertItem{ThreadID: "t1", Item: types.Message{ItemID: "x", Role: types.RoleAssistant, Text: "old"}})
	s = Reduce(s, UpsertItem{ThreadID: "t1", Item: types.Tool{ItemID: "x", ToolType: types.ToolCommand, Title: "Command: ls"}})

	if _, ok := s.Items["t1"][0].(types.Tool); !ok {
		t.Fatalf("expected kind change to replace, got %T", s.Items["t1"][0])
	}
	if len(s.Items["t1"]) != 1 {
		t.Fatalf("expected in-place replacement, got %d items", len(s.Items["t1"]))
	}
}

func TestRemoveWorkspaceCascades(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, EnsureThread{WorkspaceID: "keep", ThreadID: "t2"})
	s = Reduce(s, UpsertItem{ThreadID: "t1", Item: types.Message{ItemID: "m1", Role: types.RoleUser, Text: "hi"}})
	s = Reduce(s, AddApproval{Approval: types.Approval{WorkspaceID: "ws", RequestID: 7, Method: "execCommandApproval"}})
	s = Reduce(s, AddApproval{Approval: types.Approval{WorkspaceID: "keep", RequestID: 8, Method: "execCommandApproval"}})
	s = Reduce(s, FocusWorkspace{WorkspaceID: "ws"})

	s = Reduce(s, RemoveWorkspace{WorkspaceID: "ws"})

	if _, ok := s.Threads["ws"]; ok {
		t.Fatalf("thread list should be gone")
	}
	if _, ok := s.Items["t1"]; ok {
		t.Fatalf("items should be gone")
	}
	if _, ok := s.Status["t1"]; ok {
		t.Fatalf("status should be gone")
	}
	if len(s.Approvals) != 1 || s.Approvals[0].WorkspaceID != "keep" {
		t.Fatalf("approvals not scoped to removed workspace: %+v", s.Approvals)
	}
	if s.Focused != "" {
		t.Fatalf("focus should drop with the workspace")
	}
	if _, ok := s.Status["t2"]; !ok {
		t.Fatalf("other workspace threads must survive")
	}
}

func TestAddApprovalReplacesDuplicate(t *testing.T) {
	s := NewState()
	s = Reduce(s, AddApproval{Approval: types.Approval{WorkspaceID: "ws", RequestID: 1, Method: "execCommandApproval"}})
	s = Reduce(s, AddApproval{Approval: types.Approval{WorkspaceID: "ws", RequestID: 1, Method: "applyPatchApproval"}})

	if len(s.Approvals) != 1 {
		t.Fatalf("expected duplicate request to replace, got %d", len(s.Approvals))
	}
	if s.Approvals[0].Method != "applyPatchApproval" {
		t.Fatalf("expected latest approval to win, got %q", s.Approvals[0].Method)
	}

	s = Reduce(s, ResolveApproval{WorkspaceID: "ws", RequestID: 1})
	if len(s.Approvals) != 0 {
		t.Fatalf("expected approval resolved, got %+v", s.Approvals)
	}
}

func TestSetThreadsSeedsStatusAndOwner(t *testing.T) {
	s := NewState()
	s = Reduce(s, SetThreads{WorkspaceID: "ws", Threads: []types.Thread{
		{ID: "a", Name: "Agent 1"},
		{ID: "b", Name: "Agent 2"},
	}})

	if len(s.Threads["ws"]) != 2 {
		t.Fatalf("expected 2 threads")
	}
	if s.Owner["a"] != "ws" || s.Owner["b"] != "ws" {
		t.Fatalf("owners not recorded")
	}
	if _, ok := s.Status["a"]; !ok {
		t.Fatalf("status not seeded")
	}
}

func TestSetThreadNameAndArchive(t *testing.T) {
	s := NewState()
	s = Reduce(s, EnsureThread{WorkspaceID: "ws", ThreadID: "t1"})
	s = Reduce(s, SetThreadName{WorkspaceID: "ws", ThreadID: "t1", Name: "refactor"})
	s = Reduce(s, SetThreadArchived{WorkspaceID: "ws", ThreadID: "t1", Archived: true})

	thread, ok := s.ThreadByID("ws", "t1")
	if !ok {
		t.Fatalf("thread missing")
	}
	if thread.Name != "refactor" || !thread.Archived {
		t.Fatalf("unexpected thread: %+v", thread)
	}

	miss := Reduce(s, SetThreadName{WorkspaceID: "ws", ThreadID: "nope", Name: "x"})
	if reflect.ValueOf(miss.Threads).Pointer() != reflect.ValueOf(s.Threads).Pointer() {
		t.Fatalf("rename of unknown thread should be a no-op")
	}
}
