package engine

import "cockpit/internal/types"

// Action is the closed set of state transitions. Reduce switches over every
// variant; adding one is a compile-visible change.
type Action interface {
	action()
}

// EnsureThread adds a thread to a workspace's list if it is not already
// there, naming it "Agent N" and making it active when nothing else is.
type EnsureThread struct {
	WorkspaceID string
	ThreadID    string
}

// SetThreads replaces a workspace's thread list with a listing-merge result.
type SetThreads struct {
	WorkspaceID string
	Threads     []types.Thread
}

// ReplaceItems swaps in a thread's full item list rebuilt from a snapshot,
// together with the review flag recomputed from that snapshot.
type ReplaceItems struct {
	ThreadID  string
	Items     []types.Item
	Reviewing bool
}

// UpsertItem replaces or appends an item by id. An existing item of the same
// kind is merged field-wise so repeated started/completed events for one tool
// id update in place instead of duplicating.
type UpsertItem struct {
	ThreadID string
	Item     types.Item
}

// AppendAgentDelta concatenates streamed text onto the assistant message with
// the given item id, creating it when the first delta beats the started
// notice.
type AppendAgentDelta struct {
	ThreadID string
	ItemID   string
	Delta    string
}

// CompleteAgentMessage sets the final assistant text and ends the turn. A
// completion carrying only an id keeps the accumulated text.
type CompleteAgentMessage struct {
	ThreadID string
	ItemID   string
	Text     string
}

type AppendReasoningSummary struct {
	ThreadID string
	ItemID   string
	Delta    string
}

type AppendReasoningContent struct {
	ThreadID string
	ItemID   string
	Delta    string
}

// AppendToolOutput accumulates output on an existing tool item. It is a
// strict no-op when the item is missing or not a tool.
type AppendToolOutput struct {
	ThreadID string
	ItemID   string
	Chunk    string
}

type TurnStarted struct{ ThreadID string }

type TurnCompleted struct{ ThreadID string }

type TurnCanceled struct{ ThreadID string }

type ReviewEntered struct{ ThreadID string }

// ReviewExited force-ends the turn regardless of other signals.
type ReviewExited struct{ ThreadID string }

// CancelRequested optimistically marks the thread canceling. Only applies
// while processing and not already canceling.
type CancelRequested struct{ ThreadID string }

// CancelFailed rolls back the optimistic canceling flag.
type CancelFailed struct{ ThreadID string }

type SetThreadName struct {
	WorkspaceID string
	ThreadID    string
	Name        string
}

type SetThreadArchived struct {
	WorkspaceID string
	ThreadID    string
	Archived    bool
}

// SelectThread makes a thread active in its workspace and clears its unread
// flag.
type SelectThread struct {
	WorkspaceID string
	ThreadID    string
}

// FocusWorkspace records which workspace holds UI focus.
type FocusWorkspace struct{ WorkspaceID string }

// RemoveWorkspace cascades deletion of the workspace's threads from every
// collection, including pending approvals.
type RemoveWorkspace struct{ WorkspaceID string }

type AddApproval struct{ Approval types.Approval }

type ResolveApproval struct {
	WorkspaceID string
	RequestID   int
}

func (EnsureThread) action()           {}
func (SetThreads) action()             {}
func (ReplaceItems) action()           {}
func (UpsertItem) action()             {}
func (AppendAgentDelta) action()       {}
func (CompleteAgentMessage) action()   {}
func (AppendReasoningSummary) action() {}
func (AppendReasoningContent) action() {}
func (AppendToolOutput) action()       {}
func (TurnStarted) action()            {}
func (TurnCompleted) action()          {}
func (TurnCanceled) action()           {}
func (ReviewEntered) action()          {}
func (ReviewExited) action()           {}
func (CancelRequested) action()        {}
func (CancelFailed) action()           {}
func (SetThreadName) action()          {}
func (SetThreadArchived) action()      {}
func (SelectThread) action()           {}
func (FocusWorkspace) action()         {}
func (RemoveWorkspace) action()        {}
func (AddApproval) action()            {}
func (ResolveApproval) action()        {}
