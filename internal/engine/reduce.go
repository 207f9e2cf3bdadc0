package engine

import (
	"fmt"

	"cockpit/internal/types"
)

// Reduce applies one action and returns the next state. It never mutates its
// input: collections it touches are copied, everything else is shared. No-op
// actions return the input state unchanged.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case EnsureThread:
		return reduceEnsureThread(s, a)
	case SetThreads:
		return reduceSetThreads(s, a)
	case ReplaceItems:
		return reduceReplaceItems(s, a)
	case UpsertItem:
		return reduceUpsertItem(s, a)
	case AppendAgentDelta:
		return reduceAppendAgentDelta(s, a)
	case CompleteAgentMessage:
		return reduceCompleteAgentMessage(s, a)
	case AppendReasoningSummary:
		return reduceAppendReasoning(s, a.ThreadID, a.ItemID, a.Delta, false)
	case AppendReasoningContent:
		return reduceAppendReasoning(s, a.ThreadID, a.ItemID, a.Delta, true)
	case AppendToolOutput:
		return reduceAppendToolOutput(s, a)
	case TurnStarted:
		return patchStatus(s, a.ThreadID, func(st types.ThreadStatus) types.ThreadStatus {
			st.Processing = true
			st.Canceling = false
			return st
		})
	case TurnCompleted:
		return endTurn(s, a.ThreadID)
	case TurnCanceled:
		return endTurn(s, a.ThreadID)
	case ReviewEntered:
		return patchStatus(s, a.ThreadID, func(st types.ThreadStatus) types.ThreadStatus {
			st.Reviewing = true
			return st
		})
	case ReviewExited:
		// A review's exit always force-ends the turn.
		return patchStatus(s, a.ThreadID, func(st types.ThreadStatus) types.ThreadStatus {
			st.Reviewing = false
			st.Processing = false
			st.Canceling = false
			return st
		})
	case CancelRequested:
		st := s.Status[a.ThreadID]
		if !st.Processing || st.Canceling {
			return s
		}
		return patchStatus(s, a.ThreadID, func(st types.ThreadStatus) types.ThreadStatus {
			st.Canceling = true
			return st
		})
	case CancelFailed:
		return patchStatus(s, a.ThreadID, func(st types.ThreadStatus) types.ThreadStatus {
			st.Canceling = false
			return st
		})
	case SetThreadName:
		return patchThread(s, a.WorkspaceID, a.ThreadID, func(t types.Thread) types.Thread {
			t.Name = a.Name
			return t
		})
	case SetThreadArchived:
		return patchThread(s, a.WorkspaceID, a.ThreadID, func(t types.Thread) types.Thread {
			t.Archived = a.Archived
			return t
		})
	case SelectThread:
		return reduceSelectThread(s, a)
	case FocusWorkspace:
		s.Focused = a.WorkspaceID
		return s
	case RemoveWorkspace:
		return reduceRemoveWorkspace(s, a)
	case AddApproval:
		return reduceAddApproval(s, a)
	case ResolveApproval:
		return reduceResolveApproval(s, a)
	default:
		return s
	}
}

func reduceEnsureThread(s State, a EnsureThread) State {
	list := s.Threads[a.WorkspaceID]
	for _, thread := range list {
		if thread.ID == a.ThreadID {
			return s
		}
	}
	thread := types.Thread{
		ID:   a.ThreadID,
		Name: fmt.Sprintf("Agent %d", len(list)+1),
	}
	next := make([]types.Thread, 0, len(list)+1)
	next = append(next, thread)
	next = append(next, list...)

	s.Threads = cloneThreadsMap(s.Threads)
	s.Threads[a.WorkspaceID] = next
	s.Status = cloneStatusMap(s.Status)
	s.Status[a.ThreadID] = types.ThreadStatus{}
	s.Owner = cloneStringMap(s.Owner)
	s.Owner[a.ThreadID] = a.WorkspaceID
	if s.Active[a.WorkspaceID] == "" {
		s.Active = cloneStringMap(s.Active)
		s.Active[a.WorkspaceID] = a.ThreadID
	}
	return s
}

func reduceSetThreads(s State, a SetThreads) State {
	s.Threads = cloneThreadsMap(s.Threads)
	s.Threads[a.WorkspaceID] = append([]types.Thread{}, a.Threads...)

	owner := cloneStringMap(s.Owner)
	status := s.Status
	statusCloned := false
	for _, thread := range a.Threads {
		owner[thread.ID] = a.WorkspaceID
		if _, ok := status[thread.ID]; !ok {
			if !statusCloned {
				status = cloneStatusMap(status)
				statusCloned = true
			}
			status[thread.ID] = types.ThreadStatus{}
		}
	}
	s.Owner = owner
	s.Status = status
	return s
}

func reduceReplaceItems(s State, a ReplaceItems) State {
	s.Items = cloneItemsMap(s.Items)
	s.Items[a.ThreadID] = append([]types.Item{}, a.Items...)
	return patchStatus(s, a.ThreadID, func(st types.ThreadStatus) types.ThreadStatus {
		st.Reviewing = a.Reviewing
		return st
	})
}

func reduceUpsertItem(s State, a UpsertItem) State {
	if a.Item == nil {
		return s
	}
	items := s.Items[a.ThreadID]
	idx := indexOfItem(items, a.Item.ID())
	next := append([]types.Item{}, items...)
	if idx >= 0 {
		next[idx] = mergeItems(next[idx], a.Item)
	} else {
		next = append(next, a.Item)
	}
	s.Items = cloneItemsMap(s.Items)
	s.Items[a.ThreadID] = next
	return s
}

func reduceAppendAgentDelta(s State, a AppendAgentDelta) State {
	items := s.Items[a.ThreadID]
	idx := indexOfItem(items, a.ItemID)
	next := append([]types.Item{}, items...)
	if idx >= 0 {
		if msg, ok := next[idx].(types.Message); ok {
			msg.Text += a.Delta
			next[idx] = msg
		} else {
			next = append(next, types.Message{ItemID: a.ItemID, Role: types.RoleAssistant, Text: a.Delta})
		}
	} else {
		// First delta can beat the started notice.
		next = append(next, types.Message{ItemID: a.ItemID, Role: types.RoleAssistant, Text: a.Delta})
	}
	s.Items = cloneItemsMap(s.Items)
	s.Items[a.ThreadID] = next
	return s
}

func reduceCompleteAgentMessage(s State, a CompleteAgentMessage) State {
	items := s.Items[a.ThreadID]
	idx := indexOfItem(items, a.ItemID)
	next := append([]types.Item{}, items...)
	if idx >= 0 {
		if msg, ok := next[idx].(types.Message); ok {
			if a.Text != "" {
				msg.Text = a.Text
			}
			msg.Role = types.RoleAssistant
			next[idx] = msg
		} else {
			next = append(next, types.Message{ItemID: a.ItemID, Role: types.RoleAssistant, Text: a.Text})
		}
	} else {
		next = append(next, types.Message{ItemID: a.ItemID, Role: types.RoleAssistant, Text: a.Text})
	}
	s.Items = cloneItemsMap(s.Items)
	s.Items[a.ThreadID] = next

	// An agent message completing ends the turn even if no turn/completed
	// signal follows.
	focused := s.isThreadFocused(a.ThreadID)
	return patchStatus(s, a.ThreadID, func(st types.ThreadStatus) types.ThreadStatus {
		st.Processing = false
		st.Canceling = false
		if !focused {
			st.Unread = true
		}
		return st
	})
}

func reduceAppendReasoning(s State, threadID, itemID, delta string, content bool) State {
	items := s.Items[threadID]
	idx := indexOfItem(items, itemID)
	next := append([]types.Item{}, items...)
	if idx >= 0 {
		if reasoning, ok := next[idx].(types.Reasoning); ok {
			if content {
				reasoning.Content += delta
			} else {
				reasoning.Summary += delta
			}
			next[idx] = reasoning
		} else {
			return s
		}
	} else {
		reasoning := types.Reasoning{ItemID: itemID}
		if content {
			reasoning.Content = delta
		} else {
			reasoning.Summary = delta
		}
		next = append(next, reasoning)
	}
	s.Items = cloneItemsMap(s.Items)
	s.Items[threadID] = next
	return s
}

func reduceAppendToolOutput(s State, a AppendToolOutput) State {
	items := s.Items[a.ThreadID]
	idx := indexOfItem(items, a.ItemID)
	if idx < 0 {
		return s
	}
	tool, ok := items[idx].(types.Tool)
	if !ok {
		return s
	}
	tool.Output += a.Chunk
	next := append([]types.Item{}, items...)
	next[idx] = tool
	s.Items = cloneItemsMap(s.Items)
	s.Items[a.ThreadID] = next
	return s
}

func reduceSelectThread(s State, a SelectThread) State {
	s.Active = cloneStringMap(s.Active)
	s.Active[a.WorkspaceID] = a.ThreadID
	if st, ok := s.Status[a.ThreadID]; ok && st.Unread {
		st.Unread = false
		s.Status = cloneStatusMap(s.Status)
		s.Status[a.ThreadID] = st
	}
	return s
}

func reduceRemoveWorkspace(s State, a RemoveWorkspace) State {
	threads := s.Threads[a.WorkspaceID]

	s.Threads = cloneThreadsMap(s.Threads)
	delete(s.Threads, a.WorkspaceID)
	s.Active = cloneStringMap(s.Active)
	delete(s.Active, a.WorkspaceID)

	items := cloneItemsMap(s.Items)
	status := cloneStatusMap(s.Status)
	owner := cloneStringMap(s.Owner)
	for _, thread := range threads {
		delete(items, thread.ID)
		delete(status, thread.ID)
		delete(owner, thread.ID)
	}
	// Threads known only through Owner (e.g. dropped from a listing) still
	// get cleaned up.
	for threadID, workspaceID := range owner {
		if workspaceID == a.WorkspaceID {
			delete(items, threadID)
			delete(status, threadID)
			delete(owner, threadID)
		}
	}
	s.Items = items
	s.Status = status
	s.Owner = owner

	kept := make([]types.Approval, 0, len(s.Approvals))
	for _, approval := range s.Approvals {
		if approval.WorkspaceID != a.WorkspaceID {
			kept = append(kept, approval)
		}
	}
	s.Approvals = kept
	if s.Focused == a.WorkspaceID {
		s.Focused = ""
	}
	return s
}

func reduceAddApproval(s State, a AddApproval) State {
	next := make([]types.Approval, 0, len(s.Approvals)+1)
	for _, approval := range s.Approvals {
		if approval.WorkspaceID == a.Approval.WorkspaceID && approval.RequestID == a.Approval.RequestID {
			continue
		}
		next = append(next, approval)
	}
	s.Approvals = append(next, a.Approval)
	return s
}

func reduceResolveApproval(s State, a ResolveApproval) State {
	next := make([]types.Approval, 0, len(s.Approvals))
	for _, approval := range s.Approvals {
		if approval.WorkspaceID == a.WorkspaceID && approval.RequestID == a.RequestID {
			continue
		}
		next = append(next, approval)
	}
	s.Approvals = next
	return s
}

func endTurn(s State, threadID string) State {
	return patchStatus(s, threadID, func(st types.ThreadStatus) types.ThreadStatus {
		st.Processing = false
		st.Reviewing = false
		st.Canceling = false
		return st
	})
}

func patchStatus(s State, threadID string, patch func(types.ThreadStatus) types.ThreadStatus) State {
	s.Status = cloneStatusMap(s.Status)
	s.Status[threadID] = patch(s.Status[threadID])
	return s
}

func patchThread(s State, workspaceID, threadID string, patch func(types.Thread) types.Thread) State {
	list := s.Threads[workspaceID]
	idx := -1
	for i, thread := range list {
		if thread.ID == threadID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	next := append([]types.Thread{}, list...)
	next[idx] = patch(next[idx])
	s.Threads = cloneThreadsMap(s.Threads)
	s.Threads[workspaceID] = next
	return s
}

func indexOfItem(items []types.Item, id string) int {
	for i, item := range items {
		if item.ID() == id {
			return i
		}
	}
	return -1
}

// mergeItems merges an incoming item over an existing one with the same id.
// Same-kind merges keep accumulated fields the incoming record left empty;
// a kind change replaces outright.
func mergeItems(existing, incoming types.Item) types.Item {
	switch in := incoming.(type) {
	case types.Tool:
		ex, ok := existing.(types.Tool)
		if !ok {
			return incoming
		}
		if in.Title == "" {
			in.Title = ex.Title
		}
		if in.Detail == "" {
			in.Detail = ex.Detail
		}
		if in.Status == "" {
			in.Status = ex.Status
		}
		if in.Output == "" {
			in.Output = ex.Output
		}
		if len(in.Changes) == 0 {
			in.Changes = ex.Changes
		}
		return in
	case types.Message:
		ex, ok := existing.(types.Message)
		if !ok {
			return incoming
		}
		if in.Text == "" {
			in.Text = ex.Text
		}
		if len(in.Attachments) == 0 {
			in.Attachments = ex.Attachments
		}
		return in
	case types.Reasoning:
		ex, ok := existing.(types.Reasoning)
		if !ok {
			return incoming
		}
		if in.Summary == "" {
			in.Summary = ex.Summary
		}
		if in.Content == "" {
			in.Content = ex.Content
		}
		return in
	case types.Review:
		ex, ok := existing.(types.Review)
		if !ok {
			return incoming
		}
		if in.Text == "" {
			in.Text = ex.Text
		}
		return in
	case types.Diff:
		ex, ok := existing.(types.Diff)
		if !ok {
			return incoming
		}
		if in.Title == "" {
			in.Title = ex.Title
		}
		if in.Diff == "" {
			in.Diff = ex.Diff
		}
		if in.Status == "" {
			in.Status = ex.Status
		}
		return in
	default:
		return incoming
	}
}

func cloneThreadsMap(in map[string][]types.Thread) map[string][]types.Thread {
	out := make(map[string][]types.Thread, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneItemsMap(in map[string][]types.Item) map[string][]types.Item {
	out := make(map[string][]types.Item, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStatusMap(in map[string]types.ThreadStatus) map[string]types.ThreadStatus {
	out := make(map[string]types.ThreadStatus, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
