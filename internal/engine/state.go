// Package engine holds the thread/session reconciliation core: a pure
// reducer over conversation state for every open workspace. All mutation
// happens through Reduce on the single update loop; the engine itself never
// does I/O.
package engine

import "cockpit/internal/types"

// State is the single consistent view derived from live deltas, snapshot
// rebuilds, and locally persisted metadata. Treat values as immutable:
// Reduce returns a new State sharing every collection it did not touch.
type State struct {
	// Threads holds the ordered per-workspace thread lists, newest first.
	Threads map[string][]types.Thread
	// Active maps workspace id to its selected thread id.
	Active map[string]string
	// Focused is the workspace currently holding UI focus.
	Focused string
	// Items holds the ordered conversation items per thread id.
	Items map[string][]types.Item
	// Status holds the per-thread turn lifecycle flags.
	Status map[string]types.ThreadStatus
	// Owner maps thread id back to its workspace, for teardown cascades.
	Owner map[string]string
	// Approvals are pending server-initiated requests, oldest first.
	Approvals []types.Approval
}

func NewState() State {
	return State{
		Threads: map[string][]types.Thread{},
		Active:  map[string]string{},
		Items:   map[string][]types.Item{},
		Status:  map[string]types.ThreadStatus{},
		Owner:   map[string]string{},
	}
}

// ThreadByID returns the thread record from its workspace's list.
func (s State) ThreadByID(workspaceID, threadID string) (types.Thread, bool) {
	for _, thread := range s.Threads[workspaceID] {
		if thread.ID == threadID {
			return thread, true
		}
	}
	return types.Thread{}, false
}

// ActiveThread returns the selected thread id for the focused workspace.
func (s State) ActiveThread() string {
	return s.Active[s.Focused]
}

func (s State) isThreadFocused(threadID string) bool {
	workspaceID, ok := s.Owner[threadID]
	if !ok {
		return false
	}
	return workspaceID == s.Focused && s.Active[workspaceID] == threadID
}
