package types

// AppState is the persisted UI selection, restored on startup.
type AppState struct {
	ActiveWorkspaceID string `json:"active_workspace_id,omitempty"`
	ActiveThreadID    string `json:"active_thread_id,omitempty"`
	SidebarCollapsed  bool   `json:"sidebar_collapsed,omitempty"`
}
