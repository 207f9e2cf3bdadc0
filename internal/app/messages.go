package app

import (
	"cockpit/internal/protocol"
	"cockpit/internal/types"
	"cockpit/internal/workspace"
)

type serviceUpdateMsg struct {
	update workspace.Update
	ok     bool
}

type workspacesMsg struct {
	workspaces []*types.Workspace
	err        error
}

type appStateMsg struct {
	state *types.AppState
	err   error
}

type appStateSavedMsg struct {
	err error
}

type workspaceAddedMsg struct {
	workspace *types.Workspace
	err       error
}

type workspaceRemovedMsg struct {
	id  string
	err error
}

type connectMsg struct {
	workspaceID string
	err         error
}

type threadsMsg struct {
	workspaceID string
	threads     []types.Thread
	err         error
}

type threadStartedMsg struct {
	workspaceID string
	threadID    string
	err         error
}

type threadResumedMsg struct {
	workspaceID string
	snapshot    *workspace.Snapshot
	err         error
}

type sendMsg struct {
	workspaceID string
	threadID    string
	result      *workspace.SendResult
	err         error
}

type interruptMsg struct {
	workspaceID string
	threadID    string
	err         error
}

type renameMsg struct {
	workspaceID string
	threadID    string
	name        string
	err         error
}

type archiveMsg struct {
	workspaceID string
	threadID    string
	archived    bool
	err         error
}

type approvalRespondedMsg struct {
	workspaceID string
	requestID   int
	err         error
}

type modelsMsg struct {
	workspaceID string
	models      []protocol.ModelSummary
	err         error
}

type clipboardResultMsg struct {
	success string
	err     error
}
