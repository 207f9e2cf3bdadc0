package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"cockpit/internal/engine"
	"cockpit/internal/types"
	"cockpit/internal/workspace"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		m.refreshViewport()
		return m, nil
	case tea.FocusMsg:
		m.appFocused = true
		m.syncFocus()
		return m, nil
	case tea.BlurMsg:
		m.appFocused = false
		m.syncFocus()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	case serviceUpdateMsg:
		return m.handleServiceUpdate(msg)
	case workspacesMsg:
		return m.handleWorkspaces(msg)
	case appStateMsg:
		if msg.err != nil {
			m.setError("state load failed", msg.err)
			return m, nil
		}
		if msg.state != nil {
			m.appState = *msg.state
		}
		return m, m.restoreSelection()
	case appStateSavedMsg:
		m.setError("state save failed", msg.err)
		return m, nil
	case workspaceAddedMsg:
		if msg.err != nil {
			m.setError("add workspace failed", msg.err)
			return m, nil
		}
		m.setStatus("workspace added: " + msg.workspace.Name)
		m.appState.ActiveWorkspaceID = msg.workspace.ID
		m.applyActions([]engine.Action{engine.FocusWorkspace{WorkspaceID: msg.workspace.ID}})
		return m, tea.Batch(
			fetchWorkspacesCmd(m.service),
			connectCmd(m.service, *msg.workspace),
			saveAppStateCmd(m.states, m.appState),
		)
	case workspaceRemovedMsg:
		if msg.err != nil {
			m.setError("remove workspace failed", msg.err)
			return m, nil
		}
		m.applyActions([]engine.Action{engine.RemoveWorkspace{WorkspaceID: msg.id}})
		delete(m.conns, msg.id)
		m.setStatus("workspace removed")
		m.refreshViewport()
		return m, fetchWorkspacesCmd(m.service)
	case connectMsg:
		if msg.err != nil {
			m.conns[msg.workspaceID] = types.ConnectionFailed
			m.setError("connect failed", msg.err)
			return m, nil
		}
		return m, fetchThreadsCmd(m.service, msg.workspaceID)
	case threadsMsg:
		return m.handleThreads(msg)
	case threadStartedMsg:
		if msg.err != nil {
			m.setError("new thread failed", msg.err)
			return m, nil
		}
		m.applyActions([]engine.Action{
			engine.EnsureThread{WorkspaceID: msg.workspaceID, ThreadID: msg.threadID},
			engine.SelectThread{WorkspaceID: msg.workspaceID, ThreadID: msg.threadID},
		})
		m.follow = true
		m.refreshViewport()
		return m, m.selectionChanged(msg.workspaceID, msg.threadID)
	case threadResumedMsg:
		return m.handleResumed(msg)
	case sendMsg:
		return m.handleSend(msg)
	case interruptMsg:
		if msg.err != nil {
			m.applyActions([]engine.Action{engine.CancelFailed{ThreadID: msg.threadID}})
			m.setError("cancel failed", msg.err)
		}
		return m, nil
	case renameMsg:
		if msg.err != nil {
			m.setError("rename failed", msg.err)
			return m, nil
		}
		m.applyActions([]engine.Action{engine.SetThreadName{
			WorkspaceID: msg.workspaceID,
			ThreadID:    msg.threadID,
			Name:        msg.name,
		}})
		return m, nil
	case archiveMsg:
		if msg.err != nil {
			m.setError("archive failed", msg.err)
			return m, nil
		}
		m.applyActions([]engine.Action{engine.SetThreadArchived{
			WorkspaceID: msg.workspaceID,
			ThreadID:    msg.threadID,
			Archived:    msg.archived,
		}})
		return m, nil
	case approvalRespondedMsg:
		if msg.err != nil {
			m.setError("approval response failed", msg.err)
			return m, nil
		}
		m.applyActions([]engine.Action{engine.ResolveApproval{
			WorkspaceID: msg.workspaceID,
			RequestID:   msg.requestID,
		}})
		return m, nil
	case modelsMsg:
		if msg.err != nil {
			m.setError("models unavailable", msg.err)
			return m, nil
		}
		names := make([]string, 0, len(msg.models))
		for _, model := range msg.models {
			names = append(names, model.ID)
		}
		m.setStatus("models: " + strings.Join(names, ", "))
		return m, nil
	case clipboardResultMsg:
		if msg.err != nil {
			m.setError("copy failed", msg.err)
		} else {
			m.setStatus(msg.success)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleServiceUpdate(msg serviceUpdateMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		m.setStatus("workspace service stopped")
		return m, nil
	}
	update := msg.update
	if update.Connection != "" {
		m.conns[update.WorkspaceID] = update.Connection
		if update.Connection == types.ConnectionFailed {
			m.setError("workspace disconnected", update.Err)
		}
	}
	if len(update.Actions) > 0 {
		m.applyActions(update.Actions)
		m.refreshViewport()
	}
	return m, waitForUpdateCmd(m.service.Updates())
}

func (m *Model) handleWorkspaces(msg workspacesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError("workspaces unavailable", msg.err)
		return m, nil
	}
	m.workspaces = msg.workspaces
	m.clampCursor()
	return m, m.restoreSelection()
}

// restoreSelection reconnects the previously focused workspace once both the
// workspace list and the persisted state have arrived.
func (m *Model) restoreSelection() tea.Cmd {
	if m.appState.ActiveWorkspaceID == "" || m.state.Focused != "" {
		return nil
	}
	ws := m.workspaceByID(m.appState.ActiveWorkspaceID)
	if ws == nil {
		return nil
	}
	m.applyActions([]engine.Action{engine.FocusWorkspace{WorkspaceID: ws.ID}})
	m.syncFocus()
	return connectCmd(m.service, *ws)
}

func (m *Model) handleThreads(msg threadsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError("threads unavailable", msg.err)
		return m, nil
	}
	m.applyActions([]engine.Action{engine.SetThreads{WorkspaceID: msg.workspaceID, Threads: msg.threads}})

	// Restore the persisted thread selection once its record exists.
	restored := ""
	if msg.workspaceID == m.appState.ActiveWorkspaceID {
		restored = m.appState.ActiveThreadID
	}
	if restored != "" && m.state.Active[msg.workspaceID] == "" {
		if _, ok := m.state.ThreadByID(msg.workspaceID, restored); ok {
			m.applyActions([]engine.Action{engine.SelectThread{WorkspaceID: msg.workspaceID, ThreadID: restored}})
			m.syncFocus()
			m.refreshViewport()
			return m, resumeThreadCmd(m.service, msg.workspaceID, restored)
		}
	}
	m.refreshViewport()
	return m, nil
}

func (m *Model) handleResumed(msg threadResumedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError("resume failed", msg.err)
		return m, nil
	}
	snapshot := msg.snapshot
	actions := []engine.Action{engine.ReplaceItems{
		ThreadID:  snapshot.ThreadID,
		Items:     snapshot.Items,
		Reviewing: snapshot.Reviewing,
	}}
	if snapshot.Name != "" {
		actions = append(actions, engine.SetThreadName{
			WorkspaceID: msg.workspaceID,
			ThreadID:    snapshot.ThreadID,
			Name:        snapshot.Name,
		})
	}
	m.applyActions(actions)
	m.follow = true
	m.refreshViewport()
	return m, nil
}

func (m *Model) handleSend(msg sendMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError("send failed", msg.err)
		return m, nil
	}
	switch msg.result.Kind {
	case workspace.SendReview:
		m.setStatus("review started: " + msg.result.Label)
	default:
		// Local echo; the snapshot path reconciles the synthetic id away.
		m.localSeq++
		m.applyActions([]engine.Action{
			engine.UpsertItem{
				ThreadID: msg.threadID,
				Item: types.Message{
					ItemID: fmt.Sprintf("local-user-%d", m.localSeq),
					Role:   types.RoleUser,
					Text:   msg.result.Text,
				},
			},
			engine.TurnStarted{ThreadID: msg.threadID},
		})
		m.refreshViewport()
	}
	return m, nil
}

// syncFocus tells the service what the user is looking at so completed turns
// on other threads raise notifications.
func (m *Model) syncFocus() {
	m.service.SetFocus(m.state.Focused, m.state.ActiveThread(), m.appFocused)
}

// selectionChanged persists the new selection and realigns focus tracking.
func (m *Model) selectionChanged(workspaceID, threadID string) tea.Cmd {
	m.appState.ActiveWorkspaceID = workspaceID
	m.appState.ActiveThreadID = threadID
	m.syncFocus()
	return saveAppStateCmd(m.states, m.appState)
}
