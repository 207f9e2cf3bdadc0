package app

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"cockpit/internal/engine"
	"cockpit/internal/types"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.service.Close()
		return m, tea.Quit
	}
	switch m.mode {
	case uiModeAddWorkspace:
		return m.handleAddWorkspaceKey(msg)
	case uiModeRename:
		return m.handleRenameKey(msg)
	}
	if len(m.state.Approvals) > 0 {
		return m.handleApprovalKey(msg)
	}
	if m.sidebarFocus {
		return m.handleSidebarKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m *Model) handleApprovalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prompt := promptFromApproval(m.state.Approvals[0])
	switch msg.String() {
	case "y", "enter":
		return m, respondApprovalCmd(m.service, prompt.WorkspaceID, prompt.RequestID, types.ApprovalAccept)
	case "n", "esc":
		return m, respondApprovalCmd(m.service, prompt.WorkspaceID, prompt.RequestID, types.ApprovalDecline)
	}
	return m, nil
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.service.Close()
		return m, tea.Quit
	case "tab":
		m.sidebarFocus = false
		m.composer.Focus()
		return m, nil
	case "up", "k":
		m.cursor--
		m.clampCursor()
		return m, nil
	case "down", "j":
		m.cursor++
		m.clampCursor()
		return m, nil
	case "enter":
		return m.activateSelection()
	case "w":
		m.mode = uiModeAddWorkspace
		m.input.SetValue("")
		m.input.Placeholder = "path to project root"
		m.input.Focus()
		return m, nil
	case "n":
		if row, ok := m.selectedRow(); ok {
			count := len(m.state.Threads[row.workspaceID])
			fallback := "Agent " + strconv.Itoa(count+1)
			return m, startThreadCmd(m.service, row.workspaceID, fallback)
		}
		return m, nil
	case "r":
		if row, ok := m.selectedRow(); ok && row.kind == rowThread {
			m.mode = uiModeRename
			m.renameTarget = row
			thread, _ := m.state.ThreadByID(row.workspaceID, row.threadID)
			m.input.SetValue(thread.Name)
			m.input.Placeholder = "thread name"
			m.input.Focus()
		}
		return m, nil
	case "a":
		if row, ok := m.selectedRow(); ok && row.kind == rowThread {
			thread, _ := m.state.ThreadByID(row.workspaceID, row.threadID)
			return m, setArchivedCmd(m.service, row.workspaceID, row.threadID, !thread.Archived)
		}
		return m, nil
	case "z":
		m.showArchived = !m.showArchived
		m.clampCursor()
		return m, nil
	case "d":
		if row, ok := m.selectedRow(); ok && row.kind == rowWorkspace {
			return m, removeWorkspaceCmd(m.service, row.workspaceID)
		}
		return m, nil
	case "m":
		if row, ok := m.selectedRow(); ok {
			return m, fetchModelsCmd(m.service, row.workspaceID)
		}
		return m, nil
	case "y":
		if items := m.activeThreadItems(); len(items) > 0 {
			return m, copyToClipboardCmd(transcriptCopyText(items), "transcript copied")
		}
		return m, nil
	case "s":
		m.appState.SidebarCollapsed = !m.appState.SidebarCollapsed
		m.applyLayout()
		m.refreshViewport()
		return m, saveAppStateCmd(m.states, m.appState)
	case "pgup":
		m.follow = false
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown":
		m.viewport.HalfViewDown()
		m.follow = m.viewport.AtBottom()
		return m, nil
	}
	return m, nil
}

// activateSelection focuses a workspace row (connecting it on demand) or
// selects a thread row and resumes its transcript.
func (m *Model) activateSelection() (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	switch row.kind {
	case rowWorkspace:
		m.applyActions([]engine.Action{engine.FocusWorkspace{WorkspaceID: row.workspaceID}})
		m.refreshViewport()
		cmds := []tea.Cmd{m.selectionChanged(row.workspaceID, m.state.Active[row.workspaceID])}
		if ws := m.workspaceByID(row.workspaceID); ws != nil && m.conns[row.workspaceID] != types.ConnectionConnected {
			cmds = append(cmds, connectCmd(m.service, *ws))
		} else {
			cmds = append(cmds, fetchThreadsCmd(m.service, row.workspaceID))
		}
		return m, tea.Batch(cmds...)
	default:
		m.applyActions([]engine.Action{
			engine.FocusWorkspace{WorkspaceID: row.workspaceID},
			engine.SelectThread{WorkspaceID: row.workspaceID, ThreadID: row.threadID},
		})
		m.follow = true
		m.refreshViewport()
		cmds := []tea.Cmd{m.selectionChanged(row.workspaceID, row.threadID)}
		if len(m.state.Items[row.threadID]) == 0 {
			cmds = append(cmds, resumeThreadCmd(m.service, row.workspaceID, row.threadID))
		}
		m.sidebarFocus = false
		m.composer.Focus()
		return m, tea.Batch(cmds...)
	}
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.sidebarFocus = true
		m.composer.Blur()
		return m, nil
	case "esc":
		return m.requestCancel()
	case "ctrl+y":
		if items := m.activeThreadItems(); len(items) > 0 {
			return m, copyToClipboardCmd(transcriptCopyText(items), "transcript copied")
		}
		return m, nil
	case "enter":
		return m.submitComposer()
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m *Model) submitComposer() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.composer.Value())
	if text == "" {
		return m, nil
	}
	workspaceID := m.state.Focused
	threadID := m.state.ActiveThread()
	if workspaceID == "" || threadID == "" {
		m.setStatus("no thread selected")
		return m, nil
	}
	m.composer.Reset()
	m.follow = true
	return m, sendMessageCmd(m.service, workspaceID, threadID, text)
}

// requestCancel applies the optimistic canceling flag before asking the
// subprocess to interrupt; a failure rolls it back.
func (m *Model) requestCancel() (tea.Model, tea.Cmd) {
	workspaceID := m.state.Focused
	threadID := m.state.ActiveThread()
	if workspaceID == "" || threadID == "" {
		return m, nil
	}
	status := m.state.Status[threadID]
	if !status.Processing || status.Canceling {
		return m, nil
	}
	m.applyActions([]engine.Action{engine.CancelRequested{ThreadID: threadID}})
	return m, interruptCmd(m.service, workspaceID, threadID)
}

func (m *Model) handleAddWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = uiModeNormal
		m.input.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.input.Value())
		m.mode = uiModeNormal
		m.input.Blur()
		if path == "" {
			return m, nil
		}
		return m, addWorkspaceCmd(m.service, path, "")
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = uiModeNormal
		m.input.Blur()
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		target := m.renameTarget
		m.mode = uiModeNormal
		m.input.Blur()
		if name == "" {
			return m, nil
		}
		return m, renameThreadCmd(m.service, target.workspaceID, target.threadID, name)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
