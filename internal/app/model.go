// Package app is the terminal UI: a single update loop that folds service
// updates into the reconciliation state and renders workspaces, threads, and
// the active transcript.
package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"cockpit/internal/engine"
	"cockpit/internal/store"
	"cockpit/internal/types"
	"cockpit/internal/workspace"
)

const (
	minSidebarWidth  = 24
	maxSidebarWidth  = 40
	minPaneWidth     = 20
	minContentHeight = 6
	composerHeight   = 3
)

type uiMode int

const (
	uiModeNormal uiMode = iota
	uiModeAddWorkspace
	uiModeRename
)

type Model struct {
	service *workspace.Service
	states  store.AppStateStore

	state      engine.State
	workspaces []*types.Workspace
	conns      map[string]types.ConnectionState
	appState   types.AppState

	viewport viewport.Model
	composer textarea.Model
	input    textinput.Model
	loader   spinner.Model

	mode         uiMode
	sidebarFocus bool
	cursor       int
	width        int
	height       int
	status       string
	follow       bool
	showArchived bool
	appFocused   bool

	// renameTarget is the thread being renamed while in uiModeRename.
	renameTarget sidebarRow
	localSeq     int

	contentVersion int
	renderVersion  int
}

func NewModel(service *workspace.Service, states store.AppStateStore) Model {
	vp := viewport.New(minPaneWidth, minContentHeight)
	vp.SetContent("No thread selected.")

	composer := textarea.New()
	composer.Placeholder = "Message the agent, /review, or /prompts:name"
	composer.SetHeight(composerHeight - 1)
	composer.CharLimit = 0
	composer.ShowLineNumbers = false
	composer.Focus()

	input := textinput.New()

	loader := spinner.New()
	loader.Spinner = spinner.Dot
	loader.Style = processingStyle

	return Model{
		service:    service,
		states:     states,
		state:      engine.NewState(),
		conns:      map[string]types.ConnectionState{},
		viewport:   vp,
		composer:   composer,
		input:      input,
		loader:     loader,
		follow:     true,
		appFocused: true,
	}
}

func Run(service *workspace.Service, states store.AppStateStore) error {
	model := NewModel(service, states)
	p := tea.NewProgram(&model, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		fetchAppStateCmd(m.states),
		fetchWorkspacesCmd(m.service),
		waitForUpdateCmd(m.service.Updates()),
		m.loader.Tick,
	)
}

func (m *Model) sidebarRows() []sidebarRow {
	return buildSidebarRows(m.workspaces, m.state, m.showArchived)
}

func (m *Model) selectedRow() (sidebarRow, bool) {
	rows := m.sidebarRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return sidebarRow{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	rows := m.sidebarRows()
	if len(rows) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) sidebarWidth() int {
	if m.appState.SidebarCollapsed {
		return 0
	}
	w := m.width / 4
	if w < minSidebarWidth {
		w = minSidebarWidth
	}
	if w > maxSidebarWidth {
		w = maxSidebarWidth
	}
	if m.width > 0 && w > m.width-minPaneWidth {
		w = max(0, m.width-minPaneWidth)
	}
	return w
}

func (m *Model) applyLayout() {
	paneWidth := m.width
	if sw := m.sidebarWidth(); sw > 0 {
		paneWidth = m.width - sw - 1
	}
	if paneWidth < minPaneWidth {
		paneWidth = minPaneWidth
	}
	contentHeight := m.height - composerHeight - 2
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}
	m.viewport.Width = paneWidth
	m.viewport.Height = contentHeight
	m.composer.SetWidth(paneWidth)
	m.input.Width = paneWidth - 2
	m.contentVersion++
}

// applyActions folds reducer actions into local state and invalidates the
// rendered transcript when the active thread changed.
func (m *Model) applyActions(actions []engine.Action) {
	for _, action := range actions {
		m.state = engine.Reduce(m.state, action)
	}
	m.contentVersion++
	m.clampCursor()
}

func (m *Model) activeThreadItems() []types.Item {
	threadID := m.state.ActiveThread()
	if threadID == "" {
		return nil
	}
	return m.state.Items[threadID]
}

func (m *Model) refreshViewport() {
	if m.contentVersion == m.renderVersion {
		return
	}
	m.renderVersion = m.contentVersion
	threadID := m.state.ActiveThread()
	if threadID == "" {
		m.viewport.SetContent(helpStyle.Render("No thread selected."))
		return
	}
	m.viewport.SetContent(renderTranscript(m.state.Items[threadID], m.viewport.Width))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) setStatus(text string) {
	m.status = text
}

func (m *Model) setError(prefix string, err error) {
	if err == nil {
		return
	}
	m.status = prefix + ": " + err.Error()
}
