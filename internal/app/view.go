package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "loading..."
	}
	m.refreshViewport()

	right := m.rightPaneView()
	body := right
	if sw := m.sidebarWidth(); sw > 0 {
		sidebar := m.sidebarView(sw, m.height-1)
		height := max(lipgloss.Height(sidebar), lipgloss.Height(right))
		if height < 1 {
			height = 1
		}
		divider := strings.Repeat("│\n", height-1) + "│"
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, dividerStyle.Render(divider), right)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusLineView())
}

func (m *Model) rightPaneView() string {
	header := headerStyle.Render(m.paneHeader())
	content := m.viewport.View()
	if len(m.state.Approvals) > 0 {
		content = m.approvalOverlay(m.viewport.Width, m.viewport.Height)
	}
	lines := []string{header, content}
	switch m.mode {
	case uiModeAddWorkspace:
		lines = append(lines, promptFrameStyle.Render("Add workspace: "+m.input.View()))
	case uiModeRename:
		lines = append(lines, promptFrameStyle.Render("Rename thread: "+m.input.View()))
	default:
		lines = append(lines, dividerStyle.Render(strings.Repeat("─", max(1, m.viewport.Width))))
		lines = append(lines, m.composer.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) paneHeader() string {
	workspaceID := m.state.Focused
	if workspaceID == "" {
		return "cockpit"
	}
	name := workspaceID
	if ws := m.workspaceByID(workspaceID); ws != nil {
		name = ws.Name
	}
	threadID := m.state.Active[workspaceID]
	if threadID == "" {
		return name
	}
	thread, _ := m.state.ThreadByID(workspaceID, threadID)
	title := name + " / " + thread.Name
	status := m.state.Status[threadID]
	switch {
	case status.Canceling:
		title += " " + cancelingStyle.Render("canceling...")
	case status.Reviewing && status.Processing:
		title += " " + reviewingStyle.Render("reviewing " + m.loader.View())
	case status.Reviewing:
		title += " " + reviewingStyle.Render("review mode")
	case status.Processing:
		title += " " + processingStyle.Render("working " + m.loader.View())
	}
	return title
}

// approvalOverlay centers the front of the approval queue over the
// transcript area; keys answer it before anything else.
func (m *Model) approvalOverlay(width, height int) string {
	prompt := promptFromApproval(m.state.Approvals[0])
	var b strings.Builder
	b.WriteString(headerStyle.Render("Approval requested: " + prompt.Summary))
	if prompt.Detail != "" {
		b.WriteString("\n\n")
		b.WriteString(wrapPlain(prompt.Detail, max(10, width-8)))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("y approve  ·  n decline"))
	if pending := len(m.state.Approvals); pending > 1 {
		b.WriteString(helpStyle.Render("  (" + strconv.Itoa(pending-1) + " more pending)"))
	}
	box := approvalBorderStyle.MaxWidth(max(12, width-2)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) statusLineView() string {
	help := helpStyle.Render(m.helpText())
	status := statusStyle.Render(m.status)
	line := help
	if m.status != "" {
		line += "  " + status
	}
	return line
}

func (m *Model) helpText() string {
	if len(m.state.Approvals) > 0 {
		return "y approve · n decline"
	}
	switch m.mode {
	case uiModeAddWorkspace, uiModeRename:
		return "enter confirm · esc cancel"
	}
	if m.sidebarFocus {
		return "enter open · n new · r rename · a archive · z archived · w add · d remove · tab compose · q quit"
	}
	return "enter send · esc cancel turn · tab sidebar · ctrl+c quit"
}
