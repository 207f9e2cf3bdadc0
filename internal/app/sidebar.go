package app

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"cockpit/internal/engine"
	"cockpit/internal/types"
)

type sidebarRowKind int

const (
	rowWorkspace sidebarRowKind = iota
	rowThread
)

// sidebarRow is one selectable line: a workspace header or a thread under it.
type sidebarRow struct {
	kind        sidebarRowKind
	workspaceID string
	threadID    string
}

// buildSidebarRows flattens workspaces and their threads into selectable
// rows. Archived threads are hidden unless showArchived is set.
func buildSidebarRows(workspaces []*types.Workspace, state engine.State, showArchived bool) []sidebarRow {
	rows := make([]sidebarRow, 0, len(workspaces)*4)
	for _, ws := range workspaces {
		rows = append(rows, sidebarRow{kind: rowWorkspace, workspaceID: ws.ID})
		for _, thread := range state.Threads[ws.ID] {
			if thread.Archived && !showArchived {
				continue
			}
			rows = append(rows, sidebarRow{kind: rowThread, workspaceID: ws.ID, threadID: thread.ID})
		}
	}
	return rows
}

func statusGlyphs(status types.ThreadStatus, frame string) string {
	var b strings.Builder
	if status.Canceling {
		b.WriteString(cancelingStyle.Render("×"))
	} else if status.Processing {
		b.WriteString(processingStyle.Render(frame))
	}
	if status.Reviewing {
		b.WriteString(reviewingStyle.Render("R"))
	}
	if status.Unread {
		b.WriteString(threadUnreadStyle.Render("*"))
	}
	return b.String()
}

func (m *Model) sidebarView(width, height int) string {
	if width <= 0 {
		return ""
	}
	rows := m.sidebarRows()
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, headerStyle.Render(fitLine("Workspaces", width)))
	for i, row := range rows {
		lines = append(lines, m.renderSidebarRow(row, i == m.cursor, width))
	}
	if len(rows) == 0 {
		lines = append(lines, helpStyle.Render(fitLine("w to add a workspace", width)))
	}
	if height > 0 && len(lines) > height {
		lines = clampToCursor(lines, m.cursor+1, height)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSidebarRow(row sidebarRow, selected bool, width int) string {
	switch row.kind {
	case rowWorkspace:
		name := row.workspaceID
		if ws := m.workspaceByID(row.workspaceID); ws != nil {
			name = ws.Name
		}
		marker := " "
		switch m.conns[row.workspaceID] {
		case types.ConnectionConnected:
			marker = "●"
		case types.ConnectionConnecting:
			marker = "○"
		case types.ConnectionFailed:
			marker = "!"
		}
		line := fitLine(marker+" "+name, width)
		if selected {
			return selectedStyle.Render(line)
		}
		if row.workspaceID == m.state.Focused {
			return workspaceActiveStyle.Render(line)
		}
		return workspaceStyle.Render(line)
	default:
		thread, _ := m.state.ThreadByID(row.workspaceID, row.threadID)
		status := m.state.Status[row.threadID]
		glyphs := statusGlyphs(status, m.loader.View())
		label := "  " + thread.Name
		pad := width - runewidth.StringWidth(stripGlyphs(glyphs)) - 1
		line := fitLine(label, max(1, pad))
		if glyphs != "" {
			line += " " + glyphs
		}
		if selected {
			return selectedStyle.Render(fitLine("  "+thread.Name, width))
		}
		if thread.Archived {
			return threadArchivedStyle.Render(line)
		}
		if status.Unread {
			return threadUnreadStyle.Render(line)
		}
		if m.state.Active[row.workspaceID] == row.threadID {
			return workspaceActiveStyle.Render(line)
		}
		return threadStyle.Render(line)
	}
}

// fitLine truncates to the display width and pads with spaces so selection
// highlights span the full sidebar.
func fitLine(text string, width int) string {
	text = runewidth.Truncate(text, width, "…")
	if pad := width - runewidth.StringWidth(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	return text
}

// stripGlyphs measures rendered glyphs without their escape sequences; the
// glyph set is single-width runes so the count is the width.
func stripGlyphs(glyphs string) string {
	if glyphs == "" {
		return ""
	}
	var b strings.Builder
	inEscape := false
	for _, r := range glyphs {
		switch {
		case r == 0x1b:
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// clampToCursor windows the line list so the cursor row stays visible.
func clampToCursor(lines []string, cursorLine, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := 0
	if cursorLine >= height {
		start = cursorLine - height + 1
	}
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}

func (m *Model) workspaceByID(id string) *types.Workspace {
	for _, ws := range m.workspaces {
		if ws.ID == id {
			return ws
		}
	}
	return nil
}
