package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cockpit/internal/types"
)

// renderTranscript renders a thread's items top to bottom at the given
// width. Width is the full pane width; bubbles subtract their own frame.
func renderTranscript(items []types.Item, width int) string {
	if len(items) == 0 {
		return helpStyle.Render("No messages yet.")
	}
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		if block := renderTranscriptItem(item, width); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n")
}

func renderTranscriptItem(item types.Item, width int) string {
	inner := bubbleInnerWidth(width)
	switch it := item.(type) {
	case types.Message:
		if it.Role == types.RoleUser {
			body := wrapPlain(it.Text, inner)
			if len(it.Attachments) > 0 {
				body += "\n" + metaStyle.Render(strings.Join(it.Attachments, ", "))
			}
			return userBubbleStyle.Width(min(width, inner+2)).Render(body)
		}
		return agentBubbleStyle.Width(min(width, inner+2)).Render(renderMarkdown(it.Text, inner))
	case types.Reasoning:
		text := it.Summary
		if it.Content != "" {
			if text != "" {
				text += "\n"
			}
			text += it.Content
		}
		if strings.TrimSpace(text) == "" {
			return ""
		}
		return reasoningBubbleStyle.Width(min(width, inner+2)).Render(wrapPlain(text, inner))
	case types.Tool:
		return renderToolItem(it, width, inner)
	case types.Review:
		label := "Review"
		if it.State == types.ReviewCompleted {
			label = "Review finished"
		}
		body := reviewingStyle.Render(label)
		if strings.TrimSpace(it.Text) != "" {
			body += "\n" + renderMarkdown(it.Text, inner)
		}
		return reviewBubbleStyle.Width(min(width, inner+2)).Render(body)
	case types.Diff:
		body := it.Title
		if it.Diff != "" {
			body += "\n" + wrapPlain(it.Diff, inner)
		}
		return toolBubbleStyle.Width(min(width, inner+2)).Render(body)
	default:
		return ""
	}
}

func renderToolItem(tool types.Tool, width, inner int) string {
	var b strings.Builder
	b.WriteString(tool.Title)
	if tool.Status != "" {
		b.WriteString(" ")
		b.WriteString(toolStatusStyle.Render("[" + tool.Status + "]"))
	}
	if tool.Detail != "" {
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(tool.Detail))
	}
	if out := strings.TrimSpace(tool.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(wrapPlain(tailLines(out, 20), inner))
	}
	for _, change := range tool.Changes {
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(change.Kind + " " + change.Path))
	}
	return toolBubbleStyle.Width(min(width, inner+2)).Render(b.String())
}

func bubbleInnerWidth(width int) int {
	// Border and padding take two columns each side.
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	return inner
}

func wrapPlain(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(strings.TrimRight(text, "\n"))
}

func tailLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

// transcriptCopyText flattens a thread's items to plain text for the
// clipboard.
func transcriptCopyText(items []types.Item) string {
	var b strings.Builder
	for _, item := range items {
		switch it := item.(type) {
		case types.Message:
			role := "agent"
			if it.Role == types.RoleUser {
				role = "user"
			}
			b.WriteString(role)
			b.WriteString(": ")
			b.WriteString(it.Text)
			b.WriteString("\n\n")
		case types.Tool:
			b.WriteString(it.Title)
			if it.Output != "" {
				b.WriteString("\n")
				b.WriteString(it.Output)
			}
			b.WriteString("\n\n")
		case types.Review:
			if it.Text != "" {
				b.WriteString(it.Text)
				b.WriteString("\n\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
