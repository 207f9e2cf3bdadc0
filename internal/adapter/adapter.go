// Package adapter converts raw app-server item records into the closed set of
// conversation item variants. All wire-shape tolerance (string-or-array
// fields, camelCase or snake_case keys) lives here; nothing past this
// boundary sees the raw shapes.
package adapter

import (
	"encoding/json"
	"strings"

	"cockpit/internal/types"
)

// Normalize converts a single raw item record from a live event into a
// conversation item. Records without a non-empty id and type are dropped.
// User and agent messages are never converted on this path; the reducer
// builds those from delta actions instead.
func Normalize(raw map[string]any) (types.Item, bool) {
	id := str(raw, "id")
	kind := str(raw, "type")
	if id == "" || kind == "" {
		return nil, false
	}
	switch kind {
	case "userMessage", "agentMessage":
		return nil, false
	default:
		return normalizeShared(id, kind, raw)
	}
}

func normalizeShared(id, kind string, raw map[string]any) (types.Item, bool) {
	switch kind {
	case "reasoning":
		return types.Reasoning{
			ItemID:  id,
			Summary: textOrJoined(field(raw, "summary"), "\n"),
			Content: textOrJoined(field(raw, "content"), "\n"),
		}, true
	case "commandExecution":
		return types.Tool{
			ItemID:   id,
			ToolType: types.ToolCommand,
			Title:    "Command: " + textOrJoined(field(raw, "command"), " "),
			Detail:   str(raw, "cwd"),
			Status:   str(raw, "status"),
			Output:   firstStr(raw, "aggregatedOutput", "aggregated_output", "output"),
		}, true
	case "fileChange":
		return normalizeFileChange(id, raw), true
	case "mcpToolCall":
		return normalizeMCPToolCall(id, raw), true
	case "webSearch":
		return types.Tool{
			ItemID:   id,
			ToolType: types.ToolWebSearch,
			Title:    "Web search",
			Detail:   str(raw, "query"),
			Status:   str(raw, "status"),
		}, true
	case "imageView":
		return types.Tool{
			ItemID:   id,
			ToolType: types.ToolImageView,
			Title:    "Image",
			Detail:   str(raw, "path"),
			Status:   str(raw, "status"),
		}, true
	case "enteredReviewMode":
		return types.Review{
			ItemID: id,
			State:  types.ReviewStarted,
			Text:   firstStr(raw, "review", "text"),
		}, true
	case "exitedReviewMode":
		return types.Review{
			ItemID: id,
			State:  types.ReviewCompleted,
			Text:   firstStr(raw, "review", "text"),
		}, true
	case "diff", "turnDiff":
		return types.Diff{
			ItemID: id,
			Title:  str(raw, "title"),
			Diff:   str(raw, "diff"),
			Status: str(raw, "status"),
		}, true
	default:
		return nil, false
	}
}

func normalizeFileChange(id string, raw map[string]any) types.Tool {
	changes := fileChanges(raw)
	labels := make([]string, 0, len(changes))
	diffs := make([]string, 0, len(changes))
	for _, change := range changes {
		labels = append(labels, strings.TrimSpace(changePrefix(change.Kind)+" "+change.Path))
		if change.Diff != "" {
			diffs = append(diffs, change.Diff)
		}
	}
	detail := strings.Join(labels, ", ")
	if detail == "" {
		detail = "Pending changes"
	}
	return types.Tool{
		ItemID:   id,
		ToolType: types.ToolFileChange,
		Title:    "File changes",
		Detail:   detail,
		Status:   str(raw, "status"),
		Output:   strings.Join(diffs, "\n\n"),
		Changes:  changes,
	}
}

func changePrefix(kind string) string {
	switch strings.ToLower(kind) {
	case "add":
		return "A"
	case "delete":
		return "D"
	case "modify":
		return "M"
	default:
		return ""
	}
}

func fileChanges(raw map[string]any) []types.FileChange {
	list, _ := field(raw, "changes").([]any)
	out := make([]types.FileChange, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		path := str(m, "path")
		if path == "" {
			continue
		}
		out = append(out, types.FileChange{
			Path: path,
			Kind: strings.ToLower(firstStr(m, "kind", "type")),
			Diff: str(m, "diff"),
		})
	}
	return out
}

func normalizeMCPToolCall(id string, raw map[string]any) types.Tool {
	title := "Tool: " + str(raw, "server")
	if tool := str(raw, "tool"); tool != "" {
		title += " / " + tool
	}
	output := firstStr(raw, "result", "error")
	return types.Tool{
		ItemID:   id,
		ToolType: types.ToolMCP,
		Title:    title,
		Detail:   prettyArguments(field(raw, "arguments")),
		Status:   str(raw, "status"),
		Output:   output,
	}
}

func prettyArguments(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// field reads a key accepting both camelCase and snake_case spellings.
func field(raw map[string]any, key string) any {
	if v, ok := raw[key]; ok {
		return v
	}
	if alt := snakeCase(key); alt != key {
		if v, ok := raw[alt]; ok {
			return v
		}
	}
	return nil
}

func snakeCase(key string) string {
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func str(raw map[string]any, key string) string {
	s, _ := field(raw, key).(string)
	return s
}

func firstStr(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// textOrJoined accepts a plain string or an array of strings joined by sep.
func textOrJoined(v any, sep string) string {
	switch value := v.(type) {
	case string:
		return value
	case []any:
		parts := make([]string, 0, len(value))
		for _, entry := range value {
			if s, ok := entry.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, sep)
	default:
		return ""
	}
}
