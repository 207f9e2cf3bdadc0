package adapter

import (
	"strings"

	"cockpit/internal/types"
)

// FromSnapshot rebuilds a thread's full item list from the flattened,
// in-order items of all its turns. Unlike the incremental path it also
// reconstructs user and agent messages from their structured content.
// The returned reviewing flag is the result of folding every
// entered/exited review transition in order; the last one seen wins.
func FromSnapshot(items []map[string]any) ([]types.Item, bool) {
	out := make([]types.Item, 0, len(items))
	reviewing := false
	for _, raw := range items {
		id := str(raw, "id")
		kind := str(raw, "type")
		if id == "" || kind == "" {
			continue
		}
		switch kind {
		case "userMessage":
			out = append(out, snapshotUserMessage(id, raw))
		case "agentMessage":
			out = append(out, types.Message{
				ItemID: id,
				Role:   types.RoleAssistant,
				Text:   str(raw, "text"),
			})
		case "enteredReviewMode":
			reviewing = true
			if item, ok := normalizeShared(id, kind, raw); ok {
				out = append(out, item)
			}
		case "exitedReviewMode":
			reviewing = false
			if item, ok := normalizeShared(id, kind, raw); ok {
				out = append(out, item)
			}
		default:
			if item, ok := normalizeShared(id, kind, raw); ok {
				out = append(out, item)
			}
		}
	}
	return out, reviewing
}

func snapshotUserMessage(id string, raw map[string]any) types.Message {
	attachments := stringList(field(raw, "attachments"))
	parts := []string{}
	imagesOnly := true
	entries, _ := field(raw, "content").([]any)
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		switch str(m, "type") {
		case "text":
			if text := str(m, "text"); text != "" {
				parts = append(parts, text)
				imagesOnly = false
			}
		case "skill":
			if name := str(m, "name"); name != "" {
				parts = append(parts, "$"+name)
				imagesOnly = false
			}
		default:
			// Image references render as a literal token.
			parts = append(parts, "[image]")
		}
	}
	text := strings.Join(parts, "\n")
	if len(parts) > 0 && imagesOnly && len(attachments) > 0 {
		// The attachments already show the images; drop the tokens.
		text = ""
	}
	return types.Message{
		ItemID:      id,
		Role:        types.RoleUser,
		Text:        text,
		Attachments: attachments,
	}
}

func stringList(v any) []string {
	list, _ := v.([]any)
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		switch value := entry.(type) {
		case string:
			out = append(out, value)
		case map[string]any:
			if path := str(value, "path"); path != "" {
				out = append(out, path)
			}
		}
	}
	return out
}
