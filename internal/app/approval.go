package app

import (
	"encoding/json"
	"strings"

	"cockpit/internal/types"
)

// approvalPrompt is the presentation of one pending approval request.
type approvalPrompt struct {
	WorkspaceID string
	RequestID   int
	Summary     string
	Detail      string
}

func approvalSummary(method string, params map[string]any) (string, string) {
	switch method {
	case "item/commandExecution/requestApproval":
		cmd := strings.TrimSpace(asString(params["parsedCmd"]))
		if cmd == "" {
			cmd = strings.TrimSpace(asString(params["command"]))
		}
		if cmd == "" {
			return "command execution", ""
		}
		return "command", cmd
	case "item/fileChange/requestApproval":
		if reason := strings.TrimSpace(asString(params["reason"])); reason != "" {
			return "file change", reason
		}
		return "file change", ""
	case "tool/requestUserInput":
		if questions, ok := params["questions"].([]any); ok {
			for _, q := range questions {
				if qMap, ok := q.(map[string]any); ok {
					if text := strings.TrimSpace(asString(qMap["text"])); text != "" {
						return "user input", text
					}
				}
			}
		}
		return "user input", ""
	}
	return "approval", ""
}

func promptFromApproval(record types.Approval) approvalPrompt {
	params := map[string]any{}
	if len(record.Params) > 0 {
		_ = json.Unmarshal(record.Params, &params)
	}
	summary, detail := approvalSummary(record.Method, params)
	return approvalPrompt{
		WorkspaceID: record.WorkspaceID,
		RequestID:   record.RequestID,
		Summary:     summary,
		Detail:      detail,
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
