package workspace

import (
	"encoding/json"
	"time"

	"cockpit/internal/adapter"
	"cockpit/internal/engine"
	"cockpit/internal/protocol"
	"cockpit/internal/types"
)

type turnPayload struct {
	ThreadID string `json:"threadId"`
	Turn     struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"turn"`
}

type threadPayload struct {
	Thread struct {
		ID string `json:"id"`
	} `json:"thread"`
}

type itemPayload struct {
	ThreadID string         `json:"threadId"`
	Item     map[string]any `json:"item"`
}

type deltaPayload struct {
	ThreadID string `json:"threadId"`
	ItemID   string `json:"itemId"`
	Delta    string `json:"delta"`
	Chunk    string `json:"chunk"`
}

// noteInfo carries what the pump needs beyond reducer actions: turn
// lifecycle for interrupt bookkeeping and completion notifications.
type noteInfo struct {
	ThreadID      string
	TurnStartedID string
	TurnEnded     bool
}

// translateNote maps one live notification onto reducer actions. Unknown
// methods and malformed payloads translate to nothing.
func translateNote(workspaceID string, msg protocol.Message) ([]engine.Action, noteInfo) {
	switch msg.Method {
	case "thread/started":
		var payload threadPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.Thread.ID == "" {
			return nil, noteInfo{}
		}
		return []engine.Action{engine.EnsureThread{WorkspaceID: workspaceID, ThreadID: payload.Thread.ID}},
			noteInfo{ThreadID: payload.Thread.ID}

	case "turn/started":
		var payload turnPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" {
			return nil, noteInfo{}
		}
		return []engine.Action{engine.TurnStarted{ThreadID: payload.ThreadID}},
			noteInfo{ThreadID: payload.ThreadID, TurnStartedID: payload.Turn.ID}

	case "turn/completed":
		var payload turnPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" {
			return nil, noteInfo{}
		}
		action := engine.Action(engine.TurnCompleted{ThreadID: payload.ThreadID})
		if payload.Turn.Status == "interrupted" || payload.Turn.Status == "canceled" {
			action = engine.TurnCanceled{ThreadID: payload.ThreadID}
		}
		return []engine.Action{action}, noteInfo{ThreadID: payload.ThreadID, TurnEnded: true}

	case "turn/failed", "turn/aborted":
		var payload turnPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" {
			return nil, noteInfo{}
		}
		return []engine.Action{engine.TurnCanceled{ThreadID: payload.ThreadID}},
			noteInfo{ThreadID: payload.ThreadID, TurnEnded: true}

	case "item/agentMessage/delta":
		var payload deltaPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" || payload.ItemID == "" {
			return nil, noteInfo{}
		}
		return []engine.Action{engine.AppendAgentDelta{
			ThreadID: payload.ThreadID,
			ItemID:   payload.ItemID,
			Delta:    payload.Delta,
		}}, noteInfo{ThreadID: payload.ThreadID}

	case "item/reasoning/summaryDelta":
		var payload deltaPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" || payload.ItemID == "" {
			return nil, noteInfo{}
		}
		return []engine.Action{engine.AppendReasoningSummary{
			ThreadID: payload.ThreadID,
			ItemID:   payload.ItemID,
			Delta:    payload.Delta,
		}}, noteInfo{ThreadID: payload.ThreadID}

	case "item/reasoning/contentDelta":
		var payload deltaPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" || payload.ItemID == "" {
			return nil, noteInfo{}
		}
		return []engine.Action{engine.AppendReasoningContent{
			ThreadID: payload.ThreadID,
			ItemID:   payload.ItemID,
			Delta:    payload.Delta,
		}}, noteInfo{ThreadID: payload.ThreadID}

	case "item/commandExecution/outputDelta":
		var payload deltaPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" || payload.ItemID == "" {
			return nil, noteInfo{}
		}
		chunk := payload.Chunk
		if chunk == "" {
			chunk = payload.Delta
		}
		return []engine.Action{engine.AppendToolOutput{
			ThreadID: payload.ThreadID,
			ItemID:   payload.ItemID,
			Chunk:    chunk,
		}}, noteInfo{ThreadID: payload.ThreadID}

	case "item/started", "item/updated", "item/completed":
		var payload itemPayload
		if json.Unmarshal(msg.Params, &payload) != nil || payload.ThreadID == "" || payload.Item == nil {
			return nil, noteInfo{}
		}
		return translateItem(payload, msg.Method == "item/completed"), noteInfo{ThreadID: payload.ThreadID}
	}
	return nil, noteInfo{}
}

func translateItem(payload itemPayload, completed bool) []engine.Action {
	itemType, _ := payload.Item["type"].(string)
	switch itemType {
	case "agentMessage":
		if !completed {
			// Streaming text arrives through the delta path.
			return nil
		}
		id, _ := payload.Item["id"].(string)
		if id == "" {
			return nil
		}
		text, _ := payload.Item["text"].(string)
		return []engine.Action{engine.CompleteAgentMessage{
			ThreadID: payload.ThreadID,
			ItemID:   id,
			Text:     text,
		}}
	case "userMessage":
		// Echoed back for messages this client already appended locally.
		return nil
	case "enteredReviewMode":
		actions := []engine.Action{engine.ReviewEntered{ThreadID: payload.ThreadID}}
		if item, ok := adapter.Normalize(payload.Item); ok {
			actions = append(actions, engine.UpsertItem{ThreadID: payload.ThreadID, Item: item})
		}
		return actions
	case "exitedReviewMode":
		actions := []engine.Action{engine.ReviewExited{ThreadID: payload.ThreadID}}
		if item, ok := adapter.Normalize(payload.Item); ok {
			actions = append(actions, engine.UpsertItem{ThreadID: payload.ThreadID, Item: item})
		}
		return actions
	default:
		item, ok := adapter.Normalize(payload.Item)
		if !ok {
			return nil
		}
		return []engine.Action{engine.UpsertItem{ThreadID: payload.ThreadID, Item: item}}
	}
}

// isApprovalMethod reports whether a server-initiated request needs a user
// decision.
func isApprovalMethod(method string) bool {
	switch method {
	case "item/commandExecution/requestApproval", "item/fileChange/requestApproval", "tool/requestUserInput":
		return true
	default:
		return false
	}
}

// translateRequest maps a server request onto an approval entry.
func translateRequest(workspaceID string, msg protocol.Message) (types.Approval, bool) {
	if msg.ID == nil || !isApprovalMethod(msg.Method) {
		return types.Approval{}, false
	}
	return types.Approval{
		WorkspaceID: workspaceID,
		RequestID:   *msg.ID,
		Method:      msg.Method,
		Params:      msg.Params,
		CreatedAt:   time.Now().UTC(),
	}, true
}
