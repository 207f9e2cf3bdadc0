package types

import (
	"encoding/json"
	"time"
)

type ApprovalDecision string

const (
	ApprovalAccept  ApprovalDecision = "accept"
	ApprovalDecline ApprovalDecision = "decline"
)

// Approval is an ephemeral server-initiated request awaiting a user decision.
// It is removed as soon as the decision is sent.
type Approval struct {
	WorkspaceID string          `json:"workspace_id"`
	RequestID   int             `json:"request_id"`
	Method      string          `json:"method"`
	Params      json.RawMessage `json:"params,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
