package types

import "encoding/json"

// Event is one parsed message from a workspace's app-server subprocess.
// Server-initiated requests carry an ID; notifications do not.
type Event struct {
	ID     *int            `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}
