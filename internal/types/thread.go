package types

// Thread is the per-workspace view record for one conversation. Identity is
// the subprocess-assigned ID; Name and Archived are locally overridable view
// properties, not subprocess state.
type Thread struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

// ThreadStatus holds four independent flags. Processing and Reviewing may
// both be true at once, e.g. during a review turn.
type ThreadStatus struct {
	Processing bool `json:"processing"`
	Reviewing  bool `json:"reviewing"`
	Canceling  bool `json:"canceling"`
	Unread     bool `json:"unread"`
}
