package types

type NameSource string

const (
	NameSourceDefault NameSource = "default"
	NameSourceCustom  NameSource = "custom"
)

// SessionMetadata is the locally persisted view state for one thread: its
// display name, whether it is archived, and whether the name was
// system-derived or user-assigned. A custom name is never overwritten by
// preview-derived renaming.
type SessionMetadata struct {
	Name       string     `json:"name"`
	Archived   bool       `json:"archived"`
	NameSource NameSource `json:"nameSource"`
}

const SessionStoreVersion = 1

// WorkspaceSessionStore is the unit of durability for one workspace's thread
// metadata, persisted inside the workspace root.
type WorkspaceSessionStore struct {
	Version  int                        `json:"version"`
	Sessions map[string]SessionMetadata `json:"sessions"`
}

func NewWorkspaceSessionStore() *WorkspaceSessionStore {
	return &WorkspaceSessionStore{
		Version:  SessionStoreVersion,
		Sessions: map[string]SessionMetadata{},
	}
}

func (s *WorkspaceSessionStore) Clone() *WorkspaceSessionStore {
	if s == nil {
		return NewWorkspaceSessionStore()
	}
	out := &WorkspaceSessionStore{
		Version:  s.Version,
		Sessions: make(map[string]SessionMetadata, len(s.Sessions)),
	}
	for id, meta := range s.Sessions {
		out.Sessions[id] = meta
	}
	return out
}
