package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cockpit/internal/types"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

const workspaceSchemaVersion = 1

// WorkspaceStore persists the set of registered project workspaces.
type WorkspaceStore interface {
	List(ctx context.Context) ([]*types.Workspace, error)
	Get(ctx context.Context, id string) (*types.Workspace, bool, error)
	Add(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error)
	Update(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error)
	Delete(ctx context.Context, id string) error
}

type FileWorkspaceStore struct {
	path string
	mu   sync.Mutex
}

type workspaceFile struct {
	Version    int                `json:"version"`
	Workspaces []*types.Workspace `json:"workspaces"`
}

func NewFileWorkspaceStore(path string) *FileWorkspaceStore {
	return &FileWorkspaceStore{path: path}
}

func (s *FileWorkspaceStore) List(ctx context.Context) ([]*types.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, ErrWorkspaceNotFound) {
			return []*types.Workspace{}, nil
		}
		return nil, err
	}
	out := make([]*types.Workspace, 0, len(file.Workspaces))
	for _, ws := range file.Workspaces {
		copy := *ws
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileWorkspaceStore) Get(ctx context.Context, id string) (*types.Workspace, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, ErrWorkspaceNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	for _, ws := range file.Workspaces {
		if ws.ID == id {
			copy := *ws
			return &copy, true, nil
		}
	}
	return nil, false, nil
}

func (s *FileWorkspaceStore) Add(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateWorkspace(workspace); err != nil {
		return nil, err
	}

	file, err := s.load()
	if err != nil && !errors.Is(err, ErrWorkspaceNotFound) {
		return nil, err
	}
	if file == nil {
		file = &workspaceFile{Version: workspaceSchemaVersion}
	}

	record := *workspace
	if record.ID == "" {
		record.ID = newID()
	}
	if record.Name == "" {
		record.Name = filepath.Base(record.Path)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	for _, existing := range file.Workspaces {
		if existing.ID == record.ID {
			return nil, errors.New("workspace id already exists")
		}
	}
	file.Workspaces = append(file.Workspaces, &record)
	if err := s.save(file); err != nil {
		return nil, err
	}
	out := record
	return &out, nil
}

func (s *FileWorkspaceStore) Update(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workspace == nil || workspace.ID == "" {
		return nil, errors.New("workspace id is required")
	}
	file, err := s.load()
	if err != nil {
		if errors.Is(err, ErrWorkspaceNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	for i, existing := range file.Workspaces {
		if existing.ID == workspace.ID {
			record := *workspace
			if record.CreatedAt.IsZero() {
				record.CreatedAt = existing.CreatedAt
			}
			file.Workspaces[i] = &record
			if err := s.save(file); err != nil {
				return nil, err
			}
			out := record
			return &out, nil
		}
	}
	return nil, ErrWorkspaceNotFound
}

func (s *FileWorkspaceStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		if errors.Is(err, ErrWorkspaceNotFound) {
			return ErrWorkspaceNotFound
		}
		return err
	}
	kept := file.Workspaces[:0]
	found := false
	for _, ws := range file.Workspaces {
		if ws.ID == id {
			found = true
			continue
		}
		kept = append(kept, ws)
	}
	if !found {
		return ErrWorkspaceNotFound
	}
	file.Workspaces = kept
	return s.save(file)
}

func (s *FileWorkspaceStore) load() (*workspaceFile, error) {
	file := &workspaceFile{}
	if err := ReadJSON(s.path, file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	if file.Version == 0 {
		file.Version = workspaceSchemaVersion
	}
	return file, nil
}

func (s *FileWorkspaceStore) save(file *workspaceFile) error {
	file.Version = workspaceSchemaVersion
	return WriteJSONAtomic(s.path, file)
}

func validateWorkspace(workspace *types.Workspace) error {
	if workspace == nil {
		return errors.New("workspace is required")
	}
	if strings.TrimSpace(workspace.Path) == "" {
		return errors.New("workspace path is required")
	}
	return nil
}

func newID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(buf)
}
