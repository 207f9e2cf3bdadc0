package store

import (
	"errors"
	"strings"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

// Repository bundles the persistent stores behind one backend choice.
type Repository interface {
	Workspaces() WorkspaceStore
	AppState() AppStateStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	WorkspacesPath string
	AppStatePath   string
	DBPath         string
}

type fileRepository struct {
	workspaces WorkspaceStore
	appState   AppStateStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{
		workspaces: NewFileWorkspaceStore(paths.WorkspacesPath),
		appState:   NewFileAppStateStore(paths.AppStatePath),
	}
}

func (r *fileRepository) Workspaces() WorkspaceStore {
	return r.workspaces
}

func (r *fileRepository) AppState() AppStateStore {
	return r.appState
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

// Open selects a backend by name. An empty backend means file.
func Open(backend string, paths RepositoryPaths) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendFile:
		return NewFileRepository(paths), nil
	case RepositoryBackendBbolt:
		return NewBboltRepository(paths.DBPath)
	default:
		return nil, errors.New("unknown store backend: " + backend)
	}
}
