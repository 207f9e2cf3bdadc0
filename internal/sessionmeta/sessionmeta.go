// Package sessionmeta caches and persists per-workspace thread metadata:
// display names, archived flags, and name provenance. The store file lives
// inside the workspace root so metadata travels with the project.
package sessionmeta

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"cockpit/internal/logging"
	"cockpit/internal/store"
	"cockpit/internal/types"
)

const (
	storeDirName  = ".cockpit"
	storeFileName = "sessions.json"

	// maxDerivedName caps preview-derived display names.
	maxDerivedName = 38
)

// StorePath returns the session store file location for a workspace root.
func StorePath(workspacePath string) string {
	return filepath.Join(workspacePath, storeDirName, storeFileName)
}

// Store is a lazily-loaded, cached view over every workspace's session
// file. A read failure yields an empty default store so the UI is never
// blocked on corrupt metadata.
type Store struct {
	log logging.Logger

	mu    sync.Mutex
	cache map[string]*types.WorkspaceSessionStore
}

func NewStore(log logging.Logger) *Store {
	return &Store{
		log:   log.With(logging.F("component", "sessionmeta")),
		cache: map[string]*types.WorkspaceSessionStore{},
	}
}

// ListingEntry is one thread from a registry refresh, carrying the preview
// text a derived name is computed from.
type ListingEntry struct {
	ThreadID string
	Preview  string
}

// Get returns the cached metadata for one thread.
func (s *Store) Get(workspacePath, threadID string) (types.SessionMetadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.loadLocked(workspacePath).Sessions[threadID]
	return meta, ok
}

// Ensure records a default entry for a newly created thread. It persists
// only when the thread is unknown or any field differs from the proposed
// default.
func (s *Store) Ensure(workspacePath, threadID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.loadLocked(workspacePath)
	proposed := types.SessionMetadata{Name: name, NameSource: types.NameSourceDefault}
	if existing, ok := file.Sessions[threadID]; ok && existing == proposed {
		return nil
	}
	next := file.Clone()
	next.Sessions[threadID] = proposed
	return s.saveLocked(workspacePath, next)
}

// Rename applies a user-assigned name. It always persists and marks the
// name custom so derived renames stop touching it.
func (s *Store) Rename(workspacePath, threadID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.loadLocked(workspacePath)
	next := file.Clone()
	meta := next.Sessions[threadID]
	meta.Name = name
	meta.NameSource = types.NameSourceCustom
	next.Sessions[threadID] = meta
	return s.saveLocked(workspacePath, next)
}

// SetArchived flips the archived flag, persisting only on change.
func (s *Store) SetArchived(workspacePath, threadID string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.loadLocked(workspacePath)
	meta, ok := file.Sessions[threadID]
	if ok && meta.Archived == archived {
		return nil
	}
	next := file.Clone()
	meta = next.Sessions[threadID]
	meta.Archived = archived
	next.Sessions[threadID] = meta
	return s.saveLocked(workspacePath, next)
}

// ApplyPreview derives a display name from new preview text. Entries the
// user renamed keep their name; the returned name is whatever the thread
// should display afterward, with changed reporting whether anything was
// written.
func (s *Store) ApplyPreview(workspacePath, threadID, preview string) (name string, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.loadLocked(workspacePath)
	meta := file.Sessions[threadID]
	if meta.NameSource == types.NameSourceCustom {
		return meta.Name, false, nil
	}
	derived := DeriveName(preview)
	if derived == "" || derived == meta.Name {
		return meta.Name, false, nil
	}
	next := file.Clone()
	meta = next.Sessions[threadID]
	meta.Name = derived
	meta.NameSource = types.NameSourceDefault
	next.Sessions[threadID] = meta
	if err := s.saveLocked(workspacePath, next); err != nil {
		return meta.Name, false, err
	}
	return derived, true, nil
}

// MergeListing reconciles a full registry refresh against the store in one
// batched write. Threads absent from the store get a fallback "Agent N"
// name by listing position; threads with new previews are renamed unless
// custom. Exactly one write happens per call, and only when something
// changed. The returned map is the resolved metadata for every listed
// thread.
func (s *Store) MergeListing(workspacePath string, entries []ListingEntry) (map[string]types.SessionMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := s.loadLocked(workspacePath)
	next := file.Clone()
	dirty := false
	resolved := make(map[string]types.SessionMetadata, len(entries))
	for i, entry := range entries {
		meta, known := next.Sessions[entry.ThreadID]
		if meta.NameSource != types.NameSourceCustom {
			derived := DeriveName(entry.Preview)
			if derived == "" && meta.Name == "" {
				derived = fallbackName(i)
			}
			if derived != "" && derived != meta.Name {
				meta.Name = derived
				meta.NameSource = types.NameSourceDefault
				dirty = true
			}
		}
		if !known {
			dirty = true
		}
		next.Sessions[entry.ThreadID] = meta
		resolved[entry.ThreadID] = meta
	}
	if !dirty {
		return resolved, nil
	}
	if err := s.saveLocked(workspacePath, next); err != nil {
		return resolved, err
	}
	return resolved, nil
}

// Invalidate drops the cache for a workspace, forcing a reload on next use.
func (s *Store) Invalidate(workspacePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, workspacePath)
}

func (s *Store) loadLocked(workspacePath string) *types.WorkspaceSessionStore {
	if file, ok := s.cache[workspacePath]; ok {
		return file
	}
	file := types.NewWorkspaceSessionStore()
	path := StorePath(workspacePath)
	if err := store.ReadJSON(path, file); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("session store unreadable, starting empty", logging.F("path", path), logging.F("error", err))
		}
		file = types.NewWorkspaceSessionStore()
	}
	if file.Sessions == nil {
		file.Sessions = map[string]types.SessionMetadata{}
	}
	if file.Version == 0 {
		file.Version = types.SessionStoreVersion
	}
	s.cache[workspacePath] = file
	return file
}

func (s *Store) saveLocked(workspacePath string, file *types.WorkspaceSessionStore) error {
	s.cache[workspacePath] = file
	if err := store.WriteJSONAtomic(StorePath(workspacePath), file); err != nil {
		s.log.Error("session store write failed", logging.F("path", StorePath(workspacePath)), logging.F("error", err))
		return err
	}
	return nil
}

// DeriveName turns preview text into a display name, truncated with an
// ellipsis when long.
func DeriveName(preview string) string {
	collapsed := strings.Join(strings.Fields(preview), " ")
	return runewidth.Truncate(collapsed, maxDerivedName, "…")
}

func fallbackName(index int) string {
	return "Agent " + strconv.Itoa(index+1)
}
