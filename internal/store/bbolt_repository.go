package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"cockpit/internal/types"
)

var (
	bucketWorkspaces = []byte("workspaces")
	bucketAppState   = []byte("app_state")
	keyAppState      = []byte("state")
)

type bboltRepository struct {
	db         *bolt.DB
	workspaces WorkspaceStore
	appState   AppStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:         db,
		workspaces: &bboltWorkspaceStore{db: db},
		appState:   &bboltAppStateStore{db: db},
	}, nil
}

func (r *bboltRepository) Workspaces() WorkspaceStore {
	return r.workspaces
}

func (r *bboltRepository) AppState() AppStateStore {
	return r.appState
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketWorkspaces); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketAppState)
		return err
	})
}

type bboltWorkspaceStore struct {
	db *bolt.DB
}

func (s *bboltWorkspaceStore) List(ctx context.Context) ([]*types.Workspace, error) {
	var out []*types.Workspace
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWorkspaces).ForEach(func(_, value []byte) error {
			ws := &types.Workspace{}
			if err := json.Unmarshal(value, ws); err != nil {
				return err
			}
			out = append(out, ws)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *bboltWorkspaceStore) Get(ctx context.Context, id string) (*types.Workspace, bool, error) {
	var ws *types.Workspace
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketWorkspaces).Get([]byte(id))
		if value == nil {
			return nil
		}
		ws = &types.Workspace{}
		return json.Unmarshal(value, ws)
	})
	if err != nil {
		return nil, false, err
	}
	return ws, ws != nil, nil
}

func (s *bboltWorkspaceStore) Add(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error) {
	if err := validateWorkspace(workspace); err != nil {
		return nil, err
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
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketWorkspaces)
		if bucket.Get([]byte(record.ID)) != nil {
			return errors.New("workspace id already exists")
		}
		value, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(record.ID), value)
	})
	if err != nil {
		return nil, err
	}
	out := record
	return &out, nil
}

func (s *bboltWorkspaceStore) Update(ctx context.Context, workspace *types.Workspace) (*types.Workspace, error) {
	if workspace == nil || workspace.ID == "" {
		return nil, errors.New("workspace id is required")
	}
	record := *workspace
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketWorkspaces)
		existing := bucket.Get([]byte(record.ID))
		if existing == nil {
			return ErrWorkspaceNotFound
		}
		if record.CreatedAt.IsZero() {
			prev := &types.Workspace{}
			if err := json.Unmarshal(existing, prev); err == nil {
				record.CreatedAt = prev.CreatedAt
			}
		}
		value, err := json.Marshal(&record)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(record.ID), value)
	})
	if err != nil {
		return nil, err
	}
	out := record
	return &out, nil
}

func (s *bboltWorkspaceStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketWorkspaces)
		if bucket.Get([]byte(id)) == nil {
			return ErrWorkspaceNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

type bboltAppStateStore struct {
	db *bolt.DB
}

func (s *bboltAppStateStore) Load(ctx context.Context) (*types.AppState, error) {
	state := &types.AppState{}
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(bucketAppState).Get(keyAppState)
		if value == nil {
			return nil
		}
		return json.Unmarshal(value, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *bboltAppStateStore) Save(ctx context.Context, state *types.AppState) error {
	if state == nil {
		return errors.New("state is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		value, err := json.Marshal(state)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketAppState).Put(keyAppState, value)
	})
}
