// Package workspace orchestrates connected workspaces: one agent
// subprocess each, live event translation into reducer actions, and the
// message/review/interrupt operations the UI invokes.
package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cockpit/internal/adapter"
	"cockpit/internal/config"
	"cockpit/internal/engine"
	"cockpit/internal/logging"
	"cockpit/internal/notify"
	"cockpit/internal/prompts"
	"cockpit/internal/protocol"
	"cockpit/internal/review"
	"cockpit/internal/sessionmeta"
	"cockpit/internal/store"
	"cockpit/internal/threads"
	"cockpit/internal/types"
)

// Update is one asynchronous result pushed to the single-writer UI loop.
// Exactly one of the optional fields is meaningful per update.
type Update struct {
	WorkspaceID string
	Actions     []engine.Action
	Connection  types.ConnectionState
	Err         error
}

type connection struct {
	workspace types.Workspace
	client    *protocol.Client
	done      chan struct{}
}

type focus struct {
	workspaceID string
	threadID    string
	appFocused  bool
}

type Service struct {
	log        logging.Logger
	cfg        config.CoreConfig
	repo       store.Repository
	meta       *sessionmeta.Store
	registry   *threads.Registry
	dispatcher *notify.Dispatcher
	notifySet  notify.Settings

	updates chan Update

	mu          sync.Mutex
	conns       map[string]*connection
	activeTurns map[string]string
	library     map[string]prompts.Prompt
	focus       focus
}

func NewService(log logging.Logger, cfg config.CoreConfig, repo store.Repository, meta *sessionmeta.Store, dispatcher *notify.Dispatcher) *Service {
	settings := notify.DefaultSettings()
	settings.Enabled = cfg.NotificationsEnabled()
	var methods []notify.Method
	for _, raw := range cfg.Notifications.Methods {
		if method, ok := notify.ParseMethod(raw); ok {
			methods = append(methods, method)
		}
	}
	if len(methods) > 0 {
		settings.Methods = methods
	}
	if cfg.Notifications.TimeoutSeconds > 0 {
		settings.TimeoutSeconds = cfg.Notifications.TimeoutSeconds
	}
	s := &Service{
		log:         log.With(logging.F("component", "workspace")),
		cfg:         cfg,
		repo:        repo,
		meta:        meta,
		registry:    threads.NewRegistry(log, meta),
		dispatcher:  dispatcher,
		notifySet:   settings,
		updates:     make(chan Update, 256),
		conns:       map[string]*connection{},
		activeTurns: map[string]string{},
		library:     map[string]prompts.Prompt{},
		focus:       focus{appFocused: true},
	}
	s.ReloadPrompts()
	return s
}

// Updates delivers translated live events to the UI loop.
func (s *Service) Updates() <-chan Update {
	return s.updates
}

// SetFocus records what the user is currently looking at; the notification
// policy reads it when turns complete.
func (s *Service) SetFocus(workspaceID, threadID string, appFocused bool) {
	s.mu.Lock()
	s.focus = focus{workspaceID: workspaceID, threadID: threadID, appFocused: appFocused}
	s.mu.Unlock()
}

// ReloadPrompts re-reads the saved prompt library.
func (s *Service) ReloadPrompts() {
	list, err := prompts.Load(prompts.DefaultDir())
	if err != nil {
		s.log.Warn("prompt library unreadable", logging.F("error", err))
		return
	}
	s.mu.Lock()
	s.library = prompts.ByName(list)
	s.mu.Unlock()
}

// Prompts returns the loaded prompt library for completion UI.
func (s *Service) Prompts() []prompts.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]prompts.Prompt, 0, len(s.library))
	for _, p := range s.library {
		out = append(out, p)
	}
	return out
}

// AddWorkspace registers a project root and persists it.
func (s *Service) AddWorkspace(ctx context.Context, path, name string) (*types.Workspace, error) {
	return s.repo.Workspaces().Add(ctx, &types.Workspace{Path: path, Name: name})
}

// Workspaces lists the registered workspaces.
func (s *Service) Workspaces(ctx context.Context) ([]*types.Workspace, error) {
	return s.repo.Workspaces().List(ctx)
}

// RemoveWorkspace disconnects and forgets a workspace. Thread metadata
// inside the workspace root is left alone.
func (s *Service) RemoveWorkspace(ctx context.Context, id string) error {
	s.Disconnect(id)
	err := s.repo.Workspaces().Delete(ctx, id)
	if err != nil && !errors.Is(err, store.ErrWorkspaceNotFound) {
		return err
	}
	return nil
}

// Connect spawns the agent subprocess for a workspace and starts pumping
// its events. Connecting an already connected workspace is a no-op.
func (s *Service) Connect(ctx context.Context, workspace types.Workspace) error {
	s.mu.Lock()
	if _, ok := s.conns[workspace.ID]; ok {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.push(Update{WorkspaceID: workspace.ID, Connection: types.ConnectionConnecting})
	bin := workspace.CodexBin
	if bin == "" {
		bin = s.cfg.AgentCommand()
	}
	client, err := protocol.Start(ctx, protocol.Options{
		Bin:     bin,
		NodeBin: s.cfg.Agent.NodeBin,
		Cwd:     workspace.Path,
		Logger:  s.log.With(logging.F("workspace", workspace.ID)),
	})
	if err != nil {
		s.push(Update{WorkspaceID: workspace.ID, Connection: types.ConnectionFailed, Err: err})
		return err
	}
	conn := &connection{workspace: workspace, client: client, done: make(chan struct{})}
	s.mu.Lock()
	s.conns[workspace.ID] = conn
	s.mu.Unlock()
	go s.pump(conn)
	s.push(Update{WorkspaceID: workspace.ID, Connection: types.ConnectionConnected})
	return nil
}

// Disconnect kills the workspace's subprocess if any.
func (s *Service) Disconnect(workspaceID string) {
	s.mu.Lock()
	conn := s.conns[workspaceID]
	delete(s.conns, workspaceID)
	s.mu.Unlock()
	if conn != nil {
		close(conn.done)
		conn.client.Close()
	}
}

func (s *Service) client(workspaceID string) (*connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.conns[workspaceID]
	if !ok {
		return nil, errors.New("workspace not connected")
	}
	return conn, nil
}

// pump applies the single-writer model: every live event becomes an Update
// consumed by the UI loop; nothing here mutates reducer state directly.
func (s *Service) pump(conn *connection) {
	workspaceID := conn.workspace.ID
	notes := conn.client.Notifications()
	reqs := conn.client.Requests()
	errs := conn.client.Errors()
	for {
		select {
		case <-conn.done:
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			if err != nil {
				s.log.Error("connection lost", logging.F("workspace", workspaceID), logging.F("error", err))
				s.push(Update{WorkspaceID: workspaceID, Connection: types.ConnectionFailed, Err: err})
				s.Disconnect(workspaceID)
				return
			}
		case msg, ok := <-notes:
			if !ok {
				return
			}
			s.handleNote(workspaceID, msg)
		case msg, ok := <-reqs:
			if !ok {
				return
			}
			if approval, ok := translateRequest(workspaceID, msg); ok {
				s.push(Update{WorkspaceID: workspaceID, Actions: []engine.Action{engine.AddApproval{Approval: approval}}})
			}
		}
	}
}

func (s *Service) handleNote(workspaceID string, msg protocol.Message) {
	actions, info := translateNote(workspaceID, msg)
	if info.TurnStartedID != "" {
		s.mu.Lock()
		s.activeTurns[info.ThreadID] = info.TurnStartedID
		s.mu.Unlock()
	}
	if info.TurnEnded {
		s.mu.Lock()
		delete(s.activeTurns, info.ThreadID)
		s.mu.Unlock()
		s.maybeNotify(workspaceID, info.ThreadID)
	}
	if len(actions) == 0 {
		return
	}
	s.push(Update{WorkspaceID: workspaceID, Actions: actions})
}

func (s *Service) maybeNotify(workspaceID, threadID string) {
	if s.dispatcher == nil {
		return
	}
	s.mu.Lock()
	f := s.focus
	conn := s.conns[workspaceID]
	s.mu.Unlock()
	threadFocused := f.workspaceID == workspaceID && f.threadID == threadID
	if !notify.ShouldNotify(s.notifySet, threadFocused, f.appFocused) {
		return
	}
	event := notify.Event{Body: "Turn completed"}
	if conn != nil {
		event.WorkspaceName = conn.workspace.Name
		if meta, ok := s.meta.Get(conn.workspace.Path, threadID); ok {
			event.ThreadName = meta.Name
		}
	}
	go func() {
		_ = s.dispatcher.Dispatch(context.Background(), event, s.notifySet)
	}()
}

func (s *Service) push(update Update) {
	select {
	case s.updates <- update:
	default:
		// A stalled UI loop drops the oldest update rather than deadlocking
		// the pump.
		select {
		case <-s.updates:
		default:
		}
		s.updates <- update
	}
}

// ListThreads refreshes the workspace's thread list.
func (s *Service) ListThreads(ctx context.Context, workspaceID string) ([]types.Thread, error) {
	conn, err := s.client(workspaceID)
	if err != nil {
		return nil, err
	}
	return s.registry.List(ctx, conn.client, conn.workspace)
}

// StartThread creates a new thread in the workspace and seeds its default
// metadata. On failure no thread exists anywhere.
func (s *Service) StartThread(ctx context.Context, workspaceID, fallbackName string) (string, error) {
	conn, err := s.client(workspaceID)
	if err != nil {
		return "", err
	}
	threadID, err := conn.client.StartThread(ctx, s.cfg.DefaultModel(), conn.workspace.Path)
	if err != nil {
		return "", err
	}
	if err := s.meta.Ensure(conn.workspace.Path, threadID, fallbackName); err != nil {
		s.log.Warn("thread metadata not persisted", logging.F("thread_id", threadID), logging.F("error", err))
	}
	return threadID, nil
}

// Snapshot is a rebuilt thread transcript.
type Snapshot struct {
	ThreadID  string
	Items     []types.Item
	Reviewing bool
	Name      string
}

// ResumeThread re-fetches the full snapshot for a thread and rebuilds its
// item list; the caller replaces local items wholesale with the result.
func (s *Service) ResumeThread(ctx context.Context, workspaceID, threadID string) (*Snapshot, error) {
	conn, err := s.client(workspaceID)
	if err != nil {
		return nil, err
	}
	if err := conn.client.ResumeThread(ctx, threadID); err != nil {
		return nil, err
	}
	thread, err := conn.client.ReadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	items, reviewing := adapter.FromSnapshot(threads.FlattenTurns(thread))
	snapshot := &Snapshot{ThreadID: threadID, Items: items, Reviewing: reviewing}
	if preview := firstUserText(items); preview != "" {
		if name, _, err := s.meta.ApplyPreview(conn.workspace.Path, threadID, preview); err == nil {
			snapshot.Name = name
		}
	}
	return snapshot, nil
}

func firstUserText(items []types.Item) string {
	for _, item := range items {
		if msg, ok := item.(types.Message); ok && msg.Role == types.RoleUser {
			return msg.Text
		}
	}
	return ""
}

// SendKind reports how an input was dispatched.
type SendKind int

const (
	SendTurn SendKind = iota
	SendReview
)

// SendResult is what the UI appends locally after a successful send.
type SendResult struct {
	Kind  SendKind
	Text  string
	Label string
}

// SendMessage dispatches composer input: review commands start a review,
// prompt invocations expand before sending, anything else starts a plain
// turn. Expansion failures fall back to sending the text as typed.
func (s *Service) SendMessage(ctx context.Context, workspaceID, threadID, text string) (*SendResult, error) {
	conn, err := s.client(workspaceID)
	if err != nil {
		return nil, err
	}

	if target, ok := review.Parse(text); ok {
		if err := conn.client.StartReview(ctx, threadID, target.Params()); err != nil {
			return nil, err
		}
		return &SendResult{Kind: SendReview, Text: text, Label: target.Label()}, nil
	}

	outgoing := s.expandPrompt(text)
	turnID, err := conn.client.StartTurn(ctx, threadID, []map[string]any{
		{"type": "text", "text": outgoing},
	}, s.cfg.DefaultModel())
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.activeTurns[threadID] = turnID
	s.mu.Unlock()

	if _, _, err := s.meta.ApplyPreview(conn.workspace.Path, threadID, outgoing); err != nil {
		s.log.Warn("preview rename not persisted", logging.F("thread_id", threadID), logging.F("error", err))
	}
	return &SendResult{Kind: SendTurn, Text: outgoing}, nil
}

func (s *Service) expandPrompt(text string) string {
	inv, match, err := prompts.ParseInvocation(text)
	if !match {
		return text
	}
	if err != nil {
		s.log.Warn("prompt invocation not parseable, sending as typed", logging.F("error", err))
		return text
	}
	s.mu.Lock()
	prompt, ok := s.library[inv.Name]
	s.mu.Unlock()
	if !ok {
		s.log.Warn("unknown prompt, sending as typed", logging.F("name", inv.Name))
		return text
	}
	return prompts.Expand(prompt.Body, inv)
}

// Interrupt requests cancellation of the thread's running turn. The caller
// applies the optimistic canceling flag first and rolls it back when this
// returns an error.
func (s *Service) Interrupt(ctx context.Context, workspaceID, threadID string) error {
	conn, err := s.client(workspaceID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	turnID := s.activeTurns[threadID]
	s.mu.Unlock()
	if turnID == "" {
		return errors.New("no running turn")
	}
	return conn.client.InterruptTurn(ctx, threadID, turnID)
}

// RenameThread stores a user-assigned thread name.
func (s *Service) RenameThread(workspaceID, threadID, name string) error {
	conn, err := s.client(workspaceID)
	if err != nil {
		return err
	}
	return s.meta.Rename(conn.workspace.Path, threadID, strings.TrimSpace(name))
}

// SetArchived archives or restores a thread, both locally and upstream.
func (s *Service) SetArchived(ctx context.Context, workspaceID, threadID string, archived bool) error {
	conn, err := s.client(workspaceID)
	if err != nil {
		return err
	}
	if archived {
		if err := conn.client.ArchiveThread(ctx, threadID); err != nil {
			return err
		}
	}
	return s.meta.SetArchived(conn.workspace.Path, threadID, archived)
}

// ListModels fetches the models the agent offers.
func (s *Service) ListModels(ctx context.Context, workspaceID string) ([]protocol.ModelSummary, error) {
	conn, err := s.client(workspaceID)
	if err != nil {
		return nil, err
	}
	return conn.client.ListModels(ctx)
}

// RespondApproval answers a pending approval request.
func (s *Service) RespondApproval(workspaceID string, requestID int, decision types.ApprovalDecision) error {
	conn, err := s.client(workspaceID)
	if err != nil {
		return err
	}
	return conn.client.RespondDecision(requestID, decision)
}

// Close disconnects everything.
func (s *Service) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.Disconnect(id)
	}
}
