// Package protocol speaks line-delimited JSON-RPC to one agent subprocess
// per workspace: requests out, responses/notifications/server-requests in.
package protocol

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"cockpit/internal/logging"
	"cockpit/internal/types"
)

// Message is one line on the wire. A missing ID marks a notification; a
// present ID with a method is a server-initiated request (approvals), and a
// present ID without one is a response to something we sent.
type Message struct {
	ID     *int            `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type requestInfo struct {
	method string
	start  time.Time
}

// Client owns one agent subprocess.
type Client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Reader
	log    logging.Logger

	mu     sync.Mutex
	nextID int

	msgs  chan Message
	notes chan Message
	reqs  chan Message
	errs  chan error

	reqMu  sync.Mutex
	reqMap map[int]requestInfo
}

// Options configures the subprocess spawn.
type Options struct {
	Bin     string
	NodeBin string
	Cwd     string
	Env     []string
	Logger  logging.Logger
}

// Start spawns the agent subprocess and completes the initialize handshake.
func Start(ctx context.Context, opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	resolved := ResolveCommand(opts.Bin, opts.NodeBin)
	args := append(append([]string{}, resolved.Args...), "app-server")
	cmd := exec.Command(resolved.Program, args...)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go io.Copy(io.Discard, stderr)

	log.Info("agent_start", logging.F("cmd", resolved.Program), logging.F("cwd", opts.Cwd))

	c := &Client{
		cmd:    cmd,
		stdin:  stdin,
		reader: bufio.NewReader(stdout),
		log:    log,
		nextID: 1,
		msgs:   make(chan Message, 32),
		notes:  make(chan Message, 64),
		reqs:   make(chan Message, 16),
		errs:   make(chan error, 1),
		reqMap: make(map[int]requestInfo),
	}
	go c.readLoop()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.initialize(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
}

// Notifications delivers server notifications in arrival order.
func (c *Client) Notifications() <-chan Message {
	if c == nil {
		return nil
	}
	return c.notes
}

// Requests delivers server-initiated requests (approvals) awaiting Respond.
func (c *Client) Requests() <-chan Message {
	if c == nil {
		return nil
	}
	return c.reqs
}

func (c *Client) Errors() <-chan error {
	if c == nil {
		return nil
	}
	return c.errs
}

func (c *Client) initialize(ctx context.Context) error {
	params := map[string]any{
		"clientInfo": map[string]any{
			"name":    "cockpit",
			"title":   "Cockpit",
			"version": "dev",
		},
	}
	if err := c.Request(ctx, "initialize", params, nil); err != nil {
		return err
	}
	return c.Notify("initialized", map[string]any{})
}

// ThreadSummary is one entry of a thread/list page. The wire has shipped
// both camelCase and snake_case timestamps and cursors.
type ThreadSummary struct {
	ID              string `json:"id"`
	Preview         string `json:"preview"`
	Cwd             string `json:"cwd,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	CreatedAtSnake  int64  `json:"created_at,omitempty"`
	UpdatedAt       int64  `json:"updatedAt"`
	ModelProvider   string `json:"modelProvider,omitempty"`
	ArchivedAtValue *int64 `json:"archivedAt,omitempty"`
}

// Created returns the creation timestamp regardless of wire casing.
func (t ThreadSummary) Created() int64 {
	if t.CreatedAt != 0 {
		return t.CreatedAt
	}
	return t.CreatedAtSnake
}

type ThreadListResult struct {
	Data            []ThreadSummary `json:"data"`
	NextCursor      *string         `json:"nextCursor"`
	NextCursorSnake *string         `json:"next_cursor"`
}

// Cursor returns the continuation cursor regardless of wire casing.
func (r ThreadListResult) Cursor() *string {
	if r.NextCursor != nil {
		return r.NextCursor
	}
	return r.NextCursorSnake
}

type Thread struct {
	ID    string `json:"id"`
	Turns []Turn `json:"turns,omitempty"`
}

type Turn struct {
	ID     string           `json:"id"`
	Status string           `json:"status,omitempty"`
	Items  []map[string]any `json:"items,omitempty"`
}

type ModelSummary struct {
	ID          string `json:"id"`
	Model       string `json:"model"`
	DisplayName string `json:"displayName"`
	IsDefault   bool   `json:"isDefault"`
}

type modelListResult struct {
	Data       []ModelSummary `json:"data"`
	NextCursor *string        `json:"nextCursor"`
}

func (c *Client) ListThreads(ctx context.Context, cursor *string) (*ThreadListResult, error) {
	params := map[string]any{}
	if cursor != nil {
		params["cursor"] = *cursor
	}
	var result ThreadListResult
	if err := c.Request(ctx, "thread/list", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReadThread(ctx context.Context, threadID string) (*Thread, error) {
	params := map[string]any{
		"threadId":     threadID,
		"includeTurns": true,
	}
	var result struct {
		Thread *Thread `json:"thread"`
	}
	if err := c.Request(ctx, "thread/read", params, &result); err != nil {
		return nil, err
	}
	if result.Thread == nil {
		return nil, errors.New("thread not found")
	}
	return result.Thread, nil
}

func (c *Client) StartThread(ctx context.Context, model, cwd string) (string, error) {
	params := map[string]any{}
	if strings.TrimSpace(model) != "" {
		params["model"] = strings.TrimSpace(model)
	}
	if strings.TrimSpace(cwd) != "" {
		params["cwd"] = strings.TrimSpace(cwd)
	}
	var result struct {
		Thread struct {
			ID string `json:"id"`
		} `json:"thread"`
	}
	if err := c.Request(ctx, "thread/start", params, &result); err != nil {
		c.log.Error("thread_start_error", logging.F("cwd", cwd), logging.F("error", err))
		return "", err
	}
	id := strings.TrimSpace(result.Thread.ID)
	if id == "" {
		return "", errors.New("thread id missing")
	}
	return id, nil
}

func (c *Client) ResumeThread(ctx context.Context, threadID string) error {
	params := map[string]any{"threadId": threadID}
	if err := c.Request(ctx, "thread/resume", params, nil); err != nil {
		c.log.Warn("thread_resume_error", logging.F("thread_id", threadID), logging.F("error", err))
		return err
	}
	return nil
}

func (c *Client) ArchiveThread(ctx context.Context, threadID string) error {
	params := map[string]any{"threadId": threadID}
	return c.Request(ctx, "thread/archive", params, nil)
}

// StartTurn sends user input and returns the new turn id.
func (c *Client) StartTurn(ctx context.Context, threadID string, input []map[string]any, model string) (string, error) {
	params := map[string]any{
		"threadId": threadID,
		"input":    input,
	}
	if strings.TrimSpace(model) != "" {
		params["model"] = strings.TrimSpace(model)
	}
	var result struct {
		Turn struct {
			ID string `json:"id"`
		} `json:"turn"`
	}
	if err := c.Request(ctx, "turn/start", params, &result); err != nil {
		return "", err
	}
	if result.Turn.ID == "" {
		return "", errors.New("turn id missing")
	}
	return result.Turn.ID, nil
}

func (c *Client) InterruptTurn(ctx context.Context, threadID, turnID string) error {
	params := map[string]any{
		"threadId": threadID,
		"turnId":   turnID,
	}
	return c.Request(ctx, "turn/interrupt", params, nil)
}

// StartReview asks the agent to review a target within a thread.
func (c *Client) StartReview(ctx context.Context, threadID string, target map[string]any) error {
	params := map[string]any{
		"threadId": threadID,
		"target":   target,
	}
	return c.Request(ctx, "review/start", params, nil)
}

func (c *Client) ListModels(ctx context.Context) ([]ModelSummary, error) {
	var out []ModelSummary
	var cursor *string
	for {
		params := map[string]any{}
		if cursor != nil && strings.TrimSpace(*cursor) != "" {
			params["cursor"] = strings.TrimSpace(*cursor)
		}
		var page modelListResult
		if err := c.Request(ctx, "model/list", params, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if page.NextCursor == nil || strings.TrimSpace(*page.NextCursor) == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// RespondDecision answers a server-initiated approval request.
func (c *Client) RespondDecision(id int, decision types.ApprovalDecision) error {
	return c.Respond(id, map[string]any{"decision": string(decision)})
}

func (c *Client) Respond(id int, result any) error {
	payload := map[string]any{
		"id":     id,
		"result": result,
	}
	return c.send(payload)
}

func (c *Client) RespondError(id, code int, message string) error {
	payload := map[string]any{
		"id": id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
	return c.send(payload)
}

// Request sends a request and blocks for its response, decoding the result
// into out when non-nil.
func (c *Client) Request(ctx context.Context, method string, params any, out any) error {
	id := c.nextRequestID()
	req := map[string]any{
		"method": method,
		"id":     id,
		"params": params,
	}
	c.trackRequest(id, method)
	if c.log.Enabled(logging.Debug) {
		c.log.Debug("agent_send", logging.F("request_id", id), logging.F("method", method))
	}
	if err := c.send(req); err != nil {
		c.log.Error("agent_send_error", logging.F("request_id", id), logging.F("method", method), logging.F("error", err))
		return err
	}
	for {
		select {
		case <-ctx.Done():
			c.log.Warn("agent_timeout", logging.F("request_id", id), logging.F("method", method))
			return ctx.Err()
		case err := <-c.errs:
			if err != nil {
				return err
			}
		case msg := <-c.msgs:
			if msg.ID == nil || *msg.ID != id {
				continue
			}
			c.finishRequest(id, msg.Error)
			if msg.Error != nil {
				return fmt.Errorf("rpc error %d: %s", msg.Error.Code, msg.Error.Message)
			}
			if out != nil && len(msg.Result) > 0 {
				return json.Unmarshal(msg.Result, out)
			}
			return nil
		}
	}
}

func (c *Client) Notify(method string, params any) error {
	payload := map[string]any{
		"method": method,
		"params": params,
	}
	return c.send(payload)
}

func (c *Client) send(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.stdin.Write(append(data, '\n'))
	return err
}

func (c *Client) nextRequestID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	return id
}

func (c *Client) readLoop() {
	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			c.log.Error("agent_read_error", logging.F("error", err))
			c.errs <- err
			return
		}
		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			c.log.Warn("agent_parse_error", logging.F("error", err))
			continue
		}
		switch {
		case msg.ID == nil:
			c.notes <- msg
		case msg.Method != "":
			c.reqs <- msg
		default:
			c.msgs <- msg
		}
	}
}

func (c *Client) trackRequest(id int, method string) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()
	c.reqMap[id] = requestInfo{method: method, start: time.Now()}
}

func (c *Client) finishRequest(id int, rpcErr *Error) {
	c.reqMu.Lock()
	info, ok := c.reqMap[id]
	if ok {
		delete(c.reqMap, id)
	}
	c.reqMu.Unlock()
	if !ok || !c.log.Enabled(logging.Debug) {
		return
	}
	fields := []logging.Field{
		logging.F("request_id", id),
		logging.F("method", info.method),
		logging.F("latency_ms", time.Since(info.start).Milliseconds()),
	}
	if rpcErr != nil {
		fields = append(fields, logging.F("rpc_error", rpcErr.Message))
	}
	c.log.Debug("agent_response", fields...)
}
