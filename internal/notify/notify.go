// Package notify raises desktop notifications for agent activity that
// completes while the user is looking elsewhere.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"cockpit/internal/logging"
)

type Method string

const (
	MethodAuto       Method = "auto"
	MethodNotifySend Method = "notify-send"
	MethodDunstify   Method = "dunstify"
	MethodBell       Method = "bell"
)

// Settings controls delivery. Zero value is disabled.
type Settings struct {
	Enabled        bool
	Methods        []Method
	TimeoutSeconds int
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:        true,
		Methods:        []Method{MethodAuto},
		TimeoutSeconds: 10,
	}
}

// Event is one completed turn worth announcing.
type Event struct {
	WorkspaceName string
	ThreadName    string
	Body          string
}

// ShouldNotify is the dispatch policy: announce a completion only when
// enabled and the completing thread is not what the user is looking at.
func ShouldNotify(settings Settings, threadFocused, appFocused bool) bool {
	if !settings.Enabled {
		return false
	}
	return !threadFocused || !appFocused
}

// Sink delivers through one mechanism.
type Sink interface {
	Method() Method
	Notify(ctx context.Context, event Event) error
}

type Dispatcher struct {
	sinks map[Method]Sink
	log   logging.Logger
}

func NewDispatcher(sinks []Sink, log logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	byMethod := map[Method]Sink{}
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		byMethod[sink.Method()] = sink
	}
	return &Dispatcher{sinks: byMethod, log: log}
}

func NewDefaultDispatcher(log logging.Logger) *Dispatcher {
	return NewDispatcher([]Sink{dunstifySink{}, notifySendSink{}, bellSink{}}, log)
}

// Dispatch sends the event through every configured method. Auto walks the
// sink chain until one delivers.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, settings Settings) error {
	methods := settings.Methods
	if len(methods) == 0 {
		methods = []Method{MethodAuto}
	}
	timeout := time.Duration(settings.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var dispatchErr error
	for _, method := range methods {
		if err := d.dispatchMethod(ctx, method, event); err != nil {
			dispatchErr = errors.Join(dispatchErr, err)
		}
	}
	if dispatchErr != nil {
		d.log.Warn("notification delivery failed", logging.F("error", dispatchErr))
	}
	return dispatchErr
}

func (d *Dispatcher) dispatchMethod(ctx context.Context, method Method, event Event) error {
	if method == MethodAuto {
		for _, fallback := range []Method{MethodDunstify, MethodNotifySend, MethodBell} {
			sink, ok := d.sinks[fallback]
			if !ok {
				continue
			}
			if err := sink.Notify(ctx, event); err == nil {
				return nil
			}
		}
		return errors.New("no notification sink available for auto")
	}
	sink, ok := d.sinks[method]
	if !ok {
		return fmt.Errorf("unknown notification method: %s", method)
	}
	return sink.Notify(ctx, event)
}

func titleBody(event Event) (string, string) {
	title := strings.TrimSpace(event.ThreadName)
	if title == "" {
		title = "Agent"
	}
	if workspace := strings.TrimSpace(event.WorkspaceName); workspace != "" {
		title = workspace + " / " + title
	}
	body := strings.TrimSpace(event.Body)
	if body == "" {
		body = "Turn completed"
	}
	return title, body
}

type notifySendSink struct{}

func (notifySendSink) Method() Method { return MethodNotifySend }

func (notifySendSink) Notify(ctx context.Context, event Event) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return err
	}
	title, body := titleBody(event)
	return exec.CommandContext(ctx, "notify-send", title, body).Run()
}

type dunstifySink struct{}

func (dunstifySink) Method() Method { return MethodDunstify }

func (dunstifySink) Notify(ctx context.Context, event Event) error {
	if _, err := exec.LookPath("dunstify"); err != nil {
		return err
	}
	title, body := titleBody(event)
	return exec.CommandContext(ctx, "dunstify", title, body).Run()
}

type bellSink struct{}

func (bellSink) Method() Method { return MethodBell }

func (bellSink) Notify(ctx context.Context, event Event) error {
	_, err := fmt.Fprint(os.Stdout, "\a")
	return err
}

// ParseMethod normalizes a configured method name.
func ParseMethod(raw string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "auto":
		return MethodAuto, true
	case "notify-send", "notify_send", "notifysend":
		return MethodNotifySend, true
	case "dunstify":
		return MethodDunstify, true
	case "bell", "terminal-bell", "terminal_bell":
		return MethodBell, true
	default:
		return "", false
	}
}
