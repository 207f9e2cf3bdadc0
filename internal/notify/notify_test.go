package notify

import (
	"context"
	"errors"
	"testing"

	"cockpit/internal/logging"
)

type fakeSink struct {
	method Method
	err    error
	calls  int
}

func (f *fakeSink) Method() Method { return f.method }

func (f *fakeSink) Notify(ctx context.Context, event Event) error {
	f.calls++
	return f.err
}

func TestShouldNotify(t *testing.T) {
	tests := []struct {
		name          string
		enabled       bool
		threadFocused bool
		appFocused    bool
		want          bool
	}{
		{"disabled", false, false, false, false},
		{"focused thread in focused app", true, true, true, false},
		{"background thread", true, false, true, true},
		{"app unfocused", true, true, false, true},
		{"everything unfocused", true, false, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			settings := Settings{Enabled: tc.enabled}
			if got := ShouldNotify(settings, tc.threadFocused, tc.appFocused); got != tc.want {
				t.Fatalf("ShouldNotify = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDispatchAutoFallsThrough(t *testing.T) {
	broken := &fakeSink{method: MethodDunstify, err: errors.New("no daemon")}
	working := &fakeSink{method: MethodNotifySend}
	bell := &fakeSink{method: MethodBell}
	d := NewDispatcher([]Sink{broken, working, bell}, logging.Nop())

	err := d.Dispatch(context.Background(), Event{ThreadName: "Agent 1"}, Settings{
		Enabled: true,
		Methods: []Method{MethodAuto},
	})
	if err != nil {
		t.Fatal(err)
	}
	if broken.calls != 1 || working.calls != 1 {
		t.Fatalf("fallback chain not walked: dunstify=%d notify-send=%d", broken.calls, working.calls)
	}
	if bell.calls != 0 {
		t.Fatalf("chain should stop at first delivery")
	}
}

func TestDispatchExplicitMethod(t *testing.T) {
	bell := &fakeSink{method: MethodBell}
	d := NewDispatcher([]Sink{bell}, logging.Nop())

	if err := d.Dispatch(context.Background(), Event{}, Settings{Methods: []Method{MethodBell}}); err != nil {
		t.Fatal(err)
	}
	if bell.calls != 1 {
		t.Fatalf("bell not invoked")
	}

	if err := d.Dispatch(context.Background(), Event{}, Settings{Methods: []Method{MethodDunstify}}); err == nil {
		t.Fatal("expected error for missing sink")
	}
}

func TestTitleBody(t *testing.T) {
	title, body := titleBody(Event{WorkspaceName: "api", ThreadName: "Agent 2", Body: "done"})
	if title != "api / Agent 2" || body != "done" {
		t.Fatalf("got %q, %q", title, body)
	}
	title, body = titleBody(Event{})
	if title != "Agent" || body != "Turn completed" {
		t.Fatalf("defaults missing: %q, %q", title, body)
	}
}

func TestParseMethod(t *testing.T) {
	if m, ok := ParseMethod(" Notify_Send "); !ok || m != MethodNotifySend {
		t.Fatalf("got %q ok=%v", m, ok)
	}
	if _, ok := ParseMethod("growl"); ok {
		t.Fatal("expected unknown method")
	}
}
