package logging

import (
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf strings.Builder
	log := New(&buf, Warn)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("below-threshold lines leaked: %q", out)
	}
	if !strings.Contains(out, "level=warn msg=shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithFieldsPrependBoundContext(t *testing.T) {
	var buf strings.Builder
	log := New(&buf, Info).With(F("component", "store"))

	log.Info("saved", F("path", "/tmp/x"))

	out := buf.String()
	if !strings.Contains(out, "component=store path=/tmp/x") {
		t.Fatalf("fields out of order or missing: %q", out)
	}
}

func TestQuoting(t *testing.T) {
	if got := quoteIfNeeded("plain"); got != "plain" {
		t.Fatalf("plain value quoted: %q", got)
	}
	if got := quoteIfNeeded("has space"); got != `"has space"` {
		t.Fatalf("spaced value not quoted: %q", got)
	}
	if got := quoteIfNeeded(""); got != `""` {
		t.Fatalf("empty value = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"WARN":    Warn,
		"warning": Warn,
		"error":   Error,
		"":        Info,
		"bogus":   Info,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
