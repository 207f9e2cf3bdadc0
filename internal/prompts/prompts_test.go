package prompts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePromptFile(t *testing.T) {
	contents := "---\ndescription: Plan a change\nargument-hint: \"<area>\"\n---\nPlan work for $1.\n"
	p := parsePromptFile(contents)
	if p.Description != "Plan a change" {
		t.Fatalf("description = %q", p.Description)
	}
	if p.ArgumentHint != "<area>" {
		t.Fatalf("argument hint = %q", p.ArgumentHint)
	}
	if p.Body != "Plan work for $1.\n" {
		t.Fatalf("body = %q", p.Body)
	}
}

func TestParsePromptFileNoFrontMatter(t *testing.T) {
	contents := "Just a body.\n"
	p := parsePromptFile(contents)
	if p.Body != contents || p.Description != "" {
		t.Fatalf("unexpected prompt: %+v", p)
	}
}

func TestParsePromptFileUnterminatedFrontMatter(t *testing.T) {
	contents := "---\ndescription: half\nno closing fence\n"
	p := parsePromptFile(contents)
	if p.Body != contents {
		t.Fatalf("unterminated front matter should be treated as body, got %q", p.Body)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name, contents string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("zeta.md", "last\n")
	write("alpha.md", "---\ndescription: first\n---\nbody\n")
	write("notes.txt", "ignored\n")

	list, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(list))
	}
	if list[0].Name != "alpha" || list[1].Name != "zeta" {
		t.Fatalf("unexpected order: %q, %q", list[0].Name, list[1].Name)
	}
	if list[0].Description != "first" {
		t.Fatalf("front matter not parsed: %+v", list[0])
	}

	byName := ByName(list)
	if byName["zeta"].Body != "last\n" {
		t.Fatalf("index miss: %+v", byName)
	}
}

func TestLoadMissingDir(t *testing.T) {
	list, err := Load(filepath.Join(t.TempDir(), "absent"))
	if err != nil || list != nil {
		t.Fatalf("missing dir should be empty library, got %v, %v", list, err)
	}
}
