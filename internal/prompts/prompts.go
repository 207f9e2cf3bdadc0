// Package prompts loads the user's saved prompt library and expands
// prompt invocations typed into the composer.
package prompts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Prompt is one saved prompt file. Description and ArgumentHint come from
// optional front matter; Body is everything after it.
type Prompt struct {
	Name         string
	Description  string
	ArgumentHint string
	Body         string
	Path         string
}

// DefaultDir returns the prompt library location, ~/.codex/prompts.
func DefaultDir() string {
	for _, key := range []string{"HOME", "USERPROFILE"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return filepath.Join(value, ".codex", "prompts")
		}
	}
	return ""
}

// Load reads every .md file in dir, sorted by prompt name. A missing
// directory is an empty library, not an error.
func Load(dir string) ([]Prompt, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Prompt
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		p := parsePromptFile(string(raw))
		p.Name = strings.TrimSuffix(entry.Name(), ".md")
		p.Path = path
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ByName indexes a prompt list for invocation lookup.
func ByName(list []Prompt) map[string]Prompt {
	out := make(map[string]Prompt, len(list))
	for _, p := range list {
		out[p.Name] = p
	}
	return out
}

// parsePromptFile splits optional --- front matter from the body. Only the
// description and argument-hint keys are recognized.
func parsePromptFile(contents string) Prompt {
	var p Prompt
	lines := strings.SplitAfter(contents, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != "---" {
		p.Body = contents
		return p
	}
	offset := len(lines[0])
	var front []string
	bodyStart := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "---" {
			bodyStart = offset + len(line)
			break
		}
		front = append(front, trimmed)
		offset += len(line)
	}
	if bodyStart < 0 {
		p.Body = contents
		return p
	}
	for _, line := range front {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "description":
			p.Description = unquoteValue(value)
		case "argument-hint", "argument_hint":
			p.ArgumentHint = unquoteValue(value)
		}
	}
	if bodyStart <= len(contents) {
		p.Body = contents[bodyStart:]
	}
	return p
}

func unquoteValue(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 2 {
		if (trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"') ||
			(trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'') {
			return trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}
