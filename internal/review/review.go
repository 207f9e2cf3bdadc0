// Package review parses /review commands into review targets and formats
// the labels shown for them in the transcript.
package review

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const commandPrefix = "/review"

// maxCustomLabel caps the transcript label for free-form instructions.
const maxCustomLabel = 80

type Kind string

const (
	KindUncommitted Kind = "uncommittedChanges"
	KindBaseBranch  Kind = "baseBranch"
	KindCommit      Kind = "commit"
	KindCustom      Kind = "custom"
)

// Target is a parsed review request.
type Target struct {
	Kind         Kind
	Branch       string
	SHA          string
	Title        string
	Instructions string
}

// Parse recognizes a /review command. The second return is false when the
// input is not a review command at all and should be sent as a plain message.
func Parse(input string) (Target, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed != commandPrefix && !strings.HasPrefix(trimmed, commandPrefix+" ") {
		return Target{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, commandPrefix))
	if rest == "" {
		return Target{Kind: KindUncommitted}, true
	}

	keyword, args, _ := strings.Cut(rest, " ")
	args = strings.TrimSpace(args)
	switch keyword {
	case "base":
		if args != "" {
			return Target{Kind: KindBaseBranch, Branch: args}, true
		}
	case "commit":
		if args != "" {
			sha, title, _ := strings.Cut(args, " ")
			return Target{Kind: KindCommit, SHA: sha, Title: strings.TrimSpace(title)}, true
		}
	case "custom":
		if args != "" {
			return Target{Kind: KindCustom, Instructions: args}, true
		}
	}
	// Anything unrecognized reads as free-form review instructions.
	return Target{Kind: KindCustom, Instructions: rest}, true
}

// Label renders the short description shown next to a review item.
func (t Target) Label() string {
	switch t.Kind {
	case KindBaseBranch:
		return "base branch " + t.Branch
	case KindCommit:
		if t.Title != "" {
			return "commit " + t.SHA + ": " + t.Title
		}
		return "commit " + t.SHA
	case KindCustom:
		return runewidth.Truncate(t.Instructions, maxCustomLabel, "…")
	default:
		return "current changes"
	}
}

// Params builds the review/start target payload.
func (t Target) Params() map[string]any {
	switch t.Kind {
	case KindBaseBranch:
		return map[string]any{"type": string(KindBaseBranch), "branch": t.Branch}
	case KindCommit:
		return map[string]any{"type": string(KindCommit), "sha": t.SHA}
	case KindCustom:
		return map[string]any{"type": string(KindCustom), "instructions": t.Instructions}
	default:
		return map[string]any{"type": string(KindUncommitted)}
	}
}
