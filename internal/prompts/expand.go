package prompts

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Prefix marks a composer input as a prompt invocation.
const Prefix = "/prompts:"

// Invocation is a parsed prompt call: the prompt name, positional args,
// key=value vars, and the raw argument string as typed.
type Invocation struct {
	Name string
	Args []string
	Vars map[string]string
	Raw  string
}

var errUnterminatedQuote = errors.New("unterminated quote")

// ParseInvocation recognizes a prompt invocation. The second return is false
// when the input does not start with the invocation prefix; parse errors on
// an input that does carry the prefix are returned so the caller can fall
// back to sending the text unexpanded.
func ParseInvocation(input string) (Invocation, bool, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, Prefix) {
		return Invocation{}, false, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, Prefix))
	tokens, err := tokenize(rest)
	if err != nil {
		return Invocation{}, true, err
	}
	if len(tokens) == 0 || tokens[0] == "" {
		return Invocation{}, true, errors.New("missing prompt name")
	}
	inv := Invocation{Name: tokens[0], Vars: map[string]string{}}
	if _, args, ok := strings.Cut(rest, " "); ok {
		inv.Raw = strings.TrimSpace(args)
	}
	for _, token := range tokens[1:] {
		if key, value, ok := strings.Cut(token, "="); ok && key != "" {
			inv.Vars[key] = value
			continue
		}
		inv.Args = append(inv.Args, token)
	}
	return inv, true, nil
}

// tokenize splits on whitespace honoring single and double quotes and
// backslash escapes.
func tokenize(input string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote byte
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '\\' && i+1 < len(input):
			i++
			current.WriteByte(input[i])
			inToken = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inToken = true
		case c == ' ' || c == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteByte(c)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

// sentinel stands in for escaped dollars during substitution so expanded
// values are never re-expanded.
const sentinel = "\x00"

// Expand substitutes $ARGUMENTS, $1..$9, and $<var> placeholders in a prompt
// body. A literal $$ escapes to a single dollar.
func Expand(template string, inv Invocation) string {
	out := strings.ReplaceAll(template, "$$", sentinel)
	out = strings.ReplaceAll(out, "$ARGUMENTS", strings.Join(inv.Args, " "))
	for i := 1; i <= 9; i++ {
		arg := ""
		if i <= len(inv.Args) {
			arg = inv.Args[i-1]
		}
		out = strings.ReplaceAll(out, "$"+strconv.Itoa(i), arg)
	}
	// Longer names first so $name never clips $namespace.
	keys := make([]string, 0, len(inv.Vars))
	for key := range inv.Vars {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		out = strings.ReplaceAll(out, "$"+key, inv.Vars[key])
	}
	return strings.ReplaceAll(out, sentinel, "$")
}
