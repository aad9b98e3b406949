package render

import "strings"

// DefaultModels is the built-in candidate order, newest first.
var DefaultModels = []string{
	"anthropic.claude-3-5-sonnet-20241022-v2:0",
	"anthropic.claude-3-5-sonnet-20240620-v1:0",
	"anthropic.claude-3-haiku-20240307-v1:0",
}

// Candidates returns the identifiers to try: override first when set, then
// defaults in order. Duplicates are kept; they only cost an extra attempt.
func Candidates(override string, defaults []string) []string {
	out := make([]string, 0, len(defaults)+1)
	if o := strings.TrimSpace(override); o != "" {
		out = append(out, o)
	}
	return append(out, defaults...)
}

// ModelPrefix strips the version suffix (everything from the first ':') so
// the result matches the model family a routing profile is keyed by.
func ModelPrefix(identifier string) string {
	prefix, _, _ := strings.Cut(identifier, ":")
	return prefix
}
