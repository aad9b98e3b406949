// Package lint repairs the markdownlint findings that keep recurring in
// resume sources: bare code fences and headings glued to the paragraph above.
package lint

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DefaultFenceLanguage is applied to bare opening fences when none is configured.
const DefaultFenceLanguage = "text"

const (
	RuleFenceLanguage = "fenced-code-language"
	RuleHeadingBlank  = "blanks-around-headings"
)

// Options select which fixes apply.
type Options struct {
	FenceLanguage string
	// Headings restricts the blank-line rule to these headings, matched
	// against either the full line or the heading text. Empty means every
	// ATX heading.
	Headings []string
}

// Change describes one fix. Line is 1-based in the original content.
type Change struct {
	Line    int
	Rule    string
	Message string
}

func (c Change) String() string {
	return fmt.Sprintf("line %d: %s: %s", c.Line, c.Rule, c.Message)
}

var (
	fenceRe   = regexp.MustCompile("^( {0,3})(`{3,}|~{3,})(.*)$")
	headingRe = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#*)?[ \t]*$`)
)

// Fix applies both rules to content and returns the repaired text with the
// list of changes made. Content inside fenced blocks is never touched.
// CRLF line endings are preserved on rewritten and inserted lines.
func Fix(content string, opts Options) (string, []Change) {
	lang := opts.FenceLanguage
	if lang == "" {
		lang = DefaultFenceLanguage
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines)+8)
	var changes []Change

	var fence string // open fence marker, empty outside a block
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSuffix(raw, "\r")
		eol := raw[len(line):]

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			indent, marker, info := m[1], m[2], strings.TrimSpace(m[3])
			switch {
			case fence == "":
				fence = marker
				if info == "" {
					line = indent + marker + lang
					changes = append(changes, Change{
						Line:    lineNo,
						Rule:    RuleFenceLanguage,
						Message: fmt.Sprintf("added language %q to code fence", lang),
					})
				}
			case info == "" && marker[0] == fence[0] && len(marker) >= len(fence):
				fence = ""
			}
			out = append(out, line+eol)
			continue
		}

		if fence == "" && isTargetHeading(line, opts.Headings) && len(out) > 0 {
			blanks := trailingBlanks(out)
			switch {
			case blanks == len(out):
				// Heading preceded only by blank lines at the top of the file.
			case blanks == 0:
				out = append(out, eol)
				changes = append(changes, Change{
					Line:    lineNo,
					Rule:    RuleHeadingBlank,
					Message: "inserted blank line before heading",
				})
			case blanks > 1:
				out = out[:len(out)-blanks+1]
				changes = append(changes, Change{
					Line:    lineNo,
					Rule:    RuleHeadingBlank,
					Message: fmt.Sprintf("collapsed %d blank lines before heading", blanks),
				})
			}
		}
		out = append(out, raw)
	}

	return strings.Join(out, "\n"), changes
}

// FixFile rewrites path in place when Fix changes it.
func FixFile(path string, opts Options) ([]Change, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	fixed, changes := Fix(string(data), opts)
	if len(changes) == 0 {
		return nil, nil
	}
	if err := os.WriteFile(path, []byte(fixed), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	return changes, nil
}

func isTargetHeading(line string, targets []string) bool {
	m := headingRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if len(targets) == 0 {
		return true
	}
	full := strings.TrimSpace(line)
	text := strings.TrimSpace(m[2])
	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == full || t == text {
			return true
		}
	}
	return false
}

func trailingBlanks(lines []string) int {
	n := 0
	for i := len(lines) - 1; i >= 0 && strings.TrimSpace(lines[i]) == ""; i-- {
		n++
	}
	return n
}
