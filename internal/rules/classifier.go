package rules

import (
	"strings"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
)

// Classifier evaluates an ordered rule table against single lines. It holds no
// state between calls, so classifying the same input twice yields identical
// findings.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a Classifier over rules, evaluated in the given order.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify appends a finding to dst for every rule that matches text and
// returns the extended slice. Rules are independent: one line may produce
// several findings. lookahead holds the lines that follow text, used by rules
// with an unless_nearby expression.
func (c *Classifier) Classify(dst []finding.Finding, source string, line int, text string, lookahead []string) []finding.Finding {
	for _, r := range c.rules {
		if f, ok := r.Match(source, line, text, lookahead); ok {
			dst = append(dst, f)
		}
	}
	return dst
}

// Match evaluates a single rule.
func (r Rule) Match(source string, line int, text string, lookahead []string) (finding.Finding, bool) {
	match, ok := r.find(text)
	if !ok {
		return finding.Finding{}, false
	}
	if r.unless != nil && r.nearby(text, lookahead) {
		return finding.Finding{}, false
	}

	return finding.Finding{
		RuleID:     r.ID,
		ChangeType: r.ChangeType,
		Source:     source,
		Line:       line,
		Message:    expand(r.Message, match),
		Risk:       r.risk,
		Suggestion: r.Suggestion,
	}, true
}

// find returns the first match of the rule pattern, skipping matches inside
// comments when the rule asks for it.
func (r Rule) find(text string) (string, bool) {
	if !r.SkipComments {
		loc := r.pattern.FindStringIndex(text)
		if loc == nil {
			return "", false
		}
		return text[loc[0]:loc[1]], true
	}

	for _, loc := range r.pattern.FindAllStringIndex(text, -1) {
		if !inComment(text, loc[0]) {
			return text[loc[0]:loc[1]], true
		}
	}
	return "", false
}

func (r Rule) nearby(text string, lookahead []string) bool {
	if r.unless.MatchString(text) {
		return true
	}
	for _, l := range lookahead {
		if r.unless.MatchString(l) {
			return true
		}
	}
	return false
}

// expand substitutes {match} in a message template. Trailing call
// parentheses are dropped so "console.log(" reads as "console.log".
func expand(template, match string) string {
	if !strings.Contains(template, "{match}") {
		return template
	}
	match = strings.TrimRight(match, "( \t")
	return strings.ReplaceAll(template, "{match}", match)
}

// commentPrefixes start a line that is entirely a comment.
var commentPrefixes = []string{"//", "/*", "<!--", "{/*"}

// markerPrefixes start a comment only when followed by a space, a tab or the
// end of the line: "# note" and " * @param" are comments, while a JS private
// field "#log" and a generator method "*items()" are code.
var markerPrefixes = []string{"#", "*"}

// inComment reports whether position idx of line sits inside a comment. It is
// a heuristic over common C-style, shell and markup comment markers; "//"
// directly after ':' is treated as part of a URL.
func inComment(line string, idx int) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range commentPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	for _, p := range markerPrefixes {
		if rest, ok := strings.CutPrefix(trimmed, p); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			return true
		}
	}

	prefix := line[:idx]
	for i := 0; i+1 < len(prefix); i++ {
		if prefix[i] != '/' {
			continue
		}
		switch prefix[i+1] {
		case '/':
			if i == 0 || prefix[i-1] != ':' {
				return true
			}
			i++
		case '*':
			if !strings.Contains(prefix[i+2:], "*/") {
				return true
			}
		}
	}
	return false
}
