// Package diffscan turns unified diff text into the added lines a scanner
// needs, each tagged with its file and its line number in the new version of
// that file.
package diffscan

import (
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// BareSource is the source id used for hunks that carry no file header.
const BareSource = "diff"

// Line is one added line of a diff.
type Line struct {
	Source string
	Number int
	Text   string
	// Lookahead holds the new-side lines that follow this one in the same
	// hunk, added and context alike, up to the requested window size.
	Lookahead []string
}

// Stats summarizes a parsed diff.
type Stats struct {
	Files   int
	Added   int
	Removed int
}

// Parse extracts added lines from diff text. Text with file headers
// ("diff --git", "---"/"+++") is read as a multi-file diff; text that starts
// directly at a hunk header is read as bare hunks under BareSource. window
// bounds each line's lookahead; zero disables it.
//
// Empty or whitespace-only input yields no lines and no error.
func Parse(text string, window int) ([]Line, Stats, error) {
	if strings.TrimSpace(text) == "" {
		return nil, Stats{}, nil
	}

	if strings.HasPrefix(strings.TrimLeft(text, "\n"), "@@") {
		hunks, err := diff.ParseHunks([]byte(text))
		if err != nil {
			return nil, Stats{}, fmt.Errorf("parse hunks: %w", err)
		}
		lines, stats := collect(BareSource, hunks, window)
		stats.Files = 1
		return lines, stats, nil
	}

	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(text)).ReadAllFiles()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parse diff: %w", err)
	}

	var (
		lines []Line
		stats Stats
	)
	for _, fd := range fileDiffs {
		stats.Files++
		if fd.NewName == "/dev/null" {
			_, s := collect(fd.OrigName, fd.Hunks, 0)
			stats.Removed += s.Removed
			continue
		}
		fileLines, s := collect(sourceName(fd), fd.Hunks, window)
		lines = append(lines, fileLines...)
		stats.Added += s.Added
		stats.Removed += s.Removed
	}
	return lines, stats, nil
}

// sourceName picks the new-side path of a file diff without its a/ or b/ prefix.
func sourceName(fd *diff.FileDiff) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	name = strings.TrimPrefix(name, "b/")
	name = strings.TrimPrefix(name, "a/")
	return name
}

// newSideLine is a line present in the new version of a file.
type newSideLine struct {
	number int
	text   string
	added  bool
}

func collect(source string, hunks []*diff.Hunk, window int) ([]Line, Stats) {
	var (
		lines []Line
		stats Stats
	)
	for _, h := range hunks {
		newSide, removed := walkHunk(h)
		stats.Removed += removed

		for i, nl := range newSide {
			if !nl.added {
				continue
			}
			stats.Added++
			lines = append(lines, Line{
				Source:    source,
				Number:    nl.number,
				Text:      nl.text,
				Lookahead: lookahead(newSide[i+1:], window),
			})
		}
	}
	return lines, stats
}

// walkHunk numbers the new-side lines of a hunk. Numbering starts at the
// hunk's new start line and advances on added and context lines only.
func walkHunk(h *diff.Hunk) ([]newSideLine, int) {
	body := strings.TrimSuffix(string(h.Body), "\n")
	if body == "" {
		return nil, 0
	}

	var (
		out     []newSideLine
		removed int
	)
	number := int(h.NewStartLine)
	// File headers are already stripped from the body, so only the first
	// byte marks a line: "+++x" is an added line reading "++x".
	for _, raw := range strings.Split(body, "\n") {
		if raw == "" {
			out = append(out, newSideLine{number: number})
			number++
			continue
		}
		switch raw[0] {
		case '+':
			out = append(out, newSideLine{number: number, text: raw[1:], added: true})
			number++
		case '-':
			removed++
		case '\\':
			// "\ No newline at end of file"
		case ' ':
			out = append(out, newSideLine{number: number, text: raw[1:]})
			number++
		}
	}
	return out, removed
}

func lookahead(rest []newSideLine, window int) []string {
	if window <= 0 || len(rest) == 0 {
		return nil
	}
	if len(rest) > window {
		rest = rest[:window]
	}
	out := make([]string, len(rest))
	for i, nl := range rest {
		out[i] = nl.text
	}
	return out
}
