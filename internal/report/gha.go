package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/CodexForgeBR/semantic-diff/internal/finding"
)

// WriteGHA renders r as GitHub Actions workflow commands, one annotation per
// finding, e.g.
//
//	::error file=src/api.js,line=3,title=Security Issue::Insecure HTTP URL used: http://x
func WriteGHA(w io.Writer, r *Report) error {
	var b strings.Builder
	if r.Notice != "" {
		fmt.Fprintf(&b, "::notice title=%s::%s\n", escapeGHAProperty(r.Title), escapeGHAData(r.Notice))
	}
	for _, f := range r.Findings {
		props := []string{"file=" + escapeGHAProperty(f.Source)}
		if f.Line > 0 {
			props = append(props, fmt.Sprintf("line=%d", f.Line))
		}
		props = append(props, "title="+escapeGHAProperty(f.ChangeType))

		msg := f.Message
		if f.Suggestion != "" {
			msg += "\n" + f.Suggestion
		}
		fmt.Fprintf(&b, "::%s %s::%s\n", ghaLevel(f.Risk), strings.Join(props, ","), escapeGHAData(msg))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write annotations: %w", err)
	}
	return nil
}

func ghaLevel(r finding.RiskLevel) string {
	switch r {
	case finding.High:
		return "error"
	case finding.Medium:
		return "warning"
	default:
		return "notice"
	}
}

func escapeGHAData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

func escapeGHAProperty(s string) string {
	s = escapeGHAData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
