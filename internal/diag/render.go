package diag

import (
	"fmt"
	"strings"
)

// ANSI escapes used by Render. Kept as plain constants so callers that want
// uncolored output can strip them with StripColor.
const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiBlue  = "\033[34m"
)

// Render formats a diagnostic with source context: the line before the
// diagnostic (when there is one), the offending line with a 1-based line
// number gutter, and a caret underline beneath the exact span columns.
func Render(source string, d Diagnostic) string {
	loc := locate(source, d.Span.Start)

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %sError:%s %s\n\n", ansiRed, ansiReset, d.Message)

	gutter := len(fmt.Sprint(loc.lineNumber))
	if loc.prevLine != "" {
		fmt.Fprintf(&b, " %s%*d%s |  %s\n", ansiBlue, gutter, loc.lineNumber-1, ansiReset, loc.prevLine)
	}
	fmt.Fprintf(&b, " %s%*d%s |  %s\n", ansiBlue, gutter, loc.lineNumber, ansiReset, loc.line)

	// Underline the span, clamped to the line it starts on.
	col := d.Span.Start - loc.lineStart
	width := d.Span.Len()
	if width < 1 {
		width = 1
	}
	if rest := len(loc.line) - col; width > rest && rest > 0 {
		width = rest
	}
	pad := strings.Repeat(" ", gutter+5+col)
	fmt.Fprintf(&b, "%s%s%s=== %s%s\n\n", pad, ansiRed, strings.Repeat("^", width), d.Message, ansiReset)

	if d.Hint != "" {
		fmt.Fprintf(&b, "  Info: %s%s%s\n", ansiBlue, d.Hint, ansiReset)
	}
	return b.String()
}

// StripColor removes the ANSI escapes Render emits, for plain-text output.
func StripColor(s string) string {
	r := strings.NewReplacer(ansiReset, "", ansiRed, "", ansiBlue, "")
	return r.Replace(s)
}

type location struct {
	lineNumber int    // 1-based line containing the offset
	lineStart  int    // byte offset of that line's first character
	line       string // the line, without trailing newline
	prevLine   string // the preceding line, "" on line 1
}

// locate finds the source line containing the given byte offset.
func locate(source string, offset int) location {
	if offset > len(source) {
		offset = len(source)
	}

	lineNumber := 1
	lineStart := 0
	prevStart := 0
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			prevStart = lineStart
			lineStart = i + 1
			lineNumber++
		}
	}

	lineEnd := offset
	for lineEnd < len(source) && source[lineEnd] != '\n' {
		lineEnd++
	}

	prevLine := ""
	if lineNumber > 1 {
		prevLine = strings.TrimRight(source[prevStart:lineStart], "\n")
	}

	return location{
		lineNumber: lineNumber,
		lineStart:  lineStart,
		line:       source[lineStart:lineEnd],
		prevLine:   prevLine,
	}
}
