// Package span provides the source span type used across the interpreter.
package span

import "fmt"

// Span represents a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// New creates a span from start and end byte offsets.
func New(start, end int) Span {
	return Span{Start: start, End: end}
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Combine returns the smallest span covering both s and other.
func (s Span) Combine(other Span) Span {
	combined := s
	if other.Start < combined.Start {
		combined.Start = other.Start
	}
	if other.End > combined.End {
		combined.End = other.End
	}
	return combined
}

// Slice returns the source substring the span covers. The end is clamped to
// the source length so the Eof token's span slices to "".
func (s Span) Slice(source string) string {
	start := s.Start
	end := s.End
	if start > len(source) {
		start = len(source)
	}
	if end > len(source) {
		end = len(source)
	}
	return source[start:end]
}
