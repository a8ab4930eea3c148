package source

import (
	"regexp"
	"strings"
)

// Position is a 0-based line and a 0-based byte column within that line.
type Position struct {
	Line int `json:"line" yaml:"line" msgpack:"line"`
	Col  int `json:"col" yaml:"col" msgpack:"col"`
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start" yaml:"start" msgpack:"start"`
	End   Position `json:"end" yaml:"end" msgpack:"end"`
}

// NewRange builds a range from raw coordinates.
func NewRange(startLine, startCol, endLine, endCol int) Range {
	return Range{
		Start: Position{Line: startLine, Col: startCol},
		End:   Position{Line: endLine, Col: endCol},
	}
}

// Contains reports whether pos falls inside r, treating the end as inclusive.
// Word lookups at a cursor placed right after a token still hit that token.
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Col < r.Start.Col {
		return false
	}
	if pos.Line == r.End.Line && pos.Col > r.End.Col {
		return false
	}
	return true
}

// TextSource is the read-only view of a document that the scanner consumes.
type TextSource interface {
	LineCount() int
	LineAt(n int) string
	Version() int
	URI() string
}

// WordRanger finds the token matching pattern under a position.
type WordRanger interface {
	WordRangeAt(pos Position, pattern *regexp.Regexp) (Range, bool)
}

// FileFlags encodes how a document's content was normalized on load.
type FileFlags uint8

const (
	// FileVirtual marks content that did not come from disk (editor buffer, test).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// String lists the normalizations applied on load, e.g. "bom,crlf".
// Virtual content has no on-disk form and is not reported.
func (f FileFlags) String() string {
	var parts []string
	if f&FileHadBOM != 0 {
		parts = append(parts, "bom")
	}
	if f&FileNormalizedCRLF != 0 {
		parts = append(parts, "crlf")
	}
	return strings.Join(parts, ",")
}
