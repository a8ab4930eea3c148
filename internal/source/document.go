package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"regexp"

	"fortio.org/safecast"
)

// Document is an immutable, fully materialized text buffer.
// It implements TextSource and WordRanger.
type Document struct {
	uri     string
	version int
	content []byte
	lineIdx []uint32 // offsets of every '\n'
	hash    [32]byte
	flags   FileFlags
}

// NewDocument builds a document from in-memory text.
func NewDocument(uri string, version int, text string) *Document {
	return newDocument(uri, version, []byte(text), FileVirtual)
}

// Load reads a file from disk and strips a BOM and CRLF line endings.
// The path is used as the document URI and the version is 0.
func Load(path string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newDocument(path, 0, content, 0), nil
}

func newDocument(uri string, version int, content []byte, flags FileFlags) *Document {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return &Document{
		uri:     uri,
		version: version,
		content: content,
		lineIdx: buildLineIndex(content),
		hash:    sha256.Sum256(content),
		flags:   flags,
	}
}

// URI returns the document identity.
func (d *Document) URI() string { return d.uri }

// Version returns the version stamp the document was built with.
func (d *Document) Version() int { return d.version }

// Hash returns the SHA-256 of the normalized content.
func (d *Document) Hash() [32]byte { return d.hash }

// Flags reports how the content was normalized.
func (d *Document) Flags() FileFlags { return d.flags }

// Content returns the normalized bytes. Callers must not modify them.
func (d *Document) Content() []byte { return d.content }

// LineCount returns the number of lines. A trailing newline yields a final empty line.
func (d *Document) LineCount() int {
	return len(d.lineIdx) + 1
}

// LineAt returns line n without its terminator, or "" when n is out of range.
func (d *Document) LineAt(n int) string {
	start, end, ok := d.lineBounds(n)
	if !ok {
		return ""
	}
	return string(d.content[start:end])
}

func (d *Document) lineBounds(n int) (start, end uint32, ok bool) {
	if n < 0 || n > len(d.lineIdx) {
		return 0, 0, false
	}
	contentLen, err := safecast.Conv[uint32](len(d.content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	if n > 0 {
		start = d.lineIdx[n-1] + 1
	}
	end = contentLen
	if n < len(d.lineIdx) {
		end = d.lineIdx[n]
	}
	return start, end, true
}

// Text returns the text covered by r. Ranges are clamped to the document.
func (d *Document) Text(r Range) string {
	if r.Start.Line == r.End.Line {
		line := d.LineAt(r.Start.Line)
		start := clamp(r.Start.Col, 0, len(line))
		end := clamp(r.End.Col, start, len(line))
		return line[start:end]
	}
	start := d.offset(r.Start)
	end := d.offset(r.End)
	if end < start {
		end = start
	}
	return string(d.content[start:end])
}

func (d *Document) offset(pos Position) int {
	lineStart, lineEnd, ok := d.lineBounds(pos.Line)
	if !ok {
		if pos.Line < 0 {
			return 0
		}
		return len(d.content)
	}
	return int(lineStart) + clamp(pos.Col, 0, int(lineEnd-lineStart))
}

// WordRangeAt returns the match of pattern on pos's line that contains pos.
// The end of a match counts as inside it.
func (d *Document) WordRangeAt(pos Position, pattern *regexp.Regexp) (Range, bool) {
	if pattern == nil || pos.Line < 0 || pos.Line >= d.LineCount() {
		return Range{}, false
	}
	line := d.LineAt(pos.Line)
	for _, m := range pattern.FindAllStringIndex(line, -1) {
		if m[0] <= pos.Col && pos.Col <= m[1] && m[1] > m[0] {
			return NewRange(pos.Line, m[0], pos.Line, m[1]), true
		}
	}
	return Range{}, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
