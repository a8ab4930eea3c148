// Package query answers definition, reference and folding requests against a
// symbols.Model.
package query

import (
	"llvmls/internal/grammar"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
)

// Document is what a query needs from the host: the lines the model was
// built from and a way to find the token under a cursor.
type Document interface {
	source.TextSource
	source.WordRanger
	Text(r source.Range) string
}

// Link is a resolved definition. Target covers the defining token, Preview
// covers the whole defining line.
type Link struct {
	Target  source.Range `json:"target" yaml:"target"`
	Preview source.Range `json:"preview" yaml:"preview"`
}

// token is the identifier under a cursor, normalized to its table key.
type token struct {
	key   string
	label bool // the cursor sat on a block label
}

// FunctionAt returns the first closed function whose body contains line.
func FunctionAt(m *symbols.Model, line int) (string, *symbols.FunctionEntry, bool) {
	return m.FunctionAt(line)
}

// Definition resolves the identifier or label under pos. Locals of the
// enclosing function are tried before globals.
func Definition(m *symbols.Model, doc Document, pos source.Position) (Link, bool) {
	tok, ok := tokenAt(doc, pos)
	if !ok {
		return Link{}, false
	}
	_, fn, inFunc := m.FunctionAt(pos.Line)

	var (
		def   source.Position
		found bool
	)
	if inFunc && grammar.IsLocal(tok.key) {
		def, found = fn.Definition(tok.key)
	}
	if !found {
		def, found = m.Global.Definition(tok.key)
	}
	if !found {
		return Link{}, false
	}

	line := doc.LineAt(def.Line)
	return Link{
		Target:  source.NewRange(def.Line, def.Col, def.Line, def.Col+tokenLen(line, def.Col, tok.key)),
		Preview: source.NewRange(def.Line, 0, def.Line, len(line)),
	}, true
}

// References lists the uses of the identifier under pos. The result is never
// nil. A key defined in the enclosing function resolves to that function's
// uses; anything else resolves to the global uses.
func References(m *symbols.Model, doc Document, pos source.Position) []source.Range {
	out := make([]source.Range, 0)
	tok, ok := tokenAt(doc, pos)
	if !ok {
		return out
	}
	_, fn, inFunc := m.FunctionAt(pos.Line)

	if tok.label {
		if !inFunc {
			return out
		}
		return append(out, fn.References(tok.key)...)
	}
	if inFunc {
		if _, local := fn.Definition(tok.key); local {
			return append(out, fn.References(tok.key)...)
		}
	}
	return append(out, m.Global.References(tok.key)...)
}

// FoldingRanges returns the model's folding ranges as built.
func FoldingRanges(m *symbols.Model) []symbols.FoldingRange {
	return m.FoldingRanges
}

// tokenAt finds the token under pos. Words in a trailing comment are ignored,
// as they are when scanning.
func tokenAt(doc Document, pos source.Position) (token, bool) {
	code := len(grammar.StripComment(doc.LineAt(pos.Line)))
	if pos.Col > code {
		return token{}, false
	}
	if r, ok := doc.WordRangeAt(pos, grammar.Identifier); ok && r.End.Col <= code {
		return token{key: grammar.Normalize(doc.Text(r))}, true
	}
	if r, ok := doc.WordRangeAt(pos, grammar.Label); ok && r.End.Col <= code {
		return token{key: grammar.LabelKey(doc.Text(r)), label: true}, true
	}
	return token{}, false
}

// tokenLen measures the raw token that starts at col, so quoted and escaped
// spellings get a selection that covers what is written in the line.
func tokenLen(line string, col int, key string) int {
	if col < 0 || col > len(line) {
		return len(key)
	}
	if loc := grammar.Identifier.FindStringIndex(line[col:]); loc != nil && loc[0] == 0 {
		return loc[1]
	}
	if col == 0 {
		if loc := grammar.Label.FindStringIndex(line); loc != nil {
			return loc[1] - 1
		}
	}
	return len(key)
}
