package lsp

import (
	"unicode/utf8"

	"llvmls/internal/source"
)

// byteColumn converts a UTF-16 offset on line into a byte column. Offsets
// past the end clamp to the line length; an offset inside a surrogate pair
// lands before that rune.
func byteColumn(line string, character int) int {
	if character <= 0 {
		return 0
	}
	units := 0
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > character {
			break
		}
		units += need
		i += size
		if units == character {
			break
		}
	}
	return i
}

// utf16Column converts a byte column on line into UTF-16 units.
func utf16Column(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}
	units := 0
	for i := 0; i < col; {
		r, size := utf8.DecodeRuneInString(line[i:])
		if i+size > col {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return units
}

func toSourcePosition(doc *source.Document, pos position) source.Position {
	if pos.Line < 0 {
		return source.Position{}
	}
	return source.Position{
		Line: pos.Line,
		Col:  byteColumn(doc.LineAt(pos.Line), pos.Character),
	}
}

func toLSPPosition(doc *source.Document, pos source.Position) position {
	return position{
		Line:      pos.Line,
		Character: utf16Column(doc.LineAt(pos.Line), pos.Col),
	}
}

func toLSPRange(doc *source.Document, r source.Range) lspRange {
	return lspRange{
		Start: toLSPPosition(doc, r.Start),
		End:   toLSPPosition(doc, r.End),
	}
}
