package grammar

import "strings"

// Kind is the structural class of a line.
type Kind uint8

const (
	// KindPlain is any line without structural meaning. Its identifiers are
	// split into definitions and uses.
	KindPlain Kind = iota
	KindDefine
	KindLabel
	KindClose
	KindDeclare
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindDefine:
		return "define"
	case KindLabel:
		return "label"
	case KindClose:
		return "close"
	case KindDeclare:
		return "declare"
	default:
		return "unknown"
	}
}

// Capture is a sub-match together with its byte offset in the line.
type Capture struct {
	Start int
	Text  string
}

// Line is the result of classifying one comment-stripped line.
// Only the captures relevant to Kind are set.
type Line struct {
	Kind Kind
	Text string

	FuncID   Capture // define, declare
	Args     Capture // define
	FuncMeta Capture // define
	Label    Capture // label, without the colon
}

// Classify strips the comment from raw and tries, in order, define, label,
// close and declare. The first pattern that matches decides the kind.
func Classify(raw string) Line {
	text := StripComment(raw)
	if line, ok := classifyDefine(text); ok {
		return line
	}
	if loc := Label.FindStringSubmatchIndex(text); loc != nil {
		return Line{Kind: KindLabel, Text: text, Label: capture(text, loc, labelGroup)}
	}
	if closeBrace.MatchString(text) {
		return Line{Kind: KindClose, Text: text}
	}
	if loc := declare.FindStringSubmatchIndex(text); loc != nil {
		return Line{Kind: KindDeclare, Text: text, FuncID: capture(text, loc, declFuncID)}
	}
	return Line{Kind: KindPlain, Text: text}
}

// classifyDefine splits a define line into name, parameter list and the
// trailing attributes. The parameter list ends at the ')' matching the '('
// after the name, so attributes such as `personality ptr bitcast (...)` stay
// in FuncMeta. A line whose parens never balance falls back to the last ')'.
func classifyDefine(text string) (Line, bool) {
	loc := defineHead.FindStringSubmatchIndex(text)
	if loc == nil {
		return Line{}, false
	}
	open := loc[1] - 1
	end := matchingParen(text, open)
	if end < 0 {
		end = strings.LastIndexByte(text, ')')
		if end < open {
			return Line{}, false
		}
	}
	return Line{
		Kind:     KindDefine,
		Text:     text,
		FuncID:   capture(text, loc, defFuncID),
		Args:     Capture{Start: open + 1, Text: text[open+1 : end]},
		FuncMeta: Capture{Start: end + 1, Text: text[end+1:]},
	}, true
}

// matchingParen returns the index of the ')' closing the '(' at open, or -1.
// Parens inside quoted names do not count.
func matchingParen(text string, open int) int {
	depth := 0
	inQuote := false
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if inQuote {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func capture(text string, loc []int, group int) Capture {
	s, e := loc[2*group], loc[2*group+1]
	if s < 0 {
		return Capture{Start: -1}
	}
	return Capture{Start: s, Text: text[s:e]}
}

// StripComment cuts line at the first ';' outside a double-quoted run.
// Quoted names and c"..." constants may contain ';'. LLVM escapes quotes as
// \22, so a plain toggle is enough.
func StripComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return line[:i]
			}
		}
	}
	return line
}
