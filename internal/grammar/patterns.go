// Package grammar recognizes LLVM IR identifiers and structural lines with
// regular patterns. It does not parse the IR grammar.
package grammar

import "regexp"

// Fragments follow https://llvm.org/docs/LangRef.html#identifiers.
const (
	identifierFrag = `[-a-zA-Z$._][-a-zA-Z$._0-9]*`
	quotedFrag     = `"[^"]*"`

	globalFrag         = `@(?:` + identifierFrag + `|` + quotedFrag + `|\d+)`
	localFrag          = `%(?:` + identifierFrag + `|` + quotedFrag + `|\d+)`
	attributeGroupFrag = `#\d+`
	metadataFrag       = `!(?:` + identifierFrag + `|\d+)`

	anyIdentifierFrag = `(?:` + globalFrag + `|` + localFrag + `|` + attributeGroupFrag + `|` + metadataFrag + `)`
)

// SigilLocal opens function-scoped names; every other sigil is global.
const SigilLocal = '%'

var (
	// Identifier matches any global, local, attribute group or metadata name.
	// Hosts use it to find the word under a cursor.
	Identifier = regexp.MustCompile(anyIdentifierFrag)

	// Label matches a block label at the start of a line, colon included.
	Label = regexp.MustCompile(`^(?P<label>` + identifierFrag + `|\d+):`)

	// The definition alternative comes first so it wins at a given position.
	// A trailing '*' after a use is consumed so pointer types stay one token.
	valueOrUse = regexp.MustCompile(`(?P<value>` + anyIdentifierFrag + `)\s*=|(?P<user>` + anyIdentifierFrag + `)(?:\*|)`)

	argument = regexp.MustCompile(`(?P<value>` + localFrag + `)\s*(?:,|$)`)

	// defineHead stops at the '(' opening the parameter list; the list itself
	// is delimited by paren matching in Classify.
	defineHead = regexp.MustCompile(`^define.*?(?P<funcid>` + globalFrag + `)\(`)

	// The '(' is required so the name is not swallowed by the leading '.*'.
	declare = regexp.MustCompile(`^declare.*(?P<funcid>` + globalFrag + `)\(.*\).*$`)

	closeBrace = regexp.MustCompile(`^\s*}\s*$`)
)

var (
	valueGroup  = valueOrUse.SubexpIndex("value")
	userGroup   = valueOrUse.SubexpIndex("user")
	argGroup    = argument.SubexpIndex("value")
	labelGroup  = Label.SubexpIndex("label")
	defFuncID   = defineHead.SubexpIndex("funcid")
	declFuncID  = declare.SubexpIndex("funcid")
)

// Match is one identifier occurrence inside a piece of text.
type Match struct {
	Start      int    // byte offset of the sigil
	Text       string // raw token, not normalized
	Definition bool   // followed by '='
}

// End returns the byte offset just past the raw token.
func (m Match) End() int { return m.Start + len(m.Text) }

// ValueOrUse returns every identifier in text, in order, split into
// definitions and uses.
func ValueOrUse(text string) []Match {
	locs := valueOrUse.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		if s, e := loc[2*valueGroup], loc[2*valueGroup+1]; s >= 0 {
			out = append(out, Match{Start: s, Text: text[s:e], Definition: true})
			continue
		}
		if s, e := loc[2*userGroup], loc[2*userGroup+1]; s >= 0 {
			out = append(out, Match{Start: s, Text: text[s:e]})
		}
	}
	return out
}

// Arguments returns the parameter definitions in the raw text of a
// function's parameter list: locals followed by ',' or the end of the text.
func Arguments(args string) []Match {
	locs := argument.FindAllStringSubmatchIndex(args, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		s, e := loc[2*argGroup], loc[2*argGroup+1]
		out = append(out, Match{Start: s, Text: args[s:e], Definition: true})
	}
	return out
}
