package symbols

import "llvmls/internal/source"

// VariableTable holds the definition site and the reference sites of every
// identifier in one scope. Keys are normalized identifiers.
//
// Values keeps the last definition seen during a scan. Users keeps references
// in encounter order. Key order is the order of first insertion.
type VariableTable struct {
	Values map[string]source.Position
	Users  map[string][]source.Range

	valueOrder []string
	userOrder  []string
}

// NewVariableTable returns an empty table.
func NewVariableTable() VariableTable {
	return VariableTable{
		Values: make(map[string]source.Position),
		Users:  make(map[string][]source.Range),
	}
}

// Define records pos as the definition of key, replacing any earlier one.
func (t *VariableTable) Define(key string, pos source.Position) {
	if _, ok := t.Values[key]; !ok {
		t.valueOrder = append(t.valueOrder, key)
	}
	t.Values[key] = pos
}

// Use appends a reference range for key.
func (t *VariableTable) Use(key string, r source.Range) {
	if _, ok := t.Users[key]; !ok {
		t.userOrder = append(t.userOrder, key)
	}
	t.Users[key] = append(t.Users[key], r)
}

// Definition returns the definition site of key.
func (t *VariableTable) Definition(key string) (source.Position, bool) {
	pos, ok := t.Values[key]
	return pos, ok
}

// References returns the reference ranges for key, or nil.
func (t *VariableTable) References(key string) []source.Range {
	return t.Users[key]
}

// Keys returns defined keys in first-definition order.
func (t *VariableTable) Keys() []string {
	return append([]string(nil), t.valueOrder...)
}

// UserKeys returns referenced keys in first-reference order.
func (t *VariableTable) UserKeys() []string {
	return append([]string(nil), t.userOrder...)
}

// FunctionEntry is the local scope of one function body.
type FunctionEntry struct {
	VariableTable
	LineStart int
	LineEnd   int // -1 until the closing brace is seen
}

// NewFunctionEntry opens a function scope at the define line.
func NewFunctionEntry(lineStart int) *FunctionEntry {
	return &FunctionEntry{
		VariableTable: NewVariableTable(),
		LineStart:     lineStart,
		LineEnd:       -1,
	}
}

// Closed reports whether the closing brace was seen.
func (f *FunctionEntry) Closed() bool {
	return f.LineEnd >= 0
}

// Close sets LineEnd. Only the first call has an effect.
func (f *FunctionEntry) Close(line int) {
	if f.Closed() {
		return
	}
	f.LineEnd = line
}

// Contains reports whether line falls inside a closed function body.
func (f *FunctionEntry) Contains(line int) bool {
	return f.Closed() && f.LineStart <= line && line <= f.LineEnd
}
