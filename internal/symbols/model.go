// Package symbols holds the symbol model built for one version of an IR
// document: the global table, one local table per function, and the folding
// regions.
//
// A Model is filled in by the scanner and must not be changed once the scan
// returns. A new document version gets a new Model.
package symbols

// FoldingKind classifies a folding range.
type FoldingKind string

// FoldRegion is the only kind the scanner emits.
const FoldRegion FoldingKind = "region"

// FoldingRange is a collapsible line interval, both ends inclusive.
type FoldingRange struct {
	StartLine int         `json:"startLine" yaml:"start_line" msgpack:"start_line"`
	EndLine   int         `json:"endLine" yaml:"end_line" msgpack:"end_line"`
	Kind      FoldingKind `json:"kind" yaml:"kind" msgpack:"kind"`
}

// Model is the symbol index of one document version.
type Model struct {
	Version       int
	Global        VariableTable
	Functions     map[string]*FunctionEntry
	FoldingRanges []FoldingRange

	funcOrder []string
}

// NewModel creates an empty model stamped with version.
func NewModel(version int) *Model {
	return &Model{
		Version:       version,
		Global:        NewVariableTable(),
		Functions:     make(map[string]*FunctionEntry),
		FoldingRanges: make([]FoldingRange, 0),
	}
}

// AddFunction registers fn under name. A later function with the same name
// replaces the earlier one.
func (m *Model) AddFunction(name string, fn *FunctionEntry) {
	if _, ok := m.Functions[name]; !ok {
		m.funcOrder = append(m.funcOrder, name)
	}
	m.Functions[name] = fn
}

// Function looks up a function scope by its normalized name.
func (m *Model) Function(name string) (*FunctionEntry, bool) {
	fn, ok := m.Functions[name]
	return fn, ok
}

// FunctionNames returns function names in first-definition order.
func (m *Model) FunctionNames() []string {
	return append([]string(nil), m.funcOrder...)
}

// AddFold appends a region folding range.
func (m *Model) AddFold(startLine, endLine int) {
	m.FoldingRanges = append(m.FoldingRanges, FoldingRange{
		StartLine: startLine,
		EndLine:   endLine,
		Kind:      FoldRegion,
	})
}

// FunctionAt returns the first closed function, in definition order, whose
// body contains line. Unterminated functions never match.
func (m *Model) FunctionAt(line int) (string, *FunctionEntry, bool) {
	for _, name := range m.funcOrder {
		fn := m.Functions[name]
		if fn.Contains(line) {
			return name, fn, true
		}
	}
	return "", nil, false
}
