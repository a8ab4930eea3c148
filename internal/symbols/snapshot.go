package symbols

import "llvmls/internal/source"

// Snapshot is the serializable form of a Model. Slices keep the model's key
// order, so encoding is deterministic.
type Snapshot struct {
	Version   int                `json:"version" yaml:"version" msgpack:"version"`
	Global    TableSnapshot      `json:"global" yaml:"global" msgpack:"global"`
	Functions []FunctionSnapshot `json:"functions" yaml:"functions" msgpack:"functions"`
	Folding   []FoldingRange     `json:"folding" yaml:"folding" msgpack:"folding"`
}

// TableSnapshot is the serializable form of a VariableTable.
type TableSnapshot struct {
	Values []ValueEntry `json:"values" yaml:"values" msgpack:"values"`
	Users  []UserEntry  `json:"users" yaml:"users" msgpack:"users"`
}

// ValueEntry is one definition site.
type ValueEntry struct {
	Key string          `json:"key" yaml:"key" msgpack:"key"`
	Pos source.Position `json:"pos" yaml:"pos" msgpack:"pos"`
}

// UserEntry lists the reference sites of one key.
type UserEntry struct {
	Key    string         `json:"key" yaml:"key" msgpack:"key"`
	Ranges []source.Range `json:"ranges" yaml:"ranges" msgpack:"ranges"`
}

// FunctionSnapshot is the serializable form of a FunctionEntry.
type FunctionSnapshot struct {
	Name      string        `json:"name" yaml:"name" msgpack:"name"`
	LineStart int           `json:"lineStart" yaml:"line_start" msgpack:"line_start"`
	LineEnd   int           `json:"lineEnd" yaml:"line_end" msgpack:"line_end"`
	Table     TableSnapshot `json:"table" yaml:"table" msgpack:"table"`
}

// Snapshot converts the model into its serializable form.
func (m *Model) Snapshot() Snapshot {
	out := Snapshot{
		Version:   m.Version,
		Global:    snapshotTable(&m.Global),
		Functions: make([]FunctionSnapshot, 0, len(m.funcOrder)),
		Folding:   append([]FoldingRange(nil), m.FoldingRanges...),
	}
	for _, name := range m.funcOrder {
		fn := m.Functions[name]
		out.Functions = append(out.Functions, FunctionSnapshot{
			Name:      name,
			LineStart: fn.LineStart,
			LineEnd:   fn.LineEnd,
			Table:     snapshotTable(&fn.VariableTable),
		})
	}
	return out
}

// FromSnapshot rebuilds a Model.
func FromSnapshot(s Snapshot) *Model {
	m := NewModel(s.Version)
	restoreTable(&m.Global, s.Global)
	for _, fs := range s.Functions {
		fn := NewFunctionEntry(fs.LineStart)
		fn.LineEnd = fs.LineEnd
		restoreTable(&fn.VariableTable, fs.Table)
		m.AddFunction(fs.Name, fn)
	}
	m.FoldingRanges = append(m.FoldingRanges, s.Folding...)
	return m
}

func snapshotTable(t *VariableTable) TableSnapshot {
	out := TableSnapshot{
		Values: make([]ValueEntry, 0, len(t.valueOrder)),
		Users:  make([]UserEntry, 0, len(t.userOrder)),
	}
	for _, key := range t.valueOrder {
		out.Values = append(out.Values, ValueEntry{Key: key, Pos: t.Values[key]})
	}
	for _, key := range t.userOrder {
		out.Users = append(out.Users, UserEntry{Key: key, Ranges: append([]source.Range(nil), t.Users[key]...)})
	}
	return out
}

func restoreTable(t *VariableTable, s TableSnapshot) {
	for _, v := range s.Values {
		t.Define(v.Key, v.Pos)
	}
	for _, u := range s.Users {
		for _, r := range u.Ranges {
			t.Use(u.Key, r)
		}
	}
}
