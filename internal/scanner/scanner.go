// Package scanner builds a symbols.Model from IR text in one top-to-bottom
// pass. Every line is classified on its own; the only state carried between
// lines is the open function and the line of the open label block.
package scanner

import (
	"context"
	"fmt"
	"strconv"

	"llvmls/internal/grammar"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
	"llvmls/internal/trace"
)

const noLabel = -1

type state struct {
	model     *symbols.Model
	current   *symbols.FunctionEntry
	lastLabel int
}

// Scan indexes every line of src. It never fails: lines that match nothing
// contribute only what the value/use split finds in them.
func Scan(ctx context.Context, src source.TextSource) *symbols.Model {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDocument, "scan", trace.ParentFromContext(ctx))

	st := &state{
		model:     symbols.NewModel(src.Version()),
		lastLabel: noLabel,
	}
	perLine := tr.Level().ShouldEmit(trace.ScopeLine)
	count := src.LineCount()
	for n := 0; n < count; n++ {
		kind := st.step(n, src.LineAt(n))
		if perLine {
			trace.Point(tr, trace.ScopeLine, kind.String(), strconv.Itoa(n))
		}
	}

	span.WithExtra("lines", strconv.Itoa(count)).
		WithExtra("functions", strconv.Itoa(len(st.model.Functions))).
		WithExtra("folds", strconv.Itoa(len(st.model.FoldingRanges))).
		End(fmt.Sprintf("%s@%d", src.URI(), src.Version()))
	return st.model
}

func (st *state) step(n int, raw string) grammar.Kind {
	line := grammar.Classify(raw)
	switch line.Kind {
	case grammar.KindDefine:
		st.define(n, line)
	case grammar.KindLabel:
		st.label(n, line)
	case grammar.KindClose:
		st.close(n)
	case grammar.KindDeclare:
		st.model.Global.Define(grammar.Normalize(line.FuncID.Text), source.Position{Line: n, Col: line.FuncID.Start})
	default:
		st.plain(n, line.Text)
	}
	return line.Kind
}

func (st *state) define(n int, line grammar.Line) {
	if st.current != nil && st.lastLabel != noLabel {
		// the previous function never closed; its last block ends here
		st.model.AddFold(st.lastLabel, n-1)
		st.lastLabel = noLabel
	}

	fn := symbols.NewFunctionEntry(n)
	name := grammar.Normalize(line.FuncID.Text)
	st.model.AddFunction(name, fn)
	st.model.Global.Define(name, source.Position{Line: n, Col: line.FuncID.Start})

	if line.Args.Start >= 0 {
		params := make(map[int]struct{})
		for _, m := range grammar.Arguments(line.Args.Text) {
			col := line.Args.Start + m.Start
			params[col] = struct{}{}
			fn.Define(grammar.Normalize(m.Text), source.Position{Line: n, Col: col})
		}
		for _, m := range grammar.ValueOrUse(line.Args.Text) {
			col := line.Args.Start + m.Start
			if _, ok := params[col]; ok {
				continue
			}
			st.model.Global.Use(grammar.Normalize(m.Text), useRange(n, col, m.Text))
		}
	}
	if line.FuncMeta.Start >= 0 {
		for _, m := range grammar.ValueOrUse(line.FuncMeta.Text) {
			col := line.FuncMeta.Start + m.Start
			st.model.Global.Use(grammar.Normalize(m.Text), useRange(n, col, m.Text))
		}
	}
	st.current = fn
}

func (st *state) label(n int, line grammar.Line) {
	if st.current != nil {
		st.current.Define(grammar.LabelKey(line.Label.Text), source.Position{Line: n, Col: line.Label.Start})
	}
	if st.lastLabel != noLabel {
		st.model.AddFold(st.lastLabel, n-1)
	}
	st.lastLabel = n
}

func (st *state) close(n int) {
	if st.current == nil {
		return
	}
	st.model.AddFold(st.current.LineStart, n)
	st.current.Close(n)
	st.current = nil
	if st.lastLabel != noLabel {
		st.model.AddFold(st.lastLabel, n)
		st.lastLabel = noLabel
	}
}

func (st *state) plain(n int, text string) {
	for _, m := range grammar.ValueOrUse(text) {
		key := grammar.Normalize(m.Text)
		table := &st.model.Global
		if st.current != nil && grammar.IsLocal(key) {
			table = &st.current.VariableTable
		}
		if m.Definition {
			table.Define(key, source.Position{Line: n, Col: m.Start})
			continue
		}
		table.Use(key, useRange(n, m.Start, m.Text))
	}
}

// useRange spans the raw token, so slicing the line with it gives back the
// spelling found in the source.
func useRange(line, col int, raw string) source.Range {
	return source.NewRange(line, col, line, col+len(raw))
}
