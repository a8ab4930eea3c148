package scanner

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"llvmls/internal/source"
	"llvmls/internal/symbols"
	"llvmls/internal/trace"
)

func scan(t *testing.T, lines ...string) (*symbols.Model, *source.Document) {
	t.Helper()
	doc := source.NewDocument("mem://test.ll", 1, strings.Join(lines, "\n"))
	return Scan(context.Background(), doc), doc
}

func pos(line, col int) source.Position { return source.Position{Line: line, Col: col} }

func TestScanEndToEnd(t *testing.T) {
	m, _ := scan(t,
		"define i32 @main() {",
		"entry:",
		"  %x = add i32 1, 2",
		"  br label %exit",
		"exit:",
		"  ret i32 %x",
		"}",
	)

	fn, ok := m.Function("@main")
	if !ok {
		t.Fatal("@main not registered")
	}
	if fn.LineStart != 0 || fn.LineEnd != 6 {
		t.Fatalf("unexpected @main span [%d,%d]", fn.LineStart, fn.LineEnd)
	}
	if got, _ := m.Global.Definition("@main"); got != pos(0, 11) {
		t.Fatalf("@main defined at %+v", got)
	}

	wantLocals := map[string]source.Position{
		"%entry": pos(1, 0),
		"%x":     pos(2, 2),
		"%exit":  pos(4, 0),
	}
	if !reflect.DeepEqual(fn.Values, wantLocals) {
		t.Fatalf("locals = %+v, want %+v", fn.Values, wantLocals)
	}
	for key := range wantLocals {
		if _, ok := m.Global.Definition(key); ok {
			t.Fatalf("local %s leaked into the global table", key)
		}
	}

	if refs := fn.References("%exit"); !reflect.DeepEqual(refs, []source.Range{source.NewRange(3, 11, 3, 16)}) {
		t.Fatalf("%%exit refs = %+v", refs)
	}
	if refs := fn.References("%x"); !reflect.DeepEqual(refs, []source.Range{source.NewRange(5, 10, 5, 12)}) {
		t.Fatalf("%%x refs = %+v", refs)
	}

	wantFolds := []symbols.FoldingRange{
		{StartLine: 1, EndLine: 3, Kind: symbols.FoldRegion},
		{StartLine: 0, EndLine: 6, Kind: symbols.FoldRegion},
		{StartLine: 4, EndLine: 6, Kind: symbols.FoldRegion},
	}
	if !reflect.DeepEqual(m.FoldingRanges, wantFolds) {
		t.Fatalf("folds = %+v, want %+v", m.FoldingRanges, wantFolds)
	}
	if m.Version != 1 {
		t.Fatalf("model version %d", m.Version)
	}
}

func TestScanDeclare(t *testing.T) {
	m, _ := scan(t, "declare i32 @printf(i8*, ...)")
	if got, ok := m.Global.Definition("@printf"); !ok || got != pos(0, 12) {
		t.Fatalf("@printf defined at %+v ok=%v", got, ok)
	}
	if len(m.Functions) != 0 {
		t.Fatal("declare must not open a function")
	}
}

func TestScanDefineParamsAndMetadata(t *testing.T) {
	m, _ := scan(t,
		"define i32 @add(i32 %a, i32 %b) #0 !dbg !7 {",
		"  %s = add i32 %a, %b",
		"  ret i32 %s",
		"}",
		"attributes #0 = { nounwind }",
		"!7 = !{}",
	)
	fn, _ := m.Function("@add")
	if got, _ := fn.Definition("%a"); got != pos(0, 20) {
		t.Fatalf("%%a defined at %+v", got)
	}
	if got, _ := fn.Definition("%b"); got != pos(0, 28) {
		t.Fatalf("%%b defined at %+v", got)
	}
	if got := m.Global.UserKeys(); !reflect.DeepEqual(got, []string{"#0", "!dbg", "!7"}) {
		t.Fatalf("global users = %v", got)
	}
	if got, ok := m.Global.Definition("#0"); !ok || got != pos(4, 11) {
		t.Fatalf("#0 defined at %+v ok=%v", got, ok)
	}
	if got, ok := m.Global.Definition("!7"); !ok || got != pos(5, 0) {
		t.Fatalf("!7 defined at %+v ok=%v", got, ok)
	}
	if refs := fn.References("%a"); len(refs) != 1 || refs[0] != source.NewRange(1, 15, 1, 17) {
		t.Fatalf("%%a refs = %+v", refs)
	}
}

func TestScanParamsBeforeParenthesizedAttributes(t *testing.T) {
	m, _ := scan(t,
		"define void @f(i32 %a) personality ptr bitcast (i32 (...)* @gxx to ptr) {",
		"  call void @use(i32 %a)",
		"  ret void",
		"}",
	)
	fn, _ := m.Function("@f")
	if got, ok := fn.Definition("%a"); !ok || got != pos(0, 19) {
		t.Fatalf("%%a defined at %+v ok=%v", got, ok)
	}
	if got := m.Global.UserKeys(); !reflect.DeepEqual(got, []string{"@gxx", "@use"}) {
		t.Fatalf("global users = %v", got)
	}
	if refs := fn.References("%a"); len(refs) != 1 || refs[0] != source.NewRange(1, 21, 1, 23) {
		t.Fatalf("%%a refs = %+v", refs)
	}
}

func TestScanLastDefinitionWins(t *testing.T) {
	m, _ := scan(t,
		"define void @f() {",
		"  %x = add i32 1, 2",
		"  %x = add i32 3, 4",
		"}",
	)
	fn, _ := m.Function("@f")
	if got, _ := fn.Definition("%x"); got != pos(2, 2) {
		t.Fatalf("expected the later definition, got %+v", got)
	}
}

func TestScanUnterminatedFunction(t *testing.T) {
	m, _ := scan(t,
		"define void @f() {",
		"entry:",
		"  ret void",
		"define void @g() {",
		"}",
	)
	f, _ := m.Function("@f")
	if f.Closed() {
		t.Fatal("@f has no closing brace")
	}
	g, _ := m.Function("@g")
	if g.LineStart != 3 || g.LineEnd != 4 {
		t.Fatalf("unexpected @g span [%d,%d]", g.LineStart, g.LineEnd)
	}
	if _, _, ok := m.FunctionAt(1); ok {
		t.Fatal("line inside an unterminated function must not resolve")
	}
	want := []symbols.FoldingRange{
		{StartLine: 1, EndLine: 2, Kind: symbols.FoldRegion},
		{StartLine: 3, EndLine: 4, Kind: symbols.FoldRegion},
	}
	if !reflect.DeepEqual(m.FoldingRanges, want) {
		t.Fatalf("folds = %+v, want %+v", m.FoldingRanges, want)
	}
}

func TestScanEscapedSpellingsMerge(t *testing.T) {
	m, doc := scan(t,
		`@"a\2eb" = global i32 0`,
		`define void @f() {`,
		`  store i32 1, i32* @a.b`,
		`  %v = load i32, i32* @"a\2eb"`,
		`}`,
	)
	if got, ok := m.Global.Definition("@a.b"); !ok || got != pos(0, 0) {
		t.Fatalf("@a.b defined at %+v ok=%v", got, ok)
	}
	refs := m.Global.References("@a.b")
	want := []source.Range{source.NewRange(2, 20, 2, 24), source.NewRange(3, 22, 3, 30)}
	if !reflect.DeepEqual(refs, want) {
		t.Fatalf("refs = %+v, want %+v", refs, want)
	}
	spellings := []string{"@a.b", `@"a\2eb"`}
	for i, r := range refs {
		if got := doc.Text(r); got != spellings[i] {
			t.Errorf("ref %d slices to %q, want %q", i, got, spellings[i])
		}
	}
}

func TestScanCommentsAndStrayLines(t *testing.T) {
	m, _ := scan(t,
		"; define void @commented() {",
		"}",
		"stray:",
		"  %y = add i32 1, 2 ; %z = 3",
	)
	if len(m.Functions) != 0 {
		t.Fatalf("unexpected functions %v", m.FunctionNames())
	}
	if len(m.FoldingRanges) != 0 {
		t.Fatalf("unexpected folds %+v", m.FoldingRanges)
	}
	if _, ok := m.Global.Definition("%y"); !ok {
		t.Fatal("local outside a function goes to the global table")
	}
	if _, ok := m.Global.Definition("%z"); ok {
		t.Fatal("comment text must be ignored")
	}
}

func TestScanTracesDocumentSpan(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	doc := source.NewDocument("mem://t.ll", 3, "define void @f() {\n}")
	Scan(trace.WithTracer(context.Background(), tr), doc)

	out := buf.String()
	for _, want := range []string{"→ scan", "• define (0)", "• close (1)", "← scan (mem://t.ll@3) {folds=1, functions=1, lines=2}"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output misses %q:\n%s", want, out)
		}
	}
}

func TestScanSpanRecordsParent(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDetail, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)
	parent := trace.Begin(tr, trace.ScopeServer, "request", 0)
	Scan(trace.WithSpan(ctx, parent), source.NewDocument("mem://p.ll", 1, "}"))
	parent.End("")

	// nested events are indented one level in text output
	if !strings.Contains(buf.String(), "]   → scan") {
		t.Fatalf("scan span not nested:\n%s", buf.String())
	}
}
