package query

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"llvmls/internal/scanner"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
)

var mainFn = []string{
	"define i32 @main() {",
	"entry:",
	"  %x = add i32 1, 2",
	"  br label %exit",
	"exit:",
	"  ret i32 %x",
	"}",
}

func build(t *testing.T, lines []string) (*symbols.Model, *source.Document) {
	t.Helper()
	doc := source.NewDocument("mem://q.ll", 1, strings.Join(lines, "\n"))
	return scanner.Scan(context.Background(), doc), doc
}

func at(line, col int) source.Position { return source.Position{Line: line, Col: col} }

func TestDefinitionLocal(t *testing.T) {
	m, doc := build(t, mainFn)
	link, ok := Definition(m, doc, at(5, 11))
	if !ok {
		t.Fatal("expected a definition for the local x")
	}
	if link.Target != source.NewRange(2, 2, 2, 4) {
		t.Fatalf("target = %+v", link.Target)
	}
	if link.Preview != source.NewRange(2, 0, 2, len(mainFn[2])) {
		t.Fatalf("preview = %+v", link.Preview)
	}
}

func TestQueriesIgnoreCommentText(t *testing.T) {
	lines := append([]string(nil), mainFn...)
	lines[3] = "  br label %exit ; jumps past %x"
	m, doc := build(t, lines)

	if link, ok := Definition(m, doc, at(3, 30)); ok {
		t.Fatalf("identifier in a comment resolved to %+v", link)
	}
	if refs := References(m, doc, at(3, 31)); len(refs) != 0 {
		t.Fatalf("identifier in a comment has references %+v", refs)
	}
	if link, ok := Definition(m, doc, at(3, 13)); !ok || link.Target.Start != at(4, 0) {
		t.Fatalf("code before the comment resolved to %+v ok=%v", link, ok)
	}
}

func TestDefinitionOfBranchTargetAndLabel(t *testing.T) {
	m, doc := build(t, mainFn)
	link, ok := Definition(m, doc, at(3, 13))
	if !ok || link.Target != source.NewRange(4, 0, 4, 4) {
		t.Fatalf("branch target resolved to %+v ok=%v", link, ok)
	}
	link, ok = Definition(m, doc, at(4, 2))
	if !ok || link.Target.Start != at(4, 0) {
		t.Fatalf("label resolved to %+v ok=%v", link, ok)
	}
}

func TestDefinitionGlobalAndMissing(t *testing.T) {
	lines := []string{
		`@"g\2e1" = global i32 0`,
		"define i32 @f() {",
		"  %v = load i32, i32* @g.1",
		"  %w = add i32 %nope, 1",
		"  ret i32 %v",
		"}",
	}
	m, doc := build(t, lines)
	link, ok := Definition(m, doc, at(2, 22))
	if !ok {
		t.Fatal("expected global definition")
	}
	if link.Target != source.NewRange(0, 0, 0, 8) {
		t.Fatalf("quoted target should cover the raw spelling, got %+v", link.Target)
	}
	if _, ok := Definition(m, doc, at(3, 16)); ok {
		t.Fatal("undefined local must not resolve")
	}
	if _, ok := Definition(m, doc, at(3, 5)); ok {
		t.Fatal("no token under cursor must not resolve")
	}
}

func TestDefinitionOutsideUnterminatedFunction(t *testing.T) {
	m, doc := build(t, []string{
		"define void @f() {",
		"  %x = add i32 1, 2",
		"  %y = add i32 %x, 1",
	})
	if _, ok := Definition(m, doc, at(2, 15)); ok {
		t.Fatal("locals of an unterminated function must not resolve")
	}
}

func TestReferences(t *testing.T) {
	m, doc := build(t, mainFn)

	got := References(m, doc, at(2, 3))
	if !reflect.DeepEqual(got, []source.Range{source.NewRange(5, 10, 5, 12)}) {
		t.Fatalf("%%x references = %+v", got)
	}

	got = References(m, doc, at(4, 1))
	if !reflect.DeepEqual(got, []source.Range{source.NewRange(3, 11, 3, 16)}) {
		t.Fatalf("label references = %+v", got)
	}

	got = References(m, doc, at(0, 13))
	if got == nil || len(got) != 0 {
		t.Fatalf("@main has no uses, want empty non-nil, got %#v", got)
	}

	got = References(m, doc, at(3, 5))
	if got == nil || len(got) != 0 {
		t.Fatalf("no token must give empty non-nil, got %#v", got)
	}
}

func TestReferencesGlobalFromFunction(t *testing.T) {
	m, doc := build(t, []string{
		"@g = global i32 0",
		"define i32 @f() {",
		"  %v = load i32, i32* @g",
		"  ret i32 %v",
		"}",
	})
	got := References(m, doc, at(2, 23))
	if !reflect.DeepEqual(got, []source.Range{source.NewRange(2, 22, 2, 24)}) {
		t.Fatalf("@g references = %+v", got)
	}
}

func TestFoldingRangesAndFunctionAt(t *testing.T) {
	m, _ := build(t, mainFn)
	if !reflect.DeepEqual(FoldingRanges(m), m.FoldingRanges) || len(FoldingRanges(m)) != 3 {
		t.Fatalf("folding ranges = %+v", FoldingRanges(m))
	}
	name, fn, ok := FunctionAt(m, 3)
	if !ok || name != "@main" || fn.LineEnd != 6 {
		t.Fatalf("FunctionAt(3) = %q %+v %v", name, fn, ok)
	}
	if _, _, ok := FunctionAt(m, 7); ok {
		t.Fatal("line past the function must not resolve")
	}
}
