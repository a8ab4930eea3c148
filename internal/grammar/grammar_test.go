package grammar

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "@main", want: "@main"},
		{raw: "%0", want: "%0"},
		{raw: `@"quoted name"`, want: "@quoted name"},
		{raw: `%"a\2eb"`, want: "%a.b"},
		{raw: `@a\2eb`, want: "@a.b"},
		{raw: `@"\41\42\43"`, want: "@ABC"},
		{raw: `@"bad\4"`, want: `@bad\4`},
		{raw: "#1", want: "#1"},
		{raw: "!dbg", want: "!dbg"},
		{raw: "@", want: "@"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"@main", `@"x y"`, "%entry", `%"a\2eb"`, "!12", "#0"} {
		once := Normalize(raw)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeEscapedEqualsLiteral(t *testing.T) {
	if Normalize(`@a\2eb`) != Normalize("@a.b") {
		t.Fatalf("escaped and literal spellings differ: %q vs %q", Normalize(`@a\2eb`), Normalize("@a.b"))
	}
	if Normalize(`@"a\2eb"`) != Normalize("@a.b") {
		t.Fatal("quoted escaped spelling should match the literal one")
	}
}

func TestLabelKey(t *testing.T) {
	if got := LabelKey("entry:"); got != "%entry" {
		t.Fatalf("LabelKey(entry:) = %q", got)
	}
	if got := LabelKey("42"); got != "%42" {
		t.Fatalf("LabelKey(42) = %q", got)
	}
	if RemoveTrailing("loop", ":") != "loop" {
		t.Fatal("RemoveTrailing must leave strings without the suffix untouched")
	}
}

func TestIsLocal(t *testing.T) {
	if !IsLocal("%x") || IsLocal("@x") || IsLocal("") {
		t.Fatal("IsLocal misclassified a key")
	}
}

func TestValueOrUse(t *testing.T) {
	got := ValueOrUse("  %x = add i32 %a, %b")
	want := []Match{
		{Start: 2, Text: "%x", Definition: true},
		{Start: 15, Text: "%a"},
		{Start: 19, Text: "%b"},
	}
	assertMatches(t, got, want)
}

func TestValueOrUseMixedClasses(t *testing.T) {
	got := ValueOrUse(`@g = global %struct.T* @"h i", !dbg !7 #3`)
	want := []Match{
		{Start: 0, Text: "@g", Definition: true},
		{Start: 12, Text: "%struct.T"},
		{Start: 23, Text: `@"h i"`},
		{Start: 31, Text: "!dbg"},
		{Start: 36, Text: "!7"},
		{Start: 39, Text: "#3"},
	}
	assertMatches(t, got, want)
}

func TestValueOrUseNone(t *testing.T) {
	if got := ValueOrUse("  ret void"); got != nil {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestArguments(t *testing.T) {
	args := "i32 %argc, i8** %argv, %struct.S* byval(%struct.S) %s"
	got := Arguments(args)
	want := []Match{
		{Start: 4, Text: "%argc", Definition: true},
		{Start: 16, Text: "%argv", Definition: true},
		{Start: 51, Text: "%s", Definition: true},
	}
	assertMatches(t, got, want)
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  ret void ; done", want: "  ret void "},
		{in: "; whole line", want: ""},
		{in: `@s = constant [3 x i8] c"a;b" ; tail`, want: `@s = constant [3 x i8] c"a;b" `},
		{in: "no comment", want: "no comment"},
	}
	for _, tt := range tests {
		if got := StripComment(tt.in); got != tt.want {
			t.Errorf("StripComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		kind Kind
	}{
		{line: "define i32 @main(i32 %argc) #0 {", kind: KindDefine},
		{line: "entry:", kind: KindLabel},
		{line: "42:                    ; preds = %1", kind: KindLabel},
		{line: "  }  ", kind: KindClose},
		{line: "declare i32 @printf(i8*, ...)", kind: KindDeclare},
		{line: "  %x = add i32 1, 2", kind: KindPlain},
		{line: "  } ; end of function", kind: KindClose},
		{line: "; define i32 @hidden() {", kind: KindPlain},
		{line: "declare i32 @nope", kind: KindPlain},
	}
	for _, tt := range tests {
		if got := Classify(tt.line); got.Kind != tt.kind {
			t.Errorf("Classify(%q) = %s, want %s", tt.line, got.Kind, tt.kind)
		}
	}
}

func TestClassifyPriority(t *testing.T) {
	// Both lines also match the label pattern; define outranks it, and a
	// label outranks declare.
	if got := Classify("define: @f() {"); got.Kind != KindDefine {
		t.Fatalf("define should win over label, got %s", got.Kind)
	}
	if got := Classify("declare: @f()"); got.Kind != KindLabel {
		t.Fatalf("label should win over declare, got %s", got.Kind)
	}
}

func TestClassifyDefineCaptures(t *testing.T) {
	line := "define i32 @main(i32 %argc, i8** %argv) #0 !dbg !5 {"
	got := Classify(line)
	if got.FuncID.Text != "@main" || got.FuncID.Start != 11 {
		t.Fatalf("unexpected funcid %+v", got.FuncID)
	}
	if got.Args.Text != "i32 %argc, i8** %argv" || got.Args.Start != 17 {
		t.Fatalf("unexpected args %+v", got.Args)
	}
	if got.FuncMeta.Text != " #0 !dbg !5 {" || got.FuncMeta.Start != 39 {
		t.Fatalf("unexpected funcmeta %+v", got.FuncMeta)
	}
}

func TestClassifyDefineStopsAtMatchingParen(t *testing.T) {
	line := "define void @f(i32 %a) personality ptr bitcast (i32 (...)* @gxx to ptr) {"
	got := Classify(line)
	if got.Kind != KindDefine || got.FuncID.Text != "@f" {
		t.Fatalf("unexpected classification %+v", got)
	}
	if got.Args.Text != "i32 %a" || got.Args.Start != 15 {
		t.Fatalf("unexpected args %+v", got.Args)
	}
	if got.FuncMeta.Start != 22 || got.FuncMeta.Text != line[22:] {
		t.Fatalf("unexpected funcmeta %+v", got.FuncMeta)
	}

	nested := Classify("define void @g(void (i32)* %cb, i32 %n) {")
	if nested.Args.Text != "void (i32)* %cb, i32 %n" {
		t.Fatalf("nested parens cut the parameter list: %q", nested.Args.Text)
	}
	quoted := Classify(`define void @"a)b"(i32 %x) {`)
	if quoted.FuncID.Text != `@"a)b"` || quoted.Args.Text != "i32 %x" {
		t.Fatalf("quoted name: funcid %q args %q", quoted.FuncID.Text, quoted.Args.Text)
	}
	if got := Classify("define void @h(i32 %a"); got.Kind == KindDefine {
		t.Fatal("a define without a closing paren must not classify as define")
	}
}

func TestClassifyDeclareAndLabelCaptures(t *testing.T) {
	decl := Classify("declare i32 @printf(i8*, ...)")
	if decl.FuncID.Text != "@printf" || decl.FuncID.Start != 12 {
		t.Fatalf("unexpected declare funcid %+v", decl.FuncID)
	}
	label := Classify("loop.body:  ; preds")
	if label.Label.Text != "loop.body" || label.Label.Start != 0 {
		t.Fatalf("unexpected label %+v", label.Label)
	}
}

func TestIdentifierPattern(t *testing.T) {
	for _, s := range []string{"@main", "%1", "#0", "!dbg", "!12", `@"x y"`, "%a.b-c$"} {
		if loc := Identifier.FindStringIndex(s); loc == nil || loc[0] != 0 || loc[1] != len(s) {
			t.Errorf("Identifier should match %q fully, got %v", s, loc)
		}
	}
	for _, s := range []string{"main", "#x", "i32"} {
		if Identifier.MatchString(s) {
			t.Errorf("Identifier should not match %q", s)
		}
	}
}

func assertMatches(t *testing.T, got, want []Match) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d matches, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
