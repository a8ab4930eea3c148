package driver

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleIR = `@g = global i32 0

define i32 @main() {
entry:
  %v = load i32, i32* @g
  ret i32 %v
}
`

func writeIR(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestListFiles(t *testing.T) {
	root := t.TempDir()
	writeIR(t, filepath.Join(root, "b.ll"), "")
	writeIR(t, filepath.Join(root, "sub", "a.ll"), "")
	writeIR(t, filepath.Join(root, "notes.txt"), "")
	writeIR(t, filepath.Join(root, ".git", "x.ll"), "")

	got, err := ListFiles(root, nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{filepath.Join(root, "b.ll"), filepath.Join(root, "sub", "a.ll")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ListFiles = %v, want %v", got, want)
	}

	single := filepath.Join(root, "notes.txt")
	if got, err := ListFiles(single, nil); err != nil || len(got) != 1 || got[0] != single {
		t.Fatalf("a file argument is returned as is, got %v err=%v", got, err)
	}
}

func TestIndexPathKeepsOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c.ll", "a.ll", "b.ll"} {
		writeIR(t, filepath.Join(root, name), sampleIR)
	}

	results, err := IndexPath(context.Background(), root, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("IndexPath: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, name := range []string{"a.ll", "b.ll", "c.ll"} {
		r := results[i]
		if filepath.Base(r.Path) != name || r.Err != nil {
			t.Fatalf("result %d = %s err=%v", i, r.Path, r.Err)
		}
		if _, ok := r.Model.Function("@main"); !ok {
			t.Fatalf("%s: @main missing", name)
		}
	}
}

func TestIndexPathWithDiskCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "m.ll")
	writeIR(t, path, sampleIR)
	cache, err := OpenDiskCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	first := IndexFile(context.Background(), path, cache)
	if first.Err != nil || first.Cached {
		t.Fatalf("first run: cached=%v err=%v", first.Cached, first.Err)
	}
	second := IndexFile(context.Background(), path, cache)
	if !second.Cached {
		t.Fatal("second run should hit the disk cache")
	}
	if !reflect.DeepEqual(second.Model.Snapshot(), first.Model.Snapshot()) {
		t.Fatal("cached model differs from the scanned one")
	}

	writeIR(t, path, sampleIR+"\ndeclare void @extra()\n")
	third := IndexFile(context.Background(), path, cache)
	if third.Cached {
		t.Fatal("changed content must miss")
	}
	if _, ok := third.Model.Global.Definition("@extra"); !ok {
		t.Fatal("rescanned model misses @extra")
	}
}

func TestIndexFileMissing(t *testing.T) {
	r := IndexFile(context.Background(), filepath.Join(t.TempDir(), "none.ll"), nil)
	if r.Err == nil || r.Model != nil {
		t.Fatalf("expected a load error, got %+v", r)
	}
}

func TestDiskCacheRoundTripAndSchema(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	var k1, k2 Digest
	k1[0], k2[0] = 1, 2

	var out DiskPayload
	if ok, err := cache.Get(k1, &out); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := cache.Put(k1, &DiskPayload{Path: "x.ll"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ok, err := cache.Get(k1, &out); !ok || err != nil || out.Path != "x.ll" || out.Schema != diskCacheSchemaVersion {
		t.Fatalf("Get: ok=%v err=%v out=%+v", ok, err, out)
	}
	if ok, _ := cache.Get(k2, &out); ok {
		t.Fatal("different digest must miss")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if ok, _ := cache.Get(k1, &out); ok {
		t.Fatal("entry survived DropAll")
	}
}
