// Package driver indexes IR files from disk, in parallel, with an optional
// on-disk model cache.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"llvmls/internal/metrics"
	"llvmls/internal/scanner"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
	"llvmls/internal/trace"
)

// Options controls IndexPath.
type Options struct {
	Jobs       int        // <= 0 means GOMAXPROCS
	Extensions []string   // defaults to .ll
	Cache      *DiskCache // nil disables the disk cache
}

// FileResult is the outcome for one file. Err is set when the file could
// not be read; Doc and Model are nil then.
type FileResult struct {
	Path   string
	Doc    *source.Document
	Model  *symbols.Model
	Cached bool
	Err    error
}

// ListFiles returns root itself when it is a file, otherwise every file under
// root whose extension is in exts, sorted.
func ListFiles(root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	if len(exts) == 0 {
		exts = []string{".ll"}
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExt(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func hasExt(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// IndexPath indexes every matching file under root. Results keep the order
// of ListFiles. A file that cannot be read is reported in its FileResult and
// does not stop the others; only cancellation and listing errors are returned.
func IndexPath(ctx context.Context, root string, opts Options) ([]FileResult, error) {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeServer, "index", trace.ParentFromContext(ctx))
	defer span.End(root)

	files, err := ListFiles(root, opts.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}
	span.WithExtra("files", strconv.Itoa(len(files)))
	if len(files) == 0 {
		return nil, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine owns its index
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(trace.WithSpan(ctx, span))
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = IndexFile(gctx, path, opts.Cache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// IndexFile loads and indexes a single file, consulting cache first.
func IndexFile(ctx context.Context, path string, cache *DiskCache) FileResult {
	tr := trace.FromContext(ctx)
	doc, err := source.Load(path)
	if err != nil {
		trace.Errorf(tr, "load", "%s: %v", path, err)
		return FileResult{Path: path, Err: err}
	}

	key := Digest(doc.Hash())
	if cache != nil {
		var payload DiskPayload
		ok, err := cache.Get(key, &payload)
		switch {
		case err != nil:
			metrics.RecordDiskCache("error")
			trace.Errorf(tr, "disk cache", "%s: %v", path, err)
		case ok:
			metrics.RecordDiskCache("hit")
			trace.Point(tr, trace.ScopeDocument, "disk cache hit", path)
			return FileResult{Path: path, Doc: doc, Model: symbols.FromSnapshot(payload.Model), Cached: true}
		default:
			metrics.RecordDiskCache("miss")
		}
	}

	model := scanner.Scan(ctx, doc)
	if cache != nil {
		if err := cache.Put(key, &DiskPayload{Path: path, Model: model.Snapshot()}); err != nil {
			metrics.RecordDiskCache("error")
			trace.Errorf(tr, "disk cache", "%s: %v", path, err)
		} else {
			metrics.RecordDiskCache("write")
		}
	}
	return FileResult{Path: path, Doc: doc, Model: model}
}
