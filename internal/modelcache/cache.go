// Package modelcache memoizes one symbols.Model per document, keyed by URI
// and rebuilt whenever the document version changes.
package modelcache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"llvmls/internal/metrics"
	"llvmls/internal/scanner"
	"llvmls/internal/source"
	"llvmls/internal/symbols"
	"llvmls/internal/trace"
)

type cached struct {
	version int
	model   *symbols.Model
}

// Cache is safe for concurrent use. Models are installed whole, so a reader
// either sees the previous model or the new one.
type Cache struct {
	mu    sync.RWMutex
	byURI map[string]cached
}

// New creates a Cache with the given capacity hint.
func New(capHint int) *Cache {
	return &Cache{byURI: make(map[string]cached, capHint)}
}

// Get returns the model for src, scanning it when the cached entry is missing
// or was built from another version.
func (c *Cache) Get(ctx context.Context, src source.TextSource) *symbols.Model {
	uri, version := src.URI(), src.Version()

	c.mu.RLock()
	rec, ok := c.byURI[uri]
	c.mu.RUnlock()
	if ok && rec.version == version {
		metrics.RecordLookup(true)
		return rec.model
	}
	metrics.RecordLookup(false)

	tr := trace.FromContext(ctx)
	trace.Point(tr, trace.ScopeDocument, "cache miss", uri+"@"+strconv.Itoa(version))

	start := time.Now()
	model := scanner.Scan(ctx, src)
	metrics.RecordScan(src.LineCount(), time.Since(start).Seconds())

	c.mu.Lock()
	c.byURI[uri] = cached{version: version, model: model}
	n := len(c.byURI)
	c.mu.Unlock()
	metrics.SetCachedDocuments(n)
	return model
}

// Evict drops the entry for uri. The next Get rescans.
func (c *Cache) Evict(uri string) {
	c.mu.Lock()
	delete(c.byURI, uri)
	n := len(c.byURI)
	c.mu.Unlock()
	metrics.SetCachedDocuments(n)
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byURI)
}
