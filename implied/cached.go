package implied

import (
	"time"

	fsh "github.com/gofhir/shorthand"
	"github.com/gofhir/shorthand/cache"
	"github.com/gofhir/shorthand/fhirdefs"
	"github.com/gofhir/shorthand/issue"
)

// materialized is a memoized materialization outcome. Failures are
// remembered too so a bad URL is diagnosed once per cache lifetime
// rather than re-walked on every lookup.
type materialized struct {
	sd     *fhirdefs.StructureDefinition
	issues []issue.Issue
}

// CachedMaterializer wraps a Materializer with an LRU memo keyed by
// extension URL. Cache hits return a fresh clone and replay the
// diagnostics recorded when the entry was built.
type CachedMaterializer struct {
	inner   *Materializer
	cache   *cache.Cache[string, materialized]
	metrics *fsh.Metrics
}

// NewCachedMaterializer creates a CachedMaterializer holding at most
// capacity memoized outcomes.
func NewCachedMaterializer(capacity int) *CachedMaterializer {
	return &CachedMaterializer{
		inner: NewMaterializer(),
		cache: cache.New[string, materialized](capacity),
	}
}

// SetMetrics attaches an optional metrics collector.
func (c *CachedMaterializer) SetMetrics(m *fsh.Metrics) {
	c.metrics = m
}

// CacheStats returns statistics for the underlying memo.
func (c *CachedMaterializer) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// ClearCache drops all memoized outcomes.
func (c *CachedMaterializer) ClearCache() {
	c.cache.Clear()
}

// IsImpliedExtension implements fhirdefs.ExtensionFactory.
func (c *CachedMaterializer) IsImpliedExtension(url string) bool {
	return c.inner.IsImpliedExtension(url)
}

// Materialize implements fhirdefs.ExtensionFactory with memoization.
func (c *CachedMaterializer) Materialize(url string, defs *fhirdefs.Registry, result *issue.Result) *fhirdefs.StructureDefinition {
	if entry, ok := c.cache.Get(url); ok {
		c.metrics.RecordCacheHit()
		replay(result, entry.issues)
		if entry.sd == nil {
			return nil
		}
		return entry.sd.Clone()
	}
	c.metrics.RecordCacheMiss()

	scratch := issue.NewResult()
	start := time.Now()
	sd := c.inner.Materialize(url, defs, scratch)
	c.metrics.RecordMaterialization(sd != nil, time.Since(start))

	c.cache.Set(url, materialized{sd: sd, issues: scratch.Issues})
	replay(result, scratch.Issues)
	if sd == nil {
		return nil
	}
	return sd.Clone()
}

func replay(result *issue.Result, issues []issue.Issue) {
	if result == nil {
		return
	}
	result.Issues = append(result.Issues, issues...)
}

var _ fhirdefs.ExtensionFactory = (*CachedMaterializer)(nil)
