// Package vuln queries vulnerability findings for npm packages and fans
// the lookups out across a dependency tree under a bounded concurrency
// limit, with a cache shared across one analysis run.
package vuln

import (
	"context"
	"sync"
	"time"
)

// Finding is one vulnerability advisory affecting a package, normalized
// from the registry's wire shape at the boundary. Severity carries an
// explicit category when the source provides one; CVSSScore carries a
// numeric CVSS v3 base score needing bucketing otherwise. Either or both
// may be absent.
type Finding struct {
	ID        string     `json:"id,omitempty"`
	Published *time.Time `json:"published,omitempty"`
	Severity  string     `json:"severity,omitempty"`
	CVSSScore *float64   `json:"cvss_score,omitempty"`
}

// Source queries a vulnerability registry for one package name.
type Source interface {
	Query(ctx context.Context, name string) ([]Finding, error)
}

// RunCache holds per-package finding lists for the duration of exactly
// one project analysis. It is keyed purely by package name: findings
// fetched for one resolved version are reused when the same name
// reappears elsewhere in a tree at a different version. That coarseness
// is deliberate; the upstream APIs return version-agnostic findings.
//
// Once a name is present it is never re-queried for the rest of the run.
type RunCache struct {
	mu       sync.Mutex
	findings map[string][]Finding
}

// NewRunCache creates an empty run-scoped cache. Construct one per
// analysis run and thread it through every fetch call.
func NewRunCache() *RunCache {
	return &RunCache{findings: make(map[string][]Finding)}
}

// Lookup returns the cached findings for name, if present. An explicit
// empty list is a valid cached value.
func (c *RunCache) Lookup(name string) ([]Finding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fs, ok := c.findings[name]
	return fs, ok
}

// Store records the findings for name.
func (c *RunCache) Store(name string, findings []Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if findings == nil {
		findings = []Finding{}
	}
	c.findings[name] = findings
}

// Len reports how many package names the cache holds.
func (c *RunCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.findings)
}
