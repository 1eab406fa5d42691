// Package registry retrieves package metadata and resolved dependency
// graphs for npm packages.
//
// Package-level and version-level metadata come from the npm registry;
// the resolved transitive graph comes from the deps.dev API. All lookups
// are tolerant of "not found": a missing package yields nil rather than
// an error, and transport failures are logged and degraded to nil so one
// unreachable package never aborts a project analysis.
package registry

import (
	"time"
)

// Release is one published version of a package.
type Release struct {
	Version     string    `json:"version"`
	PublishedAt time.Time `json:"published_at"`
}

// PackageInfo is package-level registry metadata: every known version
// with its publish timestamp, ordered oldest first.
type PackageInfo struct {
	Name     string    `json:"name"`
	Latest   string    `json:"latest,omitempty"`
	Releases []Release `json:"releases"`
}

// Versions returns all published version strings, oldest first.
func (p *PackageInfo) Versions() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.Releases))
	for i, r := range p.Releases {
		out[i] = r.Version
	}
	return out
}

// Newest returns the most recently published release.
func (p *PackageInfo) Newest() (Release, bool) {
	if p == nil || len(p.Releases) == 0 {
		return Release{}, false
	}
	newest := p.Releases[0]
	for _, r := range p.Releases[1:] {
		if r.PublishedAt.After(newest.PublishedAt) {
			newest = r
		}
	}
	return newest, true
}

// VersionInfo is version-level registry metadata: the direct dependency
// names a specific release declares.
type VersionInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Dependencies []string `json:"dependencies"`
}

// Relation tags how a graph node relates to the root package.
type Relation string

// Relation values as reported by the dependency graph endpoint.
const (
	RelationSelf     Relation = "SELF"
	RelationDirect   Relation = "DIRECT"
	RelationIndirect Relation = "INDIRECT"
	RelationUnknown  Relation = "UNKNOWN"
)

// ParseRelation maps a raw relation tag to a known Relation,
// defaulting to RelationUnknown.
func ParseRelation(raw string) Relation {
	switch Relation(raw) {
	case RelationSelf, RelationDirect, RelationIndirect:
		return Relation(raw)
	default:
		return RelationUnknown
	}
}

// Node is one package in a resolved dependency graph.
type Node struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Relation Relation `json:"relation"`
}

// Graph is the resolved transitive dependency graph for one release.
type Graph struct {
	Nodes []Node `json:"nodes"`
}

// UniqueNodes deduplicates the graph's nodes by (name, version),
// keeping the first occurrence in node order regardless of its relation
// tag. Nodes missing a name or version are skipped. Safe on a nil graph.
func (g *Graph) UniqueNodes() []Node {
	if g == nil || len(g.Nodes) == 0 {
		return nil
	}

	type key struct{ name, version string }
	seen := make(map[key]bool, len(g.Nodes))
	out := make([]Node, 0, len(g.Nodes))

	for _, n := range g.Nodes {
		if n.Name == "" || n.Version == "" {
			continue
		}
		k := key{n.Name, n.Version}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, n)
	}
	return out
}

// PackageNames returns the unique package names among the graph's
// unique nodes, in node order. Safe on a nil graph.
func (g *Graph) PackageNames() []string {
	nodes := g.UniqueNodes()
	seen := make(map[string]bool, len(nodes))
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		out = append(out, n.Name)
	}
	return out
}
