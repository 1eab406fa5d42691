package registry

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/cache"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/integrations"
)

// maxFallbackVersions bounds the graph fallback search over recent releases.
const maxFallbackVersions = 10

// Strategy identifies which degradation step produced a dependency graph.
type Strategy string

// Ordered degradation strategies for graph retrieval.
const (
	// StrategyExact means the graph for the originally resolved version was used.
	StrategyExact Strategy = "exact"
	// StrategyRecentVersion means the graph of a more recent release was
	// adopted after the resolved version's graph was unavailable.
	StrategyRecentVersion Strategy = "recent-version"
	// StrategyRootOnly means no graph could be retrieved; analysis covers
	// the root package alone.
	StrategyRootOnly Strategy = "root-only"
)

// Resolution records the outcome of the graph degradation chain:
// which strategy succeeded and the version the analysis proceeds with.
type Resolution struct {
	Strategy     Strategy `json:"strategy"`
	Version      string   `json:"version"`
	FallbackUsed bool     `json:"fallback_used"`
}

// Config configures a Source. Zero values select the public endpoints,
// a null cache, and the default logger.
type Config struct {
	RegistryURL string
	GraphURL    string
	Cache       cache.Cache
	TTL         time.Duration
	Logger      *log.Logger
}

// Source exposes the three registry lookups the analysis engine needs:
// package metadata, version metadata, and resolved dependency graphs.
// Every lookup returns nil on not-found; transport failures are logged
// and also yield nil, never an error to the caller.
type Source struct {
	registry    *integrations.Client
	graph       *integrations.Client
	registryURL string
	graphURL    string
	logger      *log.Logger
}

// NewSource creates a Source from cfg.
func NewSource(cfg Config) *Source {
	if cfg.RegistryURL == "" {
		cfg.RegistryURL = DefaultRegistryURL
	}
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Source{
		registry:    integrations.NewClient(cfg.Cache, "npm", cfg.TTL, nil),
		graph:       integrations.NewClient(cfg.Cache, "depsdev", cfg.TTL, nil),
		registryURL: cfg.RegistryURL,
		graphURL:    cfg.GraphURL,
		logger:      cfg.Logger,
	}
}

// PackageInfo looks up package-level metadata. Returns nil when the
// registry reports not-found or the lookup fails.
func (s *Source) PackageInfo(ctx context.Context, name string) *PackageInfo {
	info, err := s.fetchPackage(ctx, name)
	if err != nil {
		s.logLookupFailure("package metadata", name, "", err)
		return nil
	}
	return info
}

// VersionInfo looks up version-level metadata for an exact release.
// Returns nil on not-found or failure.
func (s *Source) VersionInfo(ctx context.Context, name, version string) *VersionInfo {
	info, err := s.fetchVersion(ctx, name, version)
	if err != nil {
		s.logLookupFailure("version metadata", name, version, err)
		return nil
	}
	return info
}

// DependencyGraph looks up the resolved transitive graph for an exact
// release. Returns nil on not-found or failure.
func (s *Source) DependencyGraph(ctx context.Context, name, version string) *Graph {
	g, err := s.fetchGraph(ctx, name, version)
	if err != nil {
		s.logLookupFailure("dependency graph", name, version, err)
		return nil
	}
	return g
}

// ResolveGraph walks the ordered degradation chain for graph retrieval:
// the exact resolved version first, then the graph endpoint for up to
// ten of the most recently published versions (excluding the one already
// tried), adopting the first that succeeds. When every step fails the
// returned graph is nil and the Resolution records root-only analysis.
func (s *Source) ResolveGraph(ctx context.Context, name, version string, info *PackageInfo) (*Graph, Resolution) {
	if g := s.DependencyGraph(ctx, name, version); g != nil {
		return g, Resolution{Strategy: StrategyExact, Version: version}
	}

	for _, candidate := range fallbackCandidates(info, version) {
		if g := s.DependencyGraph(ctx, name, candidate); g != nil {
			s.logger.Warn("dependency graph unavailable for resolved version, adopting recent release",
				"package", name, "resolved", version, "adopted", candidate)
			return g, Resolution{Strategy: StrategyRecentVersion, Version: candidate, FallbackUsed: true}
		}
	}

	s.logger.Warn("dependency graph unavailable, degrading to root-only analysis",
		"package", name, "version", version)
	return nil, Resolution{Strategy: StrategyRootOnly, Version: version, FallbackUsed: true}
}

// fallbackCandidates returns up to maxFallbackVersions versions sorted
// by publish date descending, excluding the version already tried.
func fallbackCandidates(info *PackageInfo, tried string) []string {
	if info == nil {
		return nil
	}

	releases := make([]Release, 0, len(info.Releases))
	for _, r := range info.Releases {
		if r.Version != tried {
			releases = append(releases, r)
		}
	}
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].PublishedAt.After(releases[j].PublishedAt)
	})

	if len(releases) > maxFallbackVersions {
		releases = releases[:maxFallbackVersions]
	}
	out := make([]string, len(releases))
	for i, r := range releases {
		out[i] = r.Version
	}
	return out
}

func (s *Source) logLookupFailure(kind, name, version string, err error) {
	fields := []any{"package", name, "error", err}
	if version != "" {
		fields = append(fields, "version", version)
	}
	if errors.Is(err, integrations.ErrNotFound) {
		s.logger.Debug(kind+" not found", fields...)
		return
	}
	s.logger.Warn(kind+" lookup failed", fields...)
}
