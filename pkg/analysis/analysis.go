// Package analysis orchestrates the full per-project pipeline: version
// resolution, graph retrieval with fallback, batched vulnerability
// lookups, and scoring, aggregated into one report.
package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/manifest"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/registry"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/resolve"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/score"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/vuln"
)

// DefaultConcurrency bounds how many dependencies are analyzed at once.
const DefaultConcurrency = 5

// PackageAnalysis is the full result for one declared dependency.
type PackageAnalysis struct {
	Name            string                   `json:"name"`
	Constraint      string                   `json:"constraint"`
	Kind            manifest.Kind            `json:"kind"`
	ResolvedVersion string                   `json:"resolved_version,omitempty"`
	GraphStrategy   registry.Strategy        `json:"graph_strategy"`
	FallbackUsed    bool                     `json:"fallback_used"`
	TreeSize        int                      `json:"tree_size"`
	CVE             score.CVEMetrics         `json:"cve"`
	Maintenance     score.MaintenanceMetrics `json:"maintenance"`
	Complexity      score.ComplexityMetrics  `json:"complexity"`
	Composite       score.CompositeScore     `json:"composite"`
}

// Result is one complete analysis run over a project manifest.
type Result struct {
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Project     string                `json:"project,omitempty"`
	Shallow     bool                  `json:"shallow"`
	Packages    []PackageAnalysis     `json:"packages"`
	Summary     *score.ProjectSummary `json:"summary"`
}

// Options configure an Analyzer. Zero values select defaults.
type Options struct {
	Source      *registry.Source
	Fetcher     *vuln.Fetcher
	Logger      *log.Logger
	Concurrency int
	Shallow     bool
	Now         func() time.Time
}

// Analyzer runs the analysis pipeline over declared dependencies.
type Analyzer struct {
	source      *registry.Source
	fetcher     *vuln.Fetcher
	logger      *log.Logger
	concurrency int
	shallow     bool
	now         func() time.Time
}

// New creates an Analyzer from opts. Source and Fetcher are required.
func New(opts Options) *Analyzer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Analyzer{
		source:      opts.Source,
		fetcher:     opts.Fetcher,
		logger:      opts.Logger,
		concurrency: opts.Concurrency,
		shallow:     opts.Shallow,
		now:         opts.Now,
	}
}

// AnalyzeProject runs the pipeline over every declared dependency.
// Dependencies are processed in sequential batches of the concurrency
// limit with one shared run cache, and results keep declaration order.
func (a *Analyzer) AnalyzeProject(ctx context.Context, m *manifest.Manifest) *Result {
	result := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: a.now(),
		Project:     m.Name,
		Shallow:     a.shallow,
		Packages:    make([]PackageAnalysis, len(m.Dependencies)),
	}

	rc := vuln.NewRunCache()
	deps := m.Dependencies

	for start := 0; start < len(deps); start += a.concurrency {
		end := min(start+a.concurrency, len(deps))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result.Packages[i] = a.analyzeDependency(ctx, deps[i], rc)
			}()
		}
		wg.Wait()
	}

	result.Summary = score.Summarize(ratings(result.Packages))
	return result
}

// AnalyzePackage runs the pipeline for a single dependency with a fresh
// run cache.
func (a *Analyzer) AnalyzePackage(ctx context.Context, dep manifest.DeclaredDependency) PackageAnalysis {
	return a.analyzeDependency(ctx, dep, vuln.NewRunCache())
}

func (a *Analyzer) analyzeDependency(ctx context.Context, dep manifest.DeclaredDependency, rc *vuln.RunCache) PackageAnalysis {
	pa := PackageAnalysis{
		Name:          dep.Name,
		Constraint:    dep.Constraint,
		Kind:          dep.Kind,
		GraphStrategy: registry.StrategyRootOnly,
	}

	info := a.source.PackageInfo(ctx, dep.Name)

	resolved, err := resolve.Version(dep.Constraint, info.Versions())
	if err != nil {
		a.logger.Warn("version resolution failed, analysing package without a dependency graph",
			"package", dep.Name, "constraint", dep.Constraint, "error", err)
		pa.FallbackUsed = true
	} else {
		pa.ResolvedVersion = resolved
	}

	var graph *registry.Graph
	var versionInfo *registry.VersionInfo
	if resolved != "" {
		versionInfo = a.source.VersionInfo(ctx, dep.Name, resolved)
		if !a.shallow {
			var res registry.Resolution
			graph, res = a.source.ResolveGraph(ctx, dep.Name, resolved, info)
			pa.GraphStrategy = res.Strategy
			pa.FallbackUsed = res.FallbackUsed
			pa.ResolvedVersion = res.Version
		}
	}

	names := graph.PackageNames()
	if len(names) == 0 {
		names = []string{dep.Name}
	}
	pa.TreeSize = len(names)

	byPackage := a.fetcher.QueryBatch(ctx, names, rc)
	findings := vuln.Dedupe(names, byPackage)

	pa.CVE = score.CVE(findings)
	pa.Maintenance = score.Maintenance(info, a.now())
	pa.Complexity = score.Complexity(versionInfo, graphOverrides(graph))
	pa.Composite = score.Composite(pa.CVE, pa.Maintenance, pa.Complexity)
	return pa
}

// graphOverrides derives real dependency counts from a resolved graph:
// the total is every unique non-root node, the direct count is the
// number of DIRECT-tagged nodes when the graph reports any.
func graphOverrides(g *registry.Graph) score.ComplexityOverrides {
	if g == nil {
		return score.ComplexityOverrides{}
	}

	total, direct := 0, 0
	for _, n := range g.UniqueNodes() {
		switch n.Relation {
		case registry.RelationSelf:
			continue
		case registry.RelationDirect:
			direct++
		}
		total++
	}

	o := score.ComplexityOverrides{Total: &total}
	if direct > 0 {
		o.Direct = &direct
	}
	return o
}

func ratings(packages []PackageAnalysis) []score.PackageRating {
	out := make([]score.PackageRating, len(packages))
	for i, p := range packages {
		out[i] = score.PackageRating{
			Name:         p.Name,
			Version:      p.ResolvedVersion,
			TotalScore:   p.Composite.TotalScore,
			RiskLevel:    p.Composite.RiskLevel,
			Hours:        p.Composite.EstimatedAnnualMaintenanceHours,
			TotalCVEs:    p.CVE.TotalCVEs,
			CriticalCVEs: p.CVE.BySeverity[score.SeverityCritical],
		}
	}
	return out
}
