package score

import (
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/registry"
)

// transitiveEstimateFactor approximates the transitive count from the
// declared direct count when no real graph total is known yet.
const transitiveEstimateFactor = 15

// ComplexityLevel categorizes dependency-tree size.
type ComplexityLevel string

// Complexity levels by total dependency count.
const (
	ComplexityVeryHigh ComplexityLevel = "very high" // > 500
	ComplexityHigh     ComplexityLevel = "high"      // > 200
	ComplexityModerate ComplexityLevel = "moderate"  // > 50
	ComplexityLow      ComplexityLevel = "low"
)

// ComplexityMetrics captures dependency-tree complexity.
type ComplexityMetrics struct {
	Score               float64         `json:"score"`
	DirectDependencies  int             `json:"direct_dependencies"`
	TotalDependencies   int             `json:"total_dependencies"`
	ComplexityLevel     ComplexityLevel `json:"complexity_level"`
	TotalIsGraphDerived bool            `json:"total_is_graph_derived"`
}

// ComplexityOverrides supply real graph-derived counts when available,
// replacing the declared count and the transitive estimate.
type ComplexityOverrides struct {
	Direct *int
	Total  *int
}

// Complexity scores dependency-tree size from version-level metadata,
// honoring overrides. No input and no overrides yields a perfect score
// with zero counts.
func Complexity(info *registry.VersionInfo, o ComplexityOverrides) ComplexityMetrics {
	m := ComplexityMetrics{Score: 100, ComplexityLevel: ComplexityLow}
	if info == nil && o.Direct == nil && o.Total == nil {
		return m
	}

	if o.Direct != nil {
		m.DirectDependencies = *o.Direct
	} else if info != nil {
		m.DirectDependencies = len(info.Dependencies)
	}

	if o.Total != nil {
		m.TotalDependencies = *o.Total
		m.TotalIsGraphDerived = true
	} else {
		m.TotalDependencies = m.DirectDependencies * transitiveEstimateFactor
	}

	score := 100.0
	switch {
	case m.TotalDependencies > 500:
		score -= 50
	case m.TotalDependencies > 200:
		score -= 35
	case m.TotalDependencies > 100:
		score -= 20
	case m.TotalDependencies > 50:
		score -= 10
	}
	switch {
	case m.DirectDependencies > 50:
		score -= 20
	case m.DirectDependencies > 30:
		score -= 15
	case m.DirectDependencies > 15:
		score -= 10
	case m.DirectDependencies > 5:
		score -= 5
	}
	m.Score = clamp(score)

	switch {
	case m.TotalDependencies > 500:
		m.ComplexityLevel = ComplexityVeryHigh
	case m.TotalDependencies > 200:
		m.ComplexityLevel = ComplexityHigh
	case m.TotalDependencies > 50:
		m.ComplexityLevel = ComplexityModerate
	default:
		m.ComplexityLevel = ComplexityLow
	}

	return m
}
