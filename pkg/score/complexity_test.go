package score

import (
	"testing"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/registry"
)

func iptr(v int) *int { return &v }

func TestComplexityNoInput(t *testing.T) {
	m := Complexity(nil, ComplexityOverrides{})
	if m.Score != 100 {
		t.Errorf("Score = %v, want 100", m.Score)
	}
	if m.DirectDependencies != 0 || m.TotalDependencies != 0 {
		t.Errorf("counts = %d/%d, want 0/0", m.DirectDependencies, m.TotalDependencies)
	}
	if m.ComplexityLevel != ComplexityLow {
		t.Errorf("ComplexityLevel = %q, want %q", m.ComplexityLevel, ComplexityLow)
	}
}

func TestComplexityEstimatesTransitiveCount(t *testing.T) {
	info := &registry.VersionInfo{
		Name:         "express",
		Version:      "4.18.2",
		Dependencies: []string{"accepts", "body-parser", "cookie", "debug", "etag", "fresh", "qs", "send"},
	}
	m := Complexity(info, ComplexityOverrides{})

	if m.DirectDependencies != 8 {
		t.Errorf("DirectDependencies = %d, want 8", m.DirectDependencies)
	}
	if m.TotalDependencies != 8*transitiveEstimateFactor {
		t.Errorf("TotalDependencies = %d, want %d", m.TotalDependencies, 8*transitiveEstimateFactor)
	}
	if m.TotalIsGraphDerived {
		t.Error("TotalIsGraphDerived = true for an estimated count")
	}
	// 120 total (-20) and 8 direct (-5).
	if m.Score != 75 {
		t.Errorf("Score = %v, want 75", m.Score)
	}
	if m.ComplexityLevel != ComplexityModerate {
		t.Errorf("ComplexityLevel = %q, want %q", m.ComplexityLevel, ComplexityModerate)
	}
}

func TestComplexityGraphOverridesWin(t *testing.T) {
	info := &registry.VersionInfo{Name: "express", Version: "4.18.2", Dependencies: []string{"accepts"}}
	m := Complexity(info, ComplexityOverrides{Direct: iptr(31), Total: iptr(640)})

	if m.DirectDependencies != 31 || m.TotalDependencies != 640 {
		t.Errorf("counts = %d/%d, want 31/640", m.DirectDependencies, m.TotalDependencies)
	}
	if !m.TotalIsGraphDerived {
		t.Error("TotalIsGraphDerived = false for a graph-derived count")
	}
	// 640 total (-50) and 31 direct (-15).
	if m.Score != 35 {
		t.Errorf("Score = %v, want 35", m.Score)
	}
	if m.ComplexityLevel != ComplexityVeryHigh {
		t.Errorf("ComplexityLevel = %q, want %q", m.ComplexityLevel, ComplexityVeryHigh)
	}
}

func TestComplexityLevels(t *testing.T) {
	cases := []struct {
		total int
		want  ComplexityLevel
	}{
		{10, ComplexityLow},
		{51, ComplexityModerate},
		{201, ComplexityHigh},
		{501, ComplexityVeryHigh},
	}
	for _, tc := range cases {
		m := Complexity(nil, ComplexityOverrides{Direct: iptr(1), Total: iptr(tc.total)})
		if m.ComplexityLevel != tc.want {
			t.Errorf("Complexity(total=%d).ComplexityLevel = %q, want %q", tc.total, m.ComplexityLevel, tc.want)
		}
	}
}
