package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/cache"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/manifest"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/registry"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/score"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/vuln"
)

var analysisNow = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func quietLogger() *log.Logger { return log.New(io.Discard) }

// fakeVulnSource serves canned findings and counts queries per name.
type fakeVulnSource struct {
	mu      sync.Mutex
	queries map[string]int
	data    map[string][]vuln.Finding
}

func (f *fakeVulnSource) Query(_ context.Context, name string) ([]vuln.Finding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queries == nil {
		f.queries = make(map[string]int)
	}
	f.queries[name]++
	return f.data[name], nil
}

func (f *fakeVulnSource) queryCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[name]
}

func newRegistryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/express", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"name":      "express",
			"dist-tags": map[string]string{"latest": "4.18.2"},
			"time": map[string]string{
				"created": "2020-01-01T00:00:00Z",
				"4.17.0":  "2024-02-01T00:00:00Z",
				"4.18.2":  "2026-05-01T00:00:00Z",
			},
		})
	})
	mux.HandleFunc("/express/4.18.2", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"name":         "express",
			"version":      "4.18.2",
			"dependencies": map[string]string{"accepts": "~1.3.8", "qs": "6.11.0"},
		})
	})
	mux.HandleFunc("/ghost-pkg", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func newGraphServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/systems/npm/packages/express/versions/4.18.2:dependencies",
		func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, map[string]any{
				"nodes": []map[string]any{
					{"versionKey": map[string]string{"name": "express", "version": "4.18.2"}, "relation": "SELF"},
					{"versionKey": map[string]string{"name": "accepts", "version": "1.3.8"}, "relation": "DIRECT"},
					{"versionKey": map[string]string{"name": "qs", "version": "6.11.0"}, "relation": "DIRECT"},
					{"versionKey": map[string]string{"name": "mime-types", "version": "2.1.35"}, "relation": "INDIRECT"},
				},
			})
		})
	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newAnalyzer(t *testing.T, vs vuln.Source, shallow bool, concurrency int) *Analyzer {
	t.Helper()
	reg := newRegistryServer(t)
	t.Cleanup(reg.Close)
	graph := newGraphServer(t)
	t.Cleanup(graph.Close)

	source := registry.NewSource(registry.Config{
		RegistryURL: reg.URL,
		GraphURL:    graph.URL,
		Cache:       cache.NewMemoryCache(),
		Logger:      quietLogger(),
	})
	return New(Options{
		Source:      source,
		Fetcher:     vuln.NewFetcher(vs, 2, quietLogger()),
		Logger:      quietLogger(),
		Concurrency: concurrency,
		Shallow:     shallow,
		Now:         func() time.Time { return analysisNow },
	})
}

func TestAnalyzeProjectFullPipeline(t *testing.T) {
	vs := &fakeVulnSource{data: map[string][]vuln.Finding{
		"express": {{ID: "GHSA-1", Severity: "HIGH"}},
		"qs":      {{ID: "GHSA-2", Severity: "CRITICAL"}},
	}}
	a := newAnalyzer(t, vs, false, 2)

	m := &manifest.Manifest{
		Name: "my-app",
		Dependencies: []manifest.DeclaredDependency{
			{Name: "express", Constraint: "^4.18.0", Kind: manifest.KindDirect},
		},
	}
	result := a.AnalyzeProject(context.Background(), m)

	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if result.Project != "my-app" {
		t.Errorf("Project = %q, want %q", result.Project, "my-app")
	}
	if len(result.Packages) != 1 {
		t.Fatalf("len(Packages) = %d, want 1", len(result.Packages))
	}

	p := result.Packages[0]
	if p.ResolvedVersion != "4.18.2" {
		t.Errorf("ResolvedVersion = %q, want %q", p.ResolvedVersion, "4.18.2")
	}
	if p.GraphStrategy != registry.StrategyExact {
		t.Errorf("GraphStrategy = %q, want %q", p.GraphStrategy, registry.StrategyExact)
	}
	if p.FallbackUsed {
		t.Error("FallbackUsed = true, want false")
	}
	if p.TreeSize != 4 {
		t.Errorf("TreeSize = %d, want 4", p.TreeSize)
	}
	// One HIGH from the root plus one CRITICAL from a tree dependency.
	if p.CVE.TotalCVEs != 2 {
		t.Errorf("TotalCVEs = %d, want 2", p.CVE.TotalCVEs)
	}
	// SELF excluded from the total; two DIRECT nodes reported.
	if p.Complexity.TotalDependencies != 3 {
		t.Errorf("TotalDependencies = %d, want 3", p.Complexity.TotalDependencies)
	}
	if p.Complexity.DirectDependencies != 2 {
		t.Errorf("DirectDependencies = %d, want 2", p.Complexity.DirectDependencies)
	}
	if !p.Complexity.TotalIsGraphDerived {
		t.Error("TotalIsGraphDerived = false, want true")
	}
	if p.Maintenance.ReleaseFrequency == score.FrequencyUnknown {
		t.Errorf("ReleaseFrequency = %q, want a known cadence", p.Maintenance.ReleaseFrequency)
	}

	if result.Summary == nil {
		t.Fatal("Summary is nil")
	}
	if result.Summary.TotalCVEs != 2 {
		t.Errorf("Summary.TotalCVEs = %d, want 2", result.Summary.TotalCVEs)
	}
	if result.Summary.TotalCriticalCVEs != 1 {
		t.Errorf("Summary.TotalCriticalCVEs = %d, want 1", result.Summary.TotalCriticalCVEs)
	}

	for _, name := range []string{"express", "accepts", "qs", "mime-types"} {
		if vs.queryCount(name) != 1 {
			t.Errorf("query count for %s = %d, want 1", name, vs.queryCount(name))
		}
	}
}

func TestAnalyzeProjectShallowSkipsGraph(t *testing.T) {
	vs := &fakeVulnSource{}
	a := newAnalyzer(t, vs, true, 2)

	m := &manifest.Manifest{Dependencies: []manifest.DeclaredDependency{
		{Name: "express", Constraint: "^4.18.0", Kind: manifest.KindDirect},
	}}
	result := a.AnalyzeProject(context.Background(), m)

	p := result.Packages[0]
	if !result.Shallow {
		t.Error("Shallow = false, want true")
	}
	if p.GraphStrategy != registry.StrategyRootOnly {
		t.Errorf("GraphStrategy = %q, want %q", p.GraphStrategy, registry.StrategyRootOnly)
	}
	if p.TreeSize != 1 {
		t.Errorf("TreeSize = %d, want 1", p.TreeSize)
	}
	if p.Complexity.TotalIsGraphDerived {
		t.Error("TotalIsGraphDerived = true in shallow mode")
	}
	// Declared direct count still comes from version metadata.
	if p.Complexity.DirectDependencies != 2 {
		t.Errorf("DirectDependencies = %d, want 2", p.Complexity.DirectDependencies)
	}
	if vs.queryCount("accepts") != 0 {
		t.Error("shallow mode queried tree dependencies")
	}
}

func TestAnalyzeProjectUnknownPackageDegrades(t *testing.T) {
	vs := &fakeVulnSource{}
	a := newAnalyzer(t, vs, false, 2)

	m := &manifest.Manifest{Dependencies: []manifest.DeclaredDependency{
		{Name: "ghost-pkg", Constraint: "^1.0.0", Kind: manifest.KindDirect},
	}}
	result := a.AnalyzeProject(context.Background(), m)

	p := result.Packages[0]
	if p.ResolvedVersion != "" {
		t.Errorf("ResolvedVersion = %q, want empty", p.ResolvedVersion)
	}
	if p.GraphStrategy != registry.StrategyRootOnly {
		t.Errorf("GraphStrategy = %q, want %q", p.GraphStrategy, registry.StrategyRootOnly)
	}
	if !p.FallbackUsed {
		t.Error("FallbackUsed = false, want true")
	}
	if p.Maintenance.ReleaseFrequency != score.FrequencyUnknown {
		t.Errorf("ReleaseFrequency = %q, want %q", p.Maintenance.ReleaseFrequency, score.FrequencyUnknown)
	}
	// The root name is still checked for findings.
	if vs.queryCount("ghost-pkg") != 1 {
		t.Errorf("query count = %d, want 1", vs.queryCount("ghost-pkg"))
	}
	if result.Summary == nil {
		t.Fatal("Summary is nil")
	}
}

func TestAnalyzeProjectSharedRunCache(t *testing.T) {
	vs := &fakeVulnSource{}
	// Concurrency one keeps the two lookups sequential so the second is
	// guaranteed to see the first one's cached findings.
	a := newAnalyzer(t, vs, true, 1)

	m := &manifest.Manifest{Dependencies: []manifest.DeclaredDependency{
		{Name: "express", Constraint: "^4.18.0", Kind: manifest.KindDirect},
		{Name: "express", Constraint: "4.18.2", Kind: manifest.KindDevelopment},
	}}
	a.AnalyzeProject(context.Background(), m)

	if got := vs.queryCount("express"); got != 1 {
		t.Errorf("query count = %d, want 1 (run cache shared across dependencies)", got)
	}
}

func TestAnalyzeProjectEmptyManifest(t *testing.T) {
	a := newAnalyzer(t, &fakeVulnSource{}, false, 2)
	result := a.AnalyzeProject(context.Background(), &manifest.Manifest{Name: "empty"})
	if len(result.Packages) != 0 {
		t.Errorf("len(Packages) = %d, want 0", len(result.Packages))
	}
	if result.Summary != nil {
		t.Errorf("Summary = %+v, want nil", result.Summary)
	}
}
