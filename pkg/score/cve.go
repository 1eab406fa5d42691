package score

import (
	"math"
	"time"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/vuln"
)

const hoursPerYear = 24 * 365.25

// CVEMetrics summarizes the historical vulnerability record of one
// package tree. Derived fresh per analysis, never persisted.
type CVEMetrics struct {
	TotalCVEs       int              `json:"total_cves"`
	AvgCVEsPerYear  float64          `json:"avg_cves_per_year"`
	CriticalPerYear float64          `json:"critical_per_year"`
	HighPerYear     float64          `json:"high_per_year"`
	ModeratePerYear float64          `json:"moderate_per_year"`
	LowPerYear      float64          `json:"low_per_year"`
	BySeverity      map[Severity]int `json:"by_severity,omitempty"`
	ByYear          map[int]int      `json:"by_year,omitempty"`
	Oldest          *time.Time       `json:"oldest,omitempty"`
	Newest          *time.Time       `json:"newest,omitempty"`
	YearsOfData     float64          `json:"years_of_data"`
}

// CVE computes frequency and severity statistics over a deduplicated
// finding list. Findings without a publish date count toward totals and
// severity tallies but not toward year buckets or the date span.
func CVE(findings []vuln.Finding) CVEMetrics {
	m := CVEMetrics{
		BySeverity: make(map[Severity]int),
		ByYear:     make(map[int]int),
	}
	if len(findings) == 0 {
		return m
	}

	m.TotalCVEs = len(findings)
	for _, f := range findings {
		m.BySeverity[Classify(f)]++

		if f.Published == nil {
			continue
		}
		ts := *f.Published
		m.ByYear[ts.Year()]++
		if m.Oldest == nil || ts.Before(*m.Oldest) {
			m.Oldest = &ts
		}
		if m.Newest == nil || ts.After(*m.Newest) {
			m.Newest = &ts
		}
	}

	if m.Oldest != nil && m.Newest != nil {
		m.YearsOfData = round1(m.Newest.Sub(*m.Oldest).Hours() / hoursPerYear)
	}

	// Guard division when all findings share one publish date.
	effectiveYears := math.Max(m.YearsOfData, 1)

	m.AvgCVEsPerYear = round2(float64(m.TotalCVEs) / effectiveYears)
	m.CriticalPerYear = round2(float64(m.BySeverity[SeverityCritical]) / effectiveYears)
	m.HighPerYear = round2(float64(m.BySeverity[SeverityHigh]) / effectiveYears)
	m.ModeratePerYear = round2(float64(m.BySeverity[SeverityModerate]) / effectiveYears)
	m.LowPerYear = round2(float64(m.BySeverity[SeverityLow]) / effectiveYears)

	return m
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
