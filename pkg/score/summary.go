package score

import (
	"math"
	"sort"
)

// topRiskCount is how many highest-risk packages the summary surfaces.
const topRiskCount = 5

// PackageRating is the per-package slice of a project summary.
type PackageRating struct {
	Name         string    `json:"name"`
	Version      string    `json:"version,omitempty"`
	TotalScore   int       `json:"total_score"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Hours        int       `json:"hours"`
	TotalCVEs    int       `json:"total_cves"`
	CriticalCVEs int       `json:"critical_cves"`
}

// ProjectSummary rolls per-package scores into project-level totals.
type ProjectSummary struct {
	AverageScore          int               `json:"average_score"`
	TotalMaintenanceHours int               `json:"total_maintenance_hours"`
	TotalCVEs             int               `json:"total_cves"`
	TotalCriticalCVEs     int               `json:"total_critical_cves"`
	RiskCounts            map[RiskLevel]int `json:"risk_counts"`
	HighestRisk           []PackageRating   `json:"highest_risk"`
}

// Summarize rolls ratings into a project summary: rounded average score,
// summed hours and finding counts, a per-tier histogram, and the five
// lowest-scoring packages with ties broken by encounter order.
// Returns nil for an empty rating list.
func Summarize(ratings []PackageRating) *ProjectSummary {
	if len(ratings) == 0 {
		return nil
	}

	s := &ProjectSummary{RiskCounts: make(map[RiskLevel]int)}
	sum := 0
	for _, r := range ratings {
		sum += r.TotalScore
		s.TotalMaintenanceHours += r.Hours
		s.TotalCVEs += r.TotalCVEs
		s.TotalCriticalCVEs += r.CriticalCVEs
		s.RiskCounts[r.RiskLevel]++
	}
	s.AverageScore = int(math.Round(float64(sum) / float64(len(ratings))))

	ranked := make([]PackageRating, len(ratings))
	copy(ranked, ratings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore < ranked[j].TotalScore
	})
	if len(ranked) > topRiskCount {
		ranked = ranked[:topRiskCount]
	}
	s.HighestRisk = ranked

	return s
}
