package score

import (
	"math"
)

// RiskLevel is the five-tier categorical label derived from the
// composite score.
type RiskLevel string

// Risk tiers by total score.
const (
	RiskLow      RiskLevel = "LOW"      // >= 80
	RiskMedium   RiskLevel = "MEDIUM"   // >= 60
	RiskElevated RiskLevel = "ELEVATED" // >= 40
	RiskHigh     RiskLevel = "HIGH"     // >= 20
	RiskCritical RiskLevel = "CRITICAL"
)

// Factor weights. They sum to 1.0.
const (
	weightHistoricalCVEs = 0.50
	weightMaintenance    = 0.10
	weightComplexity     = 0.15
	weightTechnicalLag   = 0.15
	weightCommunity      = 0.10
)

// communityPlaceholder stands in until community signals are sourced.
const communityPlaceholder = 50

// Factor is one weighted component of the composite score, exposed for
// transparency and testability.
type Factor struct {
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Breakdown carries every weighted factor of a composite score.
type Breakdown struct {
	HistoricalCVEs Factor `json:"historical_cves"`
	Maintenance    Factor `json:"maintenance"`
	Complexity     Factor `json:"complexity"`
	TechnicalLag   Factor `json:"technical_lag"`
	Community      Factor `json:"community"`
}

// CompositeScore is the single weighted summary of a package's projected
// maintenance cost.
type CompositeScore struct {
	TotalScore                      int       `json:"total_score"`
	RiskLevel                       RiskLevel `json:"risk_level"`
	EstimatedAnnualMaintenanceHours int       `json:"estimated_annual_maintenance_hours"`
	Breakdown                       Breakdown `json:"breakdown"`
}

// Composite folds the three metric sets into one weighted 0-100 score,
// a risk tier, and an annual hours estimate.
func Composite(cve CVEMetrics, maint MaintenanceMetrics, cx ComplexityMetrics) CompositeScore {
	cveScore := cveSubScore(cve)
	lagScore := technicalLagSubScore(cve, maint)

	b := Breakdown{
		HistoricalCVEs: newFactor(cveScore, weightHistoricalCVEs),
		Maintenance:    newFactor(maint.Score, weightMaintenance),
		Complexity:     newFactor(cx.Score, weightComplexity),
		TechnicalLag:   newFactor(lagScore, weightTechnicalLag),
		Community:      newFactor(communityPlaceholder, weightCommunity),
	}

	total := int(math.Round(b.HistoricalCVEs.Weighted +
		b.Maintenance.Weighted +
		b.Complexity.Weighted +
		b.TechnicalLag.Weighted +
		b.Community.Weighted))

	return CompositeScore{
		TotalScore:                      total,
		RiskLevel:                       Risk(total),
		EstimatedAnnualMaintenanceHours: estimateHours(cve, maint, cx),
		Breakdown:                       b,
	}
}

// Risk maps a total score to its risk tier.
func Risk(total int) RiskLevel {
	switch {
	case total >= 80:
		return RiskLow
	case total >= 60:
		return RiskMedium
	case total >= 40:
		return RiskElevated
	case total >= 20:
		return RiskHigh
	default:
		return RiskCritical
	}
}

func newFactor(score, weight float64) Factor {
	return Factor{Score: score, Weight: weight, Weighted: score * weight}
}

// cveSubScore penalizes historical vulnerability frequency. A package
// with zero findings scores a perfect 100.
func cveSubScore(m CVEMetrics) float64 {
	if m.TotalCVEs == 0 {
		return 100
	}

	score := 100.0
	switch {
	case m.AvgCVEsPerYear > 10:
		score -= 70
	case m.AvgCVEsPerYear > 5:
		score -= 50
	case m.AvgCVEsPerYear > 2:
		score -= 30
	case m.AvgCVEsPerYear > 1:
		score -= 20
	case m.AvgCVEsPerYear > 0.5:
		score -= 10
	}
	switch {
	case m.CriticalPerYear > 2:
		score -= 20
	case m.CriticalPerYear > 1:
		score -= 15
	case m.CriticalPerYear > 0.5:
		score -= 10
	}
	switch {
	case m.HighPerYear > 3:
		score -= 15
	case m.HighPerYear > 1:
		score -= 10
	}
	return clamp(score)
}

// technicalLagSubScore penalizes stale releases and unpatched
// critical/high findings.
func technicalLagSubScore(cve CVEMetrics, maint MaintenanceMetrics) float64 {
	score := 100.0
	switch {
	case maint.DaysSinceLastRelease > 730:
		score -= 50
	case maint.DaysSinceLastRelease > 365:
		score -= 30
	case maint.DaysSinceLastRelease > 180:
		score -= 15
	}

	unpatched := cve.BySeverity[SeverityCritical] + cve.BySeverity[SeverityHigh]
	switch {
	case unpatched > 5:
		score -= 40
	case unpatched > 2:
		score -= 25
	case unpatched > 0:
		score -= 15
	}
	return clamp(score)
}

// estimateHours projects annual upkeep effort from vulnerability
// frequency, tree size, and release cadence.
func estimateHours(cve CVEMetrics, maint MaintenanceMetrics, cx ComplexityMetrics) int {
	hours := 2.0 // base triage cost
	hours += 2 * cve.AvgCVEsPerYear
	hours += 4 * cve.CriticalPerYear
	hours += 0.2 * float64(cx.DirectDependencies)
	switch maint.ReleaseFrequency {
	case FrequencyAbandoned:
		hours += 10
	case FrequencyLow:
		hours += 5
	}
	return int(math.Round(hours))
}
