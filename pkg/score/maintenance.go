package score

import (
	"time"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/registry"
)

// Frequency categorizes a package's release cadence.
type Frequency string

// Frequency categories by releases per year over the trailing two years.
const (
	FrequencyVeryActive Frequency = "very active" // > 12
	FrequencyActive     Frequency = "active"      // > 6
	FrequencyModerate   Frequency = "moderate"    // > 2
	FrequencyLow        Frequency = "low"         // > 0
	FrequencyAbandoned  Frequency = "abandoned"
	FrequencyUnknown    Frequency = "unknown"
)

// MaintenanceMetrics captures release-maintenance health.
type MaintenanceMetrics struct {
	Score                float64    `json:"score"`
	LastReleaseDate      *time.Time `json:"last_release_date,omitempty"`
	DaysSinceLastRelease int        `json:"days_since_last_release"`
	ReleaseFrequency     Frequency  `json:"release_frequency"`
	ReleasesPerYear      float64    `json:"releases_per_year"`
	TotalVersions        int        `json:"total_versions"`
	ActivelyMaintained   bool       `json:"actively_maintained"`
}

// Maintenance scores release health from package-level metadata.
// Missing metadata yields score zero and an unknown cadence.
func Maintenance(info *registry.PackageInfo, now time.Time) MaintenanceMetrics {
	newest, ok := info.Newest()
	if !ok {
		return MaintenanceMetrics{ReleaseFrequency: FrequencyUnknown}
	}

	m := MaintenanceMetrics{
		LastReleaseDate:      &newest.PublishedAt,
		DaysSinceLastRelease: int(now.Sub(newest.PublishedAt).Hours() / 24),
		TotalVersions:        len(info.Releases),
	}

	cutoff := now.AddDate(-2, 0, 0)
	recent := 0
	for _, r := range info.Releases {
		if r.PublishedAt.After(cutoff) {
			recent++
		}
	}
	m.ReleasesPerYear = round2(float64(recent) / 2)

	switch {
	case m.ReleasesPerYear > 12:
		m.ReleaseFrequency = FrequencyVeryActive
	case m.ReleasesPerYear > 6:
		m.ReleaseFrequency = FrequencyActive
	case m.ReleasesPerYear > 2:
		m.ReleaseFrequency = FrequencyModerate
	case m.ReleasesPerYear > 0:
		m.ReleaseFrequency = FrequencyLow
	default:
		m.ReleaseFrequency = FrequencyAbandoned
	}

	score := 100.0
	switch {
	case m.DaysSinceLastRelease > 730:
		score -= 60
	case m.DaysSinceLastRelease > 365:
		score -= 40
	case m.DaysSinceLastRelease > 180:
		score -= 20
	case m.DaysSinceLastRelease > 90:
		score -= 10
	}
	switch m.ReleaseFrequency {
	case FrequencyAbandoned:
		score -= 30
	case FrequencyLow:
		score -= 15
	}
	m.Score = clamp(score)

	m.ActivelyMaintained = m.DaysSinceLastRelease < 365 && m.ReleaseFrequency != FrequencyAbandoned

	return m
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
