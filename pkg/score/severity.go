// Package score turns vulnerability findings and registry metadata into
// the metrics and weighted composite scores that estimate a package's
// annual maintenance cost.
package score

import (
	"strings"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/vuln"
)

// Severity is a normalized finding severity category.
type Severity string

// Severity categories ordered from most to least severe.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
	SeverityLow      Severity = "LOW"
	SeverityUnknown  Severity = "UNKNOWN"
)

// Classify determines a finding's severity: an explicit category wins;
// otherwise a numeric CVSS v3 score is bucketed; otherwise UNKNOWN.
func Classify(f vuln.Finding) Severity {
	switch strings.ToUpper(strings.TrimSpace(f.Severity)) {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH":
		return SeverityHigh
	case "MODERATE", "MEDIUM":
		return SeverityModerate
	case "LOW":
		return SeverityLow
	}

	if f.CVSSScore != nil {
		switch s := *f.CVSSScore; {
		case s >= 9.0:
			return SeverityCritical
		case s >= 7.0:
			return SeverityHigh
		case s >= 4.0:
			return SeverityModerate
		default:
			return SeverityLow
		}
	}
	return SeverityUnknown
}
