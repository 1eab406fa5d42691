// Package resolve maps a declared version constraint plus a list of
// published versions to one concrete version.
package resolve

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
)

// Version resolves a constraint against the published version list.
// Pure function, no side effects.
//
// A constraint that is itself a concrete version resolves to that exact
// version if published, else fails with NOT_AVAILABLE. A range
// constraint (`^`, `~`, comparison operators, whitespace-joined ANDs)
// resolves to the highest published version satisfying it, else fails
// with NO_MATCH. A missing constraint or empty version list fails with
// NO_INPUT.
func Version(constraint string, published []string) (string, error) {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return "", errors.New(errors.ErrCodeNoInput, "no version constraint given")
	}
	if len(published) == 0 {
		return "", errors.New(errors.ErrCodeNoInput, "no published versions to resolve %q against", constraint)
	}

	if exact, err := semver.StrictNewVersion(constraint); err == nil {
		for _, p := range published {
			if pv, err := semver.StrictNewVersion(p); err == nil && pv.Equal(exact) {
				return p, nil
			}
		}
		return "", errors.New(errors.ErrCodeNotAvailable, "version %s is not published", constraint)
	}

	rng, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeNoMatch, err, "unparseable version constraint %q", constraint)
	}

	var best *semver.Version
	var bestRaw string
	for _, p := range published {
		v, err := semver.StrictNewVersion(p)
		if err != nil {
			continue // skip syntactically invalid published versions
		}
		if !rng.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestRaw = p
		}
	}
	if best == nil {
		return "", errors.New(errors.ErrCodeNoMatch, "no published version satisfies %q", constraint)
	}
	return bestRaw, nil
}
