// Package manifest parses npm package.json manifests into the declared
// dependency list an analysis run starts from.
package manifest

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
)

// Kind distinguishes runtime dependencies from development-only ones.
type Kind string

const (
	KindDirect      Kind = "direct"
	KindDevelopment Kind = "development"
)

// DeclaredDependency is one entry from a manifest's dependency maps,
// with its raw semver constraint as written.
type DeclaredDependency struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"`
	Kind       Kind   `json:"kind"`
}

// Manifest is the parsed view of a package.json file.
type Manifest struct {
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	Dependencies []DeclaredDependency `json:"dependencies"`
}

type packageFile struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Parse decodes package.json bytes. Runtime dependencies come first,
// then development dependencies, each group sorted by name. Malformed
// JSON yields an INVALID_MANIFEST error.
func Parse(data []byte) (*Manifest, error) {
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "manifest is not valid JSON")
	}

	m := &Manifest{Name: pkg.Name, Version: pkg.Version}
	m.Dependencies = append(m.Dependencies, group(pkg.Dependencies, KindDirect)...)
	m.Dependencies = append(m.Dependencies, group(pkg.DevDependencies, KindDevelopment)...)
	return m, nil
}

// Load reads and parses a package.json file from disk.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "cannot read manifest %s", path)
	}
	return Parse(data)
}

func group(deps map[string]string, kind Kind) []DeclaredDependency {
	out := make([]DeclaredDependency, 0, len(deps))
	for name, constraint := range deps {
		out = append(out, DeclaredDependency{Name: name, Constraint: constraint, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
