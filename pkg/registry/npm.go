package registry

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"
)

// DefaultRegistryURL is the public npm registry endpoint.
const DefaultRegistryURL = "https://registry.npmjs.org"

func (s *Source) fetchPackage(ctx context.Context, name string) (*PackageInfo, error) {
	var data npmPackageResponse
	url := s.registryURL + "/" + escapeName(name)
	if err := s.registry.GetJSON(ctx, url, &data); err != nil {
		return nil, err
	}

	info := &PackageInfo{
		Name:   data.Name,
		Latest: data.DistTags.Latest,
	}
	if info.Name == "" {
		info.Name = name
	}

	for version, raw := range data.Time {
		// The time map carries bookkeeping entries alongside versions.
		if version == "created" || version == "modified" {
			continue
		}
		published, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		info.Releases = append(info.Releases, Release{Version: version, PublishedAt: published})
	}

	// Oldest first; ties broken by version string for determinism.
	sort.Slice(info.Releases, func(i, j int) bool {
		a, b := info.Releases[i], info.Releases[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.Version < b.Version
	})

	return info, nil
}

func (s *Source) fetchVersion(ctx context.Context, name, version string) (*VersionInfo, error) {
	var data npmVersionResponse
	url := fmt.Sprintf("%s/%s/%s", s.registryURL, escapeName(name), version)
	if err := s.registry.GetJSON(ctx, url, &data); err != nil {
		return nil, err
	}

	deps := slices.Sorted(maps.Keys(data.Dependencies))
	return &VersionInfo{
		Name:         orDefault(data.Name, name),
		Version:      orDefault(data.Version, version),
		Dependencies: deps,
	}, nil
}

// escapeName makes scoped package names (@scope/pkg) safe in URL paths.
func escapeName(name string) string {
	return strings.ReplaceAll(name, "/", "%2F")
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

type npmPackageResponse struct {
	Name     string            `json:"name"`
	DistTags npmDistTags       `json:"dist-tags"`
	Time     map[string]string `json:"time"`
}

type npmDistTags struct {
	Latest string `json:"latest"`
}

type npmVersionResponse struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}
