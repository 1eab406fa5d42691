package registry

import (
	"context"
	"fmt"
	"net/url"
)

// DefaultGraphURL is the public deps.dev API endpoint.
const DefaultGraphURL = "https://api.deps.dev"

func (s *Source) fetchGraph(ctx context.Context, name, version string) (*Graph, error) {
	var data graphResponse
	u := fmt.Sprintf("%s/v3/systems/npm/packages/%s/versions/%s:dependencies",
		s.graphURL, url.PathEscape(name), url.PathEscape(version))
	if err := s.graph.GetJSON(ctx, u, &data); err != nil {
		return nil, err
	}

	g := &Graph{Nodes: make([]Node, 0, len(data.Nodes))}
	for _, n := range data.Nodes {
		g.Nodes = append(g.Nodes, Node{
			Name:     n.VersionKey.Name,
			Version:  n.VersionKey.Version,
			Relation: ParseRelation(n.Relation),
		})
	}
	return g, nil
}

type graphResponse struct {
	Nodes []graphNode `json:"nodes"`
}

type graphNode struct {
	VersionKey graphVersionKey `json:"versionKey"`
	Relation   string          `json:"relation"`
}

type graphVersionKey struct {
	System  string `json:"system"`
	Name    string `json:"name"`
	Version string `json:"version"`
}
