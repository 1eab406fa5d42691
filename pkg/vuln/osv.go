package vuln

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/cache"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/integrations"
)

// DefaultOSVURL is the public OSV API endpoint.
const DefaultOSVURL = "https://api.osv.dev"

// ecosystem identifies the package ecosystem in every query.
const ecosystem = "npm"

// OSVConfig configures an OSVClient. Zero values select the public
// endpoint and a null cache.
type OSVConfig struct {
	URL    string
	Cache  cache.Cache
	TTL    time.Duration
	Logger *log.Logger
}

// OSVClient queries an OSV-style vulnerability registry by package name.
type OSVClient struct {
	client  *integrations.Client
	baseURL string
}

// NewOSVClient creates an OSVClient from cfg.
func NewOSVClient(cfg OSVConfig) *OSVClient {
	if cfg.URL == "" {
		cfg.URL = DefaultOSVURL
	}
	return &OSVClient{
		client:  integrations.NewClient(cfg.Cache, "osv", cfg.TTL, nil),
		baseURL: cfg.URL,
	}
}

// Query returns the raw finding list for one package name. A registry
// that reports not-found yields an empty list; other failures surface as
// errors for the batch fetcher to degrade.
func (c *OSVClient) Query(ctx context.Context, name string) ([]Finding, error) {
	req := osvQuery{Package: osvPackage{Name: name, Ecosystem: ecosystem}}

	var resp osvResponse
	if err := c.client.PostJSON(ctx, c.baseURL+"/v1/query", req, &resp); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return []Finding{}, nil
		}
		return nil, err
	}

	findings := make([]Finding, 0, len(resp.Vulns))
	for _, v := range resp.Vulns {
		findings = append(findings, v.normalize())
	}
	return findings, nil
}

var _ Source = (*OSVClient)(nil)

type osvQuery struct {
	Package osvPackage `json:"package"`
}

type osvPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type osvResponse struct {
	Vulns []osvVuln `json:"vulns"`
}

type osvVuln struct {
	ID               string              `json:"id"`
	Published        string              `json:"published"`
	DatabaseSpecific osvDatabaseSpecific `json:"database_specific"`
}

type osvDatabaseSpecific struct {
	Severity  string   `json:"severity"`
	CVSSScore *float64 `json:"cvss_base_score"`
}

func (v osvVuln) normalize() Finding {
	f := Finding{
		ID:        v.ID,
		Severity:  v.DatabaseSpecific.Severity,
		CVSSScore: v.DatabaseSpecific.CVSSScore,
	}
	if ts, err := time.Parse(time.RFC3339, v.Published); err == nil {
		f.Published = &ts
	}
	return f
}
