package vuln

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/cache"
)

func TestOSVClientQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/query" {
			t.Errorf("path = %q, want /v1/query", r.URL.Path)
		}
		var req struct {
			Package struct {
				Name      string `json:"name"`
				Ecosystem string `json:"ecosystem"`
			} `json:"package"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Package.Ecosystem != "npm" {
			t.Errorf("ecosystem = %q, want npm", req.Package.Ecosystem)
		}
		if req.Package.Name != "lodash" {
			t.Errorf("name = %q, want lodash", req.Package.Name)
		}

		score := 9.8
		json.NewEncoder(w).Encode(map[string]any{
			"vulns": []map[string]any{
				{
					"id":                "GHSA-jf85-cpcp-j695",
					"published":         "2019-07-10T19:45:23Z",
					"database_specific": map[string]any{"severity": "CRITICAL"},
				},
				{
					"id":                "GHSA-p6mc-m468-83gw",
					"published":         "2020-07-15T19:15:48Z",
					"database_specific": map[string]any{"cvss_base_score": score},
				},
				{
					"id": "GHSA-x5rq-j2xg-h7qm",
					// no published date, no severity info
				},
			},
		})
	}))
	defer server.Close()

	client := NewOSVClient(OSVConfig{URL: server.URL, Cache: cache.NewNullCache()})

	findings, err := client.Query(context.Background(), "lodash")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("findings = %d, want 3", len(findings))
	}

	if findings[0].Severity != "CRITICAL" {
		t.Errorf("findings[0].Severity = %q, want CRITICAL", findings[0].Severity)
	}
	if findings[0].Published == nil || findings[0].Published.Year() != 2019 {
		t.Errorf("findings[0].Published = %v, want 2019", findings[0].Published)
	}
	if findings[1].CVSSScore == nil || *findings[1].CVSSScore != 9.8 {
		t.Errorf("findings[1].CVSSScore = %v, want 9.8", findings[1].CVSSScore)
	}
	if findings[2].Published != nil || findings[2].Severity != "" || findings[2].CVSSScore != nil {
		t.Errorf("findings[2] = %+v, want bare id", findings[2])
	}
}

func TestOSVClientNotFoundYieldsEmpty(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewOSVClient(OSVConfig{URL: server.URL, Cache: cache.NewNullCache()})

	findings, err := client.Query(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if findings == nil || len(findings) != 0 {
		t.Errorf("findings = %v, want explicit empty list", findings)
	}
}

func TestOSVClientNoVulns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewOSVClient(OSVConfig{URL: server.URL, Cache: cache.NewNullCache()})

	findings, err := client.Query(context.Background(), "clean")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %v, want none", findings)
	}
}
