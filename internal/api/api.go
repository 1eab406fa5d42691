// Package api exposes the dependency analysis over HTTP. Clients POST a
// raw package.json body and receive the full analysis report as JSON.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/analysis"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/manifest"
)

// maxManifestBytes bounds the accepted request body size.
const maxManifestBytes = 1 << 20

// Runner runs one project analysis. Satisfied by *analysis.Analyzer.
type Runner interface {
	AnalyzeProject(ctx context.Context, m *manifest.Manifest) *analysis.Result
}

// NewRouter builds the HTTP API:
//
//	POST /api/analyze  - analyse a raw package.json request body
//	GET  /healthz      - liveness probe
func NewRouter(runner Runner, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/analyze", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxManifestBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "cannot read request body"))
			return
		}

		m, err := manifest.Parse(body)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}

		result := runner.AnalyzeProject(req.Context(), m)
		logger.Info("analysis served", "run", result.RunID, "packages", len(result.Packages))
		writeJSON(w, http.StatusOK, result)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the wire shape of every API error.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}
