// Package report persists completed analysis results: pretty-printed
// JSON on disk and optionally a MongoDB collection for run history.
package report

import (
	"encoding/json"
	"os"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/analysis"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
)

// Write serializes the result as indented JSON to path.
func Write(path string, result *analysis.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot serialize report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot write report to %s", path)
	}
	return nil
}
