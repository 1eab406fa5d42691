package vuln

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultConcurrency bounds in-flight vulnerability lookups per batch.
const DefaultConcurrency = 5

// Fetcher fans Source queries out over many package names. Names are
// processed in sequential batches of the concurrency limit: all queries
// of a batch are issued concurrently and the whole batch is awaited
// before the next one starts, so in-flight requests never exceed the
// limit. Every fetched result, including an explicit empty list, is
// written to the run cache; a failed query degrades to an empty list for
// that one name without aborting the batch.
type Fetcher struct {
	source      Source
	concurrency int
	logger      *log.Logger
}

// NewFetcher creates a Fetcher. A non-positive concurrency selects
// DefaultConcurrency; a nil logger selects the default logger.
func NewFetcher(source Source, concurrency int, logger *log.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{source: source, concurrency: concurrency, logger: logger}
}

// QueryBatch returns a finding list for every requested name, served
// from the run cache when present and fetched otherwise.
func (f *Fetcher) QueryBatch(ctx context.Context, names []string, rc *RunCache) map[string][]Finding {
	results := make(map[string][]Finding, len(names))

	var uncached []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if findings, ok := rc.Lookup(name); ok {
			results[name] = findings
			continue
		}
		uncached = append(uncached, name)
	}

	for start := 0; start < len(uncached); start += f.concurrency {
		end := min(start+f.concurrency, len(uncached))
		batch := uncached[start:end]

		fetched := make([][]Finding, len(batch))
		var wg sync.WaitGroup
		for i, name := range batch {
			wg.Add(1)
			go func() {
				defer wg.Done()
				findings, err := f.source.Query(ctx, name)
				if err != nil {
					f.logger.Warn("vulnerability lookup failed, assuming no findings",
						"package", name, "error", err)
					findings = []Finding{}
				}
				if findings == nil {
					findings = []Finding{}
				}
				fetched[i] = findings
			}()
		}
		wg.Wait()

		for i, name := range batch {
			rc.Store(name, fetched[i])
			results[name] = fetched[i]
		}
	}

	return results
}
