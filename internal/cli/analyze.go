package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/analysis"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/cache"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/config"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/errors"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/manifest"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/registry"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/report"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/score"
	"github.com/nickheal/oss-maintainance-cost-analyser/pkg/vuln"
)

// highRiskFailureThreshold is how many HIGH-risk packages are tolerated
// before the analyze command reports failure.
const highRiskFailureThreshold = 3

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	configPath  string // optional TOML config file
	output      string // report file path (skip when empty)
	concurrency int    // overrides the configured limit when positive
	shallow     bool   // skip transitive graph retrieval
	noFail      bool   // always exit zero regardless of risk
}

// newAnalyzeCmd creates the analyze command.
func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [package.json]",
		Short: "Score the maintenance cost of every declared dependency",
		Long: `Analyze every dependency declared in a package.json.

For each dependency the declared constraint is resolved against the
registry, the transitive dependency tree is retrieved, known
vulnerabilities are collected for every package in the tree, and a
weighted 0-100 score with an annual maintenance-hours estimate is
produced.

Examples:
  osscost analyze                          # ./package.json
  osscost analyze web/package.json
  osscost analyze --shallow                # skip transitive graphs
  osscost analyze -o report.json           # write the full JSON report`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "package.json"
			if len(args) == 1 {
				path = args[0]
			}
			return runAnalyze(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the full JSON report to a file")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "max concurrent lookups (overrides config)")
	cmd.Flags().BoolVar(&opts.shallow, "shallow", false, "skip transitive graph retrieval")
	cmd.Flags().BoolVar(&opts.noFail, "no-fail", false, "exit zero even when high-risk packages are found")

	return cmd
}

func runAnalyze(ctx context.Context, manifestPath string, opts analyzeOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.concurrency > 0 {
		cfg.Concurrency = opts.concurrency
	}
	cfg.Shallow = cfg.Shallow || opts.shallow

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	if len(m.Dependencies) == 0 {
		printInfo("No dependencies declared in %s", manifestPath)
		return nil
	}

	httpCache, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer httpCache.Close()

	analyzer := analysis.New(analysis.Options{
		Source: registry.NewSource(registry.Config{
			RegistryURL: cfg.Registry.URL,
			GraphURL:    cfg.Registry.GraphURL,
			Cache:       httpCache,
			TTL:         cfg.Cache.TTL(),
			Logger:      logger,
		}),
		Fetcher: vuln.NewFetcher(vuln.NewOSVClient(vuln.OSVConfig{
			URL:    cfg.Vulnerabilities.URL,
			Cache:  httpCache,
			TTL:    cfg.Cache.TTL(),
			Logger: logger,
		}), cfg.Concurrency, logger),
		Logger:      logger,
		Concurrency: cfg.Concurrency,
		Shallow:     cfg.Shallow,
	})

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Analysing %d dependencies...", len(m.Dependencies)))
	spinner.Start()

	result := analyzer.AnalyzeProject(ctx, m)

	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analysed %d dependencies", len(result.Packages)))

	renderResult(result)

	if opts.output != "" {
		if err := report.Write(opts.output, result); err != nil {
			return err
		}
		printFile(opts.output)
	}
	if cfg.Report.MongoURI != "" {
		if err := saveToStore(ctx, cfg.Report.MongoURI, result); err != nil {
			logger.Warn("could not persist report", "error", err)
		}
	}

	if !opts.noFail && shouldFail(result) {
		return errors.New(errors.ErrCodeInternal, "high-risk dependencies found")
	}
	return nil
}

// buildCache constructs the configured HTTP response cache backend.
func buildCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot locate cache directory")
			}
		}
		return cache.NewFileCache(dir)
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
	}
}

func saveToStore(ctx context.Context, uri string, result *analysis.Result) error {
	store, err := report.NewMongoStore(ctx, uri)
	if err != nil {
		return err
	}
	defer store.Close(ctx)
	return store.Save(ctx, result)
}

// shouldFail reports whether the run contains any CRITICAL-risk package
// or more HIGH-risk packages than the tolerated threshold.
func shouldFail(result *analysis.Result) bool {
	if result.Summary == nil {
		return false
	}
	if result.Summary.RiskCounts[score.RiskCritical] > 0 {
		return true
	}
	return result.Summary.RiskCounts[score.RiskHigh] > highRiskFailureThreshold
}

// renderResult prints per-package rows followed by the project summary.
func renderResult(result *analysis.Result) {
	printNewline()
	for _, p := range result.Packages {
		name := p.Name
		if p.ResolvedVersion != "" {
			name += "@" + p.ResolvedVersion
		}
		fmt.Printf("  %s %s %s\n",
			StyleValue.Render(fmt.Sprintf("%-40s", name)),
			fmt.Sprintf("%3d", p.Composite.TotalScore),
			renderRisk(p.Composite.RiskLevel))
		printDetail("%d CVEs · %d packages in tree · ~%dh/year",
			p.CVE.TotalCVEs, p.TreeSize, p.Composite.EstimatedAnnualMaintenanceHours)
		if p.FallbackUsed {
			printWarning("analysis degraded for %s (%s)", p.Name, p.GraphStrategy)
		}
	}

	s := result.Summary
	if s == nil {
		return
	}
	printNewline()
	fmt.Println(StyleTitle.Render("Project summary"))
	printKeyValue("Average score", fmt.Sprintf("%d (%s)", s.AverageScore, renderRisk(score.Risk(s.AverageScore))))
	printKeyValue("Annual effort", fmt.Sprintf("~%d hours", s.TotalMaintenanceHours))
	printKeyValue("Known CVEs", fmt.Sprintf("%d (%d critical)", s.TotalCVEs, s.TotalCriticalCVEs))
	if len(s.HighestRisk) > 0 {
		printNewline()
		printInfo("Highest-risk packages:")
		for _, r := range s.HighestRisk {
			printDetail("%-30s %3d %s", r.Name, r.TotalScore, renderRisk(r.RiskLevel))
		}
	}
}
