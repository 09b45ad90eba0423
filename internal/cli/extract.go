package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mvp-joe/docsift/internal/config"
	"github.com/mvp-joe/docsift/internal/docstring"
	"github.com/mvp-joe/docsift/internal/parsers"
	"github.com/mvp-joe/docsift/internal/report"
	"github.com/mvp-joe/docsift/internal/storage"
	"github.com/mvp-joe/docsift/internal/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	extractQuietFlag  bool
	extractCheckFlag  bool
	extractOutputFlag string
	extractWatchFlag  bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract structured annotations from Python docstrings",
	Long: `Extract discovers Python files, parses the docstring of every module,
class, function, method and documented field, and writes a report of the
structured annotations.

Each file becomes a module named after its path relative to the project root
(app/models.py → app.models). Directories are walked recursively; hidden and
__pycache__ directories are skipped.

Examples:
  # Extract the whole project as JSON
  docsift extract

  # Only public symbols of one package, as YAML
  docsift extract app --include 'app.**' --exclude '**._*' --format yaml

  # Check documentation against signatures and record the run
  docsift extract --check --db .docsift/index.db

  # Rewrite the report whenever a Python file changes
  docsift extract --watch -o docs.json
`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringP("format", "f", "", "report format: json or yaml")
	flags.StringSlice("include", nil, "dotted-path globs of symbols to report")
	flags.StringSlice("exclude", nil, "dotted-path globs of symbols to leave out")
	flags.StringSlice("sections", nil, "section kinds to report (default all)")
	flags.StringSlice("warnings", nil, "warning classes to report (default all)")
	flags.Int("workers", 0, "parallel workers")
	flags.Int("cache-size", 0, "memoized docstrings, 0 disables")
	flags.String("db", "", "SQLite database to record the run in")
	flags.BoolVar(&extractCheckFlag, "check", false, "check documentation against declared signatures")
	flags.BoolVarP(&extractQuietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	flags.StringVarP(&extractOutputFlag, "output", "o", "", "write the report to a file instead of stdout")
	flags.BoolVarP(&extractWatchFlag, "watch", "w", false, "re-run extraction when Python files change")
}

// bindExtractFlags maps command line flags onto config keys. Only flags the
// user actually set override file and environment values.
func bindExtractFlags(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	flags := cmd.Flags()
	v.BindPFlag("report.format", flags.Lookup("format"))
	v.BindPFlag("report.include", flags.Lookup("include"))
	v.BindPFlag("report.exclude", flags.Lookup("exclude"))
	v.BindPFlag("report.sections", flags.Lookup("sections"))
	v.BindPFlag("report.warnings", flags.Lookup("warnings"))
	v.BindPFlag("extract.workers", flags.Lookup("workers"))
	v.BindPFlag("extract.cache_size", flags.Lookup("cache-size"))
	v.BindPFlag("storage.db_path", flags.Lookup("db"))
	return v
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.NewLoaderWithViper(rootDir, bindExtractFlags(cmd)).Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := extractOptions{
		RootDir: rootDir,
		Paths:   args,
		Check:   extractCheckFlag,
		Output:  extractOutputFlag,
		Quiet:   extractQuietFlag,
	}
	if _, err := executeExtract(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return err
	}
	if !extractWatchFlag {
		return nil
	}
	return watchExtract(ctx, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), watcher.DefaultDebounce)
}

// watchExtract re-runs extraction after every batch of .py changes until ctx
// is cancelled. Failed runs are reported and watching continues.
func watchExtract(ctx context.Context, cfg *config.Config, opts extractOptions, stdout, stderr io.Writer, debounce time.Duration) error {
	dirs := []string{opts.RootDir}
	if len(opts.Paths) > 0 {
		dirs = dirs[:0]
		for _, p := range opts.Paths {
			path := resolvePath(opts.RootDir, p)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				path = filepath.Dir(path)
			}
			dirs = append(dirs, path)
		}
	}

	fw, err := watcher.NewFileWatcher(dirs, debounce)
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer fw.Stop()

	runs := make(chan []string, 1)
	if err := fw.Start(ctx, func(files []string) {
		select {
		case runs <- files:
		case <-ctx.Done():
		}
	}); err != nil {
		return err
	}

	if !opts.Quiet {
		fmt.Fprintln(stderr, "Watching for changes (Ctrl+C to stop)")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case files := <-runs:
			log.Printf("Detected %d changed file(s)\n", len(files))
			if _, err := executeExtract(ctx, cfg, opts, stdout, stderr); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				fmt.Fprintf(stderr, "Extraction failed: %v\n", err)
			}
		}
	}
}

// extractOptions carries the per-invocation settings that are not part of
// the persistent configuration.
type extractOptions struct {
	RootDir string
	Paths   []string
	Check   bool
	Output  string // empty writes to stdout
	Quiet   bool
}

// extractResult is what one extract run produced.
type extractResult struct {
	Report *report.Report
	RunID  string // empty when the run was not persisted
	Stats  ExtractStats
}

func executeExtract(ctx context.Context, cfg *config.Config, opts extractOptions, stdout, stderr io.Writer) (*extractResult, error) {
	start := time.Now()
	progress := NewCLIProgressReporter(stderr, opts.Quiet)

	progress.OnDiscoveryStart()
	discovery, err := parsers.NewFileDiscovery(opts.RootDir, cfg.Paths.Ignore)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(opts.Paths))
	for i, p := range opts.Paths {
		paths[i] = resolvePath(opts.RootDir, p)
	}
	files, err := discovery.Discover(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	progress.OnDiscoveryComplete(len(files))

	modules, err := parseModules(ctx, opts.RootDir, files, cfg.Extract.Workers, progress)
	if err != nil {
		return nil, err
	}

	root := &docstring.Symbol{Kind: docstring.KindModule, Children: modules}
	extractor, err := docstring.NewExtractor(
		docstring.WithWorkers(cfg.Extract.Workers),
		docstring.WithCacheSize(cfg.Extract.CacheSize),
	)
	if err != nil {
		return nil, err
	}
	defer extractor.Close()

	tree, index, err := extractor.Extract(root)
	if err != nil {
		return nil, fmt.Errorf("failed to extract annotations: %w", err)
	}

	var warnings []docstring.Warning
	if opts.Check {
		warnings = docstring.CheckConsistency(tree)
	}

	rep, err := report.New(tree, index, warnings, report.Options{
		Include:  cfg.Report.Include,
		Exclude:  cfg.Report.Exclude,
		Sections: cfg.Report.Sections,
		Warnings: cfg.Report.Warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return nil, err
	}
	if opts.Output != "" {
		if err := rep.WriteFile(resolvePath(opts.RootDir, opts.Output), format); err != nil {
			return nil, err
		}
	} else if err := rep.Write(stdout, format); err != nil {
		return nil, err
	}

	result := &extractResult{
		Report: rep,
		Stats: ExtractStats{
			Files:        len(files),
			Symbols:      rep.Totals.Symbols,
			Documented:   rep.Totals.Documented,
			Todos:        rep.Totals.Todos,
			Deprecations: rep.Totals.Deprecations,
			Warnings:     rep.Totals.Warnings,
		},
	}

	if cfg.Storage.DBPath != "" {
		runID, err := recordRun(resolvePath(opts.RootDir, cfg.Storage.DBPath), cfg.Storage.KeepRuns, storage.RunRecord{
			Root:     opts.RootDir,
			Files:    len(files),
			Symbols:  rep.Totals.Symbols,
			Index:    index,
			Warnings: warnings,
		})
		if err != nil {
			return nil, err
		}
		result.RunID = runID
		log.Printf("Recorded run %s\n", runID)
	}

	result.Stats.Elapsed = time.Since(start)
	progress.OnComplete(result.Stats)
	return result, nil
}

// parseModules parses files concurrently and returns one Module symbol per
// file in the order of files.
func parseModules(ctx context.Context, rootDir string, files []string, workers int, progress *CLIProgressReporter) ([]*docstring.Symbol, error) {
	progress.OnParseStart(len(files))

	parser := parsers.NewPythonParser()
	modules := make([]*docstring.Symbol, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, file := range files {
		g.Go(func() error {
			source, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			mod, err := parser.ParseSource(gctx, parsers.ModuleName(rootDir, file), source)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			modules[i] = mod
			progress.OnFileParsed(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return modules, nil
}

func recordRun(dbPath string, keep int, rec storage.RunRecord) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}

	writer, err := storage.NewIndexWriter(dbPath)
	if err != nil {
		return "", err
	}
	defer writer.Close()

	runID, err := writer.WriteRun(rec)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	if keep > 0 {
		if _, err := writer.PruneRuns(keep); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func resolvePath(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
