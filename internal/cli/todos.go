package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mvp-joe/docsift/internal/config"
	"github.com/mvp-joe/docsift/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	todosDeprecationsFlag bool
	todosWarningsFlag     bool
)

// todosCmd represents the todos command
var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "List todos and deprecations of the last recorded run",
	Long: `Todos reads the index database written by 'docsift extract --db' and
lists the todo items of the most recent run, one per line, tagged with the
dotted path of the symbol that carries them.

Examples:
  # Todos of the last run
  docsift todos --db .docsift/index.db

  # Todos and deprecations, database taken from .docsift/config.yml
  docsift todos --deprecations
`,
	RunE: runTodos,
}

func init() {
	rootCmd.AddCommand(todosCmd)
	todosCmd.Flags().String("db", "", "SQLite database written by extract")
	todosCmd.Flags().BoolVar(&todosDeprecationsFlag, "deprecations", false, "also list deprecations")
	todosCmd.Flags().BoolVar(&todosWarningsFlag, "warnings", false, "also list consistency warnings")
}

func runTodos(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	v := viper.New()
	v.BindPFlag("storage.db_path", cmd.Flags().Lookup("db"))
	cfg, err := config.NewLoaderWithViper(rootDir, v).Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Storage.DBPath == "" {
		return errors.New("no database configured: pass --db or set storage.db_path")
	}

	return executeTodos(resolvePath(rootDir, cfg.Storage.DBPath), todosOptions{
		Deprecations: todosDeprecationsFlag,
		Warnings:     todosWarningsFlag,
	}, cmd.OutOrStdout())
}

type todosOptions struct {
	Deprecations bool
	Warnings     bool
}

func executeTodos(dbPath string, opts todosOptions, out io.Writer) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("failed to open index %s: %w", dbPath, err)
	}

	reader, err := storage.NewIndexReader(dbPath)
	if errors.Is(err, storage.ErrNoRuns) {
		fmt.Fprintln(out, "No runs recorded yet. Run 'docsift extract --db' first.")
		return nil
	}
	if err != nil {
		return err
	}
	defer reader.Close()

	run, err := reader.LatestRun()
	if errors.Is(err, storage.ErrNoRuns) {
		fmt.Fprintln(out, "No runs recorded yet. Run 'docsift extract --db' first.")
		return nil
	}
	if err != nil {
		return err
	}

	todos, err := reader.Todos(run.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run %s (%s, %s symbols)\n", run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04:05"), formatNumber(run.Symbols))
	fmt.Fprintf(out, "\nTodos (%d):\n", len(todos))
	for _, t := range todos {
		fmt.Fprintf(out, "  %s: %s\n", t.Path, t.Text)
	}

	if opts.Deprecations {
		deps, err := reader.Deprecations(run.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nDeprecations (%d):\n", len(deps))
		for _, d := range deps {
			fmt.Fprintf(out, "  %s: %s\n", d.Path, d.Reason)
		}
	}

	if opts.Warnings {
		warnings, err := reader.Warnings(run.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(out, "  %s\n", w.String())
		}
	}
	return nil
}
