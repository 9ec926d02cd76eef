package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/orbit"
	"github.com/vango-dev/orbit/internal/config"
	"github.com/vango-dev/orbit/internal/demo"
	"github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/dom"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
   ___       _    _ _
  / _ \ _ __| |__(_) |_
 | (_) | '__| '_ \ |  _|
  \___/|_|  |_.__/_|\__|
`

// Global flags.
var (
	projectDir string
	logLevel   string
	noColor    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbit",
		Short: "Declarative reactivity for server-rendered HTML",
		Long: `Orbit attaches behaviors to server-rendered HTML.

Elements marked with o-scope get a reactive state store, and
directives such as o-text, o-model, o-if and o-for keep the
markup in sync with it.

The CLI runs pages with the built-in demo behaviors:

  • render a page after its scopes have settled
  • serve a page in the playground
  • check a page for unknown scopes and misplaced directives`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default from orbit.json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		checkCmd(),
		initCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var oe *errors.Error
		if stderrors.As(err, &oe) && oe.Code != "" {
			fmt.Fprint(os.Stderr, oe.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig loads the project configuration and applies global flags.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(projectDir)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return cfg, cfg.Logger(os.Stderr), nil
}

// pagePath returns the page named on the command line, or the configured
// page.
func pagePath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg.Path() == "" {
		return filepath.Join(projectDir, cfg.Serve.Page)
	}
	return cfg.PagePath()
}

// readPage parses the page at path.
func readPage(path string, logger *slog.Logger) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New("E051").
			WithDetail("Failed to open " + path).
			WithSuggestion("Pass the page as an argument or set serve.page in orbit.json").
			Wrap(err)
	}
	defer f.Close()

	doc, err := dom.Parse(f, dom.WithLogger(logger))
	if err != nil {
		return nil, errors.New("E051").WithDetail("Failed to parse " + path).Wrap(err)
	}
	return doc, nil
}

// newRuntime builds a runtime for doc with the demo behaviors registered.
func newRuntime(doc *dom.Document, cfg *config.Config, logger *slog.Logger, onError func(error)) (*orbit.Runtime, error) {
	evaluator, err := cfg.Evaluator()
	if err != nil {
		return nil, err
	}
	rt := orbit.New(doc,
		orbit.WithLogger(logger),
		orbit.WithPrefix(cfg.Prefix),
		orbit.WithEvaluator(evaluator),
		orbit.WithErrorHandler(onError),
	)
	demo.Register(rt)
	return rt, nil
}

// printBanner prints the orbit ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning to stderr so that it never mixes with rendered
// output.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// compact formats err on one line.
func compact(err error) string {
	var oe *errors.Error
	if stderrors.As(err, &oe) {
		return oe.FormatCompact()
	}
	return err.Error()
}
