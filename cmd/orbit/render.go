package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/orbit"
	"github.com/vango-dev/orbit/internal/config"
	"github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/dom"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/scope"
)

// maxRevealRounds bounds --reveal when revealed scopes render more deferred
// scopes.
const maxRevealRounds = 8

type renderOptions struct {
	reveal  bool
	ids     bool
	strict  bool
	timeout time.Duration
}

func renderCmd() *cobra.Command {
	var (
		opts   renderOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [page.html]",
		Short: "Run a page and print the settled HTML",
		Long: `Run a page with the demo behaviors and print the resulting HTML.

Scopes are mounted, their directives bound, and lazily loaded behaviors
awaited. Scopes with o-load="visible" stay inert unless --reveal is set.

Examples:
  orbit render
  orbit render index.html --reveal
  orbit render index.html -o out.html --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			w := io.Writer(os.Stdout)
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runRender(w, pagePath(cfg, args), cfg, logger, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.reveal, "reveal", false, "Treat every deferred scope as visible")
	cmd.Flags().BoolVar(&opts.ids, "ids", false, "Add data-oid attributes to every element")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when the runtime reports diagnostics")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "How long to wait for lazily loaded behaviors")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func runRender(w io.Writer, path string, cfg *config.Config, logger *slog.Logger, opts renderOptions) error {
	doc, err := readPage(path, logger)
	if err != nil {
		return err
	}

	var diagnostics []error
	rt, err := newRuntime(doc, cfg, logger, func(err error) {
		diagnostics = append(diagnostics, err)
	})
	if err != nil {
		return err
	}
	if err := rt.Start(); err != nil {
		return err
	}
	defer rt.Stop()

	if err := settle(doc, rt, opts); err != nil {
		return err
	}
	if err := doc.Render(w, dom.RenderOptions{IDs: opts.ids}); err != nil {
		return err
	}
	io.WriteString(w, "\n")

	for _, d := range diagnostics {
		warn("%s", compact(d))
	}
	if opts.strict && len(diagnostics) > 0 {
		return errors.Newf(errors.CategoryCLI, "%d diagnostics reported", len(diagnostics))
	}
	return nil
}

// settle flushes the document until no scope is resolving, revealing
// deferred scopes first when asked to.
func settle(doc *dom.Document, rt *orbit.Runtime, opts renderOptions) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	for round := 0; ; round++ {
		doc.Flush()
		for resolving(rt) {
			if err := doc.Await(ctx); err != nil {
				return errors.Newf(errors.CategoryCLI, "scopes still loading after %s", opts.timeout)
			}
		}
		if !opts.reveal || round >= maxRevealRounds {
			return nil
		}
		if reveal(doc, rt) == 0 {
			return nil
		}
	}
}

func resolving(rt *orbit.Runtime) bool {
	for _, s := range rt.Scopes() {
		if s.State() == scope.Resolving {
			return true
		}
	}
	return false
}

// reveal marks every deferred scope root visible and returns how many it
// found.
func reveal(doc *dom.Document, rt *orbit.Runtime) int {
	load := rt.Registry().Vocabulary().Load
	var deferred []host.Element
	host.Walk(doc.Root(), func(el host.Element) bool {
		if v, ok := el.Attr(load); ok && v == orbit.LoadVisible {
			deferred = append(deferred, el)
		}
		return true
	})
	for _, el := range deferred {
		doc.SetVisible(el)
	}
	return len(deferred)
}
