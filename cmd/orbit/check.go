package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/orbit"
	"github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/directive"
	"github.com/vango-dev/orbit/pkg/host"
)

// scopeInfo summarizes one scope root.
type scopeInfo struct {
	Name       string
	Known      bool
	Deferred   bool
	Directives map[string]int
}

// checkReport is the result of inspecting a page.
type checkReport struct {
	Scopes   []*scopeInfo
	Problems []*errors.Error
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [page.html]",
		Short: "List the scopes of a page and report problems",
		Long: `List every scope root of a page with the directives bound inside it.

Problems reported:
  E001  a scope name with no registered behavior
  E002  o-if, o-for or o-teleport on an element that is not a <template>
  directives outside of any scope, which are never bound

Examples:
  orbit check
  orbit check index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			doc, err := readPage(pagePath(cfg, args), logger)
			if err != nil {
				return err
			}
			rt, err := newRuntime(doc, cfg, logger, nil)
			if err != nil {
				return err
			}

			known := make(map[string]bool)
			for _, name := range rt.Names() {
				known[name] = true
			}
			report := inspect(doc.Root(), rt.Registry(), known)
			printReport(os.Stdout, report)

			if n := len(report.Problems); n > 0 {
				return errors.Newf(errors.CategoryCLI, "%d problems found", n)
			}
			success("No problems found")
			return nil
		},
	}
	return cmd
}

// inspect walks root, template contents included, and attributes every
// directive to its nearest scope.
func inspect(root host.Element, registry *directive.Registry, known map[string]bool) checkReport {
	var report checkReport
	vocab := registry.Vocabulary()

	var walk func(el host.Element, current *scopeInfo)
	walk = func(el host.Element, current *scopeInfo) {
		if name, ok := el.Attr(vocab.Scope); ok {
			load, _ := el.Attr(vocab.Load)
			current = &scopeInfo{
				Name:       name,
				Known:      known[name],
				Deferred:   load == orbit.LoadVisible,
				Directives: make(map[string]int),
			}
			report.Scopes = append(report.Scopes, current)
			if !current.Known {
				report.Problems = append(report.Problems,
					errors.New("E001").WithScope(name).WithAttribute(vocab.Scope, name))
			}
		}

		for _, attr := range el.Attrs() {
			_, kind, ok := registry.Lookup(attr.Name)
			if !ok || kind == "" {
				continue
			}
			switch kind {
			case directive.KindIf, directive.KindFor, directive.KindTeleport:
				if !el.IsTemplate() {
					report.Problems = append(report.Problems,
						errors.New("E002").WithScope(scopeName(current)).WithAttribute(attr.Name, attr.Value))
				}
			}
			if current == nil {
				report.Problems = append(report.Problems,
					errors.Newf(errors.CategoryBinding, "Directive outside of any scope").WithAttribute(attr.Name, attr.Value))
				continue
			}
			current.Directives[kind]++
		}

		for _, child := range el.Children() {
			walk(child, current)
		}
		if el.IsTemplate() {
			for _, child := range el.Content() {
				walk(child, current)
			}
		}
	}
	walk(root, nil)
	return report
}

func scopeName(s *scopeInfo) string {
	if s == nil {
		return ""
	}
	return s.Name
}

// printReport writes one line per scope followed by the problems.
func printReport(w io.Writer, report checkReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tSTATUS\tLOAD\tDIRECTIVES")
	for _, s := range report.Scopes {
		status := "ok"
		if !s.Known {
			status = "unknown"
		}
		load := "eager"
		if s.Deferred {
			load = "visible"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, status, load, directiveSummary(s.Directives))
	}
	tw.Flush()

	if len(report.Problems) > 0 {
		fmt.Fprintln(w)
		for _, p := range report.Problems {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", p.FormatCompact())
		}
	}
}

// directiveSummary renders counts as "kind×n" in kind order.
func directiveSummary(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	parts := make([]string, len(kinds))
	for i, kind := range kinds {
		parts[i] = fmt.Sprintf("%s×%d", kind, counts[kind])
	}
	return strings.Join(parts, " ")
}
