package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/orbit/internal/config"
	"github.com/vango-dev/orbit/internal/templates"
	"github.com/vango-dev/orbit/pkg/directive"
	"github.com/vango-dev/orbit/pkg/expression"
)

const modulePath = "github.com/vango-dev/orbit"

// buildInfo describes this binary and the runtime defaults compiled into it.
type buildInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	Built     string   `json:"built"`
	Module    string   `json:"module"`
	GoVersion string   `json:"go"`
	Platform  string   `json:"platform"`
	Prefix    string   `json:"prefix"`
	Engines   []string `json:"engines"`
	Configs   []string `json:"configs"`
	Templates []string `json:"templates"`
}

func currentBuild() buildInfo {
	info := buildInfo{
		Version:   version,
		Commit:    commit,
		Built:     date,
		Module:    modulePath,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Prefix:    directive.DefaultPrefix,
		Engines:   []string{expression.EngineExpr, expression.EngineCEL},
		Configs:   []string{config.ConfigFileName, config.YAMLConfigFileName},
		Templates: templates.List(),
	}
	// go install stamps the module version when no ldflags were given.
	if info.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	return info
}

func versionCmd() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and runtime defaults",
		Long: `Print the orbit version together with the defaults compiled into the
runtime: directive prefix, expression engines, config file names and
project templates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentBuild()
			switch {
			case short:
				fmt.Println(info.Version)
				return nil
			case asJSON:
				return writeBuildJSON(os.Stdout, info)
			}
			printBanner()
			fmt.Println()
			writeBuild(os.Stdout, info)
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func writeBuild(w io.Writer, info buildInfo) {
	fmt.Fprintf(w, "  Version:    %s\n", info.Version)
	fmt.Fprintf(w, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  Built:      %s\n", info.Built)
	fmt.Fprintf(w, "  Module:     %s\n", info.Module)
	fmt.Fprintf(w, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "  OS/Arch:    %s\n", info.Platform)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Prefix:     %s\n", info.Prefix)
	fmt.Fprintf(w, "  Engines:    %s\n", strings.Join(info.Engines, ", "))
	fmt.Fprintf(w, "  Configs:    %s\n", strings.Join(info.Configs, ", "))
	fmt.Fprintf(w, "  Templates:  %s\n", strings.Join(info.Templates, ", "))
}

func writeBuildJSON(w io.Writer, info buildInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
