package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/orbit/internal/config"
	"github.com/vango-dev/orbit/internal/templates"
)

func initCmd() *cobra.Command {
	var (
		template string
		name     string
		prefix   string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create orbit.json and a starter page",
		Long: `Create orbit.json and a starter page in a directory.

Templates:
  minimal   One toggle scope
  demo      Counter, todo list, toggle with teleport, lazy greeting

Examples:
  orbit init
  orbit init site --template=demo
  orbit init --prefix=x- --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := projectDir
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, template, templates.Config{
				ProjectName: name,
				Prefix:      prefix,
				Force:       force,
			})
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "minimal", "Project template ("+strings.Join(templates.List(), ", ")+")")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Directive prefix (default o-)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")

	return cmd
}

func runInit(dir, templateName string, tcfg templates.Config) error {
	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	if tcfg.Prefix != "" {
		cfg := config.New()
		cfg.Prefix = tcfg.Prefix
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if tcfg.ProjectName == "" {
		tcfg.ProjectName = filepath.Base(abs)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return err
	}

	info("Creating project from '%s' template...", templateName)
	if err := tmpl.Create(abs, tcfg); err != nil {
		return err
	}

	success("Created %s in %s", config.ConfigFileName, abs)
	fmt.Println()
	info("Next steps:")
	if dir != "." {
		info("  cd %s", dir)
	}
	info("  orbit serve")
	fmt.Println()
	return nil
}
