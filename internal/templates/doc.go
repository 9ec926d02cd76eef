// Package templates provides project scaffolding templates.
//
// This package contains the templates written by orbit init. Every
// template produces an orbit.json and an index.html page whose scopes are
// served by the demo behaviors.
//
// # Available Templates
//
//   - minimal: one toggle scope
//   - demo: counter, todo list, toggle with teleport, and a lazily loaded
//     greeting
//
// # Usage
//
//	tmpl, err := templates.Get("demo")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := tmpl.Create(projectDir, templates.Config{ProjectName: "shop"}); err != nil {
//	    log.Fatal(err)
//	}
//
// # Template Variables
//
//	{{.ProjectName}}  - Name of the project, used as the page title
//	{{.Prefix}}       - Directive attribute prefix, "o-" by default
package templates
