package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/directive"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// Prefix is the directive attribute prefix.
	Prefix string

	// Force overwrites existing files.
	Force bool
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"demo":    demoTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E052").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: demo, minimal")
	}
	return tmpl, nil
}

// List returns all available template names in sorted order.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes one file of the template.
func (t *Template) Render(relPath string, cfg Config) ([]byte, error) {
	content, ok := t.Files[relPath]
	if !ok {
		return nil, errors.Newf(errors.CategoryCLI, "template %s has no file %s", t.Name, relPath)
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = "orbit"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = directive.DefaultPrefix
	}

	tmpl, err := template.New(relPath).Parse(content)
	if err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
	}
	return buf.Bytes(), nil
}

// Create writes the template's files into dir. Existing files are left
// alone and reported unless cfg.Force is set.
func (t *Template) Create(dir string, cfg Config) error {
	paths := make([]string, 0, len(t.Files))
	for relPath := range t.Files {
		paths = append(paths, relPath)
	}
	sort.Strings(paths)

	if !cfg.Force {
		for _, relPath := range paths {
			if _, err := os.Stat(filepath.Join(dir, relPath)); err == nil {
				return errors.New("E053").
					WithDetail(relPath + " already exists in " + dir).
					WithSuggestion("Pass --force to overwrite it")
			}
		}
	}

	for _, relPath := range paths {
		data, err := t.Render(relPath, cfg)
		if err != nil {
			return err
		}

		fullPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

const configFile = `{
  "prefix": "{{.Prefix}}",
  "compute": {
    "engine": "expr"
  },
  "log": {
    "level": "info",
    "format": "text"
  },
  "metrics": {
    "enabled": true,
    "namespace": "orbit"
  },
  "serve": {
    "host": "localhost",
    "port": 4000,
    "page": "index.html"
  }
}
`

// minimalTemplate returns the minimal template.
func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "One toggle scope",
		Files: map[string]string{
			"orbit.json": configFile,
			"index.html": `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.ProjectName}}</title>
</head>
<body>
  <h1>{{.ProjectName}}</h1>
  <section id="toggle" {{.Prefix}}scope="toggle">
    <button id="toggle-button" {{.Prefix}}onclick="toggle" {{.Prefix}}text="label">Show</button>
    <p id="panel" {{.Prefix}}show="open">Now you see me.</p>
  </section>
</body>
</html>
`,
		},
	}
}

// demoTemplate returns the template exercising every directive.
func demoTemplate() *Template {
	return &Template{
		Name:        "demo",
		Description: "Counter, todo list, toggle with teleport, and a lazily loaded greeting",
		Files: map[string]string{
			"orbit.json": configFile,
			"index.html": `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.ProjectName}}</title>
</head>
<body>
  <h1>{{.ProjectName}}</h1>

  <script id="counter-props" type="application/json">{"count": 3, "computed": "count * 10"}</script>
  <section id="counter" {{.Prefix}}scope="counter" {{.Prefix}}scope-props="counter-props">
    <p id="count" {{.Prefix}}text="count">3</p>
    <p id="computed" {{.Prefix}}text="computed" {{.Prefix}}bind-class="tone">30</p>
    <label><input id="disable" type="checkbox" {{.Prefix}}model="disabled"> disable input</label>
    <input id="counter-input" type="text" {{.Prefix}}model="input" {{.Prefix}}disabled="disabled">
    <button id="increase" {{.Prefix}}onclick="increase">Increase</button>
    <button id="reset" {{.Prefix}}onclick="reset">Reset</button>
    <ul id="counter-items">
      <template {{.Prefix}}for="items" as="item"><li {{.Prefix}}text="item"></li></template>
    </ul>
  </section>

  <section id="todo" {{.Prefix}}scope="todo" {{.Prefix}}scope-props='{"items": ["Write docs"]}'>
    <input id="draft" type="text" {{.Prefix}}model="draft" {{.Prefix}}ref="draft">
    <button id="add" {{.Prefix}}onclick="add">Add</button>
    <button id="clear" {{.Prefix}}onclick="clear">Clear done</button>
    <p><span id="remaining" {{.Prefix}}text="remaining"></span> remaining</p>
    <p id="empty" {{.Prefix}}show="empty">Nothing to do.</p>
    <ul id="todo-list">
      <template {{.Prefix}}for="items" as="todo"><li><input type="checkbox" {{.Prefix}}model="todo.done"><span {{.Prefix}}text="todo.title"></span></li></template>
    </ul>
  </section>

  <section id="toggle" {{.Prefix}}scope="toggle">
    <button id="toggle-button" {{.Prefix}}onclick="toggle" {{.Prefix}}text="label">Show</button>
    <template {{.Prefix}}if="open">
      <div class="panel">
        <p>Now you see me.</p>
        <template {{.Prefix}}teleport="#overlay"><p class="toast">Panel opened</p></template>
      </div>
    </template>
  </section>

  <section id="greeting" {{.Prefix}}scope="greeting" {{.Prefix}}load="visible" {{.Prefix}}scope-props='{"name": "Orbit"}'>
    <p id="message" {{.Prefix}}text="message">Loading</p>
  </section>

  <div id="overlay"></div>
</body>
</html>
`,
		},
	}
}
