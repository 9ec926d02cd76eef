package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/directive"
	"github.com/vango-dev/orbit/pkg/expression"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "orbit.json"

	// YAMLConfigFileName is the name of the YAML configuration file. It is
	// read only when no orbit.json exists.
	YAMLConfigFileName = "orbit.yaml"

	// DefaultPort is the default playground server port.
	DefaultPort = 4000

	// DefaultHost is the default playground server host.
	DefaultHost = "localhost"

	// DefaultPage is the page served when none is given.
	DefaultPage = "index.html"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "orbit"
)

// Config represents orbit.json.
type Config struct {
	// Prefix is the directive attribute prefix.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Compute configures the expression engine behind Ctx.Compute.
	Compute ComputeConfig `json:"compute,omitempty" yaml:"compute,omitempty"`

	// Log configures the CLI logger.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Metrics configures the Prometheus collectors.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Serve configures the playground server.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ComputeConfig selects the expression engine.
type ComputeConfig struct {
	// Engine is "expr" or "cel".
	Engine string `json:"engine,omitempty" yaml:"engine,omitempty"`

	// Allow lists the only expressions Compute may evaluate. Empty allows
	// any expression.
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig configures metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// ServeConfig configures the playground server.
type ServeConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// Page is the HTML page served at "/".
	Page string `json:"page,omitempty" yaml:"page,omitempty"`
}

// New returns a Config with default values.
func New() *Config {
	return &Config{
		Prefix: directive.DefaultPrefix,
		Compute: ComputeConfig{
			Engine: expression.EngineExpr,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Serve: ServeConfig{
			Host: DefaultHost,
			Port: DefaultPort,
			Page: DefaultPage,
		},
	}
}

// Load loads orbit.json, or orbit.yaml if there is no orbit.json, from dir.
func Load(dir string) (*Config, error) {
	jsonPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		return LoadFile(jsonPath)
	}
	yamlPath := filepath.Join(dir, YAMLConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return LoadFile(yamlPath)
	}
	return nil, errors.New("E040").
		WithDetail("No orbit.json or orbit.yaml found in " + dir).
		WithSuggestion("Run 'orbit init' to create one")
}

// LoadFile loads configuration from path. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E040").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Run 'orbit init' to create one")
		}
		return nil, errors.New("E042").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E042").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is well formed")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo saves the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E042").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E042").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	defaults := New()
	if c.Prefix == "" {
		c.Prefix = defaults.Prefix
	}
	if c.Compute.Engine == "" {
		c.Compute.Engine = defaults.Compute.Engine
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.Serve.Host == "" {
		c.Serve.Host = defaults.Serve.Host
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = defaults.Serve.Port
	}
	if c.Serve.Page == "" {
		c.Serve.Page = defaults.Serve.Page
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.Prefix, "-") || len(c.Prefix) < 2 {
		return errors.New("E041").
			WithDetail("prefix " + strconv.Quote(c.Prefix) + " must be a name followed by '-'").
			WithSuggestion(`Use a prefix such as "o-" or "x-"`)
	}
	switch strings.ToLower(c.Compute.Engine) {
	case expression.EngineExpr, expression.EngineCEL:
	default:
		return errors.New("E041").
			WithDetail("compute.engine " + strconv.Quote(c.Compute.Engine) + " is not one of expr, cel")
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("E041").
			WithDetail("log.level " + strconv.Quote(c.Log.Level) + " is not one of debug, info, warn, error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E041").
			WithDetail("log.format " + strconv.Quote(c.Log.Format) + " is not one of text, json")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("E041").
			WithDetail("serve.port must be between 0 and 65535")
	}
	return nil
}

// Address returns the playground listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Serve.Host, strconv.Itoa(c.Serve.Port))
}

// PagePath returns the absolute path of the served page.
func (c *Config) PagePath() string {
	if filepath.IsAbs(c.Serve.Page) {
		return c.Serve.Page
	}
	return filepath.Join(c.Dir(), c.Serve.Page)
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	return levels[strings.ToLower(c.Log.Level)]
}

// Logger builds a logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Evaluator builds the configured expression evaluator.
func (c *Config) Evaluator() (expression.Evaluator, error) {
	return expression.New(expression.Config{
		Engine: c.Compute.Engine,
		Allow:  c.Compute.Allow,
	})
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing the config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E040").
				WithDetail("No orbit.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'orbit init' to create one")
		}
		dir = parent
	}
}

// LoadOrDefault loads the configuration found at or above dir, falling back
// to defaults when there is none. Parse and validation errors are returned.
func LoadOrDefault(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		if errors.Code(err) == "E040" {
			return New(), nil
		}
		return nil, err
	}
	return Load(root)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
