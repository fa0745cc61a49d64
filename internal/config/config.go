// Package config loads the settings for the views command from YAML, with
// overrides from the environment.
package config

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"impractical.co/views"
	"impractical.co/views/internal/handlebars"
)

const (
	// DefaultEnvPrefix starts the name of every environment variable that
	// overrides a setting, unless VIEWS_ENV_PREFIX replaces it.
	DefaultEnvPrefix = "VIEWS_"

	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultMetricsPath = "/metrics"
)

// Engines that views can be written in.
const (
	EngineHTML       = "html"
	EngineText       = "text"
	EngineHandlebars = "handlebars"
)

// Config is the configuration for the views command.
type Config struct {
	Views   ViewsConfig   `yaml:"views"`
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOG_"`
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// ViewsConfig says where views live and how they're rendered. Its
// environment variables have no section prefix, like VIEWS_ROOT.
type ViewsConfig struct {
	Root          string   `yaml:"root" env:"ROOT"`
	Extension     string   `yaml:"extension" env:"EXTENSION"`
	AltExtensions []string `yaml:"alt_extensions" env:"ALT_EXTENSIONS"`
	DiscardData   bool     `yaml:"discard_data" env:"DISCARD_DATA"`
	Engine        string   `yaml:"engine" env:"ENGINE"`
	ErrorView     string   `yaml:"error_view" env:"ERROR_VIEW"`

	// Escape is the context data from outside a template, like query
	// parameters, is escaped for before it's in scope. It defaults to raw
	// for the html engine, which escapes output itself, and html for the
	// others.
	Escape string `yaml:"escape" env:"ESCAPE"`
}

// ServerConfig is where the HTTP server listens.
type ServerConfig struct {
	Address string `yaml:"address" env:"ADDRESS"`
	Port    int    `yaml:"port" env:"PORT"`
}

// LoggingConfig controls the level and format of logs.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	Text  bool   `yaml:"text" env:"TEXT"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Path      string `yaml:"path" env:"PATH"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// ParseConfig reads YAML configuration from bytes, then applies any
// overrides set in the environment. The environment prefix is VIEWS_
// unless VIEWS_ENV_PREFIX says otherwise.
func ParseConfig(bytes []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(bytes, &c); err != nil {
		return nil, errors.Wrapf(err, "failed unmarshalling yaml")
	}

	envPrefix := DefaultEnvPrefix
	if v, ok := os.LookupEnv(DefaultEnvPrefix + "ENV_PREFIX"); ok {
		envPrefix = v
	}
	if err := env.ParseWithOptions(&c, env.Options{Prefix: envPrefix}); err != nil {
		return nil, errors.Wrap(err, "failed reading environment")
	}
	return &c, nil
}

// ReadConfig parses the configuration file at path, fills in defaults, and
// validates the result. An empty path means no file; only the environment
// and defaults apply.
func ReadConfig(path string) (*Config, error) {
	var bytes []byte
	if path != "" {
		var err error
		bytes, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed reading server config file: %s", path)
		}
	}

	c, err := ParseConfig(bytes)
	if err != nil {
		return nil, err
	}
	c.FillDefaults()
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return c, nil
}

// FillDefaults sets every unset value that has a default.
func (c *Config) FillDefaults() {
	if c.Views.Root == "" {
		c.Views.Root = "."
	}
	if c.Views.Extension == "" {
		c.Views.Extension = views.DefaultExtension
	}
	if c.Views.Engine == "" {
		c.Views.Engine = EngineHTML
	}
	if c.Views.Escape == "" {
		c.Views.Escape = string(defaultEscape(c.Views.Engine))
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// Validate reports the first setting that can't be used.
func (c *Config) Validate() error {
	switch c.Views.Engine {
	case EngineHTML, EngineText, EngineHandlebars:
	default:
		return errors.Errorf("views.engine must be one of %s, %s, %s; got %q", EngineHTML, EngineText, EngineHandlebars, c.Views.Engine)
	}
	if _, err := views.ParseContext(c.Views.Escape); err != nil {
		return errors.Wrap(err, "views.escape")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.Errorf("server.port must be between 1 and 65535; got %d", c.Server.Port)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.Errorf("metrics.path must start with /; got %q", c.Metrics.Path)
	}
	return nil
}

// FS returns the directory views are loaded from.
func (c ViewsConfig) FS() fs.FS {
	return os.DirFS(c.Root)
}

// defaultEscape is the context outside data is escaped for when the
// configuration doesn't say. html/template escapes by context when it
// writes, so escaping first would escape twice.
func defaultEscape(engine string) views.Context {
	if engine == EngineHTML {
		return views.ContextRaw
	}
	return views.ContextHTML
}

// Options returns the Renderer options the configuration describes, for
// views loaded from FS.
func (c ViewsConfig) Options() []views.Option {
	opts := []views.Option{
		views.WithExtension(c.Extension),
		views.WithSaveData(!c.DiscardData),
		views.WithLocator(views.ExtensionLocator{Alternates: c.AltExtensions}),
	}
	switch c.Engine {
	case EngineText:
		opts = append(opts, views.WithExecutor(views.TextExecutor{}))
	case EngineHandlebars:
		opts = append(opts, views.WithExecutor(handlebars.Executor{}))
	}
	if c.ErrorView != "" {
		opts = append(opts, views.WithErrorView(c.ErrorView))
	}
	return opts
}

// EscapeContext returns the context outside data is escaped for. It's
// ContextRaw if Escape doesn't name a context.
func (c ViewsConfig) EscapeContext() views.Context {
	ctx, err := views.ParseContext(c.Escape)
	if err != nil {
		return views.ContextRaw
	}
	return ctx
}

// Addr is the address to listen on, as host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// Handler returns a slog.Handler writing to w at the configured level, as
// text if Text is set and JSON otherwise.
func (c LoggingConfig) Handler(w io.Writer) (slog.Handler, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Text {
		return slog.NewTextHandler(w, opts), nil
	}
	return slog.NewJSONHandler(w, opts), nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, errors.Wrapf(err, "invalid logging.level %q", level)
	}
	return l, nil
}
