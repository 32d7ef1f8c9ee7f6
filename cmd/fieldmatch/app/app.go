// Package app provides the application context and dependency management
// for the fieldmatch CLI. It centralizes configuration, logging and the
// construction of the fieldmatch client used by every command.
package app

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/fieldmatch"
	"github.com/agentstation/fieldmatch/cmd/application"
	"github.com/agentstation/fieldmatch/internal/config"
	"github.com/agentstation/fieldmatch/pkg/embedding"
	"github.com/agentstation/fieldmatch/pkg/errors"
)

// App represents the fieldmatch application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	stdout io.Writer
	stderr io.Writer

	// Client instance (lazy-initialized, singleton)
	mu     sync.Mutex
	client fieldmatch.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("config file", err.Error(), err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Quiet reports whether alerts are suppressed.
func (a *App) Quiet() bool {
	return a.config.Quiet
}

// NoColor reports whether colored output is disabled.
func (a *App) NoColor() bool {
	return a.config.NoColor
}

// Stdout returns the writer for command results.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// Stderr returns the writer for alerts.
func (a *App) Stderr() io.Writer {
	return a.stderr
}

// Client returns the fieldmatch client. Without options the client is built
// once from the current configuration and cached; with options a new client
// is returned.
func (a *App) Client(opts ...fieldmatch.Option) (fieldmatch.Client, error) {
	if len(opts) > 0 {
		base, err := a.clientOptions()
		if err != nil {
			return nil, err
		}
		return fieldmatch.New(append(base, opts...)...)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}

	base, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	client, err := fieldmatch.New(base...)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// clientOptions translates the Viper configuration into client options.
func (a *App) clientOptions() ([]fieldmatch.Option, error) {
	var opts []fieldmatch.Option

	if path := viper.GetString(config.KeyLexicon); path != "" {
		opts = append(opts, fieldmatch.WithLexiconFile(path))
	}

	name, err := config.Embedder()
	if err != nil {
		return nil, err
	}
	switch name {
	case config.EmbedderNone:
		opts = append(opts, fieldmatch.WithEmbedder(nil))
	case config.EmbedderGemini:
		opts = append(opts, fieldmatch.WithGemini(embedding.GeminiConfig{
			APIKey:   config.APIKey(),
			Project:  config.Project(),
			Location: config.Location(),
			Model:    viper.GetString(config.KeyModel),
		}))
	}

	if k := viper.GetInt(config.KeyTopK); k > 0 {
		opts = append(opts, fieldmatch.WithRetrieval(k))
	}
	if ttl := config.CacheTTL(); ttl > 0 {
		opts = append(opts, fieldmatch.WithCache(ttl))
	}

	include := viper.GetStringSlice(config.KeyInclude)
	exclude := viper.GetStringSlice(config.KeyExclude)
	if len(include) > 0 || len(exclude) > 0 {
		opts = append(opts, fieldmatch.WithFilter(include, exclude))
	}

	a.logger.Debug().
		Str("embedder", name).
		Int("top_k", viper.GetInt(config.KeyTopK)).
		Str("lexicon_file", viper.GetString(config.KeyLexicon)).
		Msg("Building client")
	return opts, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(client fieldmatch.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}

// WithOutput redirects command results and alerts.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) error {
		a.stdout = stdout
		a.stderr = stderr
		return nil
	}
}

var _ application.Application = (*App)(nil)
