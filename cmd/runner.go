package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plexlist/internal/services"
	"github.com/desertthunder/plexlist/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	catalog    services.Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	progress   io.Writer
	openDB     func(shared.DatabaseConfig) (*sql.DB, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Catalog    services.Catalog // overrides the Plex client built from flags and config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer // command results
	Progress   io.Writer // progress line, usually stderr
	OpenDB     func(shared.DatabaseConfig) (*sql.DB, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.OpenDB == nil {
		opts.OpenDB = shared.OpenHistoryDatabase
	}

	return &Runner{
		config:     opts.Config,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		progress:   opts.Progress,
		openDB:     opts.OpenDB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		curateCommand, sectionsCommand, playlistsCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the file named by --config over the current config and applies the log level.
//
// A missing default config file is not an error; a missing file passed explicitly is.
func (r *Runner) configure(cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return nil
}

// catalogFor returns the injected catalog or builds a Plex client.
//
// --url and --token (or PLEX_URL and PLEX_TOKEN) take precedence over the [plex] config section.
func (r *Runner) catalogFor(cmd *cli.Command) (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	baseURL := cmd.String("url")
	if baseURL == "" {
		baseURL = r.config.Plex.URL
	}
	token := cmd.String("token")
	if token == "" {
		token = r.config.Plex.Token
	}

	httpClient := r.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: r.config.Plex.Timeout()}
	}

	plex, err := services.NewPlexService(services.PlexOpts{
		BaseURL:           baseURL,
		Token:             token,
		RequestsPerSecond: r.config.Plex.RequestsPerSecond,
		HTTPClient:        httpClient,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("connecting to server", "url", baseURL)
	return plex, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
