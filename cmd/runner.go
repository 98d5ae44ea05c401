package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/loopauth/internal/serializer"
	"github.com/desertthunder/loopauth/internal/server"
	"github.com/desertthunder/loopauth/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	logger     *log.Logger
	output     io.Writer
	opener     server.Opener
	serializer *serializer.Serializer
	openDB     func(shared.DatabaseConfig) (*sql.DB, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	// Config is used as-is when set; otherwise commands load their --config file.
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	Opener     server.Opener
	Serializer *serializer.Serializer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Opener == nil {
		opts.Opener = shared.BrowserOpener{}
	}
	if opts.Serializer == nil {
		s, err := serializer.New(serializer.NewPooledStreamFactory())
		if err != nil {
			panic(fmt.Sprintf("failed to create serializer: %v", err))
		}
		opts.Serializer = s
	}

	return &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		opener:     opts.Opener,
		serializer: opts.Serializer,
		openDB:     shared.OpenDatabase,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		authorizeCommand, attemptsCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the injected config, the file at path when it exists, or the defaults.
//
// Environment overrides apply in every case; the log level is applied to the runner's logger.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	config := r.config
	if config == nil {
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
			config = shared.DefaultConfig()
		}
	}

	if err := shared.ApplyEnv(config); err != nil {
		return nil, err
	}

	level, err := shared.ParseLogLevel(config.Log.Level)
	if err != nil {
		return nil, err
	}
	shared.SetLogLevel(r.logger, level)

	return config, nil
}

// openJournal opens the attempt database, honoring the --db override.
func (r *Runner) openJournal(config *shared.Config, cmd *cli.Command) (*sql.DB, error) {
	dbConfig := config.Database
	if path := cmd.String("db"); path != "" {
		dbConfig.Path = path
	}
	return r.openDB(dbConfig)
}

func (r *Runner) writeJSON(data any) error {
	output, err := r.serializer.Serialize(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
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
