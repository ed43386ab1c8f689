// Package cli implements the compositor command-line interface.
//
// Every command reads a JSON graph document, applies one composite
// operation and writes the document back.
//
// # Commands
//
//   - make: collapse vertices into a composite
//   - expand: restore composites to their members
//   - contract: recontract expanded groups
//   - destroy: remove composite structure for good
//   - inspect: list the composites in a document
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "compositor"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath   string
	verbose      bool
	singleMember string
	cfg          config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// configure loads the configuration file and applies flag overrides.
func (c *CLI) configure(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.singleMember != "" {
		cfg.Engine.SingleMember = c.singleMember
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	level, _ := cfg.LogLevel()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	installHooks(c.Logger)

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// engine returns a composite engine built from the loaded configuration.
func (c *CLI) engine(ctx context.Context) (*composite.Engine, error) {
	opts, err := c.cfg.EngineOptions(loggerFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return composite.New(opts), nil
}
