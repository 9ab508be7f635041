package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"gdprkv/internal/app"
	"gdprkv/internal/platform/config"
	"gdprkv/internal/platform/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	DatabaseURL string

	// newApp builds the services; tests swap it for a memory-backed app.
	newApp func(ctx context.Context, cfg config.Config, log *slog.Logger) (*app.App, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for gdprkvctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gdprkvctl",
		Short: "Operate a gdprkv deployment",
		Long: `gdprkvctl verifies audit hash chains and runs the background jobs
on demand. Configuration is read from the same environment variables as
the server; --database-url overrides DATABASE_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")

	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewSweepCommand(opts))
	cmd.AddCommand(NewPruneAuditCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadConfig reads the environment and applies flag overrides. Migrations
// are left to the migrate command.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if o.DatabaseURL != "" {
		cfg.Database.URL = o.DatabaseURL
	}
	cfg.Database.Migrate = false
	return cfg, nil
}

func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.Verbose {
		return logger.Discard()
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), "debug", "text")
}

// openApp builds the services for a one-off command. The caller closes it.
func (o *RootOptions) openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log := o.logger(cmd)
	newApp := o.newApp
	if newApp == nil {
		newApp = func(ctx context.Context, cfg config.Config, log *slog.Logger) (*app.App, error) {
			return app.New(ctx, cfg, app.WithLogger(log))
		}
	}
	if cfg.Database.URL == "" {
		log.Warn("no database configured, operating on an empty in-memory store")
	}
	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to initialise", err)
	}
	return a, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
