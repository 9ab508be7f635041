package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gdprkv/internal/platform/postgres"
)

// MigrateResult is the JSON payload of the migrate command.
type MigrateResult struct {
	Version int64 `json:"version"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "migrate",
		Short:         "Apply pending schema migrations",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return NewExitError(ExitCommandError, "a database URL is required (--database-url or DATABASE_URL)")
	}

	db, err := postgres.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect", err)
	}
	defer db.Close()

	out.VerboseLog("applying migrations")
	if err := postgres.RunMigrations(db); err != nil {
		return WrapExitError(ExitCommandError, "migration failed", err)
	}
	version, err := postgres.MigrationVersion(db)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read schema version", err)
	}

	return out.Result(true, MigrateResult{Version: version}, func(w io.Writer) {
		fmt.Fprintf(w, "schema at version %d\n", version)
	})
}
