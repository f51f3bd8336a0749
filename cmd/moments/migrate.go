package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vbonduro/moments/internal/config"
	"github.com/vbonduro/moments/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and print the schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Open applies pending migrations.
		database, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		version, dirty, err := db.Version(database)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dialect %s, dirty=%t)\n", version, database.Dialect, dirty)
		return err
	},
}
