package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/toolasset/internal/infrastructure/sqlite"
)

func newDBCmd(c *cli) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the database schema",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "upgrade",
		Short: "Apply pending migrations",
		Long: `Apply every embedded migration not yet recorded in schema_migrations.
Running it again is a no-op. An existing database is copied to <db>.bak first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sqlite.Backup(cmd.Context(), c.resolvedDBPath()); err != nil {
				return fmt.Errorf("backing up database: %w", err)
			}
			db, err := c.openDB(cmd.Context(), false)
			if err != nil {
				return err
			}
			applied, err := db.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			f := c.formatter(cmd)
			if f.JSON() {
				if applied == nil {
					applied = []string{}
				}
				return f.Value(map[string][]string{"applied": applied})
			}
			if len(applied) == 0 {
				return f.Done("database is up to date")
			}
			for _, v := range applied {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), "applied "+v); err != nil {
					return err
				}
			}
			return f.Done(fmt.Sprintf("%d migration(s) applied", len(applied)))
		},
	})

	dbCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := c.openDB(cmd.Context(), false)
			if err != nil {
				return err
			}
			status, err := db.MigrationStatus(cmd.Context())
			if err != nil {
				return err
			}
			f := c.formatter(cmd)
			if f.JSON() {
				return f.Value(status)
			}
			rows := make([][]string, 0, len(status))
			for _, m := range status {
				applied := "pending"
				if m.AppliedAt != nil {
					applied = m.AppliedAt.Local().Format("2006-01-02 15:04:05")
				}
				rows = append(rows, []string{m.Version, applied})
			}
			return f.Table([]string{"VERSION", "APPLIED"}, rows)
		},
	})

	return dbCmd
}
