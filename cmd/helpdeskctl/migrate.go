package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/campus-helpdesk/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := initEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			for i := 0; i < steps; i++ {
				if err := persistence.RollbackMigration(cmd.Context(), env.pg.PoolHandle(), env.logger); err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
			}
			return nil
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				env, err := initEnv(cmd.Context())
				if err != nil {
					return err
				}
				defer env.Close()
				return persistence.RunMigrations(cmd.Context(), env.pg.PoolHandle(), env.logger)
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				env, err := initEnv(cmd.Context())
				if err != nil {
					return err
				}
				defer env.Close()
				version, err := persistence.SchemaVersion(cmd.Context(), env.pg.PoolHandle())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
				return nil
			},
		},
	)
	return cmd
}
