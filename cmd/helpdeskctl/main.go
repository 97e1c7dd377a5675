package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/observability"
	"github.com/spec-kit/campus-helpdesk/internal/persistence"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "helpdeskctl",
		Short:         "Administrative tools for the campus helpdesk",
		Long:          `helpdeskctl manages the helpdesk database: schema migrations, office and staff seeding, accounts and bearer tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newStaffCommand(),
		newUserCommand(),
		newTokenCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtimeEnv is what every subcommand needs: config, a logger and a database.
type runtimeEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
	store  repository.Store
}

func initEnv(ctx context.Context) (*runtimeEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	if pg.PoolHandle() == nil {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	return &runtimeEnv{
		cfg:    cfg,
		logger: logger,
		pg:     pg,
		store:  repository.NewStore(pg.PoolHandle()),
	}, nil
}

func (e *runtimeEnv) Close() {
	e.pg.Close()
	_ = e.logger.Sync()
}
