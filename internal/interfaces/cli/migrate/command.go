// Package migrate implements the CLI command that manages the database
// schema.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"fiscus/internal/infrastructure/config"
	"fiscus/internal/infrastructure/database"
	"fiscus/internal/infrastructure/persistence/models"
	"fiscus/internal/infrastructure/repository"
	"fiscus/internal/infrastructure/seed"
	"fiscus/internal/shared/logger"
)

var (
	env      string
	tenantID uint
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema tools",
		Long:  `Apply the database schema and seed built-in data.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newSeedCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply the database schema",
		Long:  `Create or update all tables to match the current model definitions.`,
		RunE:  runUp,
	}
}

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed system roles for a tenant",
		Long:  `Create the built-in system roles (Owner, Admin, Member, Viewer) for a tenant. Seeding is idempotent.`,
		RunE:  runSeed,
	}

	cmd.Flags().UintVarP(&tenantID, "tenant", "t", 0, "Tenant ID to seed (required)")
	cmd.MarkFlagRequired("tenant")

	return cmd
}

func initEnv() (logger.Interface, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return logger.NewLogger(), nil
}

func runUp(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("applying database schema", "environment", env)

	if err := database.Get().AutoMigrate(
		&models.RoleModel{},
		&models.MemberModel{},
		&models.MemberRoleModel{},
		&models.AccountOverrideModel{},
		&models.SubscriptionModel{},
		&models.FeatureUsageModel{},
	); err != nil {
		log.Errorw("schema migration failed", "error", err)
		return fmt.Errorf("schema migration failed: %w", err)
	}

	log.Infow("schema migration completed")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("seeding system roles", "environment", env, "tenant_id", tenantID)

	repo := repository.NewRoleRepository(database.Get())
	if err := seed.SystemRoles(cmd.Context(), repo, tenantID, log); err != nil {
		log.Errorw("system role seeding failed", "error", err, "tenant_id", tenantID)
		return fmt.Errorf("system role seeding failed: %w", err)
	}

	log.Infow("system roles seeded", "tenant_id", tenantID)
	return nil
}
