package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/library-management/internal/auth"
	"github.com/frahmantamala/library-management/internal/seed"
	"github.com/frahmantamala/library-management/pkg/logger"
	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles, permissions and the admin account",
	Long:  `Create the Admin and Librarian roles, the full permission vocabulary and the admin user. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		lg := logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gdb, err := openGorm(db, lg)
		if err != nil {
			return err
		}

		seeder := seed.New(gdb, auth.NewBcryptCredentialStore(cfg.Security.BCryptCost), lg)
		res, err := seeder.Run(context.Background(), seedOpts)
		if err != nil {
			return err
		}
		if res.AdminCreated {
			fmt.Printf("Admin user created with username '%s'. Change the password after first login.\n", seedOpts.AdminUsername)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AdminUsername, "admin-username", seedOpts.AdminUsername, "admin account username")
	seedCmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", seedOpts.AdminEmail, "admin account email")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", seedOpts.AdminPassword, "admin account password")
}
