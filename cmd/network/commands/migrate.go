package commands

import (
	"github.com/spf13/cobra"

	pkglog "github.com/jserwatka/network/pkg/log"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update every table the service uses.

Examples:
  network migrate
  DB_DRIVER=postgres DB_HOST=db network migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

func runMigrate() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := migrate(db, cfg.Database.Driver); err != nil {
		return err
	}

	logger := pkglog.L()
	logger.Info().Str("driver", cfg.Database.Driver).Msg("schema up to date")
	return nil
}
