package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prowheel/wheellab/log"
	"github.com/prowheel/wheellab/pkg/cmd/util"
	"github.com/prowheel/wheellab/pkg/config"
	dbMigrate "github.com/prowheel/wheellab/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migration-source-url",
		"m",
		"",
		"url to migration files (default: embedded migrations)")

	return cmd
}

func startMigration(ctx context.Context) error {
	util.SetupLogger()
	if err := util.WaitForDB(ctx); err != nil {
		return err
	}

	dbURL := prepareURLForDB(config.DB)
	var err error
	if config.MigrationSourceURL == "" {
		log.Info("Using embedded migrations")
		err = dbMigrate.MigrateDB(dbURL)
	} else {
		log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
		err = dbMigrate.MigrateFrom(config.MigrationSourceURL, dbURL)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	version, dirty, err := dbMigrate.Version(dbURL)
	if err != nil {
		return err
	}
	log.Info("Migration done", log.Uint("version", version), log.Bool("dirty", dirty))
	return nil
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	}
	return fmt.Sprintf("%s?%s", url, options)
}
