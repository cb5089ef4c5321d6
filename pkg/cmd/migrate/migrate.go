package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/pkg/db/migrate"
	"github.com/mpapenbr/course-split-timer/pkg/utils"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration for the configured storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration(cmd.Context())
		},
	}
	return cmd
}

func startMigration(ctx context.Context) error {
	switch config.Storage {
	case config.StoragePostgres:
		postgresAddr := utils.ExtractFromDBURL(config.DB)
		if err := utils.WaitForTCP(ctx, postgresAddr, util.WaitTimeout()); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}
		return migrate.MigrateDb(prepareURLForDB(config.DB))
	case config.StorageSQLite:
		// opening the store migrates the schema
		store, err := util.OpenStore(ctx)
		if err != nil {
			return err
		}
		store.Close()
		return nil
	default:
		log.Info("No migration required for storage", log.String("storage", config.Storage))
		return nil
	}
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, options) {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	} else {
		return fmt.Sprintf("%s?%s", url, options)
	}
}
