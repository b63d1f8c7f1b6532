package main

import (
	"invoicehub/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.Up), string(database.Down), string(database.Status)},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction, err := database.ParseDirection(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer database.ClosePool(pool)

		return database.Migrate(ctx, pool, direction)
	},
}
