package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		_, closeStore, err := openStore(cmd.Context(), cfg, log, true)
		if err != nil {
			return err
		}
		closeStore()
		log.WithField("driver", cfg.Store.Driver).Info("Migrations complete")
		return nil
	},
}
