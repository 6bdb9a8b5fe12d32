package main

import (
	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/platform/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db.Pool); err != nil {
			return err
		}
		cmd.Println("schema up to date")
		return nil
	},
}
