package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/cases"
	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/exposure"
	"github.com/p-n-ai/pai-quiz/internal/platform/database"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import YAML, JSON and XLSX item banks from a directory",
	Long: `Import walks <dir> for item banks and writes their items and cases to the
database. Answers are matched to options case-insensitively; items whose
answer matches no option are skipped. Cases referenced by items but defined
elsewhere get their question count increased.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := curriculum.NewLoader(args[0])
		if err != nil {
			return err
		}
		result := loader.Result()

		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			cmd.Printf("would import %d items, %d cases (%d skipped, %d external cases)\n",
				len(result.Bank.Items), len(result.Bank.Cases), result.Skipped, len(result.ExternalCaseCounts))
			return nil
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := database.Migrate(cmd.Context(), db.Pool); err != nil {
				return err
			}
		}

		items, err := exposure.NewPostgresStore(db.Pool)
		if err != nil {
			return err
		}
		caseStore, err := cases.NewPostgresStore(db.Pool)
		if err != nil {
			return err
		}

		stats, err := curriculum.Seed(cmd.Context(), result, items, caseStore)
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}
		cmd.Printf("imported %d items, %d cases (%d skipped, %d unknown cases)\n",
			stats.Items, stats.Cases, result.Skipped, stats.MissingCases)
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Parse and report without writing")
	importCmd.Flags().Bool("migrate", true, "Apply the schema before importing")
}
