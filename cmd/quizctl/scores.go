package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/scoreevents"
)

var scoresCmd = &cobra.Command{
	Use:   "scores <component>",
	Short: "Show the top learners for a score component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		totals, err := scoreevents.NewPostgresSink(db.Pool).Totals(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tLEARNER\tPOINTS\tTIME")
		for i, t := range totals {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%.1fs\n", i+1, t.LearnerID, t.Points, t.TimeTaken)
		}
		return tw.Flush()
	},
}

func init() {
	scoresCmd.Flags().IntP("limit", "n", 10, "Number of learners to show")
}
