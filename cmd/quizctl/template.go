package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an XLSX item bank template",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		if out == "-" {
			return curriculum.WriteXLSXTemplate(cmd.OutOrStdout())
		}

		f, err := os.Create(filepath.Clean(out))
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		if err := curriculum.WriteXLSXTemplate(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		cmd.Printf("template written to %s\n", out)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringP("output", "o", "bank-template.xlsx", "Output file, or - for stdout")
}
