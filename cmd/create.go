package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adftool/adf"
)

var createCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "Write a zeroed, unformatted ADF image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.WriteFile(args[0], make([]byte, adf.ImageSize), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
