package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractOut string

var extractCmd = &cobra.Command{
	Use:   "extract ADF NAME",
	Short: "Extract a file's bytes from an ADF image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		adfPath, name := args[0], args[1]
		img, err := openImage(adfPath)
		if err != nil {
			return err
		}
		sector, err := img.Resolve(name)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", name, err)
		}
		data, err := img.ReadFile(sector)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", name, err)
		}

		if extractOut == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(extractOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", extractOut, err)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "output", "o", "", "output path (default: stdout)")
	rootCmd.AddCommand(extractCmd)
}
