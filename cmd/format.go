package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adftool/adf"
)

var (
	formatVariant string
	formatName    string
)

var formatCmd = &cobra.Command{
	Use:   "format FILE",
	Short: "Overwrite an ADF image with a fresh empty filesystem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		variantStr := formatVariant
		if variantStr == "" {
			variantStr = cfg.Format.Variant
		}
		variant, err := parseVariant(variantStr)
		if err != nil {
			return err
		}
		name := formatName
		if name == "" {
			name = cfg.Format.Name
		}

		var img *adf.Image
		if _, statErr := os.Stat(path); statErr == nil {
			img, err = openImage(path)
			if err != nil {
				return err
			}
		} else {
			img = adf.New(adf.WithStrictChecksums(cfg.Checksum.Strict))
		}

		if err := img.Format(variant, name, false, false); err != nil {
			return fmt.Errorf("failed to format: %w", err)
		}
		return saveImage(img, path)
	},
}

func init() {
	formatCmd.Flags().StringVarP(&formatVariant, "type", "t", "", "filesystem variant: OFS|FFS")
	formatCmd.Flags().StringVarP(&formatName, "name", "n", "", "disk name")
	rootCmd.AddCommand(formatCmd)
}
