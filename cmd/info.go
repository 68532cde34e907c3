package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print ADF disk information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}
		info, err := img.Info()
		if err != nil {
			return fmt.Errorf("failed to read disk info: %w", err)
		}
		fmt.Printf("filesystem:   %s\n", info.Variant)
		fmt.Printf("name:         %s\n", info.DiskName)
		fmt.Printf("international: %v\n", info.Intl)
		fmt.Printf("dircache:     %v\n", info.Dircache)
		fmt.Printf("created:      %s\n", info.Created.Format("2006-01-02 15:04:05"))
		fmt.Printf("modified:     %s\n", info.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Printf("bitmap valid: %v\n", info.BitmapValid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
