package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"adftool/adf"
)

var bitmapCmd = &cobra.Command{
	Use:   "bitmap",
	Short: "Bitmap inspection and edits: info, set, defrag",
}

var bitmapInfoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print free/used sector counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}
		free, used := 0, 0
		for s := 2; s < img.Len(); s++ {
			ok, err := img.Status(s)
			if err != nil {
				return err
			}
			if ok {
				free++
			} else {
				used++
			}
		}
		freeColor := color.New(color.FgGreen, color.Bold)
		usedColor := color.New(color.FgRed, color.Bold)
		fmt.Printf("free:  %s\n", freeColor.Sprint(free))
		fmt.Printf("used:  %s\n", usedColor.Sprint(used))
		fmt.Printf("total: %d\n", img.Len())
		return nil
	},
}

var bitmapSetCmd = &cobra.Command{
	Use:   "set FILE BLOCK STATUS",
	Short: "Force a sector's bitmap bit to free or used",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		adfPath, blockStr, status := args[0], args[1], args[2]
		block, err := strconv.Atoi(blockStr)
		if err != nil {
			return usageErrorf("invalid block number %q", blockStr)
		}
		img, err := openImage(adfPath)
		if err != nil {
			return err
		}
		switch status {
		case "free":
			err = img.SetStatus(block, true)
		case "used":
			err = img.SetStatus(block, false)
		default:
			return usageErrorf("unknown status %q (want free or used)", status)
		}
		if err != nil {
			return fmt.Errorf("failed to set block %d %s: %w", block, status, err)
		}
		return saveImage(img, adfPath)
	},
}

var bitmapDefragCmd = &cobra.Command{
	Use:   "defrag FILE",
	Short: "Report contiguous free-space runs (diagnostic only, no data is moved)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}
		printFragmentation(img)
		return nil
	},
}

func printFragmentation(img *adf.Image) {
	runs, longest, current := 0, 0, 0
	for s := 2; s < img.Len(); s++ {
		free, _ := img.Status(s)
		if !free {
			current = 0
			continue
		}
		if current == 0 {
			runs++
		}
		current++
		if current > longest {
			longest = current
		}
	}
	longestColor := color.New(color.FgYellow, color.Bold)
	fmt.Printf("free runs:          %d\n", runs)
	fmt.Printf("longest free run:   %s sectors\n", longestColor.Sprint(longest))
}

func init() {
	bitmapCmd.AddCommand(bitmapInfoCmd, bitmapSetCmd, bitmapDefragCmd)
	rootCmd.AddCommand(bitmapCmd)
}
