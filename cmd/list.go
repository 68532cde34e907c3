package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"adftool/adf"
	"adftool/dms"
)

var listBlock int

var listCmd = &cobra.Command{
	Use:   "list FILE",
	Short: "List directory contents of an ADF image, or summarize a DMS archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if strings.EqualFold(filepath.Ext(path), ".dms") {
			return printDMSInfo(path)
		}
		return listDirectory(path, listBlock)
	},
}

func listDirectory(path string, block int) error {
	img, err := openImage(path)
	if err != nil {
		return err
	}
	entries, err := img.List(block)
	if err != nil {
		return fmt.Errorf("failed to list sector %d: %w", block, err)
	}

	nameColor := color.New(color.FgCyan, color.Bold)
	for _, e := range entries {
		kind := "FILE"
		if e.IsDir {
			kind = "DIR "
		}
		name := e.Name
		if e.IsDir {
			name = nameColor.Sprint(e.Name)
		}
		fmt.Printf("%s %8d  %s  %s\n", kind, e.Size, e.Created.Format("2006-01-02 15:04:05"), name)
	}
	return nil
}

func printDMSInfo(path string) error {
	f, err := openRawFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := dms.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read DMS header: %w", err)
	}
	info := r.Info()
	fmt.Printf("header type:      %s\n", info.HeaderType)
	fmt.Printf("tracks:           %d-%d\n", info.LowTrack, info.HighTrack)
	fmt.Printf("packed size:      %d\n", info.PackedSize)
	fmt.Printf("unpacked size:    %d\n", info.UnpackedSize)
	fmt.Printf("compression mode: %s\n", info.CompressionMode)
	return nil
}

func init() {
	listCmd.Flags().IntVarP(&listBlock, "dir", "d", adf.RootBlockSector, "directory block to list")
	rootCmd.AddCommand(listCmd)
}
