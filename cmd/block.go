package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"adftool/adf"
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Block-level operations: status, allocate, free, fragmentation",
}

var blockStatusCmd = &cobra.Command{
	Use:   "status FILE INDEX",
	Short: "Print whether a sector is free or used",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, index, err := openImageAndIndex(args)
		if err != nil {
			return err
		}
		free, err := img.Status(index)
		if err != nil {
			return fmt.Errorf("failed to read status of sector %d: %w", index, err)
		}
		if free {
			fmt.Println("free")
		} else {
			fmt.Println("used")
		}
		return nil
	},
}

var blockAllocateCmd = &cobra.Command{
	Use:   "allocate FILE",
	Short: "Allocate the first free sector and print its index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openImage(args[0])
		if err != nil {
			return err
		}
		sector, err := img.Allocate()
		if err != nil {
			return fmt.Errorf("failed to allocate a sector: %w", err)
		}
		if err := saveImage(img, args[0]); err != nil {
			return err
		}
		fmt.Println(sector)
		return nil
	},
}

var blockFreeCmd = &cobra.Command{
	Use:   "free FILE INDEX",
	Short: "Mark a sector free",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, index, err := openImageAndIndex(args)
		if err != nil {
			return err
		}
		if err := img.Free(index); err != nil {
			return fmt.Errorf("failed to free sector %d: %w", index, err)
		}
		return saveImage(img, args[0])
	},
}

var blockFragmentationCmd = &cobra.Command{
	Use:   "fragmentation FILE",
	Short: "Print the number and size of contiguous free-space runs",
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

func openImageAndIndex(args []string) (*adf.Image, int, error) {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, usageErrorf("invalid sector index %q", args[1])
	}
	img, err := openImage(args[0])
	if err != nil {
		return nil, 0, err
	}
	return img, index, nil
}

func init() {
	blockCmd.AddCommand(blockStatusCmd, blockAllocateCmd, blockFreeCmd, blockFragmentationCmd)
	rootCmd.AddCommand(blockCmd)
}
