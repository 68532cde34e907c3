package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"
)

var dirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Directory mutations: mkdir, rmdir, rename",
}

var dirMkdirCmd = &cobra.Command{
	Use:   "mkdir FILE PATH",
	Short: "Create a directory at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		adfPath, target := args[0], args[1]
		img, err := openImage(adfPath)
		if err != nil {
			return err
		}
		parent, name := splitPath(target)
		parentSector, err := img.Resolve(parent)
		if err != nil {
			return fmt.Errorf("failed to resolve parent of %q: %w", target, err)
		}
		if _, err := img.Mkdir(parentSector, name); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
		return saveImage(img, adfPath)
	},
}

var dirRmdirCmd = &cobra.Command{
	Use:   "rmdir FILE PATH",
	Short: "Remove an empty directory at PATH",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		adfPath, target := args[0], args[1]
		img, err := openImage(adfPath)
		if err != nil {
			return err
		}
		sector, err := img.Resolve(target)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", target, err)
		}
		if err := img.Rmdir(sector); err != nil {
			return fmt.Errorf("failed to remove directory %q: %w", target, err)
		}
		return saveImage(img, adfPath)
	},
}

var dirRenameCmd = &cobra.Command{
	Use:   "rename FILE PATH NEWNAME",
	Short: "Rename the entry at PATH to NEWNAME",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		adfPath, target, newName := args[0], args[1], args[2]
		img, err := openImage(adfPath)
		if err != nil {
			return err
		}
		sector, err := img.Resolve(target)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", target, err)
		}
		if err := img.Rename(sector, newName); err != nil {
			return fmt.Errorf("failed to rename %q: %w", target, err)
		}
		return saveImage(img, adfPath)
	},
}

// splitPath separates a "/"-separated path into its parent directory path
// and final component name.
func splitPath(p string) (parent, name string) {
	p = strings.Trim(p, "/")
	dir := path.Dir(p)
	if dir == "." {
		dir = ""
	}
	return dir, path.Base(p)
}

func init() {
	dirCmd.AddCommand(dirMkdirCmd, dirRmdirCmd, dirRenameCmd)
	rootCmd.AddCommand(dirCmd)
}
