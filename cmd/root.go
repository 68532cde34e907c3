package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"adftool/internal/config"
	"adftool/internal/logx"
)

// ErrUsage marks a runtime-detected argument error (as opposed to an I/O or
// format failure), mapped to exit code 2 by Execute.
var ErrUsage = errors.New("usage error")

func usageErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrUsage}, args...)...)
}

var (
	verbose    bool
	configPath string
	colorMode  string

	cfg    config.Config
	colors bool
)

var rootCmd = &cobra.Command{
	Use:   "adftool",
	Short: "A CLI program for working with Amiga disk images and archives",
	Long:  "adftool reads, writes, and inspects Amiga Disk File (ADF) images, decodes DMS archives, and parses Hunk executables.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logx.SetVerbose(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		colors = resolveColor(colorMode)
		color.NoColor = !colors
		return nil
	},
}

// resolveColor decides whether ANSI color output is used, honoring an
// explicit --color value or falling back to TTY detection on stdout.
func resolveColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: per-OS config location)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colorize output: auto|always|never")
}

// Execute adds all child commands to the root command and sets flags
// appropriately, then runs the selected one. Exit codes follow the
// convention: 0 success, 2 usage error (ErrUsage), 1 everything else.
func Execute() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "adftool:", err)
		if errors.Is(err, ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
