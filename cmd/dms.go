package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adftool/adf"
	"adftool/dms"
)

var dmsCmd = &cobra.Command{
	Use:   "dms",
	Short: "DMS archive operations: info, convert",
}

var dmsInfoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print a DMS archive's header fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openRawFile(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		r, err := dms.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to parse DMS header: %w", err)
		}
		info := r.Info()
		fmt.Printf("type:             %s\n", info.HeaderType)
		fmt.Printf("tracks:           %d-%d\n", info.LowTrack, info.HighTrack)
		fmt.Printf("packed size:      %d\n", info.PackedSize)
		fmt.Printf("unpacked size:    %d\n", info.UnpackedSize)
		fmt.Printf("compression mode: %s\n", info.CompressionMode)
		return nil
	},
}

var dmsConvertCmd = &cobra.Command{
	Use:   "convert IN [OUT]",
	Short: "Decode a DMS archive into a raw ADF image",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		out := args[0] + ".adf"
		if len(args) == 2 {
			out = args[1]
		}

		f, err := openRawFile(in)
		if err != nil {
			return err
		}
		defer f.Close()

		data, err := dms.DecodeImage(f)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", in, err)
		}

		img, err := adf.FromBytes(data)
		if err != nil {
			return fmt.Errorf("decoded image failed validation: %w", err)
		}
		if err := saveImage(img, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s (%d bytes)\n", out, len(data))
		return nil
	},
}

func init() {
	dmsCmd.AddCommand(dmsInfoCmd, dmsConvertCmd)
	rootCmd.AddCommand(dmsCmd)
}
