package cmd

import (
	"fmt"
	"os"

	"adftool/adf"
)

func openRawFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func openImage(path string) (*adf.Image, error) {
	img, err := adf.Load(path, adf.WithStrictChecksums(cfg.Checksum.Strict))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return img, nil
}

func saveImage(img *adf.Image, path string) error {
	if err := img.Save(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func parseVariant(s string) (adf.Variant, error) {
	switch s {
	case "OFS", "ofs":
		return adf.OFS, nil
	case "FFS", "ffs", "":
		return adf.FFS, nil
	default:
		return 0, usageErrorf("unknown filesystem variant %q (want OFS or FFS)", s)
	}
}
