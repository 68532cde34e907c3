package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"adftool/adf"
)

// TestFormatWriteListExtractRoundTrip exercises the helpers backing the
// format/create/list/extract subcommands end to end, the way a user would
// chain them from the shell.
func TestFormatWriteListExtractRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.adf")

	img := adf.New()
	assert.NoError(t, img.Format(adf.FFS, "Workbench", false, false))
	assert.NoError(t, saveImage(img, path))

	img, err := openImage(path)
	assert.NoError(t, err)

	_, err = img.WriteFile(adf.RootBlockSector, "README", []byte("hello, amiga"))
	assert.NoError(t, err)
	assert.NoError(t, saveImage(img, path))

	img, err = openImage(path)
	assert.NoError(t, err)

	entries, err := img.List(adf.RootBlockSector)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "README", entries[0].Name)

	sector, err := img.Resolve("README")
	assert.NoError(t, err)
	data, err := img.ReadFile(sector)
	assert.NoError(t, err)
	assert.Equal(t, "hello, amiga", string(data))
}

func TestParseVariant(t *testing.T) {
	v, err := parseVariant("ofs")
	assert.NoError(t, err)
	assert.Equal(t, adf.OFS, v)

	v, err = parseVariant("")
	assert.NoError(t, err)
	assert.Equal(t, adf.FFS, v)

	_, err = parseVariant("bogus")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestSplitPath(t *testing.T) {
	parent, name := splitPath("/dir1/dir2/file")
	assert.Equal(t, "dir1/dir2", parent)
	assert.Equal(t, "file", name)

	parent, name = splitPath("file")
	assert.Equal(t, "", parent)
	assert.Equal(t, "file", name)
}
