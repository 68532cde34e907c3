// Command adftool reads, writes, and inspects Amiga Disk File images,
// decodes DMS archives, and parses Hunk executables.
package main

import "adftool/cmd"

func main() {
	cmd.Execute()
}
