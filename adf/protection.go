package adf

// Protection bits, low 8 bits of the 32-bit field at FHProtection. Letter
// order MSB to LSB is h s p a r w e d (hidden, script, pure, archive, read,
// write, execute, delete).
const (
	ProtHidden  = 1 << 7
	ProtScript  = 1 << 6
	ProtPure    = 1 << 5
	ProtArchive = 1 << 4
	ProtRead    = 1 << 3
	ProtWrite   = 1 << 2
	ProtExecute = 1 << 1
	ProtDelete  = 1 << 0
)

// FormatProtectionFlags renders the canonical 8-character Amiga protection
// string. For h/s/p/a a set bit means the flag is positive and the letter
// is shown. For r/w/e/d a set bit means the permission is DENIED (Amiga
// semantics), so the letter is shown precisely when the bit is clear.
func FormatProtectionFlags(flags uint32) string {
	out := make([]byte, 8)
	positive := []struct {
		bit  uint32
		char byte
	}{
		{ProtHidden, 'h'},
		{ProtScript, 's'},
		{ProtPure, 'p'},
		{ProtArchive, 'a'},
	}
	denyWhenSet := []struct {
		bit  uint32
		char byte
	}{
		{ProtRead, 'r'},
		{ProtWrite, 'w'},
		{ProtExecute, 'e'},
		{ProtDelete, 'd'},
	}

	for i, f := range positive {
		if flags&f.bit != 0 {
			out[i] = f.char
		} else {
			out[i] = '-'
		}
	}
	for i, f := range denyWhenSet {
		if flags&f.bit != 0 {
			out[4+i] = '-'
		} else {
			out[4+i] = f.char
		}
	}
	return string(out)
}
