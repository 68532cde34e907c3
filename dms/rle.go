package dms

import "github.com/pkg/errors"

// unpackRLE decodes the SIMPLE packing mode. Literal bytes pass through
// unchanged; 0x90 is the escape byte.
func unpackRLE(input []byte) ([]byte, error) {
	out := make([]byte, 0, len(input)*2)
	i := 0
	for i < len(input) {
		a := input[i]
		i++
		if a != 0x90 {
			out = append(out, a)
			continue
		}
		if i >= len(input) {
			return nil, errors.Wrap(ErrUnexpectedEOF, "dms: rle escape at end of input")
		}
		b := input[i]
		i++
		if b == 0 {
			out = append(out, a)
			continue
		}
		if i >= len(input) {
			return nil, errors.Wrap(ErrUnexpectedEOF, "dms: rle run value missing")
		}
		value := input[i]
		i++
		count := int(b)
		if b == 0xFF {
			if i+1 >= len(input) {
				return nil, errors.Wrap(ErrUnexpectedEOF, "dms: rle extended count truncated")
			}
			count = int(input[i])<<8 | int(input[i+1])
			i += 2
		}
		for n := 0; n < count; n++ {
			out = append(out, value)
		}
	}
	return out, nil
}
