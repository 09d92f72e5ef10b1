package wad2

import (
	"fmt"
	"strings"
)

// NormalizeName converts name to its on-disk form: uppercased and truncated
// to NameSize bytes. Empty names and names with non-ASCII or NUL bytes are
// rejected, since they cannot round-trip through the fixed-width field.
func NormalizeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty lump name", ErrFormat)
	}

	for i := 0; i < len(name); i++ {
		if c := name[i]; c == 0 || c > 0x7F {
			return "", fmt.Errorf("%w: lump name %q is not printable ASCII", ErrFormat, name)
		}
	}

	name = strings.ToUpper(name)
	if len(name) > NameSize {
		name = name[:NameSize]
	}
	return name, nil
}

// decodeName reads a NUL-padded fixed-width name field.
func decodeName(field []byte) string {
	if i := strings.IndexByte(string(field), 0); i >= 0 {
		field = field[:i]
	}
	return strings.ToUpper(string(field))
}
