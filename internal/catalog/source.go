package catalog

import "fmt"

// Source describes where the bytes of a lump come from at save time.
// It is a closed set: StandaloneFile or ArchiveRange.
type Source interface {
	isSource()
	fmt.Stringer
}

// StandaloneFile is a lump whose bytes are the whole content of an external
// file, read when the archive is saved.
type StandaloneFile struct {
	Path string
}

// ArchiveRange is a lump whose bytes live inside a previously loaded archive.
type ArchiveRange struct {
	Path   string // archive file the range belongs to
	Offset int64
	Length int64
}

func (StandaloneFile) isSource() {}
func (ArchiveRange) isSource()   {}

func (s StandaloneFile) String() string { return s.Path }

func (s ArchiveRange) String() string {
	return fmt.Sprintf("%s@%d+%d", s.Path, s.Offset, s.Length)
}
