package wad2

import "errors"

// Error kinds. Every error produced by the archive packages wraps exactly
// one of these; match with errors.Is.
var (
	// ErrFormat indicates a bad magic, a too-short header or an invalid name.
	ErrFormat = errors.New("invalid WAD2 format")
	// ErrTruncated indicates a directory or lump extending past the end of the file.
	ErrTruncated = errors.New("truncated WAD2 file")
	// ErrDuplicateName indicates a case-insensitive lump name collision.
	ErrDuplicateName = errors.New("duplicate lump name")
	// ErrSourceUnavailable indicates lump data that is missing or short at save time.
	ErrSourceUnavailable = errors.New("lump source unavailable")
	// ErrEmptyArchive indicates a save attempted with no lumps.
	ErrEmptyArchive = errors.New("archive has no lumps")
	// ErrIO wraps any other filesystem failure.
	ErrIO = errors.New("i/o error")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrFormat, "format"},
	{ErrTruncated, "truncated"},
	{ErrDuplicateName, "duplicate_name"},
	{ErrSourceUnavailable, "source_unavailable"},
	{ErrEmptyArchive, "empty_archive"},
	{ErrIO, "io"},
}

// Kind returns a short name for the error kind wrapped by err, suitable as a
// log attribute. Errors that wrap none of the kinds report "unknown".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
