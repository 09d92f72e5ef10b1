// Package archive reads WAD2 files into a catalog.Catalog and writes
// catalogs back out as WAD2 files.
package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/ossyrian/wadlumper/internal/catalog"
	"github.com/ossyrian/wadlumper/internal/wad2"
)

// Reader opens WAD2 archives and the lump data they reference.
type Reader struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewReader returns a Reader over fs. A nil logger uses slog.Default().
func NewReader(fs afero.Fs, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{fs: fs, logger: logger}
}

// Open reads the archive at path and returns a Catalog whose lumps are
// ranges of that file, in directory order.
func (r *Reader) Open(path string) (*catalog.Catalog, error) {
	logger := r.logger.With("archive", path)

	f, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open archive %s: %w", wad2.ErrIO, path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat archive %s: %w", wad2.ErrIO, path, err)
	}

	h, err := readHeader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	logger.Debug("header is valid",
		"entry_count", h.EntryCount,
		"directory_offset", h.DirectoryOffset,
	)

	entries, err := readDirectory(f, h)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory of %s: %w", path, err)
	}

	c := catalog.New()
	c.SetOrigin(path)

	for i, e := range entries {
		if e.End() > uint64(fi.Size()) {
			return nil, fmt.Errorf("%w: lump %d (%s) spans %d..%d, file is %d bytes",
				wad2.ErrTruncated, i, e.Name, e.Offset, e.End(), fi.Size())
		}

		if _, err := c.AddRange(e.Name, path, int64(e.Offset), int64(e.Size)); err != nil {
			return nil, fmt.Errorf("failed to load entry %d of %s: %w", i, path, err)
		}

		logger.Debug("read directory entry",
			"index", i,
			"name", e.Name,
			"type", e.Type,
			"offset", e.Offset,
			"size", e.Size,
		)
	}

	logger.Info("loaded archive", "entry_count", c.Len())
	return c, nil
}

// readHeader reads and validates the 12-byte header at the start of f.
func readHeader(f io.Reader) (*wad2.Header, error) {
	buf := make([]byte, wad2.HeaderSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", wad2.ErrIO, err)
	}
	return wad2.DecodeHeader(buf[:n])
}

// readDirectory reads the h.EntryCount entries starting at h.DirectoryOffset.
func readDirectory(f io.ReadSeeker, h *wad2.Header) ([]wad2.DirEntry, error) {
	if _, err := f.Seek(int64(h.DirectoryOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: failed to seek to directory at %d: %w", wad2.ErrIO, h.DirectoryOffset, err)
	}

	want := int64(h.EntryCount) * wad2.DirEntrySize
	buf, err := io.ReadAll(io.LimitReader(f, want))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", wad2.ErrIO, err)
	}
	if int64(len(buf)) < want {
		return nil, fmt.Errorf("%w: directory declares %d entries (%d bytes), only %d bytes present",
			wad2.ErrTruncated, h.EntryCount, want, len(buf))
	}

	entries := make([]wad2.DirEntry, 0, h.EntryCount)
	for i := 0; i < int(h.EntryCount); i++ {
		e, err := wad2.DecodeEntry(buf[i*wad2.DirEntrySize:])
		if err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// OpenLump returns the bytes of rec. The reader yields exactly the lump's
// bytes; for a StandaloneFile that is the whole file.
func (r *Reader) OpenLump(rec catalog.Record) (io.ReadCloser, int64, error) {
	switch src := rec.Source.(type) {
	case catalog.StandaloneFile:
		f, err := r.fs.Open(src.Path)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: lump %s: %w", wad2.ErrSourceUnavailable, rec.Name, err)
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("%w: lump %s: %w", wad2.ErrSourceUnavailable, rec.Name, err)
		}
		if fi.IsDir() {
			f.Close()
			return nil, 0, fmt.Errorf("%w: lump %s: %s is a directory", wad2.ErrSourceUnavailable, rec.Name, src.Path)
		}
		return f, fi.Size(), nil

	case catalog.ArchiveRange:
		f, err := r.fs.Open(src.Path)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: lump %s: %w", wad2.ErrSourceUnavailable, rec.Name, err)
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("%w: lump %s: %w", wad2.ErrSourceUnavailable, rec.Name, err)
		}
		if src.Offset < 0 || src.Length < 0 || src.Offset+src.Length > fi.Size() {
			f.Close()
			return nil, 0, fmt.Errorf("%w: lump %s: range %d+%d exceeds %s (%d bytes)",
				wad2.ErrSourceUnavailable, rec.Name, src.Offset, src.Length, src.Path, fi.Size())
		}
		return sectionReadCloser{
			Reader: io.NewSectionReader(f, src.Offset, src.Length),
			Closer: f,
		}, src.Length, nil

	default:
		panic(fmt.Sprintf("unknown lump source %T", rec.Source))
	}
}

type sectionReadCloser struct {
	io.Reader
	io.Closer
}
