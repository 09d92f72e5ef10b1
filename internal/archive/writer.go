package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ossyrian/wadlumper/internal/catalog"
	"github.com/ossyrian/wadlumper/internal/wad2"
)

// Writer serializes catalogs to WAD2 files.
type Writer struct {
	fs     afero.Fs
	reader *Reader
	logger *slog.Logger
}

// NewWriter returns a Writer over fs. Lump sources are read from the same fs.
// A nil logger uses slog.Default().
func NewWriter(fs afero.Fs, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{fs: fs, reader: NewReader(fs, logger), logger: logger}
}

// Save writes c to output and returns the header that was written. Once the
// archive is in place, the sizes read for standalone lumps are recorded in c.
//
// Lumps are written in catalog order, followed by the directory. The archive
// is assembled in a temporary file next to output and renamed over it only
// once complete, so a failed save leaves an existing output untouched and
// output may be the archive c was loaded from.
func (w *Writer) Save(c *catalog.Catalog, output string) (*wad2.Header, error) {
	if c.Len() == 0 {
		return nil, fmt.Errorf("failed to save %s: %w", output, wad2.ErrEmptyArchive)
	}

	logger := w.logger.With("output", output)

	tmpPath := filepath.Join(filepath.Dir(output),
		fmt.Sprintf(".%s.%s.tmp", filepath.Base(output), uuid.NewString()))

	f, err := w.fs.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %w", wad2.ErrIO, tmpPath, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		f.Close()
		if rmErr := w.fs.Remove(tmpPath); rmErr != nil {
			logger.Warn("failed to remove temporary file", "path", tmpPath, "error", rmErr)
		}
	}()

	recs := c.Records()
	h, entries, err := w.encode(f, recs, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", output, err)
	}

	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("%w: failed to sync %s: %w", wad2.ErrIO, tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to close %s: %w", wad2.ErrIO, tmpPath, err)
	}
	if err := w.fs.Rename(tmpPath, output); err != nil {
		return nil, fmt.Errorf("%w: failed to move %s to %s: %w", wad2.ErrIO, tmpPath, output, err)
	}
	committed = true

	for i, rec := range recs {
		c.Resolve(rec.Name, int64(entries[i].Size))
	}

	logger.Info("saved archive",
		"entry_count", h.EntryCount,
		"directory_offset", h.DirectoryOffset,
	)
	return h, nil
}

// encode streams the header, lump data and directory to out, then
// backpatches the directory offset in the header.
func (w *Writer) encode(out io.WriteSeeker, recs []catalog.Record, logger *slog.Logger) (*wad2.Header, []wad2.DirEntry, error) {
	tw := &trackingWriter{w: out}

	// placeholder directory offset, patched below
	hdr := wad2.EncodeHeader(uint32(len(recs)), 0)
	if _, err := tw.Write(hdr[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to write header: %w", wad2.ErrIO, err)
	}

	entries := make([]wad2.DirEntry, 0, len(recs))
	for _, rec := range recs {
		offset := tw.n

		size, err := w.copyLump(tw, rec)
		if err != nil {
			return nil, nil, err
		}

		if tw.n > math.MaxUint32 {
			return nil, nil, fmt.Errorf("%w: lump %s ends at %d, beyond the 4 GiB limit", wad2.ErrFormat, rec.Name, tw.n)
		}

		entries = append(entries, wad2.NewDirEntry(rec.Name, uint32(offset), uint32(size)))

		logger.Debug("wrote lump",
			"name", rec.Name,
			"source", rec.Source.String(),
			"offset", offset,
			"size", size,
		)
	}

	dirOffset := uint32(tw.n)
	for _, e := range entries {
		b := wad2.EncodeEntry(e)
		if _, err := tw.Write(b[:]); err != nil {
			return nil, nil, fmt.Errorf("%w: failed to write directory entry %s: %w", wad2.ErrIO, e.Name, err)
		}
	}

	pos, patch := wad2.PatchDirectoryOffset(dirOffset)
	if _, err := out.Seek(pos, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to seek to header: %w", wad2.ErrIO, err)
	}
	if _, err := out.Write(patch[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to write directory offset: %w", wad2.ErrIO, err)
	}

	return &wad2.Header{
		Magic:           wad2.Magic,
		EntryCount:      uint32(len(entries)),
		DirectoryOffset: dirOffset,
	}, entries, nil
}

// copyLump streams the bytes of rec into tw and returns how many were
// written. Read failures and short sources are ErrSourceUnavailable; write
// failures are ErrIO.
func (w *Writer) copyLump(tw *trackingWriter, rec catalog.Record) (int64, error) {
	rc, want, err := w.reader.OpenLump(rec)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	n, err := io.Copy(tw, rc)
	if err != nil {
		if tw.err != nil && errors.Is(err, tw.err) {
			return n, fmt.Errorf("%w: failed to write lump %s: %w", wad2.ErrIO, rec.Name, err)
		}
		return n, fmt.Errorf("%w: failed to read lump %s from %s: %w", wad2.ErrSourceUnavailable, rec.Name, rec.Source, err)
	}
	if n != want {
		return n, fmt.Errorf("%w: lump %s: read %d of %d bytes from %s",
			wad2.ErrSourceUnavailable, rec.Name, n, want, rec.Source)
	}
	return n, nil
}

// trackingWriter counts bytes written and remembers the first write error,
// so a failed io.Copy can be attributed to the output rather than the source.
type trackingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	t.n += int64(n)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
