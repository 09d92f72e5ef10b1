package wad2_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossyrian/wadlumper/internal/wad2"
)

// buildEntry lays out a directory entry by hand, field by field
func buildEntry(offset, diskSize, size uint32, typ, cmp byte, name []byte) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, offset)
	binary.Write(buf, binary.LittleEndian, diskSize)
	binary.Write(buf, binary.LittleEndian, size)
	buf.WriteByte(typ)
	buf.WriteByte(cmp)
	binary.Write(buf, binary.LittleEndian, uint16(0))
	field := make([]byte, wad2.NameSize)
	copy(field, name)
	buf.Write(field)
	return buf.Bytes()
}

func TestEncodeHeader(t *testing.T) {
	got := wad2.EncodeHeader(3, 47)

	want := new(bytes.Buffer)
	want.WriteString("WAD2")
	binary.Write(want, binary.LittleEndian, uint32(3))
	binary.Write(want, binary.LittleEndian, uint32(47))

	assert.Equal(t, want.Bytes(), got[:])
}

func TestDecodeHeader(t *testing.T) {
	valid := wad2.EncodeHeader(2, 42)

	tests := []struct {
		name    string
		input   []byte
		want    *wad2.Header
		wantErr error
		errMsg  string
	}{
		{
			name:  "valid header",
			input: valid[:],
			want: &wad2.Header{
				Magic:           wad2.Magic,
				EntryCount:      2,
				DirectoryOffset: 42,
			},
		},
		{
			name:  "trailing bytes are ignored",
			input: append(valid[:], 0xFF, 0xFF),
			want: &wad2.Header{
				Magic:           wad2.Magic,
				EntryCount:      2,
				DirectoryOffset: 42,
			},
		},
		{
			name:    "bad magic",
			input:   append([]byte("WAD3"), make([]byte, 8)...),
			wantErr: wad2.ErrFormat,
			errMsg:  "invalid WAD2 magic",
		},
		{
			name:    "doom IWAD magic",
			input:   append([]byte("IWAD"), make([]byte, 8)...),
			wantErr: wad2.ErrFormat,
		},
		{
			name:    "short header",
			input:   []byte("WAD2\x01\x00"),
			wantErr: wad2.ErrFormat,
			errMsg:  "header is 6 bytes",
		},
		{
			name:    "empty input",
			input:   nil,
			wantErr: wad2.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wad2.DecodeHeader(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatchDirectoryOffset(t *testing.T) {
	hdr := wad2.EncodeHeader(1, 0)
	pos, patch := wad2.PatchDirectoryOffset(1234)
	copy(hdr[pos:], patch[:])

	got, err := wad2.DecodeHeader(hdr[:])
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got.EntryCount)
	assert.Equal(t, uint32(1234), got.DirectoryOffset)
}

func TestEncodeEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry wad2.DirEntry
		want  []byte
	}{
		{
			name:  "short name is padded",
			entry: wad2.NewDirEntry("CONBACK", 12, 64000),
			want:  buildEntry(12, 64000, 64000, 0x45, 0, []byte("CONBACK")),
		},
		{
			name:  "lowercase name is uppercased",
			entry: wad2.NewDirEntry("palette", 100, 768),
			want:  buildEntry(100, 768, 768, 0x45, 0, []byte("PALETTE")),
		},
		{
			name:  "long name is truncated",
			entry: wad2.NewDirEntry("abcdefghijklmnopqrst", 0, 1),
			want:  buildEntry(0, 1, 1, 0x45, 0, []byte("ABCDEFGHIJKLMNOP")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wad2.EncodeEntry(tt.entry)
			assert.Equal(t, tt.want, got[:])
		})
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    *wad2.DirEntry
		wantErr error
	}{
		{
			name:  "nul padded name",
			input: buildEntry(22, 20, 20, 0x45, 0, []byte("b")),
			want: &wad2.DirEntry{
				Offset: 22, DiskSize: 20, Size: 20,
				Type: wad2.LumpTypeLegacy, Name: "B",
			},
		},
		{
			name:  "full width name",
			input: buildEntry(1, 2, 3, 0x42, 0, []byte("ABCDEFGHIJKLMNOP")),
			want: &wad2.DirEntry{
				Offset: 1, DiskSize: 2, Size: 3,
				Type: 0x42, Name: "ABCDEFGHIJKLMNOP",
			},
		},
		{
			name:  "garbage after nul is dropped",
			input: buildEntry(0, 0, 0, 0x40, 0, []byte("pal\x00junk")),
			want: &wad2.DirEntry{
				Type: 0x40, Name: "PAL",
			},
		},
		{
			name:    "short entry",
			input:   make([]byte, wad2.DirEntrySize-1),
			wantErr: wad2.ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wad2.DecodeEntry(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "conchars", want: "CONCHARS"},
		{in: "Sky_Fire1", want: "SKY_FIRE1"},
		{in: "a_very_long_lump_name", want: "A_VERY_LONG_LUMP"},
		{in: "", wantErr: true},
		{in: "café", wantErr: true},
		{in: "nul\x00name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := wad2.NormalizeName(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, wad2.ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), wad2.NameSize)
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("open x: %w", wad2.ErrFormat), "format"},
		{fmt.Errorf("%w: dir", wad2.ErrTruncated), "truncated"},
		{wad2.ErrDuplicateName, "duplicate_name"},
		{fmt.Errorf("%w: a: %w", wad2.ErrSourceUnavailable, errors.New("boom")), "source_unavailable"},
		{wad2.ErrEmptyArchive, "empty_archive"},
		{fmt.Errorf("%w: write", wad2.ErrIO), "io"},
		{errors.New("other"), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, wad2.Kind(tt.err), tt.err.Error())
	}
}
