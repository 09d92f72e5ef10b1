package wad2

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// EncodeHeader returns the on-disk form of a header with the given entry
// count and directory offset.
func EncodeHeader(count, dirOffset uint32) [HeaderSize]byte {
	var b [HeaderSize]byte
	copy(b[:4], Magic[:])
	binary.LittleEndian.PutUint32(b[4:8], count)
	binary.LittleEndian.PutUint32(b[dirOffsetPos:], dirOffset)
	return b
}

// DecodeHeader parses a header. It fails with ErrFormat if b is shorter than
// HeaderSize or does not start with Magic.
func DecodeHeader(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: header is %d bytes, need %d", ErrFormat, len(b), HeaderSize)
	}

	h := &Header{}
	copy(h.Magic[:], b[:4])
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: invalid WAD2 magic: expected %q, got %q",
			ErrFormat, Magic, h.Magic)
	}

	h.EntryCount = binary.LittleEndian.Uint32(b[4:8])
	h.DirectoryOffset = binary.LittleEndian.Uint32(b[dirOffsetPos:HeaderSize])
	return h, nil
}

// PatchDirectoryOffset returns the offset within the header and the bytes
// that replace the directory offset placeholder.
func PatchDirectoryOffset(dirOffset uint32) (int64, [4]byte) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], dirOffset)
	return dirOffsetPos, b
}

// EncodeEntry returns the on-disk form of e. The name is uppercased,
// truncated to NameSize bytes and NUL-padded.
func EncodeEntry(e DirEntry) [DirEntrySize]byte {
	var b [DirEntrySize]byte
	binary.LittleEndian.PutUint32(b[0:4], e.Offset)
	binary.LittleEndian.PutUint32(b[4:8], e.DiskSize)
	binary.LittleEndian.PutUint32(b[8:12], e.Size)
	b[12] = byte(e.Type)
	b[13] = e.Compression
	binary.LittleEndian.PutUint16(b[14:16], e.Padding)

	name := strings.ToUpper(e.Name)
	if len(name) > NameSize {
		name = name[:NameSize]
	}
	copy(b[16:], name)
	return b
}

// DecodeEntry parses one directory entry. The name is cut at the first NUL
// and uppercased.
func DecodeEntry(b []byte) (*DirEntry, error) {
	if len(b) < DirEntrySize {
		return nil, fmt.Errorf("%w: directory entry is %d bytes, need %d", ErrTruncated, len(b), DirEntrySize)
	}

	return &DirEntry{
		Offset:      binary.LittleEndian.Uint32(b[0:4]),
		DiskSize:    binary.LittleEndian.Uint32(b[4:8]),
		Size:        binary.LittleEndian.Uint32(b[8:12]),
		Type:        LumpType(b[12]),
		Compression: b[13],
		Padding:     binary.LittleEndian.Uint16(b[14:16]),
		Name:        decodeName(b[16:DirEntrySize]),
	}, nil
}
