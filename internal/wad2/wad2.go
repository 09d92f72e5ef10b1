package wad2

// Header is the 12-byte header of a WAD2 file.
type Header struct {
	Magic           [4]byte // "WAD2" for valid files
	EntryCount      uint32  // number of directory entries
	DirectoryOffset uint32  // where the directory starts (right after the last lump)
}

// DirEntry is a single 32-byte directory record.
//
// [offset(u32)][disk_size(u32)][size(u32)][type(u8)][compression(u8)][padding(u16)][name(16)]
type DirEntry struct {
	Offset      uint32 // absolute file offset of the lump data
	DiskSize    uint32 // bytes occupied on disk
	Size        uint32 // uncompressed size in bytes
	Type        LumpType
	Compression byte
	Padding     uint16
	Name        string // uppercased, at most NameSize bytes
}

// NewDirEntry returns an uncompressed entry of the legacy type.
func NewDirEntry(name string, offset, size uint32) DirEntry {
	return DirEntry{
		Offset:      offset,
		DiskSize:    size,
		Size:        size,
		Type:        LumpTypeLegacy,
		Compression: CompressionNone,
		Name:        name,
	}
}

// End returns the offset one past the last byte of the lump.
func (e DirEntry) End() uint64 {
	return uint64(e.Offset) + uint64(e.Size)
}
