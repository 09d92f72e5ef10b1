package wad2

// Magic is the magic number identifying valid WAD2 files ("WAD2")
var Magic = [4]byte{'W', 'A', 'D', '2'}

const (
	// HeaderSize is the size in bytes of the archive header:
	// magic(4) + entry count(4) + directory offset(4).
	HeaderSize = 12

	// DirEntrySize is the size in bytes of one directory entry on disk.
	DirEntrySize = 32

	// NameSize is the fixed width of a lump name. Shorter names are
	// NUL-padded, longer ones are truncated.
	NameSize = 16

	// dirOffsetPos is where the directory offset lives inside the header.
	// The writer backpatches it once all lump data is on disk.
	dirOffsetPos = 8
)

// LumpType is the one-byte type tag of a directory entry.
type LumpType byte

// LumpTypeLegacy (0x45) is the tag every lump is written with. Quake tools
// read it as a console picture; nothing here interprets it.
const LumpTypeLegacy LumpType = 0x45

// CompressionNone is the only compression value ever written.
const CompressionNone byte = 0
