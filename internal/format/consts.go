// Package format houses low-level decoders for the Windows registry hive file
// format. Decoders only read; they never allocate new cells, and they keep
// returned slices aliased to the mapped hive so walking a large hive stays
// cheap.
package format

var (
	// REGFSignature is the four-byte signature at the start of every hive file.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}

	// HBINSignature is the four-byte signature at the beginning of each hive bin.
	HBINSignature = []byte{'h', 'b', 'i', 'n'}

	NKSignature = []byte{'n', 'k'}
	VKSignature = []byte{'v', 'k'}

	// LF/LH lists carry a name hint or hash next to each offset; LI does not.
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}

	// RISignature identifies an index of subkey lists, used by keys with
	// many subkeys.
	RISignature = []byte{'r', 'i'}

	// DBSignature identifies a big data record for values over 16 KiB.
	DBSignature = []byte{'d', 'b'}
)

const (
	// HeaderSize is the size of the REGF base block.
	HeaderSize = 4096

	// HiveDataBase is the file offset of the first HBIN. Cell offsets
	// stored in the hive are relative to it.
	HiveDataBase = 0x1000

	HBINHeaderSize = 0x20
	HBINAlignment  = 0x1000

	// CellHeaderSize is the signed size prefix of every cell.
	CellHeaderSize = 4

	SignatureSize   = 2
	ListHeaderSize  = 4
	OffsetFieldSize = 4
	LFEntrySize     = 8

	// InvalidOffset marks an unused offset field.
	InvalidOffset = 0xFFFFFFFF
)

// REGF base block fields.
const (
	REGFSignatureSize      = 4
	REGFPrimarySeqOffset   = 0x004
	REGFSecondarySeqOffset = 0x008
	REGFTimeStampOffset    = 0x00C
	REGFMajorVersionOffset = 0x014
	REGFMinorVersionOffset = 0x018
	REGFTypeOffset         = 0x01C
	REGFRootCellOffset     = 0x024
	REGFDataSizeOffset     = 0x028
)

// HBIN header fields.
const (
	HBINFileOffsetField = 0x04
	HBINSizeOffset      = 0x08
)

// NK record fields, relative to the payload start ("nk").
//
//	Offset  Size  Field
//	0x00    2     'n' 'k'
//	0x02    2     Flags (0x20 => name stored as 8-bit characters)
//	0x04    8     Last write time (FILETIME)
//	0x10    4     Parent cell offset
//	0x14    4     Number of subkeys
//	0x1C    4     Offset to subkey list
//	0x24    4     Number of values
//	0x28    4     Offset to value list
//	0x48    2     Name length in bytes
//	0x4A    2     Class length
//	0x4C    n     Name bytes
const (
	NKFlagsOffset       = 0x02
	NKLastWriteOffset   = 0x04
	NKParentOffset      = 0x10
	NKSubkeyCountOffset = 0x14
	NKSubkeyListOffset  = 0x1C
	NKValueCountOffset  = 0x24
	NKValueListOffset   = 0x28
	NKNameLenOffset     = 0x48
	NKClassLenOffset    = 0x4A
	NKNameOffset        = 0x4C

	NKFixedHeaderSize = NKNameOffset

	NKFlagCompressedName = 0x20
)

// VK record fields, relative to the payload start ("vk").
//
//	Offset  Size  Field
//	0x00    2     'v' 'k'
//	0x02    2     Name length
//	0x04    4     Data length (bit 31 set => data stored inline)
//	0x08    4     Data offset, or the data itself when inline
//	0x0C    4     Value type
//	0x10    2     Flags (0x0001 => name stored as 8-bit characters)
//	0x14    n     Name bytes
const (
	VKNameLenOffset = 0x02
	VKDataLenOffset = 0x04
	VKDataOffOffset = 0x08
	VKTypeOffset    = 0x0C
	VKFlagsOffset   = 0x10
	VKNameOffset    = 0x14

	VKFixedHeaderSize = VKNameOffset

	VKFlagASCIIName  = 0x0001
	VKDataInlineBit  = 0x80000000
	VKDataLengthMask = 0x7FFFFFFF

	// VKMaxInlineData is the most data an inline VK can hold.
	VKMaxInlineData = 4
)

// DB record fields.
const (
	DBCountOffset = 0x02
	DBListOffset  = 0x04
	DBMinSize     = 0x0C

	// DBChunkSize is the payload carried by each big data block.
	DBChunkSize = 16344

	// DBBlockPadding is trimmed from the end of every data block.
	DBBlockPadding = 4
)

// Sanity limits applied while decoding untrusted hives.
const (
	MaxSubkeyCount  = 1 << 20
	MaxValueCount   = 1 << 20
	MaxNameLen      = 0x7FFF
	MaxValueDataLen = 1 << 30
)
