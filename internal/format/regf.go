package format

import (
	"bytes"
	"fmt"
)

// Header captures the subset of the REGF base block needed to walk a hive.
//
//	Offset  Size  Description
//	 0x000   4    'r' 'e' 'g' 'f'
//	 0x004   4    Primary sequence number
//	 0x008   4    Secondary sequence number
//	 0x00C   8    Last write timestamp (FILETIME)
//	 0x014   4    Major version
//	 0x018   4    Minor version
//	 0x01C   4    Type (0 = primary)
//	 0x024   4    Offset (relative to first HBIN) of the root NK cell
//	 0x028   4    Total size of HBIN data
type Header struct {
	PrimarySequence   uint32
	SecondarySequence uint32
	LastWriteRaw      uint64
	MajorVersion      uint32
	MinorVersion      uint32
	Type              uint32
	RootCellOffset    uint32
	HiveBinsDataSize  uint32
}

// Dirty reports whether the sequence numbers disagree, which means the hive
// was not cleanly flushed and pending log data was not applied.
func (h Header) Dirty() bool {
	return h.PrimarySequence != h.SecondarySequence
}

// ParseHeader validates and extracts key fields from a REGF header.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("regf header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:REGFSignatureSize], REGFSignature) {
		return Header{}, fmt.Errorf("regf header: %w", ErrSignatureMismatch)
	}
	return Header{
		PrimarySequence:   u32(b, REGFPrimarySeqOffset),
		SecondarySequence: u32(b, REGFSecondarySeqOffset),
		LastWriteRaw:      u64(b, REGFTimeStampOffset),
		MajorVersion:      u32(b, REGFMajorVersionOffset),
		MinorVersion:      u32(b, REGFMinorVersionOffset),
		Type:              u32(b, REGFTypeOffset),
		RootCellOffset:    u32(b, REGFRootCellOffset),
		HiveBinsDataSize:  u32(b, REGFDataSizeOffset),
	}, nil
}
