package format

import "fmt"

// DBRecord is a big data record. Values larger than DBChunkSize are split
// into blocks; the record points at a cell holding the block offsets.
//
//	Offset  Size  Field
//	0x00    2     'd' 'b'
//	0x02    2     Number of blocks
//	0x04    4     Offset of the blocklist cell
type DBRecord struct {
	NumBlocks       uint16
	BlocklistOffset uint32
}

// IsDBRecord checks if the given cell data starts with the "db" signature.
func IsDBRecord(b []byte) bool {
	return len(b) >= SignatureSize && b[0] == DBSignature[0] && b[1] == DBSignature[1]
}

// DecodeDB decodes a big data record from the given cell payload.
func DecodeDB(b []byte) (DBRecord, error) {
	if len(b) < DBMinSize {
		return DBRecord{}, fmt.Errorf("db: %w (need %d bytes, have %d)", ErrTruncated, DBMinSize, len(b))
	}
	if !IsDBRecord(b) {
		return DBRecord{}, fmt.Errorf("db: %w", ErrSignatureMismatch)
	}
	return DBRecord{
		NumBlocks:       u16(b, DBCountOffset),
		BlocklistOffset: u32(b, DBListOffset),
	}, nil
}
