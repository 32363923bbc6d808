package format

import (
	"bytes"
	"fmt"
)

// NKRecord captures the fields of a key node needed to enumerate it.
type NKRecord struct {
	Flags            uint16
	LastWriteRaw     uint64
	ParentOffset     uint32
	SubkeyCount      uint32
	SubkeyListOffset uint32
	ValueCount       uint32
	ValueListOffset  uint32
	NameRaw          []byte
}

// NameIsCompressed returns true when the name is stored in 8-bit form.
func (nk NKRecord) NameIsCompressed() bool {
	return nk.Flags&NKFlagCompressedName != 0
}

// DecodeNK decodes an NK record payload.
func DecodeNK(b []byte) (NKRecord, error) {
	if len(b) < NKFixedHeaderSize {
		return NKRecord{}, fmt.Errorf("nk: %w (have %d, need %d)", ErrTruncated, len(b), NKFixedHeaderSize)
	}
	if !bytes.Equal(b[:SignatureSize], NKSignature) {
		return NKRecord{}, fmt.Errorf("nk: %w", ErrSignatureMismatch)
	}
	nk := NKRecord{
		Flags:            u16(b, NKFlagsOffset),
		LastWriteRaw:     u64(b, NKLastWriteOffset),
		ParentOffset:     u32(b, NKParentOffset),
		SubkeyCount:      u32(b, NKSubkeyCountOffset),
		SubkeyListOffset: u32(b, NKSubkeyListOffset),
		ValueCount:       u32(b, NKValueCountOffset),
		ValueListOffset:  u32(b, NKValueListOffset),
	}
	if nk.SubkeyCount > MaxSubkeyCount {
		return NKRecord{}, fmt.Errorf("nk subkey count %d: %w", nk.SubkeyCount, ErrSanityLimit)
	}
	if nk.ValueCount > MaxValueCount {
		return NKRecord{}, fmt.Errorf("nk value count %d: %w", nk.ValueCount, ErrSanityLimit)
	}
	nameLen := int(u16(b, NKNameLenOffset))
	if NKNameOffset+nameLen > len(b) {
		return NKRecord{}, fmt.Errorf("nk name: %w (need %d bytes from %d, have %d)",
			ErrTruncated, nameLen, NKNameOffset, len(b))
	}
	nk.NameRaw = b[NKNameOffset : NKNameOffset+nameLen]
	return nk, nil
}
