package format

import (
	"bytes"
	"fmt"
)

// VKRecord models a value key record header. The data payload lives either
// inline in DataOffset or in another cell.
type VKRecord struct {
	DataLength uint32
	DataOffset uint32
	Type       uint32
	Flags      uint16
	NameRaw    []byte
}

// NameIsASCII reports whether the name is stored as 8-bit characters.
func (vk VKRecord) NameIsASCII() bool {
	return vk.Flags&VKFlagASCIIName != 0
}

// DataInline reports whether the data is stored within the DataOffset field.
func (vk VKRecord) DataInline() bool {
	return vk.DataLength&VKDataInlineBit != 0
}

// Length returns the data length with the inline bit masked off.
func (vk VKRecord) Length() int {
	return int(vk.DataLength & VKDataLengthMask)
}

// InlineData returns the bytes stored in the offset field of an inline VK.
func (vk VKRecord) InlineData() []byte {
	n := min(vk.Length(), VKMaxInlineData)
	out := []byte{
		byte(vk.DataOffset),
		byte(vk.DataOffset >> 8),
		byte(vk.DataOffset >> 16),
		byte(vk.DataOffset >> 24),
	}
	return out[:n]
}

// DecodeVK decodes a VK record payload.
func DecodeVK(b []byte) (VKRecord, error) {
	if len(b) < VKFixedHeaderSize {
		return VKRecord{}, fmt.Errorf("vk: %w (have %d, need %d)", ErrTruncated, len(b), VKFixedHeaderSize)
	}
	if !bytes.Equal(b[:SignatureSize], VKSignature) {
		return VKRecord{}, fmt.Errorf("vk: %w", ErrSignatureMismatch)
	}
	vk := VKRecord{
		DataLength: u32(b, VKDataLenOffset),
		DataOffset: u32(b, VKDataOffOffset),
		Type:       u32(b, VKTypeOffset),
		Flags:      u16(b, VKFlagsOffset),
	}
	if vk.Length() > MaxValueDataLen {
		return VKRecord{}, fmt.Errorf("vk data len %d: %w", vk.Length(), ErrSanityLimit)
	}
	nameLen := int(u16(b, VKNameLenOffset))
	if VKNameOffset+nameLen > len(b) {
		return VKRecord{}, fmt.Errorf("vk name: %w (need %d bytes from %d, have %d)",
			ErrTruncated, nameLen, VKNameOffset, len(b))
	}
	vk.NameRaw = b[VKNameOffset : VKNameOffset+nameLen]
	return vk, nil
}
