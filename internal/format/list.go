package format

import (
	"bytes"
	"fmt"
)

// DecodeSubkeyList extracts NK offsets from leaf list records (LI, LF, LH).
// LF/LH entries carry a name hint or hash after each offset, which is skipped.
func DecodeSubkeyList(b []byte) ([]uint32, error) {
	if len(b) < ListHeaderSize {
		return nil, fmt.Errorf("subkey list: %w", ErrTruncated)
	}
	sig := b[:SignatureSize]
	count := int(u16(b, SignatureSize))
	entries := b[ListHeaderSize:]
	stride := 0
	switch {
	case bytes.Equal(sig, LISignature):
		stride = OffsetFieldSize
	case bytes.Equal(sig, LFSignature), bytes.Equal(sig, LHSignature):
		stride = LFEntrySize
	default:
		return nil, fmt.Errorf("subkey list %q: %w", sig, ErrUnsupported)
	}
	if len(entries) < count*stride {
		return nil, fmt.Errorf("subkey list: %w", ErrTruncated)
	}
	out := make([]uint32, count)
	for i := range count {
		out[i] = u32(entries, i*stride)
	}
	return out, nil
}

// IsRIList checks if b holds an RI (index of lists) record.
func IsRIList(b []byte) bool {
	return len(b) >= SignatureSize && bytes.Equal(b[:SignatureSize], RISignature)
}

// DecodeRIList decodes an RI record and returns the offsets of its leaf
// lists. The caller fetches and decodes each one.
func DecodeRIList(b []byte) ([]uint32, error) {
	if !IsRIList(b) || len(b) < ListHeaderSize {
		return nil, fmt.Errorf("ri list: %w", ErrSignatureMismatch)
	}
	count := int(u16(b, SignatureSize))
	if len(b) < ListHeaderSize+count*OffsetFieldSize {
		return nil, fmt.Errorf("ri list: %w", ErrTruncated)
	}
	out := make([]uint32, count)
	for i := range count {
		out[i] = u32(b, ListHeaderSize+i*OffsetFieldSize)
	}
	return out, nil
}

// ValueOffset returns the i-th VK offset from a value list cell.
func ValueOffset(b []byte, i int) (uint32, error) {
	off := i * OffsetFieldSize
	if i < 0 || off+OffsetFieldSize > len(b) {
		return 0, fmt.Errorf("value list entry %d: %w", i, ErrTruncated)
	}
	return u32(b, off), nil
}
