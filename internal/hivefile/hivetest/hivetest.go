// Package hivetest builds small regf images in memory so tests can exercise
// the hive reader without binary fixtures.
package hivetest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/joshuapare/regwalk/internal/format"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Key describes one key of the image. Children and Values keep their order
// in the emitted lists.
type Key struct {
	Name     string
	Values   []types.Value
	Children []*Key

	// IndexList splits the subkey list into an RI record over two leaves.
	IndexList bool
	// LinearList emits an LI leaf instead of LF.
	LinearList bool
	// Loop appends the hive root to the subkey list, as a corrupt hive may.
	Loop bool
}

// Build returns a complete hive image whose root key is root.
func Build(root *Key) []byte {
	b := &builder{data: make([]byte, format.HBINHeaderSize)}
	rootOff := b.key(root, true)
	for _, pos := range b.loops {
		binary.LittleEndian.PutUint32(b.data[pos:], rootOff)
	}

	size := (len(b.data) + format.HBINAlignment - 1) &^ (format.HBINAlignment - 1)
	if tail := size - len(b.data); tail > 0 {
		// Remaining space is one free cell.
		free := make([]byte, tail)
		binary.LittleEndian.PutUint32(free, uint32(tail))
		b.data = append(b.data, free...)
	}
	copy(b.data, format.HBINSignature)
	binary.LittleEndian.PutUint32(b.data[format.HBINSizeOffset:], uint32(size))

	head := make([]byte, format.HeaderSize)
	copy(head, format.REGFSignature)
	binary.LittleEndian.PutUint32(head[format.REGFPrimarySeqOffset:], 1)
	binary.LittleEndian.PutUint32(head[format.REGFSecondarySeqOffset:], 1)
	binary.LittleEndian.PutUint32(head[format.REGFMajorVersionOffset:], 1)
	binary.LittleEndian.PutUint32(head[format.REGFMinorVersionOffset:], 5)
	binary.LittleEndian.PutUint32(head[format.REGFRootCellOffset:], rootOff)
	binary.LittleEndian.PutUint32(head[format.REGFDataSizeOffset:], uint32(size))
	var sum uint32
	for i := 0; i < 0x1FC; i += 4 {
		sum ^= binary.LittleEndian.Uint32(head[i:])
	}
	binary.LittleEndian.PutUint32(head[0x1FC:], sum)

	return append(head, b.data...)
}

// WriteFile builds the image into a temporary file and returns its path.
func WriteFile(tb testing.TB, root *Key) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "test.hiv")
	if err := os.WriteFile(path, Build(root), 0o644); err != nil {
		tb.Fatalf("write hive: %v", err)
	}
	return path
}

type builder struct {
	data  []byte   // starts at the first HBIN
	loops []uint32 // list entries to point at the root
}

func (b *builder) alloc(payload []byte) uint32 {
	size := (len(payload) + format.CellHeaderSize + 7) &^ 7
	off := uint32(len(b.data))
	cell := make([]byte, size)
	binary.LittleEndian.PutUint32(cell, uint32(-int32(size)))
	copy(cell[format.CellHeaderSize:], payload)
	b.data = append(b.data, cell...)
	return off
}

func (b *builder) key(k *Key, root bool) uint32 {
	childOffs := make([]uint32, len(k.Children))
	names := make([]string, len(k.Children))
	for i, c := range k.Children {
		childOffs[i] = b.key(c, false)
		names[i] = c.Name
	}
	if k.Loop {
		childOffs = append(childOffs, format.InvalidOffset)
		names = append(names, "")
	}
	subkeyList := uint32(format.InvalidOffset)
	if len(childOffs) > 0 {
		subkeyList = b.subkeyList(k, names, childOffs)
	}

	valueList := uint32(format.InvalidOffset)
	if len(k.Values) > 0 {
		list := make([]byte, 0, 4*len(k.Values))
		for _, v := range k.Values {
			list = binary.LittleEndian.AppendUint32(list, b.value(v))
		}
		valueList = b.alloc(list)
	}

	name, compressed := encodeName(k.Name)
	nk := make([]byte, format.NKFixedHeaderSize+len(name))
	copy(nk, format.NKSignature)
	var flags uint16
	if compressed {
		flags |= format.NKFlagCompressedName
	}
	if root {
		flags |= 0x04 | 0x08 // hive entry, no delete
	}
	binary.LittleEndian.PutUint16(nk[format.NKFlagsOffset:], flags)
	binary.LittleEndian.PutUint32(nk[format.NKParentOffset:], format.InvalidOffset)
	binary.LittleEndian.PutUint32(nk[format.NKSubkeyCountOffset:], uint32(len(childOffs)))
	binary.LittleEndian.PutUint32(nk[format.NKSubkeyListOffset:], subkeyList)
	binary.LittleEndian.PutUint32(nk[format.NKValueCountOffset:], uint32(len(k.Values)))
	binary.LittleEndian.PutUint32(nk[format.NKValueListOffset:], valueList)
	binary.LittleEndian.PutUint16(nk[format.NKNameLenOffset:], uint16(len(name)))
	copy(nk[format.NKNameOffset:], name)
	return b.alloc(nk)
}

func (b *builder) subkeyList(k *Key, names []string, offs []uint32) uint32 {
	if k.IndexList && len(offs) > 1 {
		half := len(offs) / 2
		first := b.leaf(k, names[:half], offs[:half])
		second := b.leaf(k, names[half:], offs[half:])
		ri := []byte{'r', 'i', 2, 0}
		ri = binary.LittleEndian.AppendUint32(ri, first)
		ri = binary.LittleEndian.AppendUint32(ri, second)
		return b.alloc(ri)
	}
	return b.leaf(k, names, offs)
}

func (b *builder) leaf(k *Key, names []string, offs []uint32) uint32 {
	list := make([]byte, 0, format.ListHeaderSize+8*len(offs))
	stride := 8
	if k.LinearList {
		list = append(list, format.LISignature...)
		stride = 4
	} else {
		list = append(list, format.LFSignature...)
	}
	list = binary.LittleEndian.AppendUint16(list, uint16(len(offs)))
	var loops []int
	for i, off := range offs {
		if off == format.InvalidOffset {
			loops = append(loops, i)
		}
		list = binary.LittleEndian.AppendUint32(list, off)
		if !k.LinearList {
			var hint [4]byte
			copy(hint[:], names[i])
			list = append(list, hint[:]...)
		}
	}
	cell := b.alloc(list)
	for _, i := range loops {
		b.loops = append(b.loops, cell+format.CellHeaderSize+format.ListHeaderSize+uint32(stride*i))
	}
	return cell
}

func (b *builder) value(v types.Value) uint32 {
	name, compressed := encodeName(v.Name)
	vk := make([]byte, format.VKFixedHeaderSize+len(name))
	copy(vk, format.VKSignature)
	binary.LittleEndian.PutUint16(vk[format.VKNameLenOffset:], uint16(len(name)))
	binary.LittleEndian.PutUint32(vk[format.VKTypeOffset:], uint32(v.Type))
	if compressed {
		binary.LittleEndian.PutUint16(vk[format.VKFlagsOffset:], format.VKFlagASCIIName)
	}
	copy(vk[format.VKNameOffset:], name)

	switch n := len(v.Data); {
	case n == 0:
		binary.LittleEndian.PutUint32(vk[format.VKDataLenOffset:], format.VKDataInlineBit)
	case n <= format.VKMaxInlineData:
		var inline [4]byte
		copy(inline[:], v.Data)
		binary.LittleEndian.PutUint32(vk[format.VKDataLenOffset:], format.VKDataInlineBit|uint32(n))
		copy(vk[format.VKDataOffOffset:], inline[:])
	case n > format.DBChunkSize:
		binary.LittleEndian.PutUint32(vk[format.VKDataLenOffset:], uint32(n))
		binary.LittleEndian.PutUint32(vk[format.VKDataOffOffset:], b.bigData(v.Data))
	default:
		binary.LittleEndian.PutUint32(vk[format.VKDataLenOffset:], uint32(n))
		binary.LittleEndian.PutUint32(vk[format.VKDataOffOffset:], b.alloc(v.Data))
	}
	return b.alloc(vk)
}

func (b *builder) bigData(data []byte) uint32 {
	var blocks []byte
	count := 0
	for len(data) > 0 {
		n := min(len(data), format.DBChunkSize)
		// Each block carries padding after the chunk.
		chunk := make([]byte, n+format.DBBlockPadding)
		copy(chunk, data[:n])
		blocks = binary.LittleEndian.AppendUint32(blocks, b.alloc(chunk))
		data = data[n:]
		count++
	}
	list := b.alloc(blocks)
	db := []byte{'d', 'b', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint16(db[format.DBCountOffset:], uint16(count))
	binary.LittleEndian.PutUint32(db[format.DBListOffset:], list)
	return b.alloc(db)
}

// encodeName stores ASCII names compressed and everything else as UTF-16LE.
func encodeName(s string) ([]byte, bool) {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return []byte(s), true
	}
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2*len(units))
	for _, u := range units {
		out = binary.LittleEndian.AppendUint16(out, u)
	}
	return out, false
}
