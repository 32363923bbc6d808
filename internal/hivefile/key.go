package hivefile

import (
	"fmt"
	"strings"

	"github.com/joshuapare/regwalk/internal/format"
	"github.com/joshuapare/regwalk/pkg/types"
)

// Key is a decoded NK record bound to its hive.
type Key struct {
	hive *Hive
	off  uint32
	nk   format.NKRecord
}

// Offset returns the cell offset of the key.
func (k Key) Offset() uint32 { return k.off }

// Name returns the decoded key name.
func (k Key) Name() string {
	return decodeName(k.nk.NameRaw, k.nk.NameIsCompressed())
}

// SubkeyCount returns the number of subkeys recorded in the key.
func (k Key) SubkeyCount() int { return int(k.nk.SubkeyCount) }

// ValueCount returns the number of values recorded in the key.
func (k Key) ValueCount() int { return int(k.nk.ValueCount) }

// SubkeyOffsets returns the NK offsets of all subkeys in list order,
// flattening RI records.
func (k Key) SubkeyOffsets() ([]uint32, error) {
	if k.nk.SubkeyCount == 0 || k.nk.SubkeyListOffset == format.InvalidOffset {
		return nil, nil
	}
	out := make([]uint32, 0, k.nk.SubkeyCount)
	return k.hive.appendList(out, k.nk.SubkeyListOffset, true)
}

func (h *Hive) appendList(out []uint32, off uint32, allowIndex bool) ([]uint32, error) {
	data, err := h.payload(off)
	if err != nil {
		return nil, err
	}
	if format.IsRIList(data) {
		if !allowIndex {
			return nil, formatErr(h.path, fmt.Errorf("nested ri list at 0x%x", off))
		}
		leaves, err := format.DecodeRIList(data)
		if err != nil {
			return nil, formatErr(h.path, err)
		}
		for _, leaf := range leaves {
			if out, err = h.appendList(out, leaf, false); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	offs, err := format.DecodeSubkeyList(data)
	if err != nil {
		return nil, formatErr(h.path, err)
	}
	return append(out, offs...), nil
}

// SubkeyAt decodes the subkey stored at offs[i] where offs came from
// SubkeyOffsets.
func (k Key) SubkeyAt(offs []uint32, i int) (Key, error) {
	if i < 0 || i >= len(offs) {
		return Key{}, types.ErrNoMoreItems
	}
	return k.hive.key(offs[i])
}

// Subkeys decodes every subkey in list order.
func (k Key) Subkeys() ([]Key, error) {
	offs, err := k.SubkeyOffsets()
	if err != nil {
		return nil, err
	}
	out := make([]Key, 0, len(offs))
	for i := range offs {
		sk, err := k.SubkeyAt(offs, i)
		if err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, nil
}

// Child returns the subkey named name, compared case-insensitively.
func (k Key) Child(name string) (Key, error) {
	subkeys, err := k.Subkeys()
	if err != nil {
		return Key{}, err
	}
	for _, sk := range subkeys {
		if strings.EqualFold(sk.Name(), name) {
			return sk, nil
		}
	}
	return Key{}, types.NotFoundf("%s", name)
}

// Value decodes the i-th value of the key. It returns types.ErrNoMoreItems
// once i passes the last value.
func (k Key) Value(i int) (types.Value, error) {
	if i < 0 || i >= int(k.nk.ValueCount) || k.nk.ValueListOffset == format.InvalidOffset {
		return types.Value{}, types.ErrNoMoreItems
	}
	list, err := k.hive.payload(k.nk.ValueListOffset)
	if err != nil {
		return types.Value{}, err
	}
	off, err := format.ValueOffset(list, i)
	if err != nil {
		return types.Value{}, formatErr(k.hive.path, err)
	}
	return k.hive.value(off)
}

func (h *Hive) value(off uint32) (types.Value, error) {
	data, err := h.payload(off)
	if err != nil {
		return types.Value{}, err
	}
	vk, err := format.DecodeVK(data)
	if err != nil {
		return types.Value{}, formatErr(h.path, err)
	}
	v := types.Value{
		Name: decodeName(vk.NameRaw, vk.NameIsASCII()),
		Type: types.RegType(vk.Type),
	}
	length := vk.Length()
	switch {
	case vk.DataInline():
		v.Data = vk.InlineData()
	case length == 0:
	default:
		cell, err := h.payload(vk.DataOffset)
		if err != nil {
			return types.Value{}, err
		}
		if format.IsDBRecord(cell) && length > format.DBChunkSize {
			v.Data, err = h.bigData(cell, length)
			if err != nil {
				return types.Value{}, err
			}
			break
		}
		if len(cell) < length {
			return types.Value{}, formatErr(h.path, fmt.Errorf("value %q data truncated: %w", v.Name, format.ErrTruncated))
		}
		v.Data = cell[:length]
	}
	return v, nil
}

// bigData concatenates the blocks of a db record up to length bytes.
func (h *Hive) bigData(cell []byte, length int) ([]byte, error) {
	db, err := format.DecodeDB(cell)
	if err != nil {
		return nil, formatErr(h.path, err)
	}
	list, err := h.payload(db.BlocklistOffset)
	if err != nil {
		return nil, fmt.Errorf("db blocklist: %w", err)
	}
	out := make([]byte, 0, length)
	for i := range int(db.NumBlocks) {
		off, err := format.ValueOffset(list, i)
		if err != nil {
			return nil, formatErr(h.path, err)
		}
		block, err := h.payload(off)
		if err != nil {
			return nil, fmt.Errorf("db block %d: %w", i, err)
		}
		if len(block) > format.DBBlockPadding {
			block = block[:len(block)-format.DBBlockPadding]
		}
		block = block[:min(len(block), length-len(out))]
		out = append(out, block...)
		if len(out) == length {
			return out, nil
		}
	}
	return nil, formatErr(h.path, fmt.Errorf("db data size mismatch: expected %d bytes, got %d", length, len(out)))
}
