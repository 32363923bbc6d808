package hivefile

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/regwalk/internal/regvalue"
)

// decodeName decodes a key or value name. Compressed names are stored as
// Windows-1252; the rest are UTF-16LE.
func decodeName(raw []byte, compressed bool) string {
	if !compressed {
		return regvalue.DecodeUTF16(raw)
	}
	for _, c := range raw {
		if c >= 0x80 {
			out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
			if err != nil {
				return string(raw)
			}
			return string(out)
		}
	}
	return string(raw)
}
