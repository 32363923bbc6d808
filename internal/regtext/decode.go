package regtext

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeInput returns the export as UTF-8. Exports written by the registry
// editor are UTF-16LE with a BOM; hand-written ones are usually UTF-8.
func decodeInput(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("regtext: decode: %w", err)
	}
	return string(out), nil
}
