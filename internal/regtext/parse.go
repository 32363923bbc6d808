package regtext

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/internal/store/memstore"
	"github.com/joshuapare/regwalk/pkg/types"
)

// ErrMissingHeader is returned when the export does not start with a known
// header line.
var ErrMissingHeader = errors.New("regtext: missing header")

// LoadFile imports the export at path into dst.
func LoadFile(path string, dst *memstore.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := Load(data, dst); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Load imports an export into dst. Sections create keys, [-...] sections
// delete them, and "name"=- deletes a value.
func Load(data []byte, dst *memstore.Store) error {
	text, err := decodeInput(data)
	if err != nil {
		return err
	}
	p := parser{dst: dst}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var pending strings.Builder
	for scanner.Scan() {
		p.line++
		line := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), "\r"))
		if pending.Len() > 0 {
			pending.WriteString(line)
			line = pending.String()
			pending.Reset()
		}
		if continues(line) {
			pending.WriteString(strings.TrimSuffix(line, Backslash))
			continue
		}
		if err := p.handle(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if pending.Len() > 0 {
		if err := p.handle(pending.String()); err != nil {
			return err
		}
	}
	if !p.seenHeader {
		return ErrMissingHeader
	}
	return nil
}

// continues reports whether a hex value line carries on below.
func continues(line string) bool {
	return strings.HasSuffix(line, HexByteSeparator+Backslash) && !strings.HasPrefix(line, KeyOpenBracket)
}

type parser struct {
	dst        *memstore.Store
	line       int
	seenHeader bool
	root       types.Root
	path       string
	inKey      bool
}

func (p *parser) errorf(format string, args ...any) error {
	return &types.Error{
		Kind: types.ErrKindFormat,
		Msg:  fmt.Sprintf("regtext: line %d: %s", p.line, fmt.Sprintf(format, args...)),
		Err:  types.ErrFormat,
	}
}

func (p *parser) handle(line string) error {
	if line == "" || strings.HasPrefix(line, CommentPrefix) {
		return nil
	}
	if !p.seenHeader {
		if line != RegFileHeader && line != RegFileHeaderV4 {
			return ErrMissingHeader
		}
		p.seenHeader = true
		return nil
	}
	if strings.HasPrefix(line, KeyOpenBracket) {
		return p.section(line)
	}
	if !p.inKey {
		return p.errorf("value without section: %q", line)
	}
	return p.value(line)
}

func (p *parser) section(line string) error {
	if !strings.HasSuffix(line, KeyCloseBracket) {
		return p.errorf("malformed section %q", line)
	}
	section := strings.TrimSuffix(strings.TrimPrefix(line, KeyOpenBracket), KeyCloseBracket)
	del := strings.HasPrefix(section, DeleteKeyPrefix)
	section = strings.TrimPrefix(section, DeleteKeyPrefix)

	rootName, path, _ := strings.Cut(strings.TrimSpace(section), Backslash)
	root, err := types.ParseRoot(rootName)
	if err != nil {
		return p.errorf("%v", err)
	}
	if del {
		p.inKey = false
		if err := p.dst.DeleteKey(root, path); err != nil && !errors.Is(err, types.ErrNotFound) {
			return p.errorf("%v", err)
		}
		return nil
	}
	p.root, p.path, p.inKey = root, path, true
	p.dst.CreateKey(root, path)
	return nil
}

func (p *parser) value(line string) error {
	var name, payload string
	switch {
	case strings.HasPrefix(line, DefaultValuePrefix):
		payload = line[len(DefaultValuePrefix):]
	case strings.HasPrefix(line, Quote):
		end := findClosingQuote(line)
		if end < 0 {
			return p.errorf("unterminated value name in %q", line)
		}
		name = unescape(line[1:end])
		rest := strings.TrimSpace(line[end+1:])
		if !strings.HasPrefix(rest, ValueAssignment) {
			return p.errorf("missing '=' in %q", line)
		}
		payload = rest[1:]
	default:
		return p.errorf("malformed value line %q", line)
	}
	payload = strings.TrimSpace(payload)

	if payload == DeleteValueToken {
		if err := p.dst.DeleteValue(p.root, p.path, name); err != nil && !errors.Is(err, types.ErrNotFound) {
			return p.errorf("%v", err)
		}
		return nil
	}
	v, err := parseData(payload)
	if err != nil {
		return p.errorf("value %q: %v", name, err)
	}
	v.Name = name
	p.dst.SetValue(p.root, p.path, v)
	return nil
}

func parseData(payload string) (types.Value, error) {
	switch {
	case strings.HasPrefix(payload, Quote):
		if len(payload) < 2 || !strings.HasSuffix(payload, Quote) {
			return types.Value{}, fmt.Errorf("unterminated string %q", payload)
		}
		s := unescape(payload[1 : len(payload)-1])
		return types.Value{Type: types.REG_SZ, Data: regvalue.EncodeString(s)}, nil
	case strings.HasPrefix(payload, DWORDPrefix):
		digits := payload[len(DWORDPrefix):]
		if len(digits) == 0 || len(digits) > DWORDHexLength {
			return types.Value{}, fmt.Errorf("invalid dword %q", payload)
		}
		n, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid dword %q", payload)
		}
		return types.Value{Type: types.REG_DWORD, Data: regvalue.EncodeDWORD(uint32(n))}, nil
	case strings.HasPrefix(payload, HexPrefix):
		data, err := parseHexBytes(payload[len(HexPrefix):])
		return types.Value{Type: types.REG_BINARY, Data: data}, err
	case strings.HasPrefix(payload, HexTypedPrefix):
		closing := strings.Index(payload, "):")
		if closing < 0 {
			return types.Value{}, fmt.Errorf("malformed typed hex %q", payload)
		}
		code, err := strconv.ParseUint(payload[len(HexTypedPrefix):closing], 16, 32)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid type in %q", payload)
		}
		data, err := parseHexBytes(payload[closing+2:])
		return types.Value{Type: types.RegType(code), Data: data}, err
	}
	return types.Value{}, fmt.Errorf("unsupported value %q", payload)
}

// parseHexBytes parses comma separated bytes, ignoring whitespace and
// continuation backslashes.
func parseHexBytes(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", "\t", "", Backslash, "").Replace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, HexByteSeparator)
	out := make([]byte, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) == 1 {
			part = "0" + part
		}
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return nil, fmt.Errorf("invalid hex byte %q", part)
		}
		out = append(out, b[0])
	}
	return out, nil
}

func unescape(s string) string {
	if !strings.Contains(s, Backslash) {
		return s
	}
	return strings.NewReplacer(EscapedBackslash, Backslash, EscapedQuote, Quote).Replace(s)
}

// findClosingQuote finds the quote ending a name that opens at line[0],
// skipping quotes preceded by an odd number of backslashes.
func findClosingQuote(line string) int {
	for i := 1; i < len(line); i++ {
		if line[i] != '"' {
			continue
		}
		n := 0
		for j := i - 1; j >= 1 && line[j] == '\\'; j-- {
			n++
		}
		if n%2 == 0 {
			return i
		}
	}
	return -1
}
