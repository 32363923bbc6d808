package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Root identifies one of the predefined top-level registry keys. The zero
// value is not a valid root; obtain one from ParseRoot or RootFromHandle.
type Root uint8

const (
	ClassesRoot Root = iota + 1
	CurrentUser
	LocalMachine
	Users
	CurrentConfig
)

// Roots lists the valid roots in their canonical display order.
var Roots = []Root{ClassesRoot, CurrentUser, LocalMachine, Users, CurrentConfig}

type rootInfo struct {
	name   string
	alias  string
	handle uint32
}

// Handle values of the predefined keys as defined by winreg.h.
var rootTable = map[Root]rootInfo{
	ClassesRoot:   {name: "HKEY_CLASSES_ROOT", alias: "HKCR", handle: 0x80000000},
	CurrentUser:   {name: "HKEY_CURRENT_USER", alias: "HKCU", handle: 0x80000001},
	LocalMachine:  {name: "HKEY_LOCAL_MACHINE", alias: "HKLM", handle: 0x80000002},
	Users:         {name: "HKEY_USERS", alias: "HKU", handle: 0x80000003},
	CurrentConfig: {name: "HKEY_CURRENT_CONFIG", alias: "HKCC", handle: 0x80000005},
}

// Valid reports whether r is one of the predefined roots.
func (r Root) Valid() bool {
	_, ok := rootTable[r]
	return ok
}

// String returns the canonical name, e.g. "HKEY_CURRENT_USER".
func (r Root) String() string {
	if info, ok := rootTable[r]; ok {
		return info.name
	}
	return fmt.Sprintf("Root(%d)", uint8(r))
}

// Alias returns the short form, e.g. "HKCU".
func (r Root) Alias() string {
	return rootTable[r].alias
}

// Handle returns the predefined handle value of the root.
func (r Root) Handle() uint32 {
	return rootTable[r].handle
}

// RootNames returns the canonical names of all roots in display order.
func RootNames() []string {
	names := make([]string, len(Roots))
	for i, r := range Roots {
		names[i] = r.String()
	}
	return names
}

// RootFromHandle normalizes a numeric predefined handle. Both the 32-bit
// value and its sign-extended 64-bit form (as seen on 64-bit hosts) are
// accepted.
func RootFromHandle(h uint64) (Root, error) {
	if h>>32 == 0xFFFFFFFF {
		h &= 0xFFFFFFFF
	}
	if h <= 0xFFFFFFFF {
		for _, r := range Roots {
			if uint64(rootTable[r].handle) == h {
				return r, nil
			}
		}
	}
	return 0, &Error{
		Kind: ErrKindInvalidRoot,
		Msg:  fmt.Sprintf("the int %d is not a valid HKEY_* handle", h),
		Err:  ErrInvalidRoot,
	}
}

// ParseRoot normalizes a root given as its canonical name, its short alias,
// or its numeric handle (decimal or 0x-prefixed hex). Names are matched
// case-insensitively.
func ParseRoot(s string) (Root, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if key == "" {
		return 0, &Error{Kind: ErrKindInvalidRoot, Msg: "empty root key", Err: ErrInvalidRoot}
	}
	for _, r := range Roots {
		info := rootTable[r]
		if key == info.name || key == info.alias {
			return r, nil
		}
	}
	if h, ok := parseHandle(key); ok {
		return RootFromHandle(h)
	}
	return 0, &Error{
		Kind: ErrKindInvalidRoot,
		Msg:  fmt.Sprintf("%q is not a valid HKEY_* name", s),
		Err:  ErrInvalidRoot,
	}
}

func parseHandle(s string) (uint64, bool) {
	if hex, ok := strings.CutPrefix(s, "0X"); ok {
		h, err := strconv.ParseUint(hex, 16, 64)
		return h, err == nil
	}
	h, err := strconv.ParseUint(s, 10, 64)
	return h, err == nil
}
