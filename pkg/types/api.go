package types

import (
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindInvalidRoot       ErrKind = iota // root does not normalize to a predefined key
	ErrKindNotFound                         // missing key at open time
	ErrKindAccessDenied                     // caller lacks rights to open a key
	ErrKindRecursionLimit                   // traversal exceeded the configured frame limit
	ErrKindInvalidExclusions                // exclusion input is not a path collection
	ErrKindFormat                           // malformed backing data (hive or .reg)
	ErrKindUnsupported                      // backend not available on this platform
	ErrKindEnd                              // enumeration exhausted (not a failure)
)

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by implementations.
var (
	// ErrInvalidRoot indicates a root that is not one of the five predefined keys.
	ErrInvalidRoot = &Error{Kind: ErrKindInvalidRoot, Msg: "invalid root key"}
	// ErrNotFound indicates a missing key.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrAccessDenied indicates the caller may not open the key.
	ErrAccessDenied = &Error{Kind: ErrKindAccessDenied, Msg: "access is denied"}
	// ErrRecursionLimit indicates the traversal frame limit was reached.
	ErrRecursionLimit = &Error{Kind: ErrKindRecursionLimit, Msg: "maximum traversal depth exceeded"}
	// ErrInvalidExclusions indicates the exclusion input was not a path list.
	ErrInvalidExclusions = &Error{Kind: ErrKindInvalidExclusions, Msg: "exclusions must be a list of key paths"}
	// ErrFormat indicates malformed backing data.
	ErrFormat = &Error{Kind: ErrKindFormat, Msg: "malformed registry data"}
	// ErrUnsupported indicates the requested backend is unavailable.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported on this platform"}
	// ErrNoMoreItems marks the end of an index-driven enumeration.
	ErrNoMoreItems = &Error{Kind: ErrKindEnd, Msg: "no more data is available"}
)

// NotFoundf builds a NotFound error for a key path.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrKindNotFound, Msg: fmt.Sprintf(format, args...), Err: ErrNotFound}
}

// AccessDeniedf builds an AccessDenied error for a key path.
func AccessDeniedf(format string, args ...any) error {
	return &Error{Kind: ErrKindAccessDenied, Msg: fmt.Sprintf(format, args...), Err: ErrAccessDenied}
}

// -----------------------------------------------------------------------------
// Values
// -----------------------------------------------------------------------------

// RegType enumerates Windows registry value types.
// (The numbers align with Windows definitions.)
type RegType uint32

const (
	REG_NONE                       RegType = 0
	REG_SZ                         RegType = 1
	REG_EXPAND_SZ                  RegType = 2
	REG_BINARY                     RegType = 3
	REG_DWORD                      RegType = 4
	REG_DWORD_LE                   RegType = 4 // alias for clarity
	REG_DWORD_BE                   RegType = 5
	REG_LINK                       RegType = 6
	REG_MULTI_SZ                   RegType = 7
	REG_RESOURCE_LIST              RegType = 8
	REG_FULL_RESOURCE_DESCRIPTOR   RegType = 9
	REG_RESOURCE_REQUIREMENTS_LIST RegType = 10
	REG_QWORD                      RegType = 11
	REG_QWORD_LE                   RegType = 11 // alias for clarity
)

// UnknownLabel is printed for type codes outside the known set.
const UnknownLabel = "REG_UNKNOWN"

var regTypeLabels = [...]string{
	REG_NONE:                       "REG_NONE",
	REG_SZ:                         "REG_SZ",
	REG_EXPAND_SZ:                  "REG_EXPAND_SZ",
	REG_BINARY:                     "REG_BINARY",
	REG_DWORD:                      "REG_DWORD",
	REG_DWORD_BE:                   "REG_DWORD_BIG_ENDIAN",
	REG_LINK:                       "REG_LINK",
	REG_MULTI_SZ:                   "REG_MULTI_SZ",
	REG_RESOURCE_LIST:              "REG_RESOURCE_LIST",
	REG_FULL_RESOURCE_DESCRIPTOR:   "REG_FULL_RESOURCE_DESCRIPTOR",
	REG_RESOURCE_REQUIREMENTS_LIST: "REG_RESOURCE_REQUIREMENTS_LIST",
	REG_QWORD:                      "REG_QWORD",
}

// Known reports whether t has a human-readable label.
func (t RegType) Known() bool {
	return int(t) < len(regTypeLabels)
}

// Label returns the REG_* label, or UnknownLabel for codes outside the known set.
func (t RegType) Label() string {
	if !t.Known() {
		return UnknownLabel
	}
	return regTypeLabels[t]
}

// String implements the Stringer interface for RegType. Unknown codes keep
// their raw value so logs stay diagnosable.
func (t RegType) String() string {
	if !t.Known() {
		return fmt.Sprintf("%s(0x%x)", UnknownLabel, uint32(t))
	}
	return regTypeLabels[t]
}

// Value is one (name, value, type) triple attached to a key. Name is empty for
// the key's default value. Data is in registry wire encoding.
type Value struct {
	Name string
	Type RegType
	Data []byte
}
