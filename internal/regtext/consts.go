// Package regtext reads and writes the text export format of the Windows
// registry editor (.reg files). Imports land in a memstore so an export can
// be walked like a live registry.
package regtext

const (
	// RegFileHeader is the first line of a version 5 export.
	RegFileHeader = "Windows Registry Editor Version 5.00"
	// RegFileHeaderV4 is the first line of the older ANSI export.
	RegFileHeaderV4 = "REGEDIT4"

	KeyOpenBracket     = "["
	KeyCloseBracket    = "]"
	DeleteKeyPrefix    = "-"
	ValueAssignment    = "="
	DefaultValuePrefix = "@="
	CommentPrefix      = ";"
	DeleteValueToken   = "-"

	Quote            = "\""
	Backslash        = "\\"
	EscapedQuote     = "\\\""
	EscapedBackslash = "\\\\"

	CRLF = "\r\n"

	DWORDPrefix      = "dword:"
	HexPrefix        = "hex:"
	HexTypedPrefix   = "hex("
	HexByteSeparator = ","
	DWORDHexLength   = 8

	// lineWidth is where exported hex data wraps onto a continuation line.
	lineWidth = 76
)
