package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegType_Label(t *testing.T) {
	tests := []struct {
		name     string
		regType  RegType
		expected string
	}{
		// Known types
		{name: "REG_NONE", regType: REG_NONE, expected: "REG_NONE"},
		{name: "REG_SZ", regType: REG_SZ, expected: "REG_SZ"},
		{name: "REG_EXPAND_SZ", regType: REG_EXPAND_SZ, expected: "REG_EXPAND_SZ"},
		{name: "REG_BINARY", regType: REG_BINARY, expected: "REG_BINARY"},
		{name: "REG_DWORD", regType: REG_DWORD, expected: "REG_DWORD"},
		{name: "REG_DWORD_BE", regType: REG_DWORD_BE, expected: "REG_DWORD_BIG_ENDIAN"},
		{name: "REG_LINK", regType: REG_LINK, expected: "REG_LINK"},
		{name: "REG_MULTI_SZ", regType: REG_MULTI_SZ, expected: "REG_MULTI_SZ"},
		{name: "REG_RESOURCE_LIST", regType: REG_RESOURCE_LIST, expected: "REG_RESOURCE_LIST"},
		{name: "REG_FULL_RESOURCE_DESCRIPTOR", regType: REG_FULL_RESOURCE_DESCRIPTOR, expected: "REG_FULL_RESOURCE_DESCRIPTOR"},
		{name: "REG_RESOURCE_REQUIREMENTS_LIST", regType: REG_RESOURCE_REQUIREMENTS_LIST, expected: "REG_RESOURCE_REQUIREMENTS_LIST"},
		{name: "REG_QWORD", regType: REG_QWORD, expected: "REG_QWORD"},
		// Unknown types fall back to a fixed label
		{name: "twelve", regType: 12, expected: "REG_UNKNOWN"},
		{name: "0x4007", regType: 0x4007, expected: "REG_UNKNOWN"},
		{name: "max", regType: 0xFFFFFFFF, expected: "REG_UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.regType.Label())
		})
	}
}

func TestRegType_StringKeepsRawCode(t *testing.T) {
	assert.Equal(t, "REG_SZ", REG_SZ.String())
	assert.Equal(t, "REG_UNKNOWN(0x4007)", RegType(0x4007).String())
}
