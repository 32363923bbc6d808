// Package regvalue converts registry value data between its wire encoding
// (UTF-16LE strings, little-endian integers) and the forms the CLI prints.
//
// Render reproduces the textual form administrators are used to seeing from
// scripting the registry: strings print bare, integers print in decimal,
// multi-strings print as a quoted list, and everything else prints as a bytes
// literal such as b'\x01A'.
package regvalue
