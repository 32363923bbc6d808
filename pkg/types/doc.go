// Package types defines the shared vocabulary of regwalk: the five predefined
// registry roots, registry value types and triples, and the typed errors the
// traversal engine branches on.
//
// Design goals:
//   - Validate roots once at the boundary; everything past it holds a Root.
//   - Keep value data in registry wire encoding so every backend yields the
//     same bytes (UTF-16LE strings, little-endian integers).
//   - Typed errors with stable categories (not found/access denied/...).
//
// This package has no dependencies beyond the standard library.
package types
