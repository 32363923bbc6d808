// Package winstore reads the live Windows registry. On other platforms New
// returns types.ErrUnsupported.
package winstore
