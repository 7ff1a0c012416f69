// Package zlib provides a pure Go decoder for zlib-compressed data
// (RFC 1950) and, through the inflate subpackage, for the raw DEFLATE
// format it wraps (RFC 1951).
//
// The package is decode-only and fully portable: no CGo, no assembly.
// Decompression is resumable at every input and output byte boundary,
// so the same core serves both the io.Reader surface here and callers
// that push buffers through an inflate.Session themselves.
//
// Basic usage:
//
//	rc, err := zlib.NewReader(r)
//	if err != nil { ... }
//	defer rc.Close()
//	io.Copy(dst, rc)
//
// For raw DEFLATE streams without the zlib envelope, use
// inflate.NewReader, or inflate.NewSession for buffer-level control.
package zlib
