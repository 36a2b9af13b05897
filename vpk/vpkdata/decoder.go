// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// Decoder reads little-endian VPK primitives from an immutable buffer.
//
// A read which fails leaves the Decoder positioned where it was before the
// read. Byte slices returned by a Decoder alias the underlying buffer and must
// not be modified.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a Decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Len returns the number of unconsumed bytes.
func (d *Decoder) Len() int { return len(d.buf) - d.off }

// Rest returns the unconsumed bytes without advancing.
func (d *Decoder) Rest() []byte { return d.buf[d.off:] }

func (d *Decoder) take(n int, what string) ([]byte, error) {
	if n < 0 || d.Len() < n {
		return nil, Malformed(ErrTruncated,
			"reading %s at offset %d: need %d bytes, have %d", what, d.off, n, d.Len())
	}
	ret := d.buf[d.off : d.off+n : d.off+n]
	d.off += n
	return ret, nil
}

// Uint16 reads a little-endian uint16.
func (d *Decoder) Uint16() (uint16, error) {
	b, err := d.take(2, "uint16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian uint32.
func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.take(4, "uint32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Digest reads a fixed-size 16 byte digest.
func (d *Decoder) Digest() (ret Digest, err error) {
	b, err := d.take(DigestSize, "digest")
	if err == nil {
		copy(ret[:], b)
	}
	return
}

// Bytes reads exactly n raw bytes.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	return d.take(n, "bytes")
}

// LengthPrefixed reads a little-endian uint32 length followed by that many
// bytes.
func (d *Decoder) LengthPrefixed() ([]byte, error) {
	start := d.off
	n, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	b, err := d.take(int(n), "length-prefixed bytes")
	if err != nil {
		d.off = start
		return nil, err
	}
	return b, nil
}

// LengthPrefixedString is LengthPrefixed, validated as UTF-8.
func (d *Decoder) LengthPrefixedString() (string, error) {
	start := d.off
	b, err := d.LengthPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		d.off = start
		return "", Malformed(ErrInvalidName, "string at offset %d is not UTF-8", start)
	}
	return string(b), nil
}

// CString reads a null-terminated UTF-8 string. The terminator is consumed
// but not included in the result.
func (d *Decoder) CString() (string, error) {
	idx := bytes.IndexByte(d.Rest(), 0)
	if idx < 0 {
		return "", Malformed(ErrTruncated,
			"unterminated string at offset %d", d.off)
	}
	b := d.Rest()[:idx]
	if !utf8.Valid(b) {
		return "", Malformed(ErrInvalidName,
			"string at offset %d is not UTF-8: %q", d.off, b)
	}
	d.off += idx + 1
	return string(b), nil
}
