// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

// Signature is the magic value (read as a little-endian uint32) which appears
// at the beginning of every VPK directory file.
const Signature uint32 = 0x55AA1234

// These are the known VPK header versions.
const (
	Version1 uint32 = 1
	Version2 uint32 = 2
)

// Encoded header sizes, including signature and version.
const (
	HeaderSizeV1 = 12
	HeaderSizeV2 = 28
)

// Header is the decoded fixed-size VPK header.
//
// Version1 headers only carry TreeSize; all other sizes are zero for them.
type Header struct {
	Version uint32

	TreeSize              uint32
	FileDataSize          uint32
	ChunkChecksumSize     uint32
	AggregateChecksumSize uint32
	SignatureSize         uint32
}

// Size returns the number of bytes this header occupies in a file.
func (h Header) Size() int {
	if h.Version == Version1 {
		return HeaderSizeV1
	}
	return HeaderSizeV2
}

// SectionSizes returns the lengths of the five sections which follow the
// header, in file order.
func (h Header) SectionSizes() [numSections]uint32 {
	return [numSections]uint32{
		h.TreeSize, h.FileDataSize, h.ChunkChecksumSize,
		h.AggregateChecksumSize, h.SignatureSize,
	}
}

// ReadHeader decodes the header at the start of buf and returns it with the
// remaining, unconsumed bytes.
//
// Nothing past the version is read unless the version is known.
func ReadHeader(buf []byte) (h Header, rest []byte, err error) {
	d := NewDecoder(buf)

	sig, err := d.Uint32()
	if err != nil {
		return
	}
	if sig != Signature {
		err = Malformed(ErrBadSignature, "got 0x%08x, expected 0x%08x", sig, Signature)
		return
	}

	if h.Version, err = d.Uint32(); err != nil {
		return
	}
	switch h.Version {
	case Version1:
		h.TreeSize, err = d.Uint32()

	case Version2:
		for _, field := range []*uint32{
			&h.TreeSize, &h.FileDataSize, &h.ChunkChecksumSize,
			&h.AggregateChecksumSize, &h.SignatureSize,
		} {
			if *field, err = d.Uint32(); err != nil {
				break
			}
		}

	default:
		err = Malformed(ErrUnsupportedVersion, "version %d", h.Version)
	}
	if err != nil {
		h = Header{}
		return
	}

	rest = d.Rest()
	return
}
