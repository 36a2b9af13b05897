// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"

	"go.chromium.org/luci/common/errors"
)

// DigestSize is the size of every digest stored in a VPK.
const DigestSize = 16

// Digest is a 128 bit content fingerprint.
type Digest [DigestSize]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ChecksumScheme selects the function used to compute Digests.
type ChecksumScheme byte

// These are the available checksum algorithms. Valve's tools always write
// ChecksumMD5.
const (
	ChecksumMD5 ChecksumScheme = iota + 1
	ChecksumBLAKE2b
	ChecksumBLAKE3
)

// Valid returns nil iff the ChecksumScheme is valid.
func (c ChecksumScheme) Valid() error {
	switch c {
	case ChecksumMD5, ChecksumBLAKE2b, ChecksumBLAKE3:
		return nil
	}
	return errors.Reason("unknown checksum scheme 0x%x", byte(c)).Err()
}

func (c ChecksumScheme) String() string {
	switch c {
	case ChecksumMD5:
		return "md5"
	case ChecksumBLAKE2b:
		return "blake2b"
	case ChecksumBLAKE3:
		return "blake3"
	}
	return "ChecksumScheme(" + hex.EncodeToString([]byte{byte(c)}) + ")"
}

// ParseChecksumScheme is the inverse of ChecksumScheme.String.
func ParseChecksumScheme(name string) (ChecksumScheme, error) {
	for _, c := range []ChecksumScheme{ChecksumMD5, ChecksumBLAKE2b, ChecksumBLAKE3} {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, errors.Reason("unknown checksum scheme %q", name).Err()
}

// Sum computes the Digest of buf.
//
// Schemes with a wider native output are truncated to DigestSize.
func (c ChecksumScheme) Sum(buf []byte) (ret Digest) {
	switch c {
	case ChecksumMD5:
		return md5.Sum(buf)

	case ChecksumBLAKE2b:
		h, err := blake2b.New(DigestSize, nil)
		if err != nil {
			panic(err)
		}
		h.Write(buf)
		copy(ret[:], h.Sum(nil))

	case ChecksumBLAKE3:
		h := blake3.New()
		h.Write(buf)
		copy(ret[:], h.Sum(nil))

	default:
		panic(c.Valid())
	}
	return
}

// ChunkChecksumSize is the encoded size of a ChunkChecksum.
const ChunkChecksumSize = 4 + 4 + 4 + DigestSize

// ChunkChecksum is the expected digest of a byte range within one chunk.
type ChunkChecksum struct {
	ChunkIndex  uint32
	StartOffset uint32
	ByteCount   uint32
	Expected    Digest
}

// End returns the offset one past the covered range.
func (c ChunkChecksum) End() uint64 {
	return uint64(c.StartOffset) + uint64(c.ByteCount)
}

// ParseChunkChecksums decodes buf as a dense sequence of ChunkChecksum
// records. Trailing bytes too short for a full record are an error.
func ParseChunkChecksums(buf []byte) ([]ChunkChecksum, error) {
	if len(buf)%ChunkChecksumSize != 0 {
		return nil, Malformed(ErrMalformedRecord,
			"chunk checksum section is %d bytes, not a multiple of %d",
			len(buf), ChunkChecksumSize)
	}

	ret := make([]ChunkChecksum, 0, len(buf)/ChunkChecksumSize)
	d := NewDecoder(buf)
	for d.Len() > 0 {
		rec, err := readChunkChecksum(d)
		if err != nil {
			return nil, errors.Annotate(err, "chunk checksum record %d", len(ret)).Err()
		}
		ret = append(ret, rec)
	}
	return ret, nil
}

func readChunkChecksum(d *Decoder) (c ChunkChecksum, err error) {
	if c.ChunkIndex, err = d.Uint32(); err != nil {
		return
	}
	if c.StartOffset, err = d.Uint32(); err != nil {
		return
	}
	if c.ByteCount, err = d.Uint32(); err != nil {
		return
	}
	c.Expected, err = d.Digest()
	return
}

// AggregateChecksumSize is the encoded size of an AggregateChecksum.
const AggregateChecksumSize = 3 * DigestSize

// AggregateChecksum holds container-wide digests over the tree section and
// the chunk checksum section.
type AggregateChecksum struct {
	Tree       Digest
	ChunkTable Digest
	Reserved   Digest
}

// ParseAggregateChecksum decodes an AggregateChecksum from the start of buf.
// Bytes after the record are ignored.
func ParseAggregateChecksum(buf []byte) (a AggregateChecksum, err error) {
	if len(buf) < AggregateChecksumSize {
		err = Malformed(ErrMalformedRecord,
			"aggregate checksum section is %d bytes, need %d", len(buf), AggregateChecksumSize)
		return
	}
	d := NewDecoder(buf)
	for _, dst := range []*Digest{&a.Tree, &a.ChunkTable, &a.Reserved} {
		if *dst, err = d.Digest(); err != nil {
			return AggregateChecksum{}, err
		}
	}
	return
}
