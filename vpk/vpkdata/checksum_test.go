// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

import (
	"crypto/md5"
	"testing"

	"go.chromium.org/luci/common/errors"
	. "go.chromium.org/luci/common/testing/assertions"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/riannucci/vpkarchive/internal/vpktest"
)

func TestChecksumScheme(t *testing.T) {
	t.Parallel()

	Convey("ChecksumScheme", t, func() {
		Convey("md5 is the on-disk digest", func() {
			So(ChecksumMD5.Sum([]byte("hello world!")), ShouldResemble,
				Digest(md5.Sum([]byte("hello world!"))))
		})

		Convey("schemes disagree", func() {
			data := []byte("hello world!")
			So(ChecksumBLAKE2b.Sum(data), ShouldNotResemble, ChecksumMD5.Sum(data))
			So(ChecksumBLAKE3.Sum(data), ShouldNotResemble, ChecksumMD5.Sum(data))
			So(ChecksumBLAKE3.Sum(data), ShouldNotResemble, ChecksumBLAKE2b.Sum(data))
		})

		Convey("deterministic", func() {
			So(ChecksumBLAKE3.Sum([]byte("x")), ShouldResemble, ChecksumBLAKE3.Sum([]byte("x")))
		})

		Convey("names", func() {
			for _, c := range []ChecksumScheme{ChecksumMD5, ChecksumBLAKE2b, ChecksumBLAKE3} {
				So(c.Valid(), ShouldBeNil)
				parsed, err := ParseChecksumScheme(c.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, c)
			}
			_, err := ParseChecksumScheme("crc32")
			So(err, ShouldErrLike, `unknown checksum scheme "crc32"`)
		})

		Convey("bad scheme", func() {
			So(ChecksumScheme(100).Valid(), ShouldErrLike, "unknown checksum scheme 0x64")
			So(func() { ChecksumScheme(100).Sum(nil) }, ShouldPanic)
		})
	})
}

func TestChunkChecksums(t *testing.T) {
	t.Parallel()

	Convey("ParseChunkChecksums", t, func() {
		d1 := md5.Sum([]byte("one"))
		d2 := md5.Sum([]byte("two"))

		Convey("empty", func() {
			recs, err := ParseChunkChecksums(nil)
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})

		Convey("records", func() {
			buf := append(
				vpktest.ChunkChecksum(0, 16, 1024, d1),
				vpktest.ChunkChecksum(0x7fff, 0, 3, d2)...)
			recs, err := ParseChunkChecksums(buf)
			So(err, ShouldBeNil)
			So(recs, ShouldResemble, []ChunkChecksum{
				{ChunkIndex: 0, StartOffset: 16, ByteCount: 1024, Expected: d1},
				{ChunkIndex: 0x7fff, StartOffset: 0, ByteCount: 3, Expected: d2},
			})
			So(recs[0].End(), ShouldEqual, 1040)
		})

		Convey("end does not overflow", func() {
			c := ChunkChecksum{StartOffset: 0xffffffff, ByteCount: 0xffffffff}
			So(c.End(), ShouldEqual, uint64(0x1fffffffe))
		})

		Convey("trailing partial record", func() {
			buf := vpktest.ChunkChecksum(0, 16, 1024, d1)
			_, err := ParseChunkChecksums(buf[:len(buf)-1])
			So(err, ShouldErrLike, "27 bytes, not a multiple of 28")
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
			So(FormatTag.In(err), ShouldBeTrue)
		})
	})

	Convey("ParseAggregateChecksum", t, func() {
		tree := md5.Sum([]byte("tree"))
		table := md5.Sum([]byte("table"))

		Convey("good", func() {
			agg, err := ParseAggregateChecksum(vpktest.AggregateChecksum(tree, table, Digest{}))
			So(err, ShouldBeNil)
			So(agg, ShouldResemble, AggregateChecksum{Tree: tree, ChunkTable: table})
		})

		Convey("short", func() {
			_, err := ParseAggregateChecksum(make([]byte, 47))
			So(err, ShouldErrLike, "aggregate checksum section is 47 bytes, need 48")
			So(errors.Is(err, ErrMalformedRecord), ShouldBeTrue)
		})
	})
}

func TestSignature(t *testing.T) {
	t.Parallel()

	Convey("ParseSignature", t, func() {
		Convey("good", func() {
			sig, err := ParseSignature(vpktest.Signature([]byte("pubkey"), []byte("sig")))
			So(err, ShouldBeNil)
			So(sig.PublicKey, ShouldResemble, []byte("pubkey"))
			So(sig.Signature, ShouldResemble, []byte("sig"))
		})

		Convey("short signature", func() {
			buf := vpktest.Signature([]byte("pubkey"), []byte("sig"))
			_, err := ParseSignature(buf[:len(buf)-1])
			So(err, ShouldErrLike, "signature: reading length-prefixed bytes")
			So(errors.Is(err, ErrTruncated), ShouldBeTrue)
		})

		Convey("short public key", func() {
			_, err := ParseSignature([]byte{10, 0, 0, 0, 'x'})
			So(err, ShouldErrLike, "public key")
		})
	})
}

func TestChunkFileName(t *testing.T) {
	t.Parallel()

	Convey("ChunkFileName", t, func() {
		Convey("good", func() {
			name, err := ChunkFileName("pak01_dir.vpk", 0)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "pak01_000.vpk")

			name, err = ChunkFileName("hl2/hl2_misc_dir.vpk", 27)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "hl2/hl2_misc_027.vpk")

			name, err = ChunkFileName("pak01_dir.vpk", 1234)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "pak01_1234.vpk")
		})

		Convey("only the trailing suffix is replaced", func() {
			name, err := ChunkFileName("my_dir_files/tf2_dir_textures_dir.vpk", 7)
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "my_dir_files/tf2_dir_textures_007.vpk")
		})

		Convey("bad", func() {
			for _, bad := range []string{"pak01.vpk", "_dir.vpk", "pak01_dir_x.vpk", "pak01_dir.vpk/"} {
				_, err := ChunkFileName(bad, 1)
				So(errors.Is(err, ErrNotDirectoryFile), ShouldBeTrue)
			}
		})
	})
}
