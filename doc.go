// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package vpkarchive reads Valve "VPK" archives, the package format used by
// Source engine games to ship their content.
//
// A VPK is split across several files. The directory file (conventionally
// named `something_dir.vpk`) holds the table of contents and, optionally,
// some file data. The bulk of the file data lives in numbered chunk files next
// to it (`something_000.vpk`, `something_001.vpk`, ...).
//
// The directory file has a fairly basic format, all integers little endian:
//   * header: signature (0x55AA1234), version (1 or 2) and tree_size. Version
//     2 adds the sizes of the four remaining sections.
//   * tree
//   * file data
//   * chunk checksums
//   * aggregate checksum
//   * signature
//
// Version 1 files only contain the tree (and any embedded file data, which is
// not described by the header).
//
// tree is three nested lists: extensions, then paths, then files. Each list
// item starts with a null terminated name, and each list ends with an empty
// name. Every file name is followed by a fixed size entry (crc, preload
// length, chunk index, offset, length and a 0xFFFF terminator) and then its
// preload bytes. Chunk index 0x7FFF refers to the directory file's own file
// data section.
//
// chunk checksums are 28 byte records (chunk index, offset, length, MD5) each
// covering a byte range of one chunk.
//
// aggregate checksum holds the MD5 of the tree section, the MD5 of the chunk
// checksum section, and a third digest which is not interpreted.
//
// signature holds a length prefixed public key followed by a length prefixed
// signature. It is exposed but never verified.
//
// The vpk package opens archives and verifies them; vpk/vpkdata and
// vpk/vpkdata/tree decode the individual pieces. Writing archives and
// extracting their files are not supported.
package vpkarchive
