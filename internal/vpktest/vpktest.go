// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package vpktest assembles VPK directory files byte by byte for tests.
//
// It shares no code with the decoders under test.
package vpktest

import (
	"bytes"
	"encoding/binary"
)

const (
	signature  uint32 = 0x55AA1234
	terminator uint16 = 0xFFFF

	// Embedded is the chunk index of the directory file's own data section.
	Embedded uint16 = 0x7FFF
)

// Entry is the directory record of one file.
type Entry struct {
	CRC        uint32
	ChunkIndex uint16
	DataOffset uint32
	DataLength uint32
	Preload    []byte

	// Terminator, if non-zero, replaces the 0xFFFF marker.
	Terminator uint16
}

// File is a named Entry.
type File struct {
	Name  string
	Entry Entry
}

// Path is a path and its files.
type Path struct {
	Name  string
	Files []File
}

// Ext is an extension and its paths.
type Ext struct {
	Name  string
	Paths []Path
}

func le(w *bytes.Buffer, vals ...any) {
	for _, v := range vals {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
}

func cstring(w *bytes.Buffer, s string) {
	w.WriteString(s)
	w.WriteByte(0)
}

// EncodeEntry encodes a single directory record (without its name).
func EncodeEntry(e Entry) []byte {
	w := &bytes.Buffer{}
	term := terminator
	if e.Terminator != 0 {
		term = e.Terminator
	}
	le(w, e.CRC, uint16(len(e.Preload)), e.ChunkIndex, e.DataOffset, e.DataLength, term)
	w.Write(e.Preload)
	return w.Bytes()
}

// EncodeTree encodes a complete tree section, including the closing empty
// name of every level.
func EncodeTree(exts ...Ext) []byte {
	w := &bytes.Buffer{}
	for _, x := range exts {
		cstring(w, x.Name)
		for _, p := range x.Paths {
			cstring(w, p.Name)
			for _, f := range p.Files {
				cstring(w, f.Name)
				w.Write(EncodeEntry(f.Entry))
			}
			cstring(w, "")
		}
		cstring(w, "")
	}
	cstring(w, "")
	return w.Bytes()
}

// ChunkChecksum encodes one chunk checksum record.
func ChunkChecksum(index, offset, count uint32, digest [16]byte) []byte {
	w := &bytes.Buffer{}
	le(w, index, offset, count)
	w.Write(digest[:])
	return w.Bytes()
}

// AggregateChecksum encodes the aggregate checksum record.
func AggregateChecksum(tree, chunkTable, reserved [16]byte) []byte {
	return bytes.Join([][]byte{tree[:], chunkTable[:], reserved[:]}, nil)
}

// Signature encodes a signature section.
func Signature(publicKey, sig []byte) []byte {
	w := &bytes.Buffer{}
	le(w, uint32(len(publicKey)))
	w.Write(publicKey)
	le(w, uint32(len(sig)))
	w.Write(sig)
	return w.Bytes()
}

// Container is a whole directory file. Version 1 containers only encode Tree;
// the remaining sections are appended verbatim but not described by the
// header.
type Container struct {
	Version uint32

	Tree              []byte
	FileData          []byte
	ChunkChecksums    []byte
	AggregateChecksum []byte
	Signature         []byte
}

// Bytes encodes the container.
func (c Container) Bytes() []byte {
	w := &bytes.Buffer{}
	le(w, signature, c.Version, uint32(len(c.Tree)))
	if c.Version != 1 {
		le(w,
			uint32(len(c.FileData)), uint32(len(c.ChunkChecksums)),
			uint32(len(c.AggregateChecksum)), uint32(len(c.Signature)))
	}
	for _, s := range [][]byte{c.Tree, c.FileData, c.ChunkChecksums, c.AggregateChecksum, c.Signature} {
		w.Write(s)
	}
	return w.Bytes()
}
