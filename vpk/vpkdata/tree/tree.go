// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tree holds the VPK directory tree: the three-level, order
// preserving listing of extensions, paths and files, each file carrying a
// directory Entry.
package tree

import (
	"strings"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/errors"
)

// EmbeddedChunk is the chunk index which refers to the file data section
// stored inside the directory file itself.
const EmbeddedChunk uint16 = 0x7FFF

// Terminator must follow the fixed part of every encoded Entry.
const Terminator uint16 = 0xFFFF

// Blank is the name VPK writers use for "no extension" and for the archive
// root path.
const Blank = " "

// Entry is the directory record of a single file.
type Entry struct {
	CRC        uint32 `json:"crc" yaml:"crc" cbor:"1,keyasint"`
	ChunkIndex uint16 `json:"chunk_index" yaml:"chunk_index" cbor:"2,keyasint"`
	DataOffset uint32 `json:"data_offset" yaml:"data_offset" cbor:"3,keyasint"`
	DataLength uint32 `json:"data_length" yaml:"data_length" cbor:"4,keyasint"`
	Preload    []byte `json:"preload,omitempty" yaml:"preload,omitempty" cbor:"5,keyasint,omitempty"`
}

// IsEmbedded returns true iff the file's data lives in the directory file's
// own file data section.
func (e *Entry) IsEmbedded() bool {
	return e.ChunkIndex == EmbeddedChunk
}

// File is a named Entry.
type File struct {
	Name  string `json:"name" yaml:"name" cbor:"1,keyasint"`
	Entry Entry  `json:"entry" yaml:"entry" cbor:"2,keyasint"`
}

// Path is a directory path and the files in it, in encoded order.
type Path struct {
	Name  string `json:"name" yaml:"name" cbor:"1,keyasint"`
	Files []File `json:"files" yaml:"files" cbor:"2,keyasint"`
}

// Extension is a file extension and the paths containing files with it, in
// encoded order.
type Extension struct {
	Name  string `json:"name" yaml:"name" cbor:"1,keyasint"`
	Paths []Path `json:"paths" yaml:"paths" cbor:"2,keyasint"`
}

// Tree is a decoded VPK directory tree.
type Tree struct {
	Extensions []Extension `json:"extensions" yaml:"extensions" cbor:"1,keyasint"`
}

// FullPath joins the three tree levels into a slash separated file path.
func FullPath(ext, path, name string) string {
	ret := name
	if ext != Blank {
		ret += "." + ext
	}
	if path != Blank {
		ret = path + "/" + ret
	}
	return ret
}

// Len returns the number of files in the tree.
func (t *Tree) Len() (n int) {
	for _, x := range t.Extensions {
		for _, p := range x.Paths {
			n += len(p.Files)
		}
	}
	return
}

// Walk invokes cb for every file in the tree, in encoded order, along with
// the file's full path.
//
// Walk never returns an error by itself, but will forward the error returned
// by `cb` (if any). Returning an error from cb immediately stops the walk.
func (t *Tree) Walk(cb func(fullPath string, f *File) error) error {
	for xi := range t.Extensions {
		x := &t.Extensions[xi]
		for pi := range x.Paths {
			p := &x.Paths[pi]
			for fi := range p.Files {
				f := &p.Files[fi]
				if err := cb(FullPath(x.Name, p.Name, f.Name), f); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

var errStop = errors.New("stop")

// Find returns the Entry for the file at fullPath, as produced by FullPath.
func (t *Tree) Find(fullPath string) (ent *Entry, ok bool) {
	t.Walk(func(p string, f *File) error {
		if p == fullPath {
			ent, ok = &f.Entry, true
			return errStop
		}
		return nil
	})
	return
}

// Validate checks the names in the tree. Decoding already guarantees that
// names are non-empty UTF-8; Validate additionally rejects duplicated names
// within one level and names containing a path separator where one is not
// allowed.
func (t *Tree) Validate() error {
	exts := stringset.New(len(t.Extensions))
	for _, x := range t.Extensions {
		if err := checkName(x.Name, false); err != nil {
			return errors.Annotate(err, "extension %q", x.Name).Err()
		}
		if !exts.Add(x.Name) {
			return errors.Reason("duplicate extension %q", x.Name).Err()
		}
		if err := x.validate(); err != nil {
			return errors.Annotate(err, "in extension %q", x.Name).Err()
		}
	}
	return nil
}

func (x *Extension) validate() error {
	paths := stringset.New(len(x.Paths))
	for _, p := range x.Paths {
		if err := checkName(p.Name, true); err != nil {
			return errors.Annotate(err, "path %q", p.Name).Err()
		}
		if !paths.Add(p.Name) {
			return errors.Reason("duplicate path %q", p.Name).Err()
		}
		files := stringset.New(len(p.Files))
		for _, f := range p.Files {
			if err := checkName(f.Name, false); err != nil {
				return errors.Annotate(err, "in path %q: file %q", p.Name, f.Name).Err()
			}
			if !files.Add(f.Name) {
				return errors.Reason("in path %q: duplicate file %q", p.Name, f.Name).Err()
			}
		}
	}
	return nil
}

func checkName(name string, allowSlash bool) error {
	if name == "" {
		return errors.New("empty name")
	}
	if !allowSlash && strings.ContainsAny(name, "/\\") {
		return errors.New("path separator in name")
	}
	return nil
}
