// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tree

import (
	"go.chromium.org/luci/common/errors"

	"github.com/riannucci/vpkarchive/vpk/vpkdata"
)

// Decode parses the tree section of a VPK directory file.
//
// Every level of the tree is a sequence of (name, child) pairs closed by an
// empty name. Bytes following the outermost empty name are ignored.
func Decode(buf []byte) (*Tree, error) {
	d := vpkdata.NewDecoder(buf)
	t := &Tree{}
	err := readLevel(d, "extension", func(name string) error {
		x := Extension{Name: name}
		err := readLevel(d, "path", func(name string) error {
			p := Path{Name: name}
			err := readLevel(d, "file", func(name string) error {
				f := File{Name: name}
				if err := readEntry(d, &f.Entry); err != nil {
					return errors.Annotate(err, "entry").Err()
				}
				p.Files = append(p.Files, f)
				return nil
			})
			x.Paths = append(x.Paths, p)
			return err
		})
		t.Extensions = append(t.Extensions, x)
		return err
	})
	if err != nil {
		return nil, errors.Annotate(err, "decoding tree").Err()
	}
	return t, nil
}

// readLevel reads names from d until it reads an empty one, invoking child
// after each non-empty name to decode whatever follows it.
func readLevel(d *vpkdata.Decoder, level string, child func(name string) error) error {
	for {
		name, err := d.CString()
		if err != nil {
			return errors.Annotate(err, "%s name", level).Err()
		}
		if name == "" {
			return nil
		}
		if err := child(name); err != nil {
			return errors.Annotate(err, "%s %q", level, name).Err()
		}
	}
}

func readEntry(d *vpkdata.Decoder, e *Entry) (err error) {
	if e.CRC, err = d.Uint32(); err != nil {
		return
	}
	preloadLen, err := d.Uint16()
	if err != nil {
		return
	}
	if e.ChunkIndex, err = d.Uint16(); err != nil {
		return
	}
	if e.DataOffset, err = d.Uint32(); err != nil {
		return
	}
	if e.DataLength, err = d.Uint32(); err != nil {
		return
	}
	term, err := d.Uint16()
	if err != nil {
		return
	}
	if term != Terminator {
		return vpkdata.Malformed(vpkdata.ErrBadTerminator,
			"got 0x%04x, expected 0x%04x", term, Terminator)
	}
	if preloadLen > 0 {
		e.Preload, err = d.Bytes(int(preloadLen))
	}
	return
}
