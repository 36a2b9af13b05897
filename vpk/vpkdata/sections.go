// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

const numSections = 5

// Sections are the five byte ranges which follow the header, in file order.
// Each aliases the buffer given to SplitSections.
type Sections struct {
	Tree              []byte
	FileData          []byte
	ChunkChecksums    []byte
	AggregateChecksum []byte
	Signature         []byte
}

// SplitSections slices the bytes following h into the sections it describes.
//
// Bytes after the last section are ignored.
func SplitSections(h Header, rest []byte) (s Sections, err error) {
	sizes := h.SectionSizes()

	var total uint64
	for _, sz := range sizes {
		total += uint64(sz)
	}
	if uint64(len(rest)) < total {
		err = Malformed(ErrTruncated, "sections need %d bytes, have %d", total, len(rest))
		return
	}

	d := NewDecoder(rest)
	for i, dst := range []*[]byte{
		&s.Tree, &s.FileData, &s.ChunkChecksums, &s.AggregateChecksum, &s.Signature,
	} {
		if *dst, err = d.Bytes(int(sizes[i])); err != nil {
			return Sections{}, err
		}
	}
	return
}
