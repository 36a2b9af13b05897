// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpk

import (
	"context"
	"fmt"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/vpkarchive/vpk/vpkdata"
)

// MismatchKind identifies which checksum a Mismatch refers to.
type MismatchKind int

// Valid values of MismatchKind.
const (
	// A byte range of a chunk does not match its chunk checksum record.
	ChunkDataMismatch MismatchKind = iota + 1

	// The tree section does not match the aggregate checksum record.
	TreeMismatch

	// The chunk checksum section does not match the aggregate checksum record.
	ChunkTableMismatch
)

func (k MismatchKind) String() string {
	switch k {
	case ChunkDataMismatch:
		return "chunk data"
	case TreeMismatch:
		return "tree"
	case ChunkTableMismatch:
		return "chunk table"
	}
	return fmt.Sprintf("MismatchKind(%d)", int(k))
}

// Mismatch is a single integrity violation found by Archive.Check.
type Mismatch struct {
	Kind MismatchKind

	// ChunkIndex, StartOffset and ByteCount are only set for ChunkDataMismatch.
	ChunkIndex  uint32
	StartOffset uint32
	ByteCount   uint32

	Expected vpkdata.Digest
	Actual   vpkdata.Digest
}

func (m *Mismatch) Error() string {
	if m.Kind == ChunkDataMismatch {
		return fmt.Sprintf("mismatched checksum (chunk %d [%d:+%d]): got %s, expected %s",
			m.ChunkIndex, m.StartOffset, m.ByteCount, m.Actual, m.Expected)
	}
	return fmt.Sprintf("mismatched checksum (%s): got %s, expected %s", m.Kind, m.Actual, m.Expected)
}

// Mismatches is the result of Archive.Check.
type Mismatches []*Mismatch

// Err returns nil if there are no mismatches, and an errors.MultiError
// containing all of them otherwise.
func (ms Mismatches) Err() error {
	if len(ms) == 0 {
		return nil
	}
	me := make(errors.MultiError, len(ms))
	for i, m := range ms {
		me[i] = m
	}
	return me
}

// Check recomputes every checksum recorded in the archive and returns all
// the mismatches it finds.
//
// An error is returned only if the check could not run to completion: the
// checksum sections are malformed, or a chunk checksum record refers to a
// chunk which is unavailable or too short.
func (a *Archive) Check(ctx context.Context) (Mismatches, error) {
	var ret Mismatches
	scheme := a.opts.checksum

	if len(a.chunkChecksums) > 0 {
		records, err := vpkdata.ParseChunkChecksums(a.chunkChecksums)
		if err != nil {
			return nil, errors.Annotate(err, "parsing chunk checksums").Err()
		}
		for i, rec := range records {
			data, ok := a.ChunkData(ctx, rec.ChunkIndex)
			if !ok {
				return nil, errors.Annotate(ErrChunkUnavailable,
					"chunk checksum record %d: chunk %d", i, rec.ChunkIndex).Err()
			}
			if rec.End() > uint64(len(data)) {
				return nil, errors.Annotate(vpkdata.Malformed(vpkdata.ErrMalformedRecord,
					"range [%d, %d) exceeds chunk %d of %d bytes",
					rec.StartOffset, rec.End(), rec.ChunkIndex, len(data)),
					"chunk checksum record %d", i).Err()
			}
			actual := scheme.Sum(data[rec.StartOffset:rec.End()])
			if actual != rec.Expected {
				ret = append(ret, &Mismatch{
					Kind:        ChunkDataMismatch,
					ChunkIndex:  rec.ChunkIndex,
					StartOffset: rec.StartOffset,
					ByteCount:   rec.ByteCount,
					Expected:    rec.Expected,
					Actual:      actual,
				})
			}
		}
		logging.Debugf(ctx, "checked %d chunk ranges", len(records))
	}

	if len(a.aggregateChecksum) > 0 {
		agg, err := vpkdata.ParseAggregateChecksum(a.aggregateChecksum)
		if err != nil {
			return nil, errors.Annotate(err, "parsing aggregate checksum").Err()
		}
		if agg.Tree != a.treeDigest {
			ret = append(ret, &Mismatch{Kind: TreeMismatch, Expected: agg.Tree, Actual: a.treeDigest})
		}
		if agg.ChunkTable != a.chunkTableDigest {
			ret = append(ret, &Mismatch{
				Kind: ChunkTableMismatch, Expected: agg.ChunkTable, Actual: a.chunkTableDigest})
		}
	}

	if len(ret) > 0 {
		logging.Warningf(ctx, "%q: %d checksum mismatches", a.name, len(ret))
	}
	return ret, nil
}
