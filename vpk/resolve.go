// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpk

import (
	"context"
	"time"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/vpkarchive/vpk/vpkdata"
	"github.com/riannucci/vpkarchive/vpk/vpkdata/tree"
)

// ErrChunkUnavailable is returned when an operation requires the data of a
// chunk whose file could not be read.
var ErrChunkUnavailable = errors.New("chunk unavailable")

// ChunkState describes what an Archive knows about one chunk.
type ChunkState int

// Valid values of ChunkState.
const (
	// The chunk file has not been read yet.
	ChunkUnresolved ChunkState = iota

	// The chunk's data is held in memory.
	ChunkLoaded

	// Reading the chunk file failed. It will not be retried.
	ChunkMissing
)

func (s ChunkState) String() string {
	switch s {
	case ChunkUnresolved:
		return "unresolved"
	case ChunkLoaded:
		return "loaded"
	case ChunkMissing:
		return "missing"
	}
	return "unknown"
}

type chunkSlot struct {
	state ChunkState
	data  []byte
}

// ChunkData returns the data of the chunk with the given index, or false if
// the chunk's file could not be read.
//
// tree.EmbeddedChunk always resolves to FileData() without any I/O. Other
// indexes read the matching chunk file on first use; both the data and a
// failure to read it are remembered for the lifetime of the Archive.
//
// The returned slice is shared and must not be modified.
func (a *Archive) ChunkData(ctx context.Context, index uint32) ([]byte, bool) {
	if index == uint32(tree.EmbeddedChunk) {
		return a.fileData, true
	}
	slot, _ := a.chunks.GetOrCreate(ctx, index, func() (chunkSlot, time.Duration, error) {
		return a.loadChunk(ctx, index), 0, nil
	})
	return slot.data, slot.state == ChunkLoaded
}

// ChunkState returns the resolution state of a chunk without resolving it.
func (a *Archive) ChunkState(ctx context.Context, index uint32) ChunkState {
	if index == uint32(tree.EmbeddedChunk) {
		return ChunkLoaded
	}
	if slot, ok := a.chunks.Peek(ctx, index); ok {
		return slot.state
	}
	return ChunkUnresolved
}

// EntryData returns the chunk holding the data of ent. It fails with
// ErrChunkUnavailable if that chunk could not be read.
func (a *Archive) EntryData(ctx context.Context, ent *tree.Entry) ([]byte, error) {
	data, ok := a.ChunkData(ctx, uint32(ent.ChunkIndex))
	if !ok {
		return nil, errors.Annotate(ErrChunkUnavailable, "chunk %d", ent.ChunkIndex).Err()
	}
	return data, nil
}

func (a *Archive) loadChunk(ctx context.Context, index uint32) chunkSlot {
	name, err := vpkdata.ChunkFileName(a.name, index)
	if err != nil {
		logging.Warningf(ctx, "chunk %d: %s", index, err)
		return chunkSlot{state: ChunkMissing}
	}

	data, err := readFile(a.fs, name)
	if err != nil {
		logging.Warningf(ctx, "chunk %d: reading %q: %s", index, name, err)
		return chunkSlot{state: ChunkMissing}
	}
	logging.Debugf(ctx, "chunk %d: read %d bytes from %q", index, len(data), name)
	return chunkSlot{state: ChunkLoaded, data: data}
}
