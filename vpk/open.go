// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpk

import (
	"context"
	"io"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"go.chromium.org/luci/common/data/caching/lru"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/vpkarchive/vpk/vpkdata"
	"github.com/riannucci/vpkarchive/vpk/vpkdata/tree"
)

// IOTag is applied to errors encountered while reading the directory file
// itself. Such errors never carry vpkdata.FormatTag.
var IOTag = errors.BoolTag{Key: errors.NewTagKey("vpk: I/O error")}

// Archive represents an opened VPK directory file.
//
// An Archive is safe for concurrent use. Chunk files are read at most once per
// Archive, whether or not the read succeeds.
type Archive struct {
	Header vpkdata.Header
	Tree   *tree.Tree

	name string
	fs   billy.Filesystem
	opts openOptionData

	fileData          []byte
	chunkChecksums    []byte
	aggregateChecksum []byte
	signature         []byte

	treeDigest       vpkdata.Digest
	chunkTableDigest vpkdata.Digest

	chunks *lru.Cache[uint32, chunkSlot]
}

// Name returns the name of the directory file, relative to the Archive's
// filesystem.
func (a *Archive) Name() string { return a.name }

// FileData returns the file data section embedded in the directory file. The
// returned slice is shared and must not be modified.
func (a *Archive) FileData() []byte { return a.fileData }

// TreeDigest returns the digest of the raw tree section.
func (a *Archive) TreeDigest() vpkdata.Digest { return a.treeDigest }

// ChunkTableDigest returns the digest of the raw chunk checksum section.
func (a *Archive) ChunkTableDigest() vpkdata.Digest { return a.chunkTableDigest }

// Signature decodes the signature section. ok is false if the archive has no
// signature section.
func (a *Archive) Signature() (sig vpkdata.SignatureRecord, ok bool, err error) {
	if len(a.signature) == 0 {
		return
	}
	if sig, err = vpkdata.ParseSignature(a.signature); err != nil {
		err = errors.Annotate(err, "parsing signature section").Err()
		return
	}
	ok = true
	return
}

// VerifyStateEnum allows you to control when Open verifies the archive
// integrity. It defaults to VerifyLate.
type VerifyStateEnum int

// Valid values of VerifyStateEnum
const (
	// Verification only happens when calling Archive.Check().
	VerifyLate VerifyStateEnum = iota

	// Open calls Archive.Check() and fails if it reports any mismatch.
	VerifyEarly
)

type openOptionData struct {
	fs          billy.Filesystem
	checksum    vpkdata.ChecksumScheme
	verifyState VerifyStateEnum
}

// OpenOption functions can be supplied to the Open and New functions.
type OpenOption func(*openOptionData)

// WithFilesystem makes the Archive read the directory file and its chunk files
// from fs. Names given to Open and New are then relative to fs.
//
// By default, the host filesystem is used.
func WithFilesystem(fs billy.Filesystem) OpenOption {
	return func(o *openOptionData) {
		o.fs = fs
	}
}

// WithChecksum selects the digest function used for integrity checks.
// Defaults to vpkdata.ChecksumMD5, which is what VPK files contain.
func WithChecksum(scheme vpkdata.ChecksumScheme) OpenOption {
	return func(o *openOptionData) {
		o.checksum = scheme
	}
}

// WithVerification allows you to dictate when the archive is verified.
func WithVerification(val VerifyStateEnum) OpenOption {
	return func(o *openOptionData) {
		o.verifyState = val
	}
}

func parseOptions(name string, options []OpenOption) (openOptionData, string, error) {
	opts := openOptionData{
		checksum: vpkdata.ChecksumMD5,
	}
	for _, o := range options {
		o(&opts)
	}
	if err := opts.checksum.Valid(); err != nil {
		return opts, "", err
	}

	if opts.fs == nil {
		abs, err := filepath.Abs(name)
		if err != nil {
			return opts, "", errors.Annotate(err, "making abspath").Tag(IOTag).Err()
		}
		opts.fs = osfs.New(filepath.Dir(abs))
		name = filepath.Base(abs)
	}
	return opts, name, nil
}

func readFile(fs billy.Filesystem, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Open reads and decodes the VPK directory file at path.
//
// The directory tree is decoded eagerly; chunk files are only read on demand
// (see Archive.ChunkData and Archive.Check).
func Open(ctx context.Context, path string, options ...OpenOption) (*Archive, error) {
	opts, name, err := parseOptions(path, options)
	if err != nil {
		return nil, err
	}

	buf, err := readFile(opts.fs, name)
	if err != nil {
		return nil, errors.Annotate(err, "reading %q", path).Tag(IOTag).Err()
	}
	logging.Debugf(ctx, "read %d bytes from %q", len(buf), path)

	return newArchive(ctx, name, buf, opts)
}

// New decodes a VPK directory file which has already been read into buf.
//
// name is the directory file's name; chunk file names are derived from it.
// buf is retained by the Archive and must not be modified.
func New(ctx context.Context, name string, buf []byte, options ...OpenOption) (*Archive, error) {
	opts, name, err := parseOptions(name, options)
	if err != nil {
		return nil, err
	}
	return newArchive(ctx, name, buf, opts)
}

func newArchive(ctx context.Context, name string, buf []byte, opts openOptionData) (*Archive, error) {
	header, rest, err := vpkdata.ReadHeader(buf)
	if err != nil {
		return nil, errors.Annotate(err, "reading header").Err()
	}
	sections, err := vpkdata.SplitSections(header, rest)
	if err != nil {
		return nil, errors.Annotate(err, "splitting sections").Err()
	}
	t, err := tree.Decode(sections.Tree)
	if err != nil {
		return nil, err
	}

	ar := &Archive{
		Header: header,
		Tree:   t,

		name: name,
		fs:   opts.fs,
		opts: opts,

		fileData:          sections.FileData,
		chunkChecksums:    sections.ChunkChecksums,
		aggregateChecksum: sections.AggregateChecksum,
		signature:         sections.Signature,

		treeDigest:       opts.checksum.Sum(sections.Tree),
		chunkTableDigest: opts.checksum.Sum(sections.ChunkChecksums),

		chunks: lru.New[uint32, chunkSlot](0),
	}
	logging.Debugf(ctx, "decoded %q: version %d, %d files, %d bytes of file data",
		name, header.Version, t.Len(), len(ar.fileData))

	if opts.verifyState == VerifyEarly {
		mismatches, err := ar.Check(ctx)
		if err != nil {
			return nil, errors.Annotate(err, "early verification").Err()
		}
		if err := mismatches.Err(); err != nil {
			return nil, errors.Annotate(err, "early verification").Err()
		}
	}
	return ar, nil
}
