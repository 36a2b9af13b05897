// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

import (
	"go.chromium.org/luci/common/errors"
)

// FormatTag is applied to every error which indicates that the bytes being
// decoded do not conform to the VPK format. Errors carrying this tag are never
// I/O errors.
var FormatTag = errors.BoolTag{Key: errors.NewTagKey("vpk: malformed data")}

// Structural error kinds. Decoding errors wrap exactly one of these, so they
// may be inspected with errors.Is.
var (
	ErrBadSignature       = errors.New("bad signature")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrTruncated          = errors.New("truncated container")
	ErrInvalidName        = errors.New("invalid name")
	ErrBadTerminator      = errors.New("bad terminator")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrNotDirectoryFile   = errors.New("not a directory file name")
)

// Malformed wraps kind with a formatted reason and tags it with FormatTag.
func Malformed(kind error, reason string, args ...any) error {
	return errors.Annotate(kind, reason, args...).Tag(FormatTag).Err()
}
