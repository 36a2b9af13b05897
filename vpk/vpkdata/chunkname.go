// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DirSuffix terminates the stem of every VPK directory file name, e.g.
// "pak01_dir.vpk".
const DirSuffix = "_dir"

// ChunkFileName derives the name of the numbered chunk file which sits next to
// the directory file dirFile.
//
// Only a trailing DirSuffix on the file's stem is replaced:
//
//	"hl2/pak01_dir.vpk", 3      -> "hl2/pak01_003.vpk"
//	"my_dir_files/a_dir.vpk", 7 -> "my_dir_files/a_007.vpk"
func ChunkFileName(dirFile string, index uint32) (string, error) {
	dir, base := filepath.Split(dirFile)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if len(stem) <= len(DirSuffix) || !strings.HasSuffix(stem, DirSuffix) {
		return "", Malformed(ErrNotDirectoryFile, "%q does not end in %q", base, DirSuffix+ext)
	}
	stem = stem[:len(stem)-len(DirSuffix)]
	return filepath.Join(dir, fmt.Sprintf("%s_%03d%s", stem, index, ext)), nil
}
