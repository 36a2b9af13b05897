// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package vpkdata implements decoding routines for the individual pieces of
// a VPK directory file: little-endian primitives, the versioned header, the
// section layout, checksum records and the signature record.
package vpkdata
