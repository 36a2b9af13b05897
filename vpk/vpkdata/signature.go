// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package vpkdata

import (
	"go.chromium.org/luci/common/errors"
)

// SignatureRecord is the optional public key signature of a VPK. Its
// contents are exposed as-is; nothing in this module checks them.
type SignatureRecord struct {
	PublicKey []byte
	Signature []byte
}

// ParseSignature decodes a SignatureRecord from buf.
func ParseSignature(buf []byte) (s SignatureRecord, err error) {
	d := NewDecoder(buf)
	if s.PublicKey, err = d.LengthPrefixed(); err != nil {
		err = errors.Annotate(err, "public key").Err()
		return
	}
	if s.Signature, err = d.LengthPrefixed(); err != nil {
		err = errors.Annotate(err, "signature").Err()
		return
	}
	return
}
