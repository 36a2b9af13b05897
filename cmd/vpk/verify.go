// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/vpkarchive/vpk"
	"github.com/riannucci/vpkarchive/vpk/vpkdata"
)

type verifyCmd struct {
	checksum string
}

func (*verifyCmd) summary() string { return "check every checksum recorded in the archive" }

func (c *verifyCmd) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.checksum, "checksum", vpkdata.ChecksumMD5.String(),
		"digest to recompute ("+formatNames(
			vpkdata.ChecksumMD5.String(),
			vpkdata.ChecksumBLAKE2b.String(),
			vpkdata.ChecksumBLAKE3.String())+")")
}

func (c *verifyCmd) openOptions() ([]vpk.OpenOption, error) {
	scheme, err := vpkdata.ParseChecksumScheme(c.checksum)
	if err != nil {
		return nil, err
	}
	return []vpk.OpenOption{vpk.WithChecksum(scheme)}, nil
}

func (c *verifyCmd) run(ctx context.Context, ar *vpk.Archive, out io.Writer) (bool, error) {
	findings := false
	if err := ar.Tree.Validate(); err != nil {
		findings = true
		fmt.Fprintf(out, "tree: %s\n", err)
	}

	mismatches, err := ar.Check(ctx)
	if err != nil {
		return findings, err
	}
	for _, m := range mismatches {
		fmt.Fprintln(out, m.Error())
	}
	if len(mismatches) > 0 {
		findings = true
	}

	if !findings {
		logging.Infof(ctx, "%q: %d files ok", ar.Name(), ar.Tree.Len())
		fmt.Fprintln(out, "OK")
	}
	return findings, nil
}
