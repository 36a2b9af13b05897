// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/riannucci/vpkarchive/vpk"
	"github.com/riannucci/vpkarchive/vpk/vpkdata/tree"
)

type listCmd struct{}

func (*listCmd) summary() string                        { return "print one line per file" }
func (*listCmd) addFlags(*pflag.FlagSet)                {}
func (*listCmd) openOptions() ([]vpk.OpenOption, error) { return nil, nil }

func (*listCmd) run(ctx context.Context, ar *vpk.Archive, out io.Writer) (bool, error) {
	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tCHUNK\tOFFSET\tLENGTH\tPRELOAD")
	err := ar.Tree.Walk(func(fullPath string, f *tree.File) error {
		chunk := fmt.Sprint(f.Entry.ChunkIndex)
		if f.Entry.IsEmbedded() {
			chunk = "dir"
		}
		_, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			fullPath, chunk, f.Entry.DataOffset, f.Entry.DataLength, len(f.Entry.Preload))
		return err
	})
	if err != nil {
		return false, err
	}
	return false, tw.Flush()
}
