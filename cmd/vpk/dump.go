// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"go.chromium.org/luci/common/errors"
	"gopkg.in/yaml.v3"

	"github.com/riannucci/vpkarchive/vpk"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

type dumpCmd struct {
	format string
}

func (*dumpCmd) summary() string { return "write the directory tree in a structured format" }

func (c *dumpCmd) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.format, "format", "f", formatJSON,
		"output format ("+formatNames(formatJSON, formatYAML, formatCBOR)+")")
}

func (c *dumpCmd) openOptions() ([]vpk.OpenOption, error) {
	switch c.format {
	case formatJSON, formatYAML, formatCBOR:
		return nil, nil
	}
	return nil, errors.Reason("unknown format %q", c.format).Err()
}

func (c *dumpCmd) run(ctx context.Context, ar *vpk.Archive, out io.Writer) (bool, error) {
	switch c.format {
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(ar.Tree); err != nil {
			return false, errors.Annotate(err, "encoding yaml").Err()
		}
		return false, enc.Close()

	case formatCBOR:
		em, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return false, err
		}
		buf, err := em.Marshal(ar.Tree)
		if err != nil {
			return false, errors.Annotate(err, "encoding cbor").Err()
		}
		_, err = out.Write(buf)
		return false, err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ar.Tree); err != nil {
		return false, errors.Annotate(err, "encoding json").Err()
	}
	return false, nil
}
