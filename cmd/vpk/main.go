// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command vpk inspects Valve VPK directory files.
//
//	vpk list <name_dir.vpk>
//	vpk dump [--format=json|yaml|cbor] <name_dir.vpk>
//	vpk verify [--checksum=md5|blake2b|blake3] <name_dir.vpk>
//
// Chunk files (name_000.vpk, ...) are looked up next to the directory file.
//
// Exit status is 0 on success, 1 if verify found problems and 2 if the file
// could not be read or decoded.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/riannucci/vpkarchive/vpk"
)

const (
	exitOK       = 0
	exitFindings = 1
	exitFailure  = 2
)

// subcommand is one verb of the vpk tool.
type subcommand interface {
	summary() string
	addFlags(fs *pflag.FlagSet)
	openOptions() ([]vpk.OpenOption, error)

	// run returns true if it found problems with the archive.
	run(ctx context.Context, ar *vpk.Archive, out io.Writer) (bool, error)
}

func subcommands() map[string]subcommand {
	return map[string]subcommand{
		"list":   &listCmd{},
		"dump":   &dumpCmd{},
		"verify": &verifyCmd{},
	}
}

// levelFlag adapts logging.Level to pflag.Value.
type levelFlag struct{ level *logging.Level }

func (l levelFlag) Set(v string) error { return l.level.Set(v) }
func (l levelFlag) Type() string       { return "level" }

func (l levelFlag) String() string {
	if l.level == nil {
		return ""
	}
	return l.level.String()
}

func usage(w io.Writer, cmds map[string]subcommand) {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: vpk <command> [flags] <name_dir.vpk>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, cmds[name].summary())
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmds := subcommands()
	if len(args) == 0 {
		usage(stderr, cmds)
		return exitFailure
	}
	name := args[0]
	cmd, ok := cmds[name]
	if !ok {
		if name == "help" || name == "-h" || name == "--help" {
			usage(stdout, cmds)
			return exitOK
		}
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr, cmds)
		return exitFailure
	}

	level := logging.Warning
	flags := pflag.NewFlagSet("vpk "+name, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Var(levelFlag{&level}, "log-level", "log level (debug, info, warning, error)")
	cmd.addFlags(flags)
	if err := flags.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		return exitFailure
	}
	if flags.NArg() != 1 {
		fmt.Fprintf(stderr, "vpk %s: expected exactly one directory file, got %d\n", name, flags.NArg())
		return exitFailure
	}
	path := flags.Arg(0)

	ctx = (&gologger.LoggerConfig{Out: stderr}).Use(ctx)
	ctx = logging.SetLevel(ctx, level)

	opts, err := cmd.openOptions()
	if err != nil {
		fmt.Fprintf(stderr, "vpk %s: %s\n", name, err)
		return exitFailure
	}
	ar, err := vpk.Open(ctx, path, opts...)
	if err != nil {
		logging.Errorf(ctx, "opening %q: %s", path, err)
		return exitFailure
	}

	findings, err := cmd.run(ctx, ar, stdout)
	switch {
	case err != nil:
		logging.Errorf(ctx, "%s %q: %s", name, path, err)
		return exitFailure
	case findings:
		return exitFindings
	}
	return exitOK
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// formatNames renders a set of choices for flag help.
func formatNames(names ...string) string {
	return strings.Join(names, "|")
}
