// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/riannucci/vpkarchive/internal/vpktest"
	"github.com/riannucci/vpkarchive/vpk/vpkdata"
	"github.com/riannucci/vpkarchive/vpk/vpkdata/tree"
)

func writeArchive(dir string, chunk []byte, corrupt bool) string {
	tr := vpktest.EncodeTree(
		vpktest.Ext{Name: "txt", Paths: []vpktest.Path{
			{Name: "cfg", Files: []vpktest.File{
				{Name: "readme", Entry: vpktest.Entry{ChunkIndex: vpktest.Embedded, DataLength: 5}},
				{Name: "notes", Entry: vpktest.Entry{ChunkIndex: 0, DataLength: 5, Preload: []byte("hi")}},
			}},
		}},
	)
	fileData := []byte("hello")
	records := bytes.Join([][]byte{
		vpktest.ChunkChecksum(uint32(vpktest.Embedded), 0, 5, vpkdata.ChecksumMD5.Sum(fileData)),
		vpktest.ChunkChecksum(0, 0, 5, vpkdata.ChecksumMD5.Sum(chunk)),
	}, nil)
	if corrupt {
		chunk = []byte("HELLO")
	}
	buf := vpktest.Container{
		Version:        2,
		Tree:           tr,
		FileData:       fileData,
		ChunkChecksums: records,
		AggregateChecksum: vpktest.AggregateChecksum(
			vpkdata.ChecksumMD5.Sum(tr), vpkdata.ChecksumMD5.Sum(records), [16]byte{}),
	}.Bytes()

	path := filepath.Join(dir, "pak01_dir.vpk")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pak01_000.vpk"), chunk, 0644); err != nil {
		panic(err)
	}
	return path
}

func TestRun(tst *testing.T) {
	tst.Parallel()

	Convey("vpk", tst, func() {
		ctx := context.Background()
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		path := writeArchive(tst.TempDir(), []byte("world"), false)

		Convey("usage", func() {
			So(run(ctx, nil, stdout, stderr), ShouldEqual, exitFailure)
			So(stderr.String(), ShouldContainSubstring, "usage: vpk <command>")

			So(run(ctx, []string{"help"}, stdout, stderr), ShouldEqual, exitOK)
			So(stdout.String(), ShouldContainSubstring, "verify")

			So(run(ctx, []string{"frob", path}, stdout, stderr), ShouldEqual, exitFailure)
			So(stderr.String(), ShouldContainSubstring, `unknown command "frob"`)

			So(run(ctx, []string{"list"}, stdout, stderr), ShouldEqual, exitFailure)
			So(run(ctx, []string{"list", "--bogus", path}, stdout, stderr), ShouldEqual, exitFailure)
			So(run(ctx, []string{"list", "--log-level", "loud", path}, stdout, stderr), ShouldEqual, exitFailure)
		})

		Convey("list", func() {
			So(run(ctx, []string{"list", path}, stdout, stderr), ShouldEqual, exitOK)
			lines := bytes.Split(bytes.TrimSpace(stdout.Bytes()), []byte("\n"))
			So(lines, ShouldHaveLength, 3)
			So(string(lines[1]), ShouldStartWith, "cfg/readme.txt")
			So(string(lines[1]), ShouldContainSubstring, "dir")
			So(string(lines[2]), ShouldStartWith, "cfg/notes.txt")
		})

		Convey("dump", func() {
			decoded := &tree.Tree{}

			Convey("json", func() {
				So(run(ctx, []string{"dump", path}, stdout, stderr), ShouldEqual, exitOK)
				So(json.Unmarshal(stdout.Bytes(), decoded), ShouldBeNil)
			})

			Convey("yaml", func() {
				So(run(ctx, []string{"dump", "--format=yaml", path}, stdout, stderr), ShouldEqual, exitOK)
				So(yaml.Unmarshal(stdout.Bytes(), decoded), ShouldBeNil)
			})

			Convey("cbor", func() {
				So(run(ctx, []string{"dump", "-f", "cbor", path}, stdout, stderr), ShouldEqual, exitOK)
				So(cbor.Unmarshal(stdout.Bytes(), decoded), ShouldBeNil)
			})

			So(decoded.Len(), ShouldEqual, 2)
			ent, ok := decoded.Find("cfg/notes.txt")
			So(ok, ShouldBeTrue)
			So(ent.Preload, ShouldResemble, []byte("hi"))
		})

		Convey("dump rejects unknown formats", func() {
			So(run(ctx, []string{"dump", "--format=xml", path}, stdout, stderr), ShouldEqual, exitFailure)
			So(stderr.String(), ShouldContainSubstring, `unknown format "xml"`)
		})

		Convey("verify", func() {
			Convey("ok", func() {
				So(run(ctx, []string{"verify", path}, stdout, stderr), ShouldEqual, exitOK)
				So(stdout.String(), ShouldEqual, "OK\n")
			})

			Convey("corrupt chunk", func() {
				path := writeArchive(tst.TempDir(), []byte("world"), true)
				So(run(ctx, []string{"verify", path}, stdout, stderr), ShouldEqual, exitFindings)
				So(stdout.String(), ShouldStartWith, "mismatched checksum (chunk 0 [0:+5])")
			})

			Convey("other digest", func() {
				So(run(ctx, []string{"verify", "--checksum=blake2b", path}, stdout, stderr), ShouldEqual, exitFindings)
				So(run(ctx, []string{"verify", "--checksum=sha1", path}, stdout, stderr), ShouldEqual, exitFailure)
				So(stderr.String(), ShouldContainSubstring, `unknown checksum scheme "sha1"`)
			})

			Convey("missing chunk", func() {
				So(os.Remove(filepath.Join(filepath.Dir(path), "pak01_000.vpk")), ShouldBeNil)
				So(run(ctx, []string{"verify", path}, stdout, stderr), ShouldEqual, exitFailure)
				So(stderr.String(), ShouldContainSubstring, "chunk unavailable")
			})
		})

		Convey("unreadable file", func() {
			So(run(ctx, []string{"list", path + ".nope"}, stdout, stderr), ShouldEqual, exitFailure)
			So(stderr.String(), ShouldContainSubstring, "opening")
		})
	})
}
