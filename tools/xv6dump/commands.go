// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
	"gvisor.dev/xv6dump/pkg/xv6"
	"gvisor.dev/xv6dump/pkg/xv6/dump"
	"gvisor.dev/xv6dump/pkg/xv6/image"
)

// buildFunc builds a report from a loaded filesystem.
type buildFunc func(*xv6.FileSystem, dump.Options) (dump.Report, error)

// execute opens the image named by the Config in args, builds a report with
// build and writes it to out. The image is opened before anything is written.
func execute(f *flag.FlagSet, out io.Writer, build buildFunc, args []any) subcommands.ExitStatus {
	if f.NArg() > 0 {
		log.Errorf("Unexpected argument: %s", f.Args())
		return subcommands.ExitUsageError
	}
	conf := args[0].(*Config)
	if err := dumpImage(conf, out, build); err != nil {
		log.Errorf("%v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func dumpImage(conf *Config, out io.Writer, build buildFunc) error {
	img, err := image.Open(conf.Image, image.Options{Mmap: conf.Mmap})
	if err != nil {
		return err
	}
	defer img.Close()

	fs, err := xv6.Load(img)
	if err != nil {
		return err
	}
	r, err := build(fs, conf.DumpOptions())
	if err != nil {
		return err
	}
	if err := dump.Write(out, r, conf.Format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// fsCmd implements subcommands.Command for the "fs" command.
type fsCmd struct {
	out io.Writer
}

// Name implements subcommands.Command.
func (*fsCmd) Name() string {
	return "fs"
}

// Synopsis implements subcommands.Command.
func (*fsCmd) Synopsis() string {
	return "dump the superblock and every allocated inode"
}

// Usage implements subcommands.Command.
func (*fsCmd) Usage() string {
	return `fs - dump the superblock and every allocated inode, with block
previews and directory entries.
`
}

// SetFlags implements subcommands.Command.
func (*fsCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.
func (c *fsCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	return execute(f, c.out, func(fs *xv6.FileSystem, opts dump.Options) (dump.Report, error) {
		return dump.BuildFSReport(fs, opts)
	}, args)
}

// logCmd implements subcommands.Command for the "log" command.
type logCmd struct {
	out io.Writer
}

// Name implements subcommands.Command.
func (*logCmd) Name() string {
	return "log"
}

// Synopsis implements subcommands.Command.
func (*logCmd) Synopsis() string {
	return "dump the superblock and the log header"
}

// Usage implements subcommands.Command.
func (*logCmd) Usage() string {
	return `log - dump the superblock and every slot of the log header. Slots
past the committed count are marked stale but still previewed.
`
}

// SetFlags implements subcommands.Command.
func (*logCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.
func (c *logCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	return execute(f, c.out, func(fs *xv6.FileSystem, opts dump.Options) (dump.Report, error) {
		return dump.BuildLogReport(fs, opts)
	}, args)
}

// sbCmd implements subcommands.Command for the "sb" command.
type sbCmd struct {
	out io.Writer
}

// Name implements subcommands.Command.
func (*sbCmd) Name() string {
	return "sb"
}

// Synopsis implements subcommands.Command.
func (*sbCmd) Synopsis() string {
	return "dump the superblock"
}

// Usage implements subcommands.Command.
func (*sbCmd) Usage() string {
	return `sb - validate and dump the superblock.
`
}

// SetFlags implements subcommands.Command.
func (*sbCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.
func (c *sbCmd) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	return execute(f, c.out, func(fs *xv6.FileSystem, _ dump.Options) (dump.Report, error) {
		return dump.NewSuperBlockReport(fs.SuperBlock()), nil
	}, args)
}
