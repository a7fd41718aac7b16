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

// Package dump builds diagnostic reports of xv6 images and renders them as
// text or YAML.
//
// A report is built completely before it is rendered, so a corrupt image
// yields an error and no partial output.
package dump

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gvisor.dev/xv6dump/pkg/xv6"
	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
)

// Default preview lengths, in bytes.
const (
	DefaultPreviewLen    = 48
	DefaultLogPreviewLen = 64
)

// Options configures report construction.
type Options struct {
	// PreviewLen is the number of bytes previewed per data block.
	PreviewLen int

	// LogPreviewLen is the number of bytes previewed per log slot.
	LogPreviewLen int

	// DirectOnly restricts directory listings to direct blocks.
	DirectOnly bool
}

// DefaultOptions returns the options used by the classic dump tools.
func DefaultOptions() Options {
	return Options{
		PreviewLen:    DefaultPreviewLen,
		LogPreviewLen: DefaultLogPreviewLen,
	}
}

// Validate checks that the preview lengths are usable.
func (o *Options) Validate() error {
	if o.PreviewLen < 0 || o.PreviewLen > disklayout.BlockSize {
		return fmt.Errorf("preview length %d outside [0, %d]", o.PreviewLen, disklayout.BlockSize)
	}
	if o.LogPreviewLen < 0 || o.LogPreviewLen > disklayout.BlockSize {
		return fmt.Errorf("log preview length %d outside [0, %d]", o.LogPreviewLen, disklayout.BlockSize)
	}
	return nil
}

// Field is one superblock field.
type Field struct {
	Name        string `yaml:"name"`
	Value       uint32 `yaml:"value"`
	Description string `yaml:"description"`
}

// SuperBlockReport describes the superblock.
type SuperBlockReport struct {
	// RecordSize is the encoded size of the superblock in bytes.
	RecordSize int     `yaml:"recordSize"`
	Fields     []Field `yaml:"fields"`
}

// NewSuperBlockReport describes sb.
func NewSuperBlockReport(sb disklayout.SuperBlock) *SuperBlockReport {
	return &SuperBlockReport{
		RecordSize: disklayout.SuperBlockSize,
		Fields: []Field{
			{"size", sb.Size, "Size of file system image (blocks)"},
			{"nblocks", sb.NBlocks, "Number of data blocks"},
			{"ninodes", sb.NInodes, "Number of inodes"},
			{"nlog", sb.NLog, "Number of log blocks"},
			{"logstart", sb.LogStart, "Block number of first log block"},
			{"inodestart", sb.InodeStart, "Block number of first inode block"},
			{"bmapstart", sb.BmapStart, "Block number of first free map block"},
		},
	}
}

// BlockReport is one resolved data block.
type BlockReport struct {
	Slot    int    `yaml:"slot"`
	Block   uint32 `yaml:"block"`
	Preview string `yaml:"preview"`
}

// DeviceReport holds the device numbers of a device inode.
type DeviceReport struct {
	Major int16 `yaml:"major"`
	Minor int16 `yaml:"minor"`
}

// DirentReport is one non-empty directory entry.
type DirentReport struct {
	Inum uint16 `yaml:"inum"`
	Name string `yaml:"name"`
}

// InodeReport describes an allocated inode.
type InodeReport struct {
	Num    uint32        `yaml:"inode"`
	Offset int64         `yaml:"offset"`
	Type   string        `yaml:"type"`
	Device *DeviceReport `yaml:"device,omitempty"`
	Nlink  int16         `yaml:"nlink"`
	Size   uint32        `yaml:"size"`
	Direct []BlockReport `yaml:"direct,omitempty"`

	// IndirectBlock is zero if the inode has no indirect block.
	IndirectBlock uint32         `yaml:"indirectBlock,omitempty"`
	Indirect      []BlockReport  `yaml:"indirect,omitempty"`
	Dirents       []DirentReport `yaml:"dirents,omitempty"`
}

// FSReport is a dump of the superblock and every allocated inode.
type FSReport struct {
	SuperBlock *SuperBlockReport `yaml:"superblock"`

	// Slots is the number of inode table slots examined.
	Slots  int           `yaml:"inodeSlots"`
	Inodes []InodeReport `yaml:"inodes"`
}

// BuildFSReport walks the inode table of fs and describes every allocated
// inode.
func BuildFSReport(fs *xv6.FileSystem, opts Options) (*FSReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &FSReport{SuperBlock: NewSuperBlockReport(fs.SuperBlock())}
	slots, err := fs.WalkInodes(func(ino *xv6.Inode) error {
		ir, err := buildInode(fs, ino, opts)
		if err != nil {
			return err
		}
		r.Inodes = append(r.Inodes, *ir)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Slots = slots
	log.Debugf("Examined %d inode slots, %d allocated", slots, len(r.Inodes))
	return r, nil
}

func buildInode(fs *xv6.FileSystem, ino *xv6.Inode, opts Options) (*InodeReport, error) {
	ir := &InodeReport{
		Num:    ino.Num,
		Offset: ino.Offset,
		Type:   ino.Type.String(),
		Nlink:  ino.Nlink,
		Size:   ino.Size,
	}
	if ino.IsDevice() {
		ir.Device = &DeviceReport{Major: ino.Major, Minor: ino.Minor}
	}

	bm, err := fs.Blocks(ino)
	if err != nil {
		return nil, err
	}
	if ir.Direct, err = previewBlocks(fs, bm.Direct, opts.PreviewLen); err != nil {
		return nil, err
	}
	ir.IndirectBlock = bm.IndirectBlock
	if ir.Indirect, err = previewBlocks(fs, bm.Indirect, opts.PreviewLen); err != nil {
		return nil, err
	}

	if ino.IsDir() {
		err := fs.IterDirents(ino, xv6.DirentOptions{DirectOnly: opts.DirectOnly}, func(e xv6.Entry) error {
			ir.Dirents = append(ir.Dirents, DirentReport{Inum: e.Inum, Name: e.Name})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ir, nil
}

func previewBlocks(fs *xv6.FileSystem, refs []xv6.BlockRef, n int) ([]BlockReport, error) {
	var out []BlockReport
	for _, ref := range refs {
		p, err := fs.Peek(ref.Block, n)
		if err != nil {
			return nil, err
		}
		out = append(out, BlockReport{Slot: ref.Slot, Block: ref.Block, Preview: p})
	}
	return out, nil
}

// LogSlot is one entry of the log header.
type LogSlot struct {
	Index int `yaml:"index"`

	// Committed is set for slots below the header count.
	Committed bool   `yaml:"committed"`
	Block     int32  `yaml:"block"`
	Preview   string `yaml:"preview"`
}

// LogReport is a dump of the superblock and the log header.
type LogReport struct {
	SuperBlock *SuperBlockReport `yaml:"superblock"`
	Count      int32             `yaml:"count"`
	Slots      []LogSlot         `yaml:"slots"`
}

// BuildLogReport decodes the log header of fs and previews the block named
// by every slot, committed or not.
//
// Block zero is never read. A stale slot naming a block outside the image
// gets an empty preview; a committed one is an error.
func BuildLogReport(fs *xv6.FileSystem, opts Options) (*LogReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	lh, err := fs.LogHeader()
	if err != nil {
		return nil, err
	}
	r := &LogReport{
		SuperBlock: NewSuperBlockReport(fs.SuperBlock()),
		Count:      lh.N,
		Slots:      make([]LogSlot, 0, len(lh.Block)),
	}
	for i := range lh.Block {
		s := LogSlot{Index: i, Committed: lh.Committed(i), Block: lh.Block[i]}
		if bn := lh.BlockNum(i); bn != 0 {
			p, err := fs.Peek(bn, opts.LogPreviewLen)
			switch {
			case err == nil:
				s.Preview = p
			case !s.Committed && errors.Is(err, xv6err.ErrBlockOutOfRange):
				log.Debugf("Stale log slot %d names block %d outside the image", i, bn)
			default:
				return nil, xv6err.Op(fmt.Sprintf("read log slot %d", i), err)
			}
		}
		r.Slots = append(r.Slots, s)
	}
	return r, nil
}
