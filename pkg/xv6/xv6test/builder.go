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

// Package xv6test builds synthetic xv6 images in memory for tests.
package xv6test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"gvisor.dev/xv6dump/pkg/binary"
	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/image"
)

// Default geometry: a 200 block image with a full log, two inode blocks and
// one bitmap block.
//
//	[0 boot][1 super][2..32 log][33..34 inodes][35 bitmap][36..199 data]
const (
	DefaultSize    = 200
	DefaultNInodes = 2 * disklayout.InodesPerBlock
	DefaultLogSize = disklayout.LogCapacity + 1
)

// DefaultSuperBlock returns the superblock of an image from NewBuilder.
func DefaultSuperBlock() disklayout.SuperBlock {
	logStart := uint32(2)
	inodeStart := logStart + DefaultLogSize
	bmapStart := inodeStart + DefaultNInodes/disklayout.InodesPerBlock
	dataStart := bmapStart + 1
	return disklayout.SuperBlock{
		Size:       DefaultSize,
		NBlocks:    DefaultSize - dataStart,
		NInodes:    DefaultNInodes,
		NLog:       DefaultLogSize,
		LogStart:   logStart,
		InodeStart: inodeStart,
		BmapStart:  bmapStart,
	}
}

// Builder assembles an image block by block. It performs no validation, so
// tests can build corrupt images as easily as good ones.
type Builder struct {
	// SB is written to block 1 by Bytes. Tests may modify it freely.
	SB disklayout.SuperBlock

	disk     []byte
	nextData uint32
}

// NewBuilder returns a Builder for an empty image with the default
// geometry.
func NewBuilder() *Builder {
	sb := DefaultSuperBlock()
	return &Builder{
		SB:       sb,
		disk:     make([]byte, int(sb.Size)*disklayout.BlockSize),
		nextData: sb.DataStart(),
	}
}

// block returns the bytes of block bn, growing the disk if needed.
func (b *Builder) block(bn uint32) []byte {
	end := int(disklayout.BlockOffset(bn + 1))
	if end > len(b.disk) {
		b.disk = append(b.disk, make([]byte, end-len(b.disk))...)
	}
	return b.disk[disklayout.BlockOffset(bn):end]
}

// AllocBlock returns the next unused data block.
func (b *Builder) AllocBlock() uint32 {
	bn := b.nextData
	b.nextData++
	return bn
}

// WriteBlock copies data to the start of block bn.
func (b *Builder) WriteBlock(bn uint32, data []byte) {
	if len(data) > disklayout.BlockSize {
		panic(fmt.Sprintf("%d bytes do not fit in a block", len(data)))
	}
	copy(b.block(bn), data)
}

// WriteRecord encodes v at byte offset off of block bn.
func (b *Builder) WriteRecord(bn uint32, off int, v any) {
	copy(b.block(bn)[off:], binary.Marshal(nil, binary.LittleEndian, v))
}

// SetInode writes ino to slot inum of the inode table.
func (b *Builder) SetInode(inum uint32, ino disklayout.Inode) {
	bn, off := b.SB.InodeLocation(inum)
	b.WriteRecord(bn, off, &ino)
}

// WriteDirents writes ents to the front of directory block bn.
func (b *Builder) WriteDirents(bn uint32, ents ...disklayout.Dirent) {
	for i := range ents {
		b.WriteRecord(bn, i*disklayout.DirentSize, &ents[i])
	}
}

// WriteIndirect writes addrs to the front of indirect block bn.
func (b *Builder) WriteIndirect(bn uint32, addrs ...uint32) {
	for i, a := range addrs {
		b.WriteRecord(bn, i*disklayout.BlockAddrSize, &a)
	}
}

// SetLogHeader writes lh to the log header block.
func (b *Builder) SetLogHeader(lh disklayout.LogHeader) {
	b.WriteRecord(b.SB.LogStart, 0, &lh)
}

// AddFile allocates blocks for data and writes an inode of type typ for it
// at slot inum. Blocks past the direct pointers go through a freshly
// allocated indirect block. The written inode is returned.
func (b *Builder) AddFile(inum uint32, typ disklayout.FileType, data []byte) disklayout.Inode {
	ino := disklayout.Inode{Type: typ, Nlink: 1, Size: uint32(len(data))}
	var indirect []uint32
	for i := 0; i*disklayout.BlockSize < len(data); i++ {
		bn := b.AllocBlock()
		end := min((i+1)*disklayout.BlockSize, len(data))
		b.WriteBlock(bn, data[i*disklayout.BlockSize:end])
		if i < disklayout.NumDirect {
			ino.Addrs[i] = bn
		} else {
			indirect = append(indirect, bn)
		}
	}
	if len(indirect) > 0 {
		ibn := b.AllocBlock()
		b.WriteIndirect(ibn, indirect...)
		ino.Addrs[disklayout.NumDirect] = ibn
	}
	b.SetInode(inum, ino)
	return ino
}

// Bytes returns the image with the superblock written to block 1.
func (b *Builder) Bytes() []byte {
	b.WriteRecord(disklayout.SuperBlockNum, 0, &b.SB)
	return b.disk
}

// Image returns the image as an *image.Image.
func (b *Builder) Image() *image.Image {
	return image.New(bytes.NewReader(b.Bytes()))
}

// WriteFile writes the image to a file in a temporary directory and returns
// its path.
func (b *Builder) WriteFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fs.img")
	if err := os.WriteFile(path, b.Bytes(), 0644); err != nil {
		t.Fatalf("writing image: %v", err)
	}
	return path
}
