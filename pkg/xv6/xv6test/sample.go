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

package xv6test

import (
	"bytes"
	"fmt"

	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
)

// Inode numbers in the Sample image.
const (
	RootInum    = disklayout.RootInode
	ReadmeInum  = 2
	ConsoleInum = 3
	BigInum     = 4
)

// ReadmeText is the content of README in the Sample image.
const ReadmeText = "hello, xv6\n"

// BigBlocks is the number of data blocks of the file "big", enough to need
// the indirect block.
const BigBlocks = disklayout.NumDirect + 2

// BigBlock returns the content of block i of the file "big".
func BigBlock(i int) []byte {
	return bytes.Repeat([]byte(fmt.Sprintf("big block %02d\n", i)), disklayout.BlockSize/13+1)[:disklayout.BlockSize]
}

// Sample returns a builder holding a small but complete filesystem:
//
//	inode 1: "/"        directory: ".", "..", "README", "console", "big"
//	inode 2: "README"   one block regular file
//	inode 3: "console"  device 1/0
//	inode 4: "big"      BigBlocks blocks, the last two behind the indirect block
//
// The log header records a two block transaction. Slot 2 still holds a
// block number from an earlier transaction.
func Sample() *Builder {
	b := NewBuilder()

	rootBlock := b.AllocBlock()
	b.WriteDirents(rootBlock,
		disklayout.NewDirent(RootInum, "."),
		disklayout.NewDirent(RootInum, ".."),
		disklayout.NewDirent(ReadmeInum, "README"),
		disklayout.NewDirent(ConsoleInum, "console"),
		disklayout.NewDirent(BigInum, "big"),
	)
	root := disklayout.Inode{Type: disklayout.TypeDir, Nlink: 1, Size: 5 * disklayout.DirentSize}
	root.Addrs[0] = rootBlock
	b.SetInode(RootInum, root)

	readme := b.AddFile(ReadmeInum, disklayout.TypeFile, []byte(ReadmeText))

	b.SetInode(ConsoleInum, disklayout.Inode{Type: disklayout.TypeDevice, Major: 1, Minor: 0, Nlink: 1})

	var big []byte
	for i := 0; i < BigBlocks; i++ {
		big = append(big, BigBlock(i)...)
	}
	bigIno := b.AddFile(BigInum, disklayout.TypeFile, big)

	lh := disklayout.LogHeader{N: 2}
	lh.Block[0] = int32(readme.Addrs[0])
	lh.Block[1] = int32(rootBlock)
	lh.Block[2] = int32(bigIno.Addrs[0])
	b.SetLogHeader(lh)
	return b
}
