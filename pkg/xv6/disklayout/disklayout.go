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

// Package disklayout provides definitions of the on-disk structures of an
// xv6 filesystem image and functions to decode them from raw blocks.
//
// The image is a sequence of BlockSize blocks laid out as:
//
//	[ boot | super | log header | log blocks ... | inodes ... | bitmap ... | data ... ]
//	   0      1      logstart                      inodestart   bmapstart
//
// All structures are little endian and packed with no padding. Records are
// decoded by value at fixed byte offsets; nothing here aliases a block
// buffer, so callers are free to discard blocks once decoded.
package disklayout

// Geometry of the format. These are compiled into xv6 and are not recorded
// in the superblock.
const (
	// BlockSize is the size of every block in the image.
	BlockSize = 1024

	// SuperBlockNum is the block holding the superblock. Block 0 is the boot
	// block and is never interpreted.
	SuperBlockNum = 1

	// NumDirect is the number of direct block pointers in an inode.
	NumDirect = 12

	// NumIndirect is the number of block pointers held by an indirect block.
	NumIndirect = BlockSize / BlockAddrSize

	// MaxFileBlocks is the largest number of data blocks a file can own.
	MaxFileBlocks = NumDirect + NumIndirect

	// InodesPerBlock is the number of inode records packed in one block.
	InodesPerBlock = BlockSize / InodeSize

	// DirentsPerBlock is the number of directory entries in one block.
	DirentsPerBlock = BlockSize / DirentSize

	// BitsPerBlock is the number of blocks tracked by one bitmap block.
	BitsPerBlock = BlockSize * 8

	// DirNameLen is the width of the name field in a directory entry.
	DirNameLen = 14

	// LogCapacity is the number of block slots in the log header.
	LogCapacity = 30

	// RootInode is the inode number of the root directory.
	RootInode = 1
)

// Sizes of on-disk structures in bytes.
const (
	BlockAddrSize  = 4
	SuperBlockSize = 28
	InodeSize      = 64
	DirentSize     = 16
	LogHeaderSize  = 124
)

// BlockOffset returns the byte offset of block bn within the image.
func BlockOffset(bn uint32) int64 {
	return int64(bn) * BlockSize
}
