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

package xv6

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
)

// Inode is an inode read from the inode table, along with where it was
// found.
type Inode struct {
	disklayout.Inode

	// Num is the inode number, i.e. the index into the inode table.
	Num uint32

	// Offset is the byte offset of the on-disk inode within the image.
	Offset int64
}

// ReadInode reads inode inum from the inode table. Unused slots are returned
// as well; callers check Allocated.
func (fs *FileSystem) ReadInode(inum uint32) (*Inode, error) {
	op := fmt.Sprintf("read inode %d", inum)
	if inum >= fs.sb.NInodes {
		return nil, xv6err.Op(op, fmt.Errorf("%w: inode table holds %d inodes", xv6err.ErrInodeOutOfRange, fs.sb.NInodes))
	}
	bn, off := fs.sb.InodeLocation(inum)
	block, err := fs.readBlock(bn)
	if err != nil {
		return nil, xv6err.Op(op, err)
	}
	d, err := disklayout.DecodeInode(block, off)
	if err != nil {
		return nil, xv6err.Op(op, err)
	}
	if err := d.Validate(); err != nil {
		log.Warningf("Unknown type tag %d at inode %d (block %d)", int16(d.Type), inum, bn)
		return nil, xv6err.Op(op, err)
	}
	return &Inode{
		Inode:  d,
		Num:    inum,
		Offset: disklayout.BlockOffset(bn) + int64(off),
	}, nil
}

// WalkInodes calls fn for every allocated inode in ascending inode number
// order. Every slot of the table is visited, and the number of visited slots
// is returned; unused slots are skipped without calling fn.
//
// The walk stops at the first error, whether from decoding or from fn.
func (fs *FileSystem) WalkInodes(fn func(*Inode) error) (int, error) {
	visited := 0
	for inum := uint32(0); inum < fs.sb.NInodes; inum++ {
		ino, err := fs.ReadInode(inum)
		if err != nil {
			return visited, err
		}
		visited++
		if !ino.Allocated() {
			continue
		}
		if err := fn(ino); err != nil {
			return visited, err
		}
	}
	return visited, nil
}
