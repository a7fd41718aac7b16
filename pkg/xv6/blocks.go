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

// BlockRef is one data block of an inode.
type BlockRef struct {
	// Slot is the index of the pointer within the inode's direct array, or
	// within the indirect block if Indirect is set.
	Slot int

	// Indirect is set if the pointer came from the indirect block.
	Indirect bool

	// Block is the block number. It is never zero.
	Block uint32
}

// BlockMap lists the data blocks of an inode.
type BlockMap struct {
	// Direct holds the non-zero direct pointers in slot order.
	Direct []BlockRef

	// IndirectBlock is the number of the indirect block, or zero.
	IndirectBlock uint32

	// Indirect holds the non-zero pointers of the indirect block in slot
	// order. It never has more than disklayout.NumIndirect entries.
	Indirect []BlockRef
}

// All returns the direct blocks followed by the indirect ones.
func (bm *BlockMap) All() []BlockRef {
	all := make([]BlockRef, 0, len(bm.Direct)+len(bm.Indirect))
	all = append(all, bm.Direct...)
	return append(all, bm.Indirect...)
}

// Blocks resolves the data blocks of ino. Direct pointers come first, then,
// if the inode has an indirect block, the pointers stored in it. Zero
// pointers are skipped. There is exactly one level of indirection.
func (fs *FileSystem) Blocks(ino *Inode) (BlockMap, error) {
	op := fmt.Sprintf("resolve blocks of inode %d", ino.Num)
	var bm BlockMap
	for i, bn := range ino.Direct() {
		if bn == 0 {
			continue
		}
		if err := fs.checkPointer(ino, bn); err != nil {
			return BlockMap{}, xv6err.Op(op, err)
		}
		bm.Direct = append(bm.Direct, BlockRef{Slot: i, Block: bn})
	}

	ibn := ino.IndirectBlock()
	if ibn == 0 {
		return bm, nil
	}
	if err := fs.checkPointer(ino, ibn); err != nil {
		return BlockMap{}, xv6err.Op(op, err)
	}
	block, err := fs.readBlock(ibn)
	if err != nil {
		return BlockMap{}, xv6err.Op(op, err)
	}
	addrs, err := disklayout.DecodeIndirect(block)
	if err != nil {
		return BlockMap{}, xv6err.Op(op, err)
	}
	bm.IndirectBlock = ibn
	for i, bn := range addrs {
		if bn == 0 {
			continue
		}
		if err := fs.checkPointer(ino, bn); err != nil {
			return BlockMap{}, xv6err.Op(op, err)
		}
		bm.Indirect = append(bm.Indirect, BlockRef{Slot: i, Indirect: true, Block: bn})
	}
	return bm, nil
}

// checkPointer rejects a non-zero block pointer that lies outside the image.
func (fs *FileSystem) checkPointer(ino *Inode, bn uint32) error {
	if fs.sb.Contains(bn) {
		return nil
	}
	log.Warningf("Inode %d points at block %d outside the image (size %d)", ino.Num, bn, fs.sb.Size)
	return fmt.Errorf("%w: block %d, image has %d blocks", xv6err.ErrBlockOutOfRange, bn, fs.sb.Size)
}
