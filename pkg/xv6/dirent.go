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

	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
)

// DirentOptions controls which blocks of a directory are scanned.
type DirentOptions struct {
	// DirectOnly restricts the scan to the direct blocks, skipping blocks
	// reached through the indirect block. The classic dumpfs tool behaves
	// this way.
	DirectOnly bool
}

// Entry is a non-empty directory entry.
type Entry struct {
	// Inum is the inode the entry refers to. It is never zero.
	Inum uint16

	// Name is the entry name with zero padding removed.
	Name string

	// Block is the directory block holding the entry and Slot its index
	// within that block.
	Block uint32
	Slot  int
}

// IterDirents invokes cb on each non-empty entry of the directory ino, in
// block order and then slot order.
//
// ino must be a directory; anything else fails with ErrNotDirectory before
// any block is read.
func (fs *FileSystem) IterDirents(ino *Inode, opts DirentOptions, cb func(Entry) error) error {
	op := fmt.Sprintf("read directory inode %d", ino.Num)
	if !ino.IsDir() {
		return xv6err.Op(op, fmt.Errorf("%w: inode %d has type %v", xv6err.ErrNotDirectory, ino.Num, ino.Type))
	}
	bm, err := fs.Blocks(ino)
	if err != nil {
		return err
	}
	refs := bm.Direct
	if !opts.DirectOnly {
		refs = bm.All()
	}
	for _, ref := range refs {
		block, err := fs.readBlock(ref.Block)
		if err != nil {
			return xv6err.Op(op, err)
		}
		ents, err := disklayout.DecodeDirents(block)
		if err != nil {
			return xv6err.Op(op, err)
		}
		for slot := range ents {
			d := &ents[slot]
			if d.Empty() {
				continue
			}
			if err := cb(Entry{Inum: d.Inum, Name: d.NameString(), Block: ref.Block, Slot: slot}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dirents returns every non-empty entry of the directory ino.
func (fs *FileSystem) Dirents(ino *Inode, opts DirentOptions) ([]Entry, error) {
	var ents []Entry
	err := fs.IterDirents(ino, opts, func(e Entry) error {
		ents = append(ents, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ents, nil
}
