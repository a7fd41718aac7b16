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

// Package xv6 walks the structures of an xv6 filesystem image.
//
// A FileSystem is created from a BlockReader by Load, which decodes and
// validates the superblock. Everything else is reached from there: the inode
// table, each inode's data blocks, directory entries, and the log header.
// Nothing is cached; every call re-reads the blocks it needs. Decode errors
// are never recovered locally, each one is returned to the caller wrapped in
// an *xv6err.OpError naming the operation.
package xv6

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/preview"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
)

// BlockReader fetches whole blocks by number. *image.Image implements it.
type BlockReader interface {
	// ReadBlock returns a buffer of exactly disklayout.BlockSize bytes owned
	// by the caller.
	ReadBlock(bn uint32) ([]byte, error)
}

// FileSystem is a decoded, read-only view of an xv6 image.
type FileSystem struct {
	dev BlockReader

	// sb is immutable after Load.
	sb disklayout.SuperBlock
}

// Load reads and validates the superblock of the image behind dev.
func Load(dev BlockReader) (*FileSystem, error) {
	const op = "load superblock"
	block, err := dev.ReadBlock(disklayout.SuperBlockNum)
	if err != nil {
		return nil, xv6err.Op(op, err)
	}
	sb, err := disklayout.DecodeSuperBlock(block)
	if err != nil {
		return nil, xv6err.Op(op, err)
	}
	if err := sb.Validate(); err != nil {
		log.Warningf("Rejecting superblock %+v", sb)
		return nil, xv6err.Op(op, err)
	}
	log.Debugf("Loaded superblock %+v", sb)
	return &FileSystem{dev: dev, sb: sb}, nil
}

// SuperBlock returns a copy of the superblock.
func (fs *FileSystem) SuperBlock() disklayout.SuperBlock {
	return fs.sb
}

// readBlock fetches bn after checking that it lies inside the image.
func (fs *FileSystem) readBlock(bn uint32) ([]byte, error) {
	if !fs.sb.Contains(bn) {
		log.Warningf("Block %d is outside the image (size %d)", bn, fs.sb.Size)
		return nil, fmt.Errorf("%w: block %d, image has %d blocks", xv6err.ErrBlockOutOfRange, bn, fs.sb.Size)
	}
	return fs.dev.ReadBlock(bn)
}

// Peek returns a preview of the first n bytes of block bn.
func (fs *FileSystem) Peek(bn uint32, n int) (string, error) {
	block, err := fs.readBlock(bn)
	if err != nil {
		return "", xv6err.Op(fmt.Sprintf("peek block %d", bn), err)
	}
	return preview.Format(block, n), nil
}
