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

package disklayout

import (
	"fmt"

	"gvisor.dev/xv6dump/pkg/binary"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
)

// SuperBlock is the on-disk superblock. It describes the geometry of the
// image and where each region begins.
type SuperBlock struct {
	// Size is the size of the whole image in blocks.
	Size uint32

	// NBlocks is the number of data blocks.
	NBlocks uint32

	// NInodes is the number of inode slots in the inode table.
	NInodes uint32

	// NLog is the number of blocks in the log region, header included.
	NLog uint32

	// LogStart is the block number of the log header.
	LogStart uint32

	// InodeStart is the block number of the first inode block.
	InodeStart uint32

	// BmapStart is the block number of the first free-map block.
	BmapStart uint32
}

// DecodeSuperBlock decodes the superblock from the front of block.
func DecodeSuperBlock(block []byte) (SuperBlock, error) {
	var sb SuperBlock
	if err := binary.UnmarshalAt(block, 0, binary.LittleEndian, &sb); err != nil {
		return SuperBlock{}, err
	}
	return sb, nil
}

// InodeBlocks returns the number of blocks needed to hold NInodes inodes.
func (sb *SuperBlock) InodeBlocks() uint32 {
	return ceilDiv(sb.NInodes, InodesPerBlock)
}

// BitmapBlocks returns the number of bitmap blocks needed to track every
// block of the image.
func (sb *SuperBlock) BitmapBlocks() uint32 {
	return ceilDiv(sb.Size, BitsPerBlock)
}

// DataStart returns the first block of the data region, which runs to the
// end of the image.
func (sb *SuperBlock) DataStart() uint32 {
	return sb.Size - sb.NBlocks
}

// InodeLocation returns the block containing inode inum and the byte offset
// of the inode within that block.
func (sb *SuperBlock) InodeLocation(inum uint32) (uint32, int) {
	return sb.InodeStart + inum/InodesPerBlock, int(inum%InodesPerBlock) * InodeSize
}

// Contains reports whether bn addresses a block inside the image.
func (sb *SuperBlock) Contains(bn uint32) bool {
	return bn < sb.Size
}

// region is a half-open range of blocks [start, end).
type region struct {
	name       string
	start, end uint64
}

func (r region) String() string {
	return fmt.Sprintf("%s [%d, %d)", r.name, r.start, r.end)
}

func (r region) overlaps(o region) bool {
	return r.start < o.end && o.start < r.end
}

// regions returns every region declared by the superblock. Lengths are
// computed in 64 bits so that corrupt counts cannot wrap.
func (sb *SuperBlock) regions() []region {
	return []region{
		{"boot and superblock", 0, SuperBlockNum + 1},
		{"log", uint64(sb.LogStart), uint64(sb.LogStart) + uint64(sb.NLog)},
		{"inodes", uint64(sb.InodeStart), uint64(sb.InodeStart) + uint64(sb.InodeBlocks())},
		{"bitmap", uint64(sb.BmapStart), uint64(sb.BmapStart) + uint64(sb.BitmapBlocks())},
		{"data", uint64(sb.Size) - uint64(sb.NBlocks), uint64(sb.Size)},
	}
}

// Validate checks that every region the superblock declares lies within the
// image and that no two regions overlap. All traversal bounds derive from
// these fields, so a superblock that fails here must not be used.
func (sb *SuperBlock) Validate() error {
	if sb.Size <= SuperBlockNum {
		return fmt.Errorf("%w: image of %d blocks has no room for a superblock", xv6err.ErrCorruptSuperblock, sb.Size)
	}
	for _, f := range []struct {
		name string
		v    uint32
	}{
		{"logstart", sb.LogStart},
		{"inodestart", sb.InodeStart},
		{"bmapstart", sb.BmapStart},
	} {
		if f.v >= sb.Size {
			return fmt.Errorf("%w: %s %d is outside image of %d blocks", xv6err.ErrCorruptSuperblock, f.name, f.v, sb.Size)
		}
	}
	if sb.NBlocks > sb.Size {
		return fmt.Errorf("%w: %d data blocks in image of %d blocks", xv6err.ErrCorruptSuperblock, sb.NBlocks, sb.Size)
	}

	rs := sb.regions()
	for i, r := range rs {
		if r.end > uint64(sb.Size) {
			return fmt.Errorf("%w: %v extends past image of %d blocks", xv6err.ErrCorruptSuperblock, r, sb.Size)
		}
		if r.start == r.end {
			continue
		}
		for _, o := range rs[i+1:] {
			if o.start != o.end && r.overlaps(o) {
				return fmt.Errorf("%w: %v overlaps %v", xv6err.ErrCorruptSuperblock, r, o)
			}
		}
	}
	return nil
}

func ceilDiv(n, d uint32) uint32 {
	return uint32((uint64(n) + uint64(d) - 1) / uint64(d))
}
