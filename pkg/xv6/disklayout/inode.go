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

// FileType is the type tag stored at the front of every inode.
type FileType int16

// Inode types. TypeUnused marks a free inode slot.
const (
	TypeUnused FileType = iota
	TypeDir
	TypeFile
	TypeDevice
)

// Valid reports whether t is one of the known type tags.
func (t FileType) Valid() bool {
	return t >= TypeUnused && t <= TypeDevice
}

// String returns the name xv6 uses for the type.
func (t FileType) String() string {
	switch t {
	case TypeUnused:
		return "N/A"
	case TypeDir:
		return "T_DIR"
	case TypeFile:
		return "T_FILE"
	case TypeDevice:
		return "T_DEV"
	default:
		return fmt.Sprintf("T_UNKNOWN(%d)", int16(t))
	}
}

// Inode is the on-disk inode (struct dinode).
type Inode struct {
	// Type is the file type. TypeUnused means the slot is free and no other
	// field is meaningful.
	Type FileType

	// Major and Minor are the device numbers of a TypeDevice inode.
	Major int16
	Minor int16

	// Nlink is the number of directory entries referring to the inode.
	Nlink int16

	// Size is the file size in bytes.
	Size uint32

	// Addrs holds NumDirect direct block numbers followed by the indirect
	// block number. Zero means unallocated.
	Addrs [NumDirect + 1]uint32
}

// DecodeInode decodes the inode at byte offset off of an inode block.
func DecodeInode(block []byte, off int) (Inode, error) {
	var ino Inode
	if err := binary.UnmarshalAt(block, off, binary.LittleEndian, &ino); err != nil {
		return Inode{}, err
	}
	return ino, nil
}

// Validate returns ErrUnknownInodeType if the type tag is not known.
func (i *Inode) Validate() error {
	if !i.Type.Valid() {
		return fmt.Errorf("%w: type tag %d", xv6err.ErrUnknownInodeType, int16(i.Type))
	}
	return nil
}

// Allocated reports whether the inode slot is in use.
func (i *Inode) Allocated() bool {
	return i.Type != TypeUnused
}

// IsDir reports whether the inode is a directory.
func (i *Inode) IsDir() bool {
	return i.Type == TypeDir
}

// IsDevice reports whether the inode is a device.
func (i *Inode) IsDevice() bool {
	return i.Type == TypeDevice
}

// Direct returns the direct block pointers, zero entries included.
func (i *Inode) Direct() []uint32 {
	return i.Addrs[:NumDirect]
}

// IndirectBlock returns the indirect block number, or zero if there is none.
func (i *Inode) IndirectBlock() uint32 {
	return i.Addrs[NumDirect]
}

// DecodeIndirect decodes an indirect block into its block pointers, zero
// entries included.
func DecodeIndirect(block []byte) ([NumIndirect]uint32, error) {
	var addrs [NumIndirect]uint32
	if err := binary.UnmarshalAt(block, 0, binary.LittleEndian, &addrs); err != nil {
		return addrs, err
	}
	return addrs, nil
}
