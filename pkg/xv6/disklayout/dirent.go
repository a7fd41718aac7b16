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
	"bytes"

	"gvisor.dev/xv6dump/pkg/binary"
)

// Dirent is an on-disk directory entry. A directory's data blocks are
// arrays of DirentsPerBlock of these.
type Dirent struct {
	// Inum is the inode the entry refers to. Zero marks an empty slot.
	Inum uint16

	// Name is the entry name, padded with zero bytes when shorter than
	// DirNameLen. A name of exactly DirNameLen bytes has no terminator.
	Name [DirNameLen]byte
}

// NameString returns the name up to the first zero byte.
func (d *Dirent) NameString() string {
	name := d.Name[:]
	if n := bytes.IndexByte(name, 0); n != -1 {
		name = name[:n]
	}
	return string(name)
}

// Empty reports whether the entry slot is unused.
func (d *Dirent) Empty() bool {
	return d.Inum == 0
}

// NewDirent builds an entry for name. Names longer than DirNameLen are
// truncated, as xv6 does.
func NewDirent(inum uint16, name string) Dirent {
	d := Dirent{Inum: inum}
	copy(d.Name[:], name)
	return d
}

// DecodeDirents decodes every entry slot of a directory block, empty ones
// included, in on-disk order.
func DecodeDirents(block []byte) ([]Dirent, error) {
	var ents [DirentsPerBlock]Dirent
	if err := binary.UnmarshalAt(block, 0, binary.LittleEndian, &ents); err != nil {
		return nil, err
	}
	return ents[:], nil
}
