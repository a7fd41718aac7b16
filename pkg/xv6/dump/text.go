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

package dump

import (
	"bufio"
	"fmt"
	"io"
)

// The text format reproduces the line layout of the classic xv6 dumpfs and
// dumplog tools. Signed fields are printed as their 32-bit two's complement,
// as C's %08x does.

func hex(v int16) uint32 {
	return uint32(int32(v))
}

func (r *SuperBlockReport) writeText(w *bufio.Writer) {
	fmt.Fprintf(w, "> sizeof(superblock) = %d\n", r.RecordSize)
	for _, f := range r.Fields {
		fmt.Fprintf(w, "%10s = %08x (%s)\n", f.Name, f.Value, f.Description)
	}
}

// WriteText implements Report.WriteText.
func (r *SuperBlockReport) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	r.writeText(bw)
	return bw.Flush()
}

func (ir *InodeReport) writeText(w *bufio.Writer) {
	fmt.Fprintf(w, "> inode = %d (offset = 0x%x)\n", ir.Num, ir.Offset)
	fmt.Fprintf(w, "%10s = %-8s (%s)\n", "type", ir.Type, "File type")
	if ir.Device != nil {
		fmt.Fprintf(w, "%10s = %08x (%s)\n", "major", hex(ir.Device.Major), "Major device number")
		fmt.Fprintf(w, "%10s = %08x (%s)\n", "minor", hex(ir.Device.Minor), "Minor device number")
	}
	fmt.Fprintf(w, "%10s = %08x (%s)\n", "nlink", hex(ir.Nlink), "Number of links to inode in file system")
	fmt.Fprintf(w, "%10s = %08x (%s)\n", "size", ir.Size, "Size of file (bytes)")
	for _, b := range ir.Direct {
		fmt.Fprintf(w, " [%02d] = %08x    -> %s\n", b.Slot, b.Block, b.Preview)
	}
	if ir.IndirectBlock != 0 {
		fmt.Fprintf(w, " [IN] = %08x\n", ir.IndirectBlock)
		for _, b := range ir.Indirect {
			fmt.Fprintf(w, "   [%03d] = %08x -> %s\n", b.Slot, b.Block, b.Preview)
		}
	}
	for _, d := range ir.Dirents {
		fmt.Fprintf(w, "    %02d -> %s\n", d.Inum, d.Name)
	}
}

// WriteText implements Report.WriteText.
func (r *FSReport) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	r.SuperBlock.writeText(bw)
	for i := range r.Inodes {
		r.Inodes[i].writeText(bw)
	}
	return bw.Flush()
}

// WriteText implements Report.WriteText.
func (r *LogReport) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	r.SuperBlock.writeText(bw)
	fmt.Fprintf(bw, "> loghead (n=%d)\n", r.Count)
	for _, s := range r.Slots {
		mark := ' '
		if s.Committed {
			mark = '*'
		}
		fmt.Fprintf(bw, "> %cblock[%02d] = %03d: %s\n", mark, s.Index, s.Block, s.Preview)
	}
	return bw.Flush()
}
