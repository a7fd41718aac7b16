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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/image"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
	"gvisor.dev/xv6dump/pkg/xv6/xv6test"
)

// countingReader records every block fetched through it.
type countingReader struct {
	BlockReader
	reads []uint32
}

func (c *countingReader) ReadBlock(bn uint32) ([]byte, error) {
	c.reads = append(c.reads, bn)
	return c.BlockReader.ReadBlock(bn)
}

func load(t *testing.T, b *xv6test.Builder) *FileSystem {
	t.Helper()
	fs, err := Load(b.Image())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return fs
}

func readInode(t *testing.T, fs *FileSystem, inum uint32) *Inode {
	t.Helper()
	ino, err := fs.ReadInode(inum)
	if err != nil {
		t.Fatalf("ReadInode(%d) failed: %v", inum, err)
	}
	return ino
}

func TestLoad(t *testing.T) {
	fs := load(t, xv6test.Sample())
	if diff := cmp.Diff(xv6test.DefaultSuperBlock(), fs.SuperBlock()); diff != "" {
		t.Errorf("superblock mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCorruptSuperblock(t *testing.T) {
	b := xv6test.Sample()
	b.SB.InodeStart = b.SB.LogStart + 1
	_, err := Load(b.Image())
	if !errors.Is(err, xv6err.ErrCorruptSuperblock) {
		t.Fatalf("Load = %v, want ErrCorruptSuperblock", err)
	}
	var opErr *xv6err.OpError
	if !errors.As(err, &opErr) || opErr.Op != "load superblock" {
		t.Errorf("Load error %v does not name the operation", err)
	}
}

func TestLoadTruncated(t *testing.T) {
	disk := xv6test.Sample().Bytes()
	_, err := Load(image.New(bytes.NewReader(disk[:disklayout.BlockSize+10])))
	if !errors.Is(err, xv6err.ErrTruncatedRead) {
		t.Errorf("Load = %v, want ErrTruncatedRead", err)
	}
}

func TestWalkInodes(t *testing.T) {
	fs := load(t, xv6test.Sample())
	var got []uint32
	visited, err := fs.WalkInodes(func(ino *Inode) error {
		if !ino.Allocated() {
			t.Errorf("callback got unused inode %d", ino.Num)
		}
		got = append(got, ino.Num)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkInodes failed: %v", err)
	}
	if visited != xv6test.DefaultNInodes {
		t.Errorf("WalkInodes visited %d slots, want %d", visited, xv6test.DefaultNInodes)
	}
	want := []uint32{xv6test.RootInum, xv6test.ReadmeInum, xv6test.ConsoleInum, xv6test.BigInum}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkInodesRereads(t *testing.T) {
	cr := &countingReader{BlockReader: xv6test.Sample().Image()}
	fs, err := Load(cr)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cr.reads = nil
	if _, err := fs.WalkInodes(func(*Inode) error { return nil }); err != nil {
		t.Fatalf("WalkInodes failed: %v", err)
	}
	// One read per slot, no caching of inode blocks.
	if len(cr.reads) != xv6test.DefaultNInodes {
		t.Errorf("WalkInodes read %d blocks, want %d", len(cr.reads), xv6test.DefaultNInodes)
	}
}

func TestWalkInodesUnknownType(t *testing.T) {
	b := xv6test.Sample()
	b.SetInode(7, disklayout.Inode{Type: 4})
	fs := load(t, b)
	var seen int
	_, err := fs.WalkInodes(func(*Inode) error {
		seen++
		return nil
	})
	if !errors.Is(err, xv6err.ErrUnknownInodeType) {
		t.Fatalf("WalkInodes = %v, want ErrUnknownInodeType", err)
	}
	if seen != 4 {
		t.Errorf("callback saw %d inodes before the failure, want 4", seen)
	}
}

func TestWalkInodesCallbackError(t *testing.T) {
	fs := load(t, xv6test.Sample())
	stop := errors.New("stop")
	visited, err := fs.WalkInodes(func(ino *Inode) error {
		if ino.Num == xv6test.ReadmeInum {
			return stop
		}
		return nil
	})
	if err != stop {
		t.Errorf("WalkInodes = %v, want %v", err, stop)
	}
	if visited != xv6test.ReadmeInum+1 {
		t.Errorf("visited = %d, want %d", visited, xv6test.ReadmeInum+1)
	}
}

func TestInodeBlockBoundary(t *testing.T) {
	b := xv6test.NewBuilder()
	last := uint32(disklayout.InodesPerBlock - 1)
	first := uint32(disklayout.InodesPerBlock)
	b.SetInode(last, disklayout.Inode{Type: disklayout.TypeFile, Size: 1})
	b.SetInode(first, disklayout.Inode{Type: disklayout.TypeFile, Size: 2})
	fs := load(t, b)

	a, c := readInode(t, fs, last), readInode(t, fs, first)
	if a.Size != 1 || c.Size != 2 {
		t.Errorf("sizes = %d, %d, want 1, 2", a.Size, c.Size)
	}
	sb := fs.SuperBlock()
	if got, want := a.Offset, disklayout.BlockOffset(sb.InodeStart)+int64(last)*disklayout.InodeSize; got != want {
		t.Errorf("inode %d offset = %#x, want %#x", last, got, want)
	}
	if got, want := c.Offset, disklayout.BlockOffset(sb.InodeStart+1); got != want {
		t.Errorf("inode %d offset = %#x, want %#x", first, got, want)
	}
	if a.Offset/disklayout.BlockSize == c.Offset/disklayout.BlockSize {
		t.Errorf("inodes %d and %d resolved to the same block", last, first)
	}
}

func TestReadInodeOutOfRange(t *testing.T) {
	fs := load(t, xv6test.Sample())
	for _, inum := range []uint32{xv6test.DefaultNInodes, 0xffffffff} {
		if _, err := fs.ReadInode(inum); !errors.Is(err, xv6err.ErrInodeOutOfRange) {
			t.Errorf("ReadInode(%d) = %v, want ErrInodeOutOfRange", inum, err)
		}
	}
}

func TestBlocks(t *testing.T) {
	b := xv6test.Sample()
	fs := load(t, b)
	big := readInode(t, fs, xv6test.BigInum)

	bm, err := fs.Blocks(big)
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}
	if len(bm.Direct) != disklayout.NumDirect {
		t.Errorf("got %d direct blocks, want %d", len(bm.Direct), disklayout.NumDirect)
	}
	if len(bm.Indirect) != xv6test.BigBlocks-disklayout.NumDirect {
		t.Errorf("got %d indirect blocks, want %d", len(bm.Indirect), xv6test.BigBlocks-disklayout.NumDirect)
	}
	if bm.IndirectBlock != big.IndirectBlock() {
		t.Errorf("IndirectBlock = %d, want %d", bm.IndirectBlock, big.IndirectBlock())
	}

	// Every block is non-zero, comes from the inode or its indirect block,
	// and holds the matching slice of the file.
	indirect, err := disklayout.DecodeIndirect(b.Bytes()[disklayout.BlockOffset(bm.IndirectBlock):][:disklayout.BlockSize])
	if err != nil {
		t.Fatalf("DecodeIndirect failed: %v", err)
	}
	for i, ref := range bm.All() {
		if ref.Block == 0 {
			t.Errorf("block ref %d is zero", i)
		}
		src := big.Direct()[ref.Slot]
		if ref.Indirect {
			src = indirect[ref.Slot]
		}
		if src != ref.Block {
			t.Errorf("ref %+v does not match its source pointer %d", ref, src)
		}
		data, err := fs.dev.ReadBlock(ref.Block)
		if err != nil {
			t.Fatalf("ReadBlock(%d) failed: %v", ref.Block, err)
		}
		if !bytes.Equal(data, xv6test.BigBlock(i)) {
			t.Errorf("block %d of big holds the wrong data", i)
		}
	}
}

func TestBlocksSkipsZeroPointers(t *testing.T) {
	b := xv6test.NewBuilder()
	ibn := b.AllocBlock()
	b.WriteIndirect(ibn, 0, 60, 0, 61)
	ino := disklayout.Inode{Type: disklayout.TypeFile}
	ino.Addrs[1], ino.Addrs[5] = 50, 51
	ino.Addrs[disklayout.NumDirect] = ibn
	b.SetInode(3, ino)
	fs := load(t, b)

	bm, err := fs.Blocks(readInode(t, fs, 3))
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}
	want := []BlockRef{
		{Slot: 1, Block: 50},
		{Slot: 5, Block: 51},
		{Slot: 1, Indirect: true, Block: 60},
		{Slot: 3, Indirect: true, Block: 61},
	}
	if diff := cmp.Diff(want, bm.All()); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestBlocksFullIndirect(t *testing.T) {
	b := xv6test.NewBuilder()
	ibn := b.AllocBlock()
	addrs := make([]uint32, disklayout.NumIndirect)
	for i := range addrs {
		addrs[i] = b.SB.DataStart() + uint32(i%100)
	}
	b.WriteIndirect(ibn, addrs...)
	ino := disklayout.Inode{Type: disklayout.TypeFile}
	ino.Addrs[disklayout.NumDirect] = ibn
	b.SetInode(1, ino)
	fs := load(t, b)

	bm, err := fs.Blocks(readInode(t, fs, 1))
	if err != nil {
		t.Fatalf("Blocks failed: %v", err)
	}
	if len(bm.Indirect) != disklayout.NumIndirect {
		t.Errorf("got %d indirect blocks, want %d", len(bm.Indirect), disklayout.NumIndirect)
	}
}

func TestBlocksOutOfRange(t *testing.T) {
	for _, test := range []struct {
		name  string
		setup func(b *xv6test.Builder, ino *disklayout.Inode)
	}{
		{"direct", func(b *xv6test.Builder, ino *disklayout.Inode) {
			ino.Addrs[0] = b.SB.Size
		}},
		{"indirect pointer", func(b *xv6test.Builder, ino *disklayout.Inode) {
			ino.Addrs[disklayout.NumDirect] = 0xffffffff
		}},
		{"indirect entry", func(b *xv6test.Builder, ino *disklayout.Inode) {
			ibn := b.AllocBlock()
			b.WriteIndirect(ibn, 40, b.SB.Size+7)
			ino.Addrs[disklayout.NumDirect] = ibn
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			b := xv6test.NewBuilder()
			ino := disklayout.Inode{Type: disklayout.TypeFile}
			test.setup(b, &ino)
			b.SetInode(2, ino)
			fs := load(t, b)
			if _, err := fs.Blocks(readInode(t, fs, 2)); !errors.Is(err, xv6err.ErrBlockOutOfRange) {
				t.Errorf("Blocks = %v, want ErrBlockOutOfRange", err)
			}
		})
	}
}

func TestDirentsRoundTrip(t *testing.T) {
	b := xv6test.NewBuilder()
	blockA, blockB := b.AllocBlock(), b.AllocBlock()
	b.WriteDirents(blockA, disklayout.NewDirent(5, "foo"))
	b.WriteDirents(blockB, disklayout.NewDirent(0, ""))
	dir := disklayout.Inode{Type: disklayout.TypeDir, Nlink: 1, Size: 2 * disklayout.BlockSize}
	dir.Addrs[0], dir.Addrs[1] = blockA, blockB
	b.SetInode(1, dir)
	fs := load(t, b)

	got, err := fs.Dirents(readInode(t, fs, 1), DirentOptions{})
	if err != nil {
		t.Fatalf("Dirents failed: %v", err)
	}
	want := []Entry{{Inum: 5, Name: "foo", Block: blockA, Slot: 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dirents mismatch (-want +got):\n%s", diff)
	}
}

func TestDirentsSample(t *testing.T) {
	fs := load(t, xv6test.Sample())
	got, err := fs.Dirents(readInode(t, fs, xv6test.RootInum), DirentOptions{})
	if err != nil {
		t.Fatalf("Dirents failed: %v", err)
	}
	want := []Entry{
		{Inum: xv6test.RootInum, Name: "."},
		{Inum: xv6test.RootInum, Name: ".."},
		{Inum: xv6test.ReadmeInum, Name: "README"},
		{Inum: xv6test.ConsoleInum, Name: "console"},
		{Inum: xv6test.BigInum, Name: "big"},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Entry{}, "Block", "Slot")); diff != "" {
		t.Errorf("dirents mismatch (-want +got):\n%s", diff)
	}
}

func TestDirentsNotDirectory(t *testing.T) {
	cr := &countingReader{BlockReader: xv6test.Sample().Image()}
	fs, err := Load(cr)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, inum := range []uint32{xv6test.ReadmeInum, xv6test.ConsoleInum, xv6test.BigInum} {
		ino := readInode(t, fs, inum)
		cr.reads = nil
		ents, err := fs.Dirents(ino, DirentOptions{})
		if !errors.Is(err, xv6err.ErrNotDirectory) {
			t.Errorf("Dirents(inode %d) = %v, want ErrNotDirectory", inum, err)
		}
		if len(ents) != 0 || len(cr.reads) != 0 {
			t.Errorf("Dirents(inode %d) produced %d entries and %d reads, want none", inum, len(ents), len(cr.reads))
		}
	}
}

func TestDirentsIndirect(t *testing.T) {
	b := xv6test.NewBuilder()
	dir := disklayout.Inode{Type: disklayout.TypeDir, Nlink: 1}
	for i := 0; i < disklayout.NumDirect; i++ {
		bn := b.AllocBlock()
		b.WriteDirents(bn, disklayout.NewDirent(uint16(10+i), "d"))
		dir.Addrs[i] = bn
	}
	spill := b.AllocBlock()
	b.WriteDirents(spill, disklayout.NewDirent(0, "gone"), disklayout.NewDirent(99, "spilled"))
	ibn := b.AllocBlock()
	b.WriteIndirect(ibn, spill)
	dir.Addrs[disklayout.NumDirect] = ibn
	b.SetInode(1, dir)
	fs := load(t, b)
	ino := readInode(t, fs, 1)

	all, err := fs.Dirents(ino, DirentOptions{})
	if err != nil {
		t.Fatalf("Dirents failed: %v", err)
	}
	if len(all) != disklayout.NumDirect+1 {
		t.Fatalf("got %d entries, want %d", len(all), disklayout.NumDirect+1)
	}
	if last := all[len(all)-1]; last != (Entry{Inum: 99, Name: "spilled", Block: spill, Slot: 1}) {
		t.Errorf("last entry = %+v", last)
	}

	direct, err := fs.Dirents(ino, DirentOptions{DirectOnly: true})
	if err != nil {
		t.Fatalf("Dirents(DirectOnly) failed: %v", err)
	}
	if len(direct) != disklayout.NumDirect {
		t.Errorf("DirectOnly got %d entries, want %d", len(direct), disklayout.NumDirect)
	}
}

func TestLogHeader(t *testing.T) {
	fs := load(t, xv6test.Sample())
	lh, err := fs.LogHeader()
	if err != nil {
		t.Fatalf("LogHeader failed: %v", err)
	}
	if lh.N != 2 {
		t.Errorf("N = %d, want 2", lh.N)
	}
	if lh.BlockNum(2) == 0 {
		t.Errorf("stale slot 2 is empty, want a block number")
	}
}

func TestLogHeaderCorrupt(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		b := xv6test.Sample()
		b.SetLogHeader(disklayout.LogHeader{N: disklayout.LogCapacity + 1})
		if _, err := load(t, b).LogHeader(); !errors.Is(err, xv6err.ErrCorruptLog) {
			t.Errorf("LogHeader = %v, want ErrCorruptLog", err)
		}
	})
	t.Run("no log", func(t *testing.T) {
		b := xv6test.Sample()
		b.SB.NLog = 0
		if _, err := load(t, b).LogHeader(); !errors.Is(err, xv6err.ErrCorruptLog) {
			t.Errorf("LogHeader = %v, want ErrCorruptLog", err)
		}
	})
}

func TestPeek(t *testing.T) {
	b := xv6test.Sample()
	fs := load(t, b)
	readme := readInode(t, fs, xv6test.ReadmeInum)
	got, err := fs.Peek(readme.Addrs[0], 16)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	// Ten printable bytes, then the newline and the zero padding as dots.
	want := " " + strings.TrimSuffix(xv6test.ReadmeText, "\n") + strings.Repeat(".", 16-len(xv6test.ReadmeText)+1)
	if got != want {
		t.Errorf("Peek = %q, want %q", got, want)
	}
	if _, err := fs.Peek(b.SB.Size, 16); !errors.Is(err, xv6err.ErrBlockOutOfRange) {
		t.Errorf("Peek(past end) = %v, want ErrBlockOutOfRange", err)
	}
}
