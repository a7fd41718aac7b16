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

// Package image provides block-granular read access to an xv6 image.
//
// Like the EROFS image reader, this package never caches: every ReadBlock
// call goes back to the backing store and returns a buffer that belongs to
// the caller alone. The image is only ever opened read-only.
package image

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
)

// Options configures how an image file is opened.
type Options struct {
	// Mmap maps the file read-only instead of issuing a read per block.
	Mmap bool
}

// Image is an open xv6 image.
type Image struct {
	// src is the backing store. For mapped images it reads from the mapping.
	src io.ReaderAt

	// closer releases the backing store. It is nil for images created with
	// New, whose owner keeps responsibility for the reader.
	closer func() error
}

// New returns an Image reading blocks from r. The caller retains ownership
// of r.
func New(r io.ReaderAt) *Image {
	return &Image{src: r}
}

// Open opens the image file at path read-only.
//
// A file that cannot be opened or mapped yields ErrImageUnavailable.
func Open(path string, opts Options) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xv6err.ErrImageUnavailable, err)
	}
	if !opts.Mmap {
		log.Debugf("Opened image %q", path)
		return &Image{src: f, closer: f.Close}, nil
	}

	m, err := mapFile(f)
	// The mapping stays valid after the descriptor is closed.
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: mapping %q: %v", xv6err.ErrImageUnavailable, path, err)
	}
	log.Debugf("Mapped image %q (%d bytes)", path, len(m.data))
	return &Image{src: m, closer: m.unmap}, nil
}

// Close releases the backing store of an image returned by Open.
func (i *Image) Close() error {
	if i.closer == nil {
		return nil
	}
	closer := i.closer
	i.closer = nil
	return closer()
}

// ReadBlock returns a fresh copy of block bn.
//
// The block is read from byte offset bn*BlockSize. A read that cannot supply
// a whole block, because the image is truncated or the read fails, returns
// ErrTruncatedRead.
func (i *Image) ReadBlock(bn uint32) ([]byte, error) {
	buf := make([]byte, disklayout.BlockSize)
	off := disklayout.BlockOffset(bn)
	n, err := i.src.ReadAt(buf, off)
	if n == len(buf) {
		// io.ReaderAt may return io.EOF alongside a full read at the end of
		// the source.
		log.Debugf("Read block %d (offset 0x%x)", bn, off)
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	log.Warningf("Short read of block %d: %d of %d bytes at offset 0x%x", bn, n, len(buf), off)
	return nil, fmt.Errorf("%w: block %d: read %d of %d bytes: %v", xv6err.ErrTruncatedRead, bn, n, len(buf), err)
}
