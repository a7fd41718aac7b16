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

// Package xv6err contains the errors reported while decoding an xv6 image.
//
// Errors are exported as pointers to a fixed set of values so callers can
// match them with errors.Is after any amount of wrapping. None of them is
// recoverable: a decoder that returns one has stopped.
package xv6err

import "fmt"

// Error is a decode failure of a particular kind.
type Error struct {
	kind    string
	message string
}

// New creates a new *Error.
func New(kind, message string) *Error {
	return &Error{
		kind:    kind,
		message: message,
	}
}

// Error implements error.Error.
func (e *Error) Error() string { return e.message }

// Kind returns the short name of the failure class, e.g. "TruncatedRead".
func (e *Error) Kind() string { return e.kind }

var (
	// ErrImageUnavailable means the backing image could not be opened.
	ErrImageUnavailable = New("ImageUnavailable", "image unavailable")

	// ErrTruncatedRead means a block read returned less than a full block.
	ErrTruncatedRead = New("TruncatedRead", "truncated block read")

	// ErrCorruptSuperblock means the superblock regions overlap or do not
	// fit in the image.
	ErrCorruptSuperblock = New("CorruptSuperblock", "corrupt superblock")

	// ErrUnknownInodeType means an inode type tag is not one of the four
	// known values.
	ErrUnknownInodeType = New("UnknownInodeType", "unknown inode type")

	// ErrNotDirectory means directory decoding was requested for an inode
	// that is not a directory.
	ErrNotDirectory = New("NotDirectory", "not a directory")

	// ErrBlockOutOfRange means a non-zero block pointer lies at or past the
	// end of the image.
	ErrBlockOutOfRange = New("BlockOutOfRange", "block number out of range")

	// ErrInodeOutOfRange means an inode number lies at or past the end of
	// the inode table.
	ErrInodeOutOfRange = New("InodeOutOfRange", "inode number out of range")

	// ErrCorruptLog means the log header cannot be trusted.
	ErrCorruptLog = New("CorruptLog", "corrupt log header")
)

// OpError records the operation that failed along with the cause.
type OpError struct {
	// Op names the failing operation, e.g. "load superblock".
	Op string

	// Err is the underlying error, usually wrapping one of the values above.
	Err error
}

// Error implements error.Error.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error { return e.Err }

// Op wraps err with the name of the operation that produced it. It returns
// nil if err is nil.
func Op(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
