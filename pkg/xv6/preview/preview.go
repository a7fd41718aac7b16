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

// Package preview renders raw block bytes as a single line of text for
// diagnostic output.
package preview

import "strings"

const (
	// GroupSize is the number of bytes between separators.
	GroupSize = 16

	// Placeholder stands in for every byte that is not printable ASCII.
	Placeholder = '.'
)

// Printable reports whether b is printable ASCII, including space.
func Printable(b byte) bool {
	return b >= 0x20 && b <= 0x7e
}

// Format renders the first n bytes of buf. Every group of GroupSize bytes is
// preceded by a space, printable bytes appear verbatim and all other bytes
// appear as Placeholder. If buf is shorter than n, all of buf is rendered.
//
// Precondition: n >= 0.
func Format(buf []byte, n int) string {
	if n < 0 {
		panic("preview.Format called with negative length")
	}
	if n > len(buf) {
		n = len(buf)
	}
	var sb strings.Builder
	sb.Grow(n + (n+GroupSize-1)/GroupSize)
	for i, b := range buf[:n] {
		if i%GroupSize == 0 {
			sb.WriteByte(' ')
		}
		if Printable(b) {
			sb.WriteByte(b)
		} else {
			sb.WriteByte(Placeholder)
		}
	}
	return sb.String()
}
