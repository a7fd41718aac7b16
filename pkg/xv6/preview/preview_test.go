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

package preview

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	for _, test := range []struct {
		name string
		buf  []byte
		n    int
		want string
	}{
		{"mixed", []byte{0x41, 0x00, 0x42, 0x7f}, 4, " A.B."},
		{"empty", nil, 0, ""},
		{"zero length", []byte("abc"), 0, ""},
		{"prefix", []byte("abcdef"), 3, " abc"},
		{"n past end", []byte("ab"), 10, " ab"},
		{"space is printable", []byte("a b"), 3, " a b"},
		{"high bytes", []byte{0x80, 0xff, 0x1f, 0x20, 0x7e}, 5, " ... ~"},
		{"two groups", []byte("0123456789abcdefXYZ"), 19, " 0123456789abcdef XYZ"},
		{"exact group", bytes.Repeat([]byte{'z'}, 16), 16, " " + strings.Repeat("z", 16)},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := Format(test.buf, test.n); got != test.want {
				t.Errorf("Format(%q, %d) = %q, want %q", test.buf, test.n, got, test.want)
			}
		})
	}
}

func TestFormatGroups(t *testing.T) {
	buf := make([]byte, 1024)
	for _, n := range []int{1, 15, 16, 17, 48, 64, 1024} {
		got := Format(buf, n)
		groups := (n + GroupSize - 1) / GroupSize
		if len(got) != n+groups {
			t.Errorf("len(Format(buf, %d)) = %d, want %d", n, len(got), n+groups)
		}
		if c := strings.Count(got, " "); c != groups {
			t.Errorf("Format(buf, %d) has %d separators, want %d", n, c, groups)
		}
	}
}

func TestFormatNegative(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Format with negative length did not panic")
		}
	}()
	Format([]byte("x"), -1)
}

func ExampleFormat() {
	fmt.Printf("%q\n", Format([]byte("hi\x00there"), 8))
	// Output: " hi.there"
}
