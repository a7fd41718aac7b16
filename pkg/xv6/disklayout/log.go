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

// LogHeader is the block at the start of the log region. Only the first N
// entries of Block belong to the committed transaction; the rest hold
// whatever an earlier transaction left there.
type LogHeader struct {
	N     int32
	Block [LogCapacity]int32
}

// DecodeLogHeader decodes the log header from the front of block.
func DecodeLogHeader(block []byte) (LogHeader, error) {
	var lh LogHeader
	if err := binary.UnmarshalAt(block, 0, binary.LittleEndian, &lh); err != nil {
		return LogHeader{}, err
	}
	return lh, nil
}

// Validate checks that the count fits the header.
func (lh *LogHeader) Validate() error {
	if lh.N < 0 || lh.N > LogCapacity {
		return fmt.Errorf("%w: count %d outside [0, %d]", xv6err.ErrCorruptLog, lh.N, LogCapacity)
	}
	return nil
}

// Committed reports whether slot i is part of the committed transaction.
func (lh *LogHeader) Committed(i int) bool {
	return i < int(lh.N)
}

// BlockNum returns the block number recorded in slot i.
func (lh *LogHeader) BlockNum(i int) uint32 {
	return uint32(lh.Block[i])
}
