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
	"fmt"

	log "github.com/sirupsen/logrus"
	"gvisor.dev/xv6dump/pkg/xv6/disklayout"
	"gvisor.dev/xv6dump/pkg/xv6/xv6err"
)

// LogHeader reads the header block at the start of the log region.
func (fs *FileSystem) LogHeader() (disklayout.LogHeader, error) {
	const op = "read log header"
	if fs.sb.NLog == 0 {
		return disklayout.LogHeader{}, xv6err.Op(op, fmt.Errorf("%w: image has no log region", xv6err.ErrCorruptLog))
	}
	block, err := fs.readBlock(fs.sb.LogStart)
	if err != nil {
		return disklayout.LogHeader{}, xv6err.Op(op, err)
	}
	lh, err := disklayout.DecodeLogHeader(block)
	if err != nil {
		return disklayout.LogHeader{}, xv6err.Op(op, err)
	}
	if err := lh.Validate(); err != nil {
		log.Warningf("Log header at block %d has count %d", fs.sb.LogStart, lh.N)
		return disklayout.LogHeader{}, xv6err.Op(op, err)
	}
	return lh, nil
}
