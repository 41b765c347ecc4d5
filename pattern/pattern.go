// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pattern holds the immutable memory layouts produced by the planner:
// one Pattern per memory location, collected in a Group.
package pattern

import (
	"encoding/binary"
	"strconv"

	"github.com/lyd911/mempattern"
	"github.com/zeebo/xxh3"
	"golang.org/x/exp/slices"
)

// Block is a value's byte range inside its location's arena. Zero-size
// blocks have no storage and report offset 0.
type Block struct {
	Offset int
	Size   int
}

// End returns the first offset past the block.
func (b Block) End() int { return b.Offset + b.Size }

// Overlaps reports whether b and o share at least one byte. Zero-size
// blocks never overlap anything.
func (b Block) Overlaps(o Block) bool {
	if b.Size == 0 || o.Size == 0 {
		return false
	}
	return b.Offset < o.End() && o.Offset < b.End()
}

func (b Block) String() string {
	return "[" + strconv.Itoa(b.Offset) + ", " + strconv.Itoa(b.End()) + ")"
}

// Pattern is the finalized block layout of one memory location. A Pattern
// is never mutated after creation and is safe for concurrent use.
type Pattern struct {
	location mempattern.Location
	peak     int
	maxLive  int
	blocks   map[int]Block
}

// New returns a Pattern for loc. blocks is copied.
func New(loc mempattern.Location, peak, maxLive int, blocks map[int]Block) *Pattern {
	p := &Pattern{
		location: loc,
		peak:     peak,
		maxLive:  maxLive,
		blocks:   make(map[int]Block, len(blocks)),
	}
	for id, b := range blocks {
		p.blocks[id] = b
	}
	return p
}

func (p *Pattern) Location() mempattern.Location { return p.location }

// PeakSize returns the arena size needed to hold every block.
func (p *Pattern) PeakSize() int { return p.peak }

// MaxLiveBytes returns the largest number of bytes that were live at the
// same time while the location was traced. It never exceeds PeakSize; the
// difference is fragmentation left by the packing policy.
func (p *Pattern) MaxLiveBytes() int { return p.maxLive }

// NumBlocks returns the number of values traced at this location,
// zero-size values included.
func (p *Pattern) NumBlocks() int { return len(p.blocks) }

// GetBlock returns the block of a traced value. It reports false if the
// value was never traced at this location.
func (p *Pattern) GetBlock(valueID int) (Block, bool) {
	b, ok := p.blocks[valueID]
	return b, ok
}

// ValueIDs returns the traced value ids in ascending order.
func (p *Pattern) ValueIDs() []int {
	ids := make([]int, 0, len(p.blocks))
	for id := range p.blocks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Fingerprint hashes the peak size and block table. Two patterns produced
// from identical traces have identical fingerprints.
func (p *Pattern) Fingerprint() uint64 {
	ids := p.ValueIDs()
	buf := make([]byte, 0, 8*(1+3*len(ids)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(p.peak))
	for _, id := range ids {
		b := p.blocks[id]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(id))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(b.Offset))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(b.Size))
	}
	return xxh3.Hash(buf)
}
