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

package planner

import (
	"fmt"
	"math"

	"github.com/JohnCGriffin/overflow"
	"github.com/lyd911/mempattern"
	"github.com/lyd911/mempattern/internal/debug"
	"github.com/lyd911/mempattern/pattern"
	"golang.org/x/exp/slices"
)

type liveRange struct {
	id    int
	block pattern.Block
}

func cmpOffset(r liveRange, offset int) int {
	switch {
	case r.block.Offset < offset:
		return -1
	case r.block.Offset > offset:
		return 1
	}
	return 0
}

// arena is the working state of one location while tracing. live holds the
// ranges of values that have not been freed yet, sorted by offset and
// pairwise disjoint.
type arena struct {
	loc       mempattern.Location
	live      []liveRange
	blocks    map[int]pattern.Block
	peak      int
	liveBytes int
	maxLive   int
}

func newArena(loc mempattern.Location) *arena {
	return &arena{loc: loc, blocks: make(map[int]pattern.Block)}
}

// place returns the offset a value of size bytes gets under strategy.
func (a *arena) place(size int, strategy Strategy) (int, error) {
	var (
		cursor  int
		best    = -1
		bestGap = math.MaxInt
	)
	for _, r := range a.live {
		if gap := r.block.Offset - cursor; gap >= size {
			if strategy == FirstFit {
				return cursor, nil
			}
			if gap < bestGap {
				best, bestGap = cursor, gap
			}
		}
		cursor = max(cursor, r.block.End())
	}
	if best >= 0 {
		return best, nil
	}
	if _, ok := overflow.Add(cursor, size); !ok {
		return 0, fmt.Errorf("%w: arena for %s overflows placing %d bytes at offset %d",
			mempattern.ErrInvalid, a.loc, size, cursor)
	}
	return cursor, nil
}

func (a *arena) alloc(id, size int, strategy Strategy) error {
	if size == 0 {
		a.blocks[id] = pattern.Block{}
		return nil
	}

	offset, err := a.place(size, strategy)
	if err != nil {
		return err
	}
	blk := pattern.Block{Offset: offset, Size: size}

	idx, _ := slices.BinarySearchFunc(a.live, offset, cmpOffset)
	debug.Assert(idx == 0 || !a.live[idx-1].block.Overlaps(blk), "planner: block overlaps its predecessor")
	debug.Assert(idx == len(a.live) || !a.live[idx].block.Overlaps(blk), "planner: block overlaps its successor")
	a.live = slices.Insert(a.live, idx, liveRange{id: id, block: blk})

	a.blocks[id] = blk
	a.peak = max(a.peak, blk.End())
	a.liveBytes += size
	a.maxLive = max(a.maxLive, a.liveBytes)
	return nil
}

func (a *arena) free(id int) {
	blk := a.blocks[id]
	if blk.Size == 0 {
		return
	}

	idx, found := slices.BinarySearchFunc(a.live, blk.Offset, cmpOffset)
	debug.Assert(found && a.live[idx].id == id, "planner: freed value missing from live index")
	if !found || a.live[idx].id != id {
		return
	}
	a.live = slices.Delete(a.live, idx, idx+1)
	a.liveBytes -= blk.Size
}

func (a *arena) pattern() *pattern.Pattern {
	return pattern.New(a.loc, a.peak, a.maxLive, a.blocks)
}
