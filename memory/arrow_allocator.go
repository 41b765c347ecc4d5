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

package memory

import (
	"fmt"

	arrowmem "github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowAllocator serves arenas from an arrow memory.Allocator, such as
// arrow's Go or cgo pools. A panic raised by the arrow allocator while
// allocating is reported as ErrOutOfMemory.
type ArrowAllocator struct {
	mem arrowmem.Allocator
}

// FromArrow adapts an arrow allocator. A nil mem selects
// arrow's memory.DefaultAllocator.
func FromArrow(mem arrowmem.Allocator) *ArrowAllocator {
	if mem == nil {
		mem = arrowmem.DefaultAllocator
	}
	return &ArrowAllocator{mem: mem}
}

func (a *ArrowAllocator) Allocate(size int) (out []byte, err error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrOutOfMemory, size)
	}
	if size == 0 {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: arrow allocator: %v", ErrOutOfMemory, r)
		}
	}()
	return a.mem.Allocate(size), nil
}

func (a *ArrowAllocator) Free(b []byte) {
	if len(b) == 0 {
		return
	}
	a.mem.Free(b)
}

var _ Allocator = (*ArrowAllocator)(nil)
