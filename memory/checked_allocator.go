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
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// poison is written over released memory so reads through stale slices
// are easy to spot.
const poison = 0xdd

// CheckedAllocator records every live allocation of the wrapped allocator
// along with the call site that made it.
type CheckedAllocator struct {
	mem Allocator
	sz  int64
	n   int64

	allocs sync.Map
}

func NewCheckedAllocator(mem Allocator) *CheckedAllocator {
	return &CheckedAllocator{mem: mem}
}

// CurrentAlloc returns the number of bytes currently allocated.
func (a *CheckedAllocator) CurrentAlloc() int { return int(atomic.LoadInt64(&a.sz)) }

// NumAllocs returns the number of live non-empty allocations.
func (a *CheckedAllocator) NumAllocs() int { return int(atomic.LoadInt64(&a.n)) }

func (a *CheckedAllocator) Allocate(size int) ([]byte, error) {
	out, err := a.mem.Allocate(size)
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&a.sz, int64(size))
	if size == 0 {
		return out, nil
	}

	atomic.AddInt64(&a.n, 1)
	ptr := addressOf(out)
	if pc, _, l, ok := runtime.Caller(allocFrames); ok {
		a.allocs.Store(ptr, &dalloc{pc: pc, line: l, sz: size})
	}
	return out, nil
}

func (a *CheckedAllocator) Free(b []byte) {
	atomic.AddInt64(&a.sz, int64(len(b)*-1))
	defer a.mem.Free(b)

	if len(b) == 0 {
		return
	}

	atomic.AddInt64(&a.n, -1)
	ptr := addressOf(b)
	a.allocs.Delete(ptr)
	Set(b, poison)
}

// allocations are made by the arena allocator on behalf of its caller, so
// the interesting frame sits above the direct caller of Allocate.
const defAllocFrames = 2

// Use the environment variable MEMPATTERN_CHECKED_ALLOC_FRAMES to control how
// many frames up it checks when storing the caller for allocations when using
// this to find memory leaks.
var allocFrames = defAllocFrames

func init() {
	if val, ok := os.LookupEnv("MEMPATTERN_CHECKED_ALLOC_FRAMES"); ok {
		if f, err := strconv.Atoi(val); err == nil {
			allocFrames = f
		}
	}
}

type dalloc struct {
	pc   uintptr
	line int
	sz   int
}

type TestingT interface {
	Errorf(format string, args ...interface{})
	Helper()
}

// AssertSize reports every live allocation as a leak and fails t if the
// allocated byte count differs from sz.
func (a *CheckedAllocator) AssertSize(t TestingT, sz int) {
	a.allocs.Range(func(_, value interface{}) bool {
		info := value.(*dalloc)
		f := runtime.FuncForPC(info.pc)
		t.Errorf("LEAK of %d bytes FROM %s line %d\n", info.sz, f.Name(), info.line)
		return true
	})

	if cur := int(atomic.LoadInt64(&a.sz)); cur != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", sz, cur)
	}
}

type CheckedAllocatorScope struct {
	alloc *CheckedAllocator
	sz    int
}

func NewCheckedAllocatorScope(alloc *CheckedAllocator) *CheckedAllocatorScope {
	sz := atomic.LoadInt64(&alloc.sz)
	return &CheckedAllocatorScope{alloc: alloc, sz: int(sz)}
}

func (c *CheckedAllocatorScope) CheckSize(t TestingT) {
	sz := int(atomic.LoadInt64(&c.alloc.sz))
	if c.sz != sz {
		t.Helper()
		t.Errorf("invalid memory size exp=%d, got=%d", c.sz, sz)
	}
}

var (
	_ Allocator = (*CheckedAllocator)(nil)
)
