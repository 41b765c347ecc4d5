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

	"golang.org/x/sync/semaphore"
)

// LimitedAllocator caps the number of bytes the wrapped allocator may have
// outstanding. Requests that would exceed the limit fail with
// ErrOutOfMemory without blocking.
type LimitedAllocator struct {
	mem   Allocator
	limit int64
	sem   *semaphore.Weighted
}

// NewLimitedAllocator returns an allocator that serves at most limit bytes
// from mem at any one time.
func NewLimitedAllocator(mem Allocator, limit int64) *LimitedAllocator {
	if limit < 0 {
		limit = 0
	}
	return &LimitedAllocator{mem: mem, limit: limit, sem: semaphore.NewWeighted(limit)}
}

// Limit returns the configured byte limit.
func (a *LimitedAllocator) Limit() int64 { return a.limit }

func (a *LimitedAllocator) Allocate(size int) ([]byte, error) {
	if size == 0 {
		return a.mem.Allocate(0)
	}
	if !a.sem.TryAcquire(int64(size)) {
		return nil, fmt.Errorf("%w: request of %d bytes exceeds limit of %d", ErrOutOfMemory, size, a.limit)
	}

	out, err := a.mem.Allocate(size)
	if err != nil {
		a.sem.Release(int64(size))
		return nil, err
	}
	return out, nil
}

func (a *LimitedAllocator) Free(b []byte) {
	if len(b) > 0 {
		a.sem.Release(int64(len(b)))
	}
	a.mem.Free(b)
}

var _ Allocator = (*LimitedAllocator)(nil)
