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

package allocator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lyd911/mempattern"
	"github.com/lyd911/mempattern/allocator"
	"github.com/lyd911/mempattern/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestConcurrentLookups(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	const n = 64
	plan := mempattern.StaticPlan{}
	for id := 0; id < n; id++ {
		plan[id] = l1
		if id%4 == 0 {
			plan[id] = l2
		}
	}
	reg := allocator.NewRegistry().Register(l1, mem).Register(l2, mem)
	a := newAllocator(t, plan, reg)
	defer a.Release()

	for id := 0; id < n; id++ {
		require.NoError(t, a.TraceBytes(id, (id%5)*100))
	}
	require.NoError(t, a.Finalize())

	want := make([]allocator.Region, n)
	for id := range want {
		r, err := a.Lookup(id)
		require.NoError(t, err)
		want[id] = r
	}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 1000; i++ {
				id := (i*7 + w) % n
				r, err := a.GetBuffer(id, plan[id])
				if err != nil {
					return err
				}
				if r.Offset != want[id].Offset || r.Len() != want[id].Len() {
					return fmt.Errorf("value %d: got offset=%d len=%d, want offset=%d len=%d",
						id, r.Offset, r.Len(), want[id].Offset, want[id].Len())
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestLookupsDuringRelease(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	const n = 16
	plan := mempattern.StaticPlan{}
	for id := 0; id < n; id++ {
		plan[id] = l1
	}
	a := newAllocator(t, plan, allocator.NewRegistry().Register(l1, mem))
	for id := 0; id < n; id++ {
		require.NoError(t, a.TraceBytes(id, 64))
	}
	require.NoError(t, a.Finalize())

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				_, err := a.GetBuffer((i+w)%n, l1)
				if err != nil && !errors.Is(err, mempattern.ErrInvalidState) {
					return err
				}
			}
			return nil
		})
	}
	a.Release()
	require.NoError(t, g.Wait())

	_, err := a.GetBuffer(0, l1)
	assert.ErrorIs(t, err, mempattern.ErrInvalidState)
}
