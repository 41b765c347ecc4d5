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

package memory_test

import (
	"testing"

	"github.com/lyd911/mempattern/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedAllocator(t *testing.T) {
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer checked.AssertSize(t, 0)

	mem := memory.NewLimitedAllocator(checked, 1024)
	assert.EqualValues(t, 1024, mem.Limit())

	a, err := mem.Allocate(768)
	require.NoError(t, err)

	_, err = mem.Allocate(512)
	assert.ErrorIs(t, err, memory.ErrOutOfMemory)
	assert.Equal(t, 768, checked.CurrentAlloc())

	b, err := mem.Allocate(256)
	require.NoError(t, err)

	mem.Free(a)
	c, err := mem.Allocate(512)
	require.NoError(t, err)

	mem.Free(b)
	mem.Free(c)
}

func TestLimitedAllocatorZeroLimit(t *testing.T) {
	mem := memory.NewLimitedAllocator(memory.NewGoAllocator(), 0)

	buf, err := mem.Allocate(0)
	assert.NoError(t, err)
	assert.Nil(t, buf)

	_, err = mem.Allocate(1)
	assert.ErrorIs(t, err, memory.ErrOutOfMemory)
}
