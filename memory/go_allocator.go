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
	"math"
)

// GoAllocator serves 64-byte aligned arenas from the Go heap. Free is a
// no-op; the garbage collector reclaims released arenas.
type GoAllocator struct{}

func NewGoAllocator() *GoAllocator { return &GoAllocator{} }

// Allocate returns ErrOutOfMemory for sizes the Go heap cannot represent.
func (a *GoAllocator) Allocate(size int) (out []byte, err error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrOutOfMemory, size)
	}
	if size == 0 {
		return nil, nil
	}
	if size > math.MaxInt-alignment {
		return nil, fmt.Errorf("%w: size %d too large", ErrOutOfMemory, size)
	}

	// makeslice panics when the length exceeds the runtime's maximum allocation
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: allocating %d bytes: %v", ErrOutOfMemory, size, r)
		}
	}()

	buf := make([]byte, size+alignment) // padding for 64-byte alignment
	addr := int(addressOf(buf))
	next := roundUpToMultipleOf64(addr)
	if addr != next {
		shift := next - addr
		return buf[shift : size+shift : size+shift], nil
	}
	return buf[:size:size], nil
}

func (a *GoAllocator) Free(b []byte) {}
