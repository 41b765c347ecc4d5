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

package allocator

import (
	"sync"

	"github.com/lyd911/mempattern"
	"github.com/lyd911/mempattern/memory"
)

// Providers supplies the backing allocator for each memory location.
type Providers interface {
	Allocator(loc mempattern.Location) (memory.Allocator, bool)
}

// Registry is a Providers backed by a location to allocator map. It is safe
// for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	mems map[mempattern.Location]memory.Allocator
}

func NewRegistry() *Registry {
	return &Registry{mems: make(map[mempattern.Location]memory.Allocator)}
}

// Register sets the allocator serving loc, replacing any previous one.
func (r *Registry) Register(loc mempattern.Location, mem memory.Allocator) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mems[loc] = mem
	return r
}

func (r *Registry) Allocator(loc mempattern.Location) (memory.Allocator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mem, ok := r.mems[loc]
	return mem, ok && mem != nil
}

var _ Providers = (*Registry)(nil)
