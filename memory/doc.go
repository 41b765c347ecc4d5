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

/*
Package memory provides the backing allocators the planning core draws its
arenas from.

An Allocator hands out whole arenas and takes them back. Allocations may fail;
a failure is reported as an error wrapping ErrOutOfMemory rather than a panic,
so callers can roll back partially completed work.

CheckedAllocator wraps another allocator and records every live allocation,
which makes it the tool of choice for asserting that no arena leaks:

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
*/
package memory
