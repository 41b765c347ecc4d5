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

import "github.com/lyd911/mempattern"

// Region is a value's storage inside a location's arena. Bytes aliases the
// arena and is capped at the block size, so appends never spill into a
// neighbouring value. A zero-size value gets a Region with no bytes.
type Region struct {
	Location mempattern.Location
	Offset   int
	Bytes    []byte
}

// Len returns the size of the region in bytes.
func (r Region) Len() int { return len(r.Bytes) }

// IsNull reports whether the region has no backing storage.
func (r Region) IsNull() bool { return r.Bytes == nil }
