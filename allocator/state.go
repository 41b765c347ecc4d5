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

import "strconv"

// State is the lifecycle phase of an Allocator. Transitions only move
// forward: Unsealed, Finalizing, then Sealed or Failed, and finally
// Released.
type State int32

const (
	// Unsealed accepts trace calls.
	Unsealed State = iota
	// Finalizing is the transient phase in which patterns are generated and
	// arenas allocated.
	Finalizing
	// Sealed serves lookups only.
	Sealed
	// Failed is entered when finalizing fails. Nothing is allocated.
	Failed
	// Released is entered once the arenas have been returned.
	Released
)

var stateNames = [...]string{"unsealed", "finalizing", "sealed", "failed", "released"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}
