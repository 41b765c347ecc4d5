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

package mempattern

// ExecutionPlan is the capability the planning core needs from an
// execution plan: which memory location a value belongs to. The plan
// decides placement; the core only packs values within each location.
type ExecutionPlan interface {
	GetLocation(valueID int) (Location, bool)
}

// PlanFunc adapts a function to the ExecutionPlan interface.
type PlanFunc func(valueID int) (Location, bool)

func (f PlanFunc) GetLocation(valueID int) (Location, bool) { return f(valueID) }

// StaticPlan is an ExecutionPlan backed by a fixed value to location map.
type StaticPlan map[int]Location

func (p StaticPlan) GetLocation(valueID int) (Location, bool) {
	loc, ok := p[valueID]
	return loc, ok
}

// SingleLocation places every value at loc.
func SingleLocation(loc Location) ExecutionPlan {
	return PlanFunc(func(int) (Location, bool) { return loc, true })
}

var (
	_ ExecutionPlan = PlanFunc(nil)
	_ ExecutionPlan = StaticPlan(nil)
)
