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
Package mempattern plans and serves pooled memory for tensor values.

Instead of allocating storage for every intermediate value at run time, an
execution engine traces the values it will produce, in execution order, and
lets the planner pack them into one arena per memory location. Each arena is
then allocated once and every traced value is served as a slice of it.

The work is split across three packages:

	planner    records trace events and packs them into patterns
	pattern    the immutable per-location layouts produced by the planner
	allocator  allocates one arena per location and answers lookups

This package holds the pieces shared by all of them: memory locations, the
execution plan capability that maps a value to its location, value
descriptors and the error taxonomy.
*/
package mempattern
