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

import "errors"

var (
	// ErrInvalidState is returned when a method is called in the wrong
	// lifecycle phase, e.g. tracing after the plan has been finalized.
	ErrInvalidState = errors.New("mempattern: invalid state")
	// ErrAllocatorUnavailable is returned when a location that needs an
	// arena has no usable backing allocator.
	ErrAllocatorUnavailable = errors.New("mempattern: allocator unavailable")
	ErrDuplicateLocation    = errors.New("mempattern: duplicate location")
	ErrPatternNotFound      = errors.New("mempattern: pattern not found")
	// ErrBufferNotFound signals that the caller must allocate a private
	// buffer for the value instead of using the pool.
	ErrBufferNotFound = errors.New("mempattern: buffer not found")
	ErrDuplicateValue = errors.New("mempattern: value traced twice")
	ErrUnknownValue   = errors.New("mempattern: unknown value")
	ErrInvalid        = errors.New("mempattern: invalid argument")
)
