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

// Package planner turns a stream of trace events into memory patterns.
//
// Values are traced in execution order. Each allocation is packed into its
// location's arena at an offset that does not collide with any value still
// live at that location; freeing a value lets later values reuse its range.
// Values that are never freed stay live until the end of the trace.
package planner

import (
	"fmt"

	"github.com/lyd911/mempattern"
	"github.com/lyd911/mempattern/internal/debug"
	"github.com/lyd911/mempattern/pattern"
)

type valueState struct {
	loc  mempattern.Location
	live bool
}

// Planner records trace events and packs them into a pattern.Group.
//
// Tracing is order dependent, so a Planner must not be used from multiple
// goroutines at once. A Planner generates patterns exactly once; start a new
// Planner for every planning cycle.
type Planner struct {
	plan     mempattern.ExecutionPlan
	strategy Strategy

	locations []mempattern.Location
	arenas    map[mempattern.Location]*arena
	values    map[int]valueState
	done      bool
}

// New returns a Planner that places values at the locations chosen by plan.
func New(plan mempattern.ExecutionPlan, opts ...Option) *Planner {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Planner{
		plan:     plan,
		strategy: cfg.strategy,
		arenas:   make(map[mempattern.Location]*arena),
		values:   make(map[int]valueState),
	}
}

// Strategy returns the packing strategy in use.
func (p *Planner) Strategy() Strategy { return p.strategy }

// NumValues returns the number of values traced so far.
func (p *Planner) NumValues() int { return len(p.values) }

// TraceAllocation records that valueID needs size bytes at the location the
// execution plan assigns to it. The value stays live until TraceFree.
func (p *Planner) TraceAllocation(valueID, size int) error {
	if p.done {
		return fmt.Errorf("%w: trace of value %d after patterns were generated", mempattern.ErrInvalidState, valueID)
	}
	if size < 0 {
		return fmt.Errorf("%w: negative size %d for value %d", mempattern.ErrInvalid, size, valueID)
	}
	if _, dup := p.values[valueID]; dup {
		return fmt.Errorf("%w: %d", mempattern.ErrDuplicateValue, valueID)
	}

	loc, ok := p.plan.GetLocation(valueID)
	if !ok {
		return fmt.Errorf("%w: no location for value %d", mempattern.ErrUnknownValue, valueID)
	}

	a, ok := p.arenas[loc]
	if !ok {
		a = newArena(loc)
		p.arenas[loc] = a
		p.locations = append(p.locations, loc)
	}
	if err := a.alloc(valueID, size, p.strategy); err != nil {
		return err
	}

	p.values[valueID] = valueState{loc: loc, live: true}
	debug.Log("trace allocation", "value", valueID, "size", size, "location", loc)
	return nil
}

// TraceFree ends the lifetime of a traced value. Its range may be reused by
// values traced afterwards at the same location.
func (p *Planner) TraceFree(valueID int) error {
	if p.done {
		return fmt.Errorf("%w: free of value %d after patterns were generated", mempattern.ErrInvalidState, valueID)
	}

	st, ok := p.values[valueID]
	if !ok {
		return fmt.Errorf("%w: free of untraced value %d", mempattern.ErrUnknownValue, valueID)
	}
	if !st.live {
		return fmt.Errorf("%w: value %d freed twice", mempattern.ErrUnknownValue, valueID)
	}

	p.arenas[st.loc].free(valueID)
	st.live = false
	p.values[valueID] = st
	debug.Log("trace free", "value", valueID, "location", st.loc)
	return nil
}

// GeneratePatterns freezes the traced layout into a pattern.Group. It may
// only be called once.
func (p *Planner) GeneratePatterns() (*pattern.Group, error) {
	if p.done {
		return nil, fmt.Errorf("%w: patterns already generated", mempattern.ErrInvalidState)
	}
	p.done = true

	patterns := make([]*pattern.Pattern, 0, len(p.locations))
	for _, loc := range p.locations {
		patterns = append(patterns, p.arenas[loc].pattern())
	}
	p.arenas = nil
	return pattern.NewGroup(patterns...)
}
