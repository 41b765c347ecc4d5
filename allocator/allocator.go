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

// Package allocator serves tensor values out of pre-planned arenas.
//
// An Allocator is used once per execution plan. While unsealed, the engine
// traces every value it wants pooled. Finalize then runs the planner and
// allocates exactly one arena per memory location, sized to that location's
// peak. From then on the Allocator is sealed and immutable, and GetBuffer may
// be called from any number of goroutines without locking.
package allocator

import (
	"fmt"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/lyd911/mempattern"
	"github.com/lyd911/mempattern/memory"
	"github.com/lyd911/mempattern/pattern"
	"github.com/lyd911/mempattern/planner"
)

type arenaBuffer struct {
	mem  memory.Allocator
	buf  []byte // as returned by mem, handed back on release
	data []byte // buf capped at the location's peak size
}

// Allocator owns the arenas of one execution plan.
type Allocator struct {
	id        string
	alignment int
	plan      mempattern.ExecutionPlan
	providers Providers
	planner   *planner.Planner
	logger    log.Logger
	metrics   *Metrics

	state atomic.Int32

	// written once by Finalize before the state becomes Sealed
	patterns *pattern.Group
	arenas   map[mempattern.Location]arenaBuffer
}

// New returns an unsealed Allocator that places values at the locations
// chosen by plan and draws arenas from providers.
func New(plan mempattern.ExecutionPlan, providers Providers, opts ...Option) (*Allocator, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if !memory.IsPowerOf2(cfg.alignment) {
		return nil, fmt.Errorf("%w: alignment %d is not a power of two", mempattern.ErrInvalid, cfg.alignment)
	}
	if plan == nil || providers == nil {
		return nil, fmt.Errorf("%w: allocator needs an execution plan and allocator providers", mempattern.ErrInvalid)
	}

	id := uuid.NewString()
	return &Allocator{
		id:        id,
		alignment: cfg.alignment,
		plan:      plan,
		providers: providers,
		planner:   planner.New(plan, planner.WithStrategy(cfg.strategy)),
		logger:    log.With(cfg.logger, "plan", id),
		metrics:   cfg.metrics,
	}, nil
}

// ID identifies this planning cycle in logs.
func (a *Allocator) ID() string { return a.id }

// State returns the current lifecycle phase.
func (a *Allocator) State() State { return State(a.state.Load()) }

// Alignment returns the boundary traced sizes are rounded up to.
func (a *Allocator) Alignment() int { return a.alignment }

// Patterns returns the generated patterns, or nil until the allocator is
// sealed.
func (a *Allocator) Patterns() *pattern.Group {
	if s := a.State(); s != Sealed && s != Released {
		return nil
	}
	return a.patterns
}

func (a *Allocator) checkState(want State, op string) error {
	if s := a.State(); s != want {
		return fmt.Errorf("%w: %s on %s allocator", mempattern.ErrInvalidState, op, s)
	}
	return nil
}

// Trace records a value to be pooled. Its size is derived from desc and
// rounded up to the allocator's alignment.
func (a *Allocator) Trace(valueID int, desc mempattern.Descriptor) error {
	if err := a.checkState(Unsealed, "trace"); err != nil {
		return err
	}
	size, err := mempattern.SizeInBytes(desc, a.alignment)
	if err != nil {
		return fmt.Errorf("sizing value %d: %w", valueID, err)
	}
	return a.trace(valueID, size)
}

// TraceBytes records a value of n raw bytes, rounded up to the allocator's
// alignment.
func (a *Allocator) TraceBytes(valueID, n int) error {
	if err := a.checkState(Unsealed, "trace"); err != nil {
		return err
	}
	size, err := mempattern.AlignSize(n, a.alignment)
	if err != nil {
		return fmt.Errorf("sizing value %d: %w", valueID, err)
	}
	return a.trace(valueID, size)
}

func (a *Allocator) trace(valueID, size int) error {
	if err := a.planner.TraceAllocation(valueID, size); err != nil {
		return err
	}
	level.Debug(a.logger).Log("msg", "traced value", "value", valueID, "bytes", size)
	return nil
}

// TraceFree ends a traced value's lifetime so later values at the same
// location may reuse its range.
func (a *Allocator) TraceFree(valueID int) error {
	if err := a.checkState(Unsealed, "trace free"); err != nil {
		return err
	}
	return a.planner.TraceFree(valueID)
}

// Finalize generates the memory patterns and allocates one arena for every
// location with a non-zero peak. It may be called once. On failure every
// arena allocated by the call is released and the allocator is left Failed.
func (a *Allocator) Finalize() error {
	if !a.state.CompareAndSwap(int32(Unsealed), int32(Finalizing)) {
		return fmt.Errorf("%w: finalize on %s allocator", mempattern.ErrInvalidState, a.State())
	}

	group, err := a.planner.GeneratePatterns()
	if err != nil {
		a.state.Store(int32(Failed))
		return err
	}

	arenas, err := a.allocateArenas(group)
	if err != nil {
		a.state.Store(int32(Failed))
		level.Error(a.logger).Log("msg", "failed to allocate planned arenas", "err", err)
		return err
	}

	a.patterns = group
	a.arenas = arenas
	a.state.Store(int32(Sealed))
	for _, loc := range group.Locations() {
		p, _ := group.GetPattern(loc)
		a.metrics.observePlanned(loc, p.PeakSize())
	}

	level.Info(a.logger).Log("msg", "memory patterns finalized",
		"locations", group.Len(), "arenas", len(arenas), "bytes", group.TotalPeakSize())
	return nil
}

func (a *Allocator) allocateArenas(group *pattern.Group) (map[mempattern.Location]arenaBuffer, error) {
	arenas := make(map[mempattern.Location]arenaBuffer, group.Len())
	rollback := func() {
		for _, ab := range arenas {
			ab.mem.Free(ab.buf)
		}
	}

	for _, loc := range group.Locations() {
		p, _ := group.GetPattern(loc)
		peak := p.PeakSize()
		if peak == 0 {
			continue
		}

		mem, ok := a.providers.Allocator(loc)
		if !ok {
			rollback()
			return nil, fmt.Errorf("%w: no allocator for location %s", mempattern.ErrAllocatorUnavailable, loc)
		}
		if _, dup := arenas[loc]; dup {
			rollback()
			return nil, fmt.Errorf("%w: %s", mempattern.ErrDuplicateLocation, loc)
		}

		buf, err := allocateArena(mem, peak)
		if err == nil && len(buf) < peak {
			mem.Free(buf)
			err = fmt.Errorf("%w: got %d of %d bytes", memory.ErrOutOfMemory, len(buf), peak)
		}
		a.metrics.observeArena(loc, err)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("%w: allocating %d bytes for %s: %w", mempattern.ErrAllocatorUnavailable, peak, loc, err)
		}

		arenas[loc] = arenaBuffer{mem: mem, buf: buf, data: buf[:peak:peak]}
		level.Debug(a.logger).Log("msg", "allocated arena", "location", loc, "bytes", peak)
	}
	return arenas, nil
}

// allocateArena calls mem.Allocate, reporting a panicking backend as
// memory.ErrOutOfMemory.
func allocateArena(mem memory.Allocator, size int) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: backend panicked: %v", memory.ErrOutOfMemory, r)
		}
	}()
	return mem.Allocate(size)
}

// GetBuffer returns the pooled storage of valueID at loc. It is only valid
// on a sealed allocator and is safe for concurrent use.
//
// Lookups resolve in order:
//   - nothing was traced at loc: ErrPatternNotFound
//   - loc has no arena and the value is zero-sized: an empty Region
//   - loc has no arena otherwise: ErrBufferNotFound
//   - the value was not traced at loc: ErrBufferNotFound, the caller should
//     allocate the value privately
//   - otherwise the value's slice of the arena
func (a *Allocator) GetBuffer(valueID int, loc mempattern.Location) (Region, error) {
	if err := a.checkState(Sealed, "buffer lookup"); err != nil {
		return Region{}, err
	}

	p, ok := a.patterns.GetPattern(loc)
	if !ok {
		a.metrics.observeLookup(lookupPatternNotFound)
		return Region{}, fmt.Errorf("%w: value %d at %s", mempattern.ErrPatternNotFound, valueID, loc)
	}

	blk, traced := p.GetBlock(valueID)
	ab, allocated := a.arenas[loc]
	if !allocated {
		if traced && blk.Size == 0 {
			a.metrics.observeLookup(lookupZeroSize)
			return Region{Location: loc}, nil
		}
		a.metrics.observeLookup(lookupBufferNotFound)
		return Region{}, fmt.Errorf("%w: no arena at %s for value %d", mempattern.ErrBufferNotFound, loc, valueID)
	}

	if !traced {
		a.metrics.observeLookup(lookupBufferNotFound)
		return Region{}, fmt.Errorf("%w: value %d was not traced at %s", mempattern.ErrBufferNotFound, valueID, loc)
	}

	if blk.Size == 0 {
		a.metrics.observeLookup(lookupZeroSize)
	} else {
		a.metrics.observeLookup(lookupHit)
	}
	return Region{
		Location: loc,
		Offset:   blk.Offset,
		Bytes:    ab.data[blk.Offset:blk.End():blk.End()],
	}, nil
}

// Lookup resolves valueID's location through the execution plan and
// returns its pooled storage.
func (a *Allocator) Lookup(valueID int) (Region, error) {
	loc, ok := a.plan.GetLocation(valueID)
	if !ok {
		return Region{}, fmt.Errorf("%w: no location for value %d", mempattern.ErrUnknownValue, valueID)
	}
	return a.GetBuffer(valueID, loc)
}

// Release returns every arena to its backing allocator. Regions handed out
// earlier must not be used afterwards; lookups racing with Release may still
// return such regions, and fail with ErrInvalidState once it has begun.
// Release may be called more than once and is a no-op while Finalize is
// running.
func (a *Allocator) Release() {
	var prev State
	for {
		prev = a.State()
		if prev == Finalizing || prev == Released {
			return
		}
		if a.state.CompareAndSwap(int32(prev), int32(Released)) {
			break
		}
	}
	if prev != Sealed {
		return
	}
	for loc, ab := range a.arenas {
		ab.mem.Free(ab.buf)
		level.Debug(a.logger).Log("msg", "released arena", "location", loc, "bytes", len(ab.data))
	}
}
