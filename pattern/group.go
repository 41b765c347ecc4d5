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

package pattern

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/lyd911/mempattern"
)

// Group maps memory locations to their patterns. Locations are kept in the
// order they were first traced. A Group is immutable once built.
type Group struct {
	locations []mempattern.Location
	patterns  map[mempattern.Location]*Pattern
}

// NewGroup collects patterns into a Group, preserving their order. Two
// patterns for the same location are rejected with
// mempattern.ErrDuplicateLocation.
func NewGroup(patterns ...*Pattern) (*Group, error) {
	g := &Group{
		locations: make([]mempattern.Location, 0, len(patterns)),
		patterns:  make(map[mempattern.Location]*Pattern, len(patterns)),
	}
	for _, p := range patterns {
		if _, dup := g.patterns[p.location]; dup {
			return nil, fmt.Errorf("%w: %s", mempattern.ErrDuplicateLocation, p.location)
		}
		g.locations = append(g.locations, p.location)
		g.patterns[p.location] = p
	}
	return g, nil
}

// Locations returns the locations of the group in first-traced order.
func (g *Group) Locations() []mempattern.Location {
	out := make([]mempattern.Location, len(g.locations))
	copy(out, g.locations)
	return out
}

// Len returns the number of locations.
func (g *Group) Len() int { return len(g.locations) }

// GetPattern returns the pattern for loc. It reports false when nothing was
// traced at loc, which means no buffer is needed there.
func (g *Group) GetPattern(loc mempattern.Location) (*Pattern, bool) {
	p, ok := g.patterns[loc]
	return p, ok
}

// TotalPeakSize sums the peak sizes of all locations.
func (g *Group) TotalPeakSize() int {
	var total int
	for _, p := range g.patterns {
		total += p.peak
	}
	return total
}

type jsonBlock struct {
	Value  int `json:"value"`
	Offset int `json:"offset"`
	Size   int `json:"size"`
}

type jsonPattern struct {
	Location     string      `json:"location"`
	PeakSize     int         `json:"peak_size"`
	MaxLiveBytes int         `json:"max_live_bytes"`
	Fingerprint  string      `json:"fingerprint"`
	Blocks       []jsonBlock `json:"blocks"`
}

func (g *Group) MarshalJSON() ([]byte, error) {
	out := make([]jsonPattern, 0, len(g.locations))
	for _, loc := range g.locations {
		p := g.patterns[loc]
		jp := jsonPattern{
			Location:     loc.String(),
			PeakSize:     p.peak,
			MaxLiveBytes: p.maxLive,
			Fingerprint:  fmt.Sprintf("%016x", p.Fingerprint()),
			Blocks:       make([]jsonBlock, 0, len(p.blocks)),
		}
		for _, id := range p.ValueIDs() {
			b := p.blocks[id]
			jp.Blocks = append(jp.Blocks, jsonBlock{Value: id, Offset: b.Offset, Size: b.Size})
		}
		out = append(out, jp)
	}
	return json.Marshal(struct {
		Patterns []jsonPattern `json:"patterns"`
	}{out})
}
