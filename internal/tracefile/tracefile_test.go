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

package tracefile_test

import (
	"strings"
	"testing"

	"github.com/lyd911/mempattern"
	"github.com/lyd911/mempattern/internal/tracefile"
	"github.com/lyd911/mempattern/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{"events": [
	{"op": "alloc", "value": 1, "location": "Cpu:cpu", "bytes": 300},
	{"op": "alloc", "value": 2, "location": "Cpu:cpu", "type": "float32", "shape": [5, 5]},
	{"op": "alloc", "value": 3, "location": "Cuda:gpu:0", "bytes": 0},
	{"op": "free", "value": 1},
	{"op": "alloc", "value": 4, "location": "Cpu:cpu", "type": "int64", "shape": [16]}
]}`

func TestDecodeAndReplay(t *testing.T) {
	tr, err := tracefile.Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, tr.Events, 5)

	plan := tr.Plan()
	assert.Len(t, plan, 4)
	assert.Equal(t, mempattern.CPULocation, plan[1])
	assert.Equal(t, mempattern.Location{Name: "Cuda", Device: mempattern.GPU}, plan[3])

	p := planner.New(plan)
	require.NoError(t, tr.Replay(p, mempattern.DefaultAlignment))

	g, err := p.GeneratePatterns()
	require.NoError(t, err)

	cpu, ok := g.GetPattern(mempattern.CPULocation)
	require.True(t, ok)
	assert.Equal(t, 768, cpu.PeakSize())

	blk, _ := cpu.GetBlock(4)
	assert.Equal(t, 0, blk.Offset, "value 4 reuses the range freed by value 1")
	assert.Equal(t, 256, blk.Size)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", `{"events": [`},
		{"unknown field", `{"events": [{"op": "alloc", "value": 1, "location": "Cpu:cpu", "bytes": 1, "extra": 1}]}`},
		{"unknown op", `{"events": [{"op": "grow", "value": 1}]}`},
		{"bad location", `{"events": [{"op": "alloc", "value": 1, "location": "nowhere", "bytes": 1}]}`},
		{"no size", `{"events": [{"op": "alloc", "value": 1, "location": "Cpu:cpu"}]}`},
		{"both sizes", `{"events": [{"op": "alloc", "value": 1, "location": "Cpu:cpu", "bytes": 1, "type": "int8"}]}`},
		{"unknown type", `{"events": [{"op": "alloc", "value": 1, "location": "Cpu:cpu", "type": "complex64"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tracefile.Decode(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestReplayReportsEvent(t *testing.T) {
	tr, err := tracefile.Decode(strings.NewReader(`{"events": [{"op": "free", "value": 9}]}`))
	require.NoError(t, err)

	err = tr.Replay(planner.New(tr.Plan()), 256)
	assert.ErrorIs(t, err, mempattern.ErrUnknownValue)
	assert.Contains(t, err.Error(), "event 0 (free 9)")
}
