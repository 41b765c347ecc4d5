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

package mempattern_test

import (
	"testing"

	"github.com/lyd911/mempattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationString(t *testing.T) {
	loc := mempattern.Location{Name: "Cuda", Device: mempattern.GPU, DeviceID: 1, Kind: mempattern.MemDefault}
	assert.Equal(t, "Cuda:gpu:1:default", loc.String())
	assert.Equal(t, "Cpu:cpu:0:default", mempattern.CPULocation.String())
	assert.Equal(t, "device(9)", mempattern.DeviceType(9).String())
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in  string
		exp mempattern.Location
	}{
		{"Cpu:cpu", mempattern.CPULocation},
		{"Cuda:gpu:1", mempattern.Location{Name: "Cuda", Device: mempattern.GPU, DeviceID: 1}},
		{"CudaPinned:CPU:0:cpu_output", mempattern.Location{Name: "CudaPinned", Device: mempattern.CPU, Kind: mempattern.MemCPUOutput}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, err := mempattern.ParseLocation(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.exp, loc)

			again, err := mempattern.ParseLocation(loc.String())
			require.NoError(t, err)
			assert.Equal(t, loc, again)
		})
	}
}

func TestParseLocationErrors(t *testing.T) {
	for _, in := range []string{"", "cpu", ":cpu", "Cpu:tpu", "Cpu:cpu:-1", "Cpu:cpu:x", "Cpu:cpu:0:shared", "a:cpu:0:default:x"} {
		t.Run(in, func(t *testing.T) {
			_, err := mempattern.ParseLocation(in)
			assert.ErrorIs(t, err, mempattern.ErrInvalid)
		})
	}
}

func TestLocationCompare(t *testing.T) {
	a := mempattern.Location{Name: "Cpu", Device: mempattern.CPU}
	b := mempattern.Location{Name: "Cpu", Device: mempattern.CPU, DeviceID: 1}
	c := mempattern.Location{Name: "Cuda", Device: mempattern.GPU}
	d := mempattern.Location{Name: "Cpu", Device: mempattern.CPU, Kind: mempattern.MemCPUInput}

	assert.Zero(t, a.Compare(a))
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Negative(t, b.Compare(c))
	assert.Negative(t, a.Compare(d))
}

func TestStaticPlan(t *testing.T) {
	plan := mempattern.StaticPlan{1: mempattern.CPULocation}

	loc, ok := plan.GetLocation(1)
	assert.True(t, ok)
	assert.Equal(t, mempattern.CPULocation, loc)

	_, ok = plan.GetLocation(2)
	assert.False(t, ok)

	loc, ok = mempattern.SingleLocation(mempattern.CPULocation).GetLocation(42)
	assert.True(t, ok)
	assert.Equal(t, mempattern.CPULocation, loc)
}
