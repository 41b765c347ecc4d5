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
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/tensor"
	"github.com/lyd911/mempattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeInBytes(t *testing.T) {
	tests := []struct {
		name      string
		desc      mempattern.Descriptor
		alignment int
		exp       int
	}{
		{"float32 unaligned", mempattern.NewDescriptor(arrow.PrimitiveTypes.Float32, 2, 3), 0, 24},
		{"float32 aligned", mempattern.NewDescriptor(arrow.PrimitiveTypes.Float32, 2, 3), 256, 256},
		{"exact multiple", mempattern.NewDescriptor(arrow.PrimitiveTypes.Int64, 64), 256, 512},
		{"just over", mempattern.NewDescriptor(arrow.PrimitiveTypes.Uint8, 257), 256, 512},
		{"scalar", mempattern.NewDescriptor(arrow.PrimitiveTypes.Float64), 0, 8},
		{"empty dim", mempattern.NewDescriptor(arrow.PrimitiveTypes.Float64, 4, 0, 3), 256, 0},
		{"bool bit packed", mempattern.NewDescriptor(arrow.FixedWidthTypes.Boolean, 10), 0, 2},
		{"float16", mempattern.NewDescriptor(arrow.FixedWidthTypes.Float16, 3), 0, 6},
		{"fixed size binary", mempattern.NewDescriptor(&arrow.FixedSizeBinaryType{ByteWidth: 5}, 3), 8, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := mempattern.SizeInBytes(tt.desc, tt.alignment)
			require.NoError(t, err)
			assert.Equal(t, tt.exp, n)
		})
	}
}

func TestSizeInBytesErrors(t *testing.T) {
	_, err := mempattern.SizeInBytes(mempattern.NewDescriptor(arrow.BinaryTypes.String, 4), 256)
	assert.ErrorIs(t, err, arrow.ErrNotImplemented)

	_, err = mempattern.SizeInBytes(mempattern.NewDescriptor(arrow.PrimitiveTypes.Int32, 2, -1), 256)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)

	_, err = mempattern.SizeInBytes(mempattern.NewDescriptor(arrow.PrimitiveTypes.Int32, 4), 100)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)

	_, err = mempattern.SizeInBytes(mempattern.NewDescriptor(nil, 4), 256)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)

	_, err = mempattern.SizeInBytes(nil, 256)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)

	_, err = mempattern.SizeInBytes(mempattern.NewDescriptor(arrow.PrimitiveTypes.Int64, math.MaxInt64/2, 4), 0)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)

	_, err = mempattern.SizeInBytes(mempattern.NewDescriptor(arrow.PrimitiveTypes.Int8, math.MaxInt64), 256)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)
}

func TestSizeInBytesTensor(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bld := array.NewFloat64Builder(mem)
	defer bld.Release()
	bld.AppendValues([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)

	arr := bld.NewFloat64Array()
	defer arr.Release()

	f64 := tensor.New(arr.Data(), []int64{2, 5}, nil, nil)
	defer f64.Release()

	n, err := mempattern.SizeInBytes(f64, 0)
	require.NoError(t, err)
	assert.Equal(t, 80, n)

	n, err = mempattern.SizeInBytes(f64, mempattern.DefaultAlignment)
	require.NoError(t, err)
	assert.Equal(t, 256, n)
}

func TestAlignSize(t *testing.T) {
	n, err := mempattern.AlignSize(300, 256)
	require.NoError(t, err)
	assert.Equal(t, 512, n)

	n, err = mempattern.AlignSize(0, 256)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = mempattern.AlignSize(7, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = mempattern.AlignSize(-1, 256)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)

	_, err = mempattern.AlignSize(math.MaxInt, 256)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)

	_, err = mempattern.AlignSize(10, 12)
	assert.ErrorIs(t, err, mempattern.ErrInvalid)
}
