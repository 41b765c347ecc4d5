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

import (
	"fmt"
	"math"

	"github.com/JohnCGriffin/overflow"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/lyd911/mempattern/memory"
)

// DefaultAlignment is the boundary every traced value's byte size is
// rounded up to before it is handed to the planner.
const DefaultAlignment = 256

// Descriptor describes the shape and element type of a value. Any arrow
// tensor.Interface satisfies it.
type Descriptor interface {
	Shape() []int64
	DataType() arrow.DataType
}

// bitWidther is the part of arrow.FixedWidthDataType sizing relies on.
type bitWidther interface {
	BitWidth() int
}

type descriptor struct {
	dtype arrow.DataType
	shape []int64
}

func (d descriptor) Shape() []int64           { return d.shape }
func (d descriptor) DataType() arrow.DataType { return d.dtype }

func (d descriptor) String() string {
	return fmt.Sprintf("%s%v", d.dtype, d.shape)
}

// NewDescriptor returns a Descriptor for a dense value of the given type and
// shape. An empty shape denotes a scalar.
func NewDescriptor(dt arrow.DataType, shape ...int64) Descriptor {
	return descriptor{dtype: dt, shape: shape}
}

// NumElements returns the product of the dimensions of shape.
func NumElements(shape []int64) (int64, error) {
	n := int64(1)
	for i, dim := range shape {
		if dim < 0 {
			return 0, fmt.Errorf("%w: negative dimension %d at axis %d", ErrInvalid, dim, i)
		}
		var ok bool
		if n, ok = overflow.Mul64(n, dim); !ok {
			return 0, fmt.Errorf("%w: element count of shape %v overflows", ErrInvalid, shape)
		}
	}
	return n, nil
}

// SizeInBytes computes the storage a dense value needs, rounded up to
// alignment. An alignment of 0 disables rounding; any other value must be a
// power of two. Values with no elements need no storage and report 0.
func SizeInBytes(desc Descriptor, alignment int) (int, error) {
	if alignment < 0 || (alignment > 0 && !memory.IsPowerOf2(alignment)) {
		return 0, fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalid, alignment)
	}

	if desc == nil {
		return 0, fmt.Errorf("%w: nil descriptor", ErrInvalid)
	}
	dt := desc.DataType()
	if dt == nil {
		return 0, fmt.Errorf("%w: descriptor has no data type", ErrInvalid)
	}
	fw, ok := dt.(bitWidther)
	if !ok {
		return 0, fmt.Errorf("%w: size of non fixed-width type %s", arrow.ErrNotImplemented, dt)
	}

	n, err := NumElements(desc.Shape())
	if err != nil {
		return 0, err
	}

	bits, ok := overflow.Mul64(n, int64(fw.BitWidth()))
	if !ok {
		return 0, fmt.Errorf("%w: size of %s%v overflows", ErrInvalid, dt, desc.Shape())
	}
	nbytes := bits/8 + min(bits%8, 1)

	if alignment > 0 && nbytes > 0 {
		if _, ok := overflow.Add64(nbytes, int64(alignment-1)); !ok {
			return 0, fmt.Errorf("%w: size of %s%v overflows", ErrInvalid, dt, desc.Shape())
		}
		nbytes = memory.RoundUpToPowerOf2(nbytes, int64(alignment))
	}
	if nbytes > math.MaxInt {
		return 0, fmt.Errorf("%w: size of %s%v overflows", ErrInvalid, dt, desc.Shape())
	}
	return int(nbytes), nil
}

// AlignSize rounds a raw byte count up to alignment, with the same rules as
// SizeInBytes.
func AlignSize(n, alignment int) (int, error) {
	if alignment < 0 || (alignment > 0 && !memory.IsPowerOf2(alignment)) {
		return 0, fmt.Errorf("%w: alignment %d is not a power of two", ErrInvalid, alignment)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrInvalid, n)
	}
	if alignment == 0 || n == 0 {
		return n, nil
	}
	if _, ok := overflow.Add(n, alignment-1); !ok {
		return 0, fmt.Errorf("%w: size %d overflows when aligned to %d", ErrInvalid, n, alignment)
	}
	return memory.RoundUpToPowerOf2(n, alignment), nil
}
