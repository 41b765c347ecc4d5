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

// Package tracefile reads recorded trace events from JSON.
//
// A trace file lists events in execution order:
//
//	{"events": [
//	  {"op": "alloc", "value": 1, "location": "Cpu:cpu", "bytes": 300},
//	  {"op": "alloc", "value": 2, "location": "Cuda:gpu:0", "type": "float32", "shape": [2, 3]},
//	  {"op": "free", "value": 1}
//	]}
//
// An allocation is sized either by a raw byte count or by an element type and
// shape.
package tracefile

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/goccy/go-json"
	"github.com/lyd911/mempattern"
)

const (
	OpAlloc = "alloc"
	OpFree  = "free"
)

var types = map[string]arrow.DataType{
	"bool":    arrow.FixedWidthTypes.Boolean,
	"int8":    arrow.PrimitiveTypes.Int8,
	"int16":   arrow.PrimitiveTypes.Int16,
	"int32":   arrow.PrimitiveTypes.Int32,
	"int64":   arrow.PrimitiveTypes.Int64,
	"uint8":   arrow.PrimitiveTypes.Uint8,
	"uint16":  arrow.PrimitiveTypes.Uint16,
	"uint32":  arrow.PrimitiveTypes.Uint32,
	"uint64":  arrow.PrimitiveTypes.Uint64,
	"float16": arrow.FixedWidthTypes.Float16,
	"float32": arrow.PrimitiveTypes.Float32,
	"float64": arrow.PrimitiveTypes.Float64,
	"date32":  arrow.PrimitiveTypes.Date32,
	"date64":  arrow.PrimitiveTypes.Date64,
}

// Event is one recorded trace event.
type Event struct {
	Op       string  `json:"op"`
	Value    int     `json:"value"`
	Location string  `json:"location,omitempty"`
	Bytes    *int    `json:"bytes,omitempty"`
	Type     string  `json:"type,omitempty"`
	Shape    []int64 `json:"shape,omitempty"`

	loc mempattern.Location
}

// Size returns the number of bytes an allocation event needs, rounded up
// to alignment.
func (e *Event) Size(alignment int) (int, error) {
	if e.Bytes != nil {
		return mempattern.AlignSize(*e.Bytes, alignment)
	}
	return mempattern.SizeInBytes(mempattern.NewDescriptor(types[e.Type], e.Shape...), alignment)
}

// Trace is a decoded trace file.
type Trace struct {
	Events []Event `json:"events"`
}

// Decode reads and validates a trace.
func Decode(r io.Reader) (*Trace, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var t Trace
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("tracefile: %w", err)
	}

	for i := range t.Events {
		if err := t.Events[i].validate(); err != nil {
			return nil, fmt.Errorf("tracefile: event %d: %w", i, err)
		}
	}
	return &t, nil
}

func (e *Event) validate() error {
	switch e.Op {
	case OpFree:
		return nil
	case OpAlloc:
	default:
		return fmt.Errorf("%w: unknown op %q", mempattern.ErrInvalid, e.Op)
	}

	loc, err := mempattern.ParseLocation(e.Location)
	if err != nil {
		return err
	}
	e.loc = loc

	switch {
	case e.Bytes != nil && e.Type != "":
		return fmt.Errorf("%w: value %d has both bytes and type", mempattern.ErrInvalid, e.Value)
	case e.Bytes != nil:
		return nil
	case e.Type == "":
		return fmt.Errorf("%w: value %d has neither bytes nor type", mempattern.ErrInvalid, e.Value)
	}
	if _, ok := types[e.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q for value %d", mempattern.ErrInvalid, e.Type, e.Value)
	}
	return nil
}

// Plan returns the execution plan recorded by the trace's allocation
// events.
func (t *Trace) Plan() mempattern.StaticPlan {
	plan := make(mempattern.StaticPlan)
	for _, e := range t.Events {
		if e.Op == OpAlloc {
			plan[e.Value] = e.loc
		}
	}
	return plan
}

// Tracer receives replayed events. planner.Planner satisfies it.
type Tracer interface {
	TraceAllocation(valueID, size int) error
	TraceFree(valueID int) error
}

// Replay feeds the trace to tr in order, sizing allocations with alignment.
func (t *Trace) Replay(tr Tracer, alignment int) error {
	for i := range t.Events {
		e := &t.Events[i]
		var err error
		switch e.Op {
		case OpAlloc:
			var size int
			if size, err = e.Size(alignment); err == nil {
				err = tr.TraceAllocation(e.Value, size)
			}
		case OpFree:
			err = tr.TraceFree(e.Value)
		}
		if err != nil {
			return fmt.Errorf("tracefile: event %d (%s %d): %w", i, e.Op, e.Value, err)
		}
	}
	return nil
}
