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
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// DeviceType identifies the kind of device a memory pool lives on.
type DeviceType int8

const (
	CPU DeviceType = iota
	GPU
	FPGA
	NPU
)

var deviceNames = [...]string{"cpu", "gpu", "fpga", "npu"}

func (d DeviceType) String() string {
	if int(d) < 0 || int(d) >= len(deviceNames) {
		return "device(" + strconv.Itoa(int(d)) + ")"
	}
	return deviceNames[d]
}

// MemKind distinguishes pools that share a device, such as pinned host
// memory used for device inputs.
type MemKind int8

const (
	MemDefault MemKind = iota
	MemCPUInput
	MemCPUOutput
)

var kindNames = [...]string{"default", "cpu_input", "cpu_output"}

func (k MemKind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Location is an opaque key for a distinct physical memory pool. Locations
// are compared by value and can be used as map keys.
type Location struct {
	Name     string
	Device   DeviceType
	DeviceID int
	Kind     MemKind
}

// CPULocation is the default host memory pool.
var CPULocation = Location{Name: "Cpu", Device: CPU}

// String renders the location as name:device:id:kind, the form accepted by
// ParseLocation.
func (l Location) String() string {
	return l.Name + ":" + l.Device.String() + ":" + strconv.Itoa(l.DeviceID) + ":" + l.Kind.String()
}

// Compare orders locations by name, device, device id and kind.
func (l Location) Compare(o Location) int {
	if c := strings.Compare(l.Name, o.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(l.Device, o.Device); c != 0 {
		return c
	}
	if c := cmp.Compare(l.DeviceID, o.DeviceID); c != 0 {
		return c
	}
	return cmp.Compare(l.Kind, o.Kind)
}

// ParseLocation parses name:device[:id[:kind]]. The id defaults to 0 and
// the kind to default.
func ParseLocation(s string) (Location, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" {
		return Location{}, fmt.Errorf("%w: location %q", ErrInvalid, s)
	}

	loc := Location{Name: parts[0]}
	dev, ok := lookupName(deviceNames[:], parts[1])
	if !ok {
		return Location{}, fmt.Errorf("%w: unknown device %q in location %q", ErrInvalid, parts[1], s)
	}
	loc.Device = DeviceType(dev)

	if len(parts) > 2 {
		id, err := strconv.Atoi(parts[2])
		if err != nil || id < 0 {
			return Location{}, fmt.Errorf("%w: device id %q in location %q", ErrInvalid, parts[2], s)
		}
		loc.DeviceID = id
	}
	if len(parts) > 3 {
		kind, ok := lookupName(kindNames[:], parts[3])
		if !ok {
			return Location{}, fmt.Errorf("%w: unknown memory kind %q in location %q", ErrInvalid, parts[3], s)
		}
		loc.Kind = MemKind(kind)
	}
	return loc, nil
}

func lookupName(names []string, v string) (int, bool) {
	v = strings.ToLower(v)
	for i, n := range names {
		if n == v {
			return i, true
		}
	}
	return 0, false
}
