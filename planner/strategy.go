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

package planner

import "strconv"

// Strategy selects where a value is placed among the gaps left by values
// that are still live. Every strategy is deterministic: the same trace
// always produces the same layout.
type Strategy int8

const (
	// FirstFit places a value at the lowest offset where it fits.
	FirstFit Strategy = iota
	// BestFit places a value in the smallest gap that holds it, preferring
	// the lowest offset among equal gaps, and appends to the arena when no
	// gap is large enough.
	BestFit
)

func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first-fit"
	case BestFit:
		return "best-fit"
	}
	return "strategy(" + strconv.Itoa(int(s)) + ")"
}

// ParseStrategy parses the String form of a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "first-fit", "firstfit", "first":
		return FirstFit, true
	case "best-fit", "bestfit", "best":
		return BestFit, true
	}
	return 0, false
}

type config struct {
	strategy Strategy
}

// Option configures a Planner.
type Option func(*config)

// WithStrategy selects the packing strategy. The default is FirstFit.
func WithStrategy(s Strategy) Option {
	return func(cfg *config) {
		cfg.strategy = s
	}
}
