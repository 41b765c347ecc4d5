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

package allocator

import (
	"github.com/go-kit/log"
	"github.com/lyd911/mempattern"
	"github.com/lyd911/mempattern/planner"
)

type config struct {
	alignment int
	strategy  planner.Strategy
	logger    log.Logger
	metrics   *Metrics
}

func newConfig() config {
	return config{
		alignment: mempattern.DefaultAlignment,
		strategy:  planner.FirstFit,
		logger:    log.NewNopLogger(),
	}
}

// Option configures an Allocator.
type Option func(*config)

// WithAlignment sets the boundary every traced size is rounded up to. It
// must be a power of two; the default is mempattern.DefaultAlignment.
func WithAlignment(n int) Option {
	return func(cfg *config) {
		cfg.alignment = n
	}
}

// WithStrategy selects the planner's packing strategy.
func WithStrategy(s planner.Strategy) Option {
	return func(cfg *config) {
		cfg.strategy = s
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger log.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMetrics reports planning and lookup activity to m.
func WithMetrics(m *Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}
