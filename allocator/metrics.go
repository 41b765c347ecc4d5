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
	"github.com/lyd911/mempattern"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes planning and lookup activity. A nil *Metrics discards
// everything, and one Metrics may be shared by many allocators.
type Metrics struct {
	plannedBytes     *prometheus.GaugeVec
	arenaAllocations *prometheus.CounterVec
	lookups          *prometheus.CounterVec

	// resolved up front so lookups never touch the vector's lock
	hits          prometheus.Counter
	zeroSize      prometheus.Counter
	patternMisses prometheus.Counter
	bufferMisses  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		plannedBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mempattern",
			Name:      "planned_peak_bytes",
			Help:      "Peak arena size planned for a memory location by the most recent finalized plan.",
		}, []string{"location"}),
		arenaAllocations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "mempattern",
			Name:      "arena_allocations_total",
			Help:      "Total number of arena allocations requested from backing allocators.",
		}, []string{"location", "outcome"}),
		lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "mempattern",
			Name:      "buffer_lookups_total",
			Help:      "Total number of buffer lookups by result.",
		}, []string{"result"}),
	}
	m.hits = m.lookups.WithLabelValues("hit")
	m.zeroSize = m.lookups.WithLabelValues("zero_size")
	m.patternMisses = m.lookups.WithLabelValues("pattern_not_found")
	m.bufferMisses = m.lookups.WithLabelValues("buffer_not_found")
	return m
}

func (m *Metrics) observePlanned(loc mempattern.Location, peak int) {
	if m == nil {
		return
	}
	m.plannedBytes.WithLabelValues(loc.String()).Set(float64(peak))
}

func (m *Metrics) observeArena(loc mempattern.Location, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.arenaAllocations.WithLabelValues(loc.String(), outcome).Inc()
}

type lookupResult int8

const (
	lookupHit lookupResult = iota
	lookupZeroSize
	lookupPatternNotFound
	lookupBufferNotFound
)

func (m *Metrics) observeLookup(r lookupResult) {
	if m == nil {
		return
	}
	switch r {
	case lookupHit:
		m.hits.Inc()
	case lookupZeroSize:
		m.zeroSize.Inc()
	case lookupPatternNotFound:
		m.patternMisses.Inc()
	case lookupBufferNotFound:
		m.bufferMisses.Inc()
	}
}
