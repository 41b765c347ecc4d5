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

package main

import (
	"fmt"
	"io"
	"os"

	arrowmem "github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/docopt/docopt-go"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/goccy/go-json"
	"github.com/lyd911/mempattern/allocator"
	"github.com/lyd911/mempattern/internal/tracefile"
	"github.com/lyd911/mempattern/memory"
	"github.com/lyd911/mempattern/pattern"
	"github.com/lyd911/mempattern/planner"
)

const usage = `Memory Pattern Planner.

Plans a recorded trace and prints the resulting memory patterns.

Usage:
  mempattern_plan -h | --help
  mempattern_plan [--alignment=<n>] [--strategy=<s>] [--json] [--allocate] [--limit=<size>] [--verbose] <trace>

Options:
  -h --help          Show this screen.
  --alignment=<n>    Round every value up to n bytes [default: 256].
  --strategy=<s>     Packing strategy, first-fit or best-fit [default: first-fit].
  --json             Print the patterns as JSON.
  --allocate         Allocate the planned arenas and resolve every traced value.
  --limit=<size>     With --allocate, cap each location's arena, e.g. 64MiB [default: 0].
  --verbose          Log lifecycle events to stderr.`

type options struct {
	Alignment int    `docopt:"--alignment"`
	Strategy  string `docopt:"--strategy"`
	JSON      bool   `docopt:"--json"`
	Allocate  bool   `docopt:"--allocate"`
	Limit     string `docopt:"--limit"`
	Verbose   bool   `docopt:"--verbose"`
	Trace     string `docopt:"<trace>"`
}

func main() {
	args, _ := docopt.ParseDoc(usage)

	var opts options
	if err := args.Bind(&opts); err != nil {
		fmt.Fprintln(os.Stderr, "Error parsing arguments:", err)
		os.Exit(2)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if opts.Verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowWarn())
	}

	if err := run(opts, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(opts options, w io.Writer, logger log.Logger) error {
	strategy, ok := planner.ParseStrategy(opts.Strategy)
	if !ok {
		return fmt.Errorf("unknown strategy %q", opts.Strategy)
	}

	f, err := os.Open(opts.Trace)
	if err != nil {
		return err
	}
	defer f.Close()

	tr, err := tracefile.Decode(f)
	if err != nil {
		return err
	}

	var g *pattern.Group
	if opts.Allocate {
		var limit uint64
		if limit, err = humanize.ParseBytes(opts.Limit); err != nil {
			return fmt.Errorf("invalid limit %q: %w", opts.Limit, err)
		}
		g, err = allocate(tr, opts.Alignment, int64(limit), strategy, logger)
	} else {
		p := planner.New(tr.Plan(), planner.WithStrategy(strategy))
		if err = tr.Replay(p, opts.Alignment); err == nil {
			g, err = p.GeneratePatterns()
		}
	}
	if err != nil {
		return err
	}

	if opts.JSON {
		out, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	return printPatterns(w, g)
}

// tracer replays byte-sized events into an allocator. Sizes from the trace
// are already aligned, so aligning them again is a no-op.
type tracer struct{ *allocator.Allocator }

func (t tracer) TraceAllocation(valueID, size int) error { return t.TraceBytes(valueID, size) }

// allocate runs the trace through a full allocator. Every location draws
// its arena from arrow's Go allocator, capped at limit bytes when limit > 0.
func allocate(tr *tracefile.Trace, alignment int, limit int64, strategy planner.Strategy, logger log.Logger) (*pattern.Group, error) {
	plan := tr.Plan()
	backing := memory.FromArrow(arrowmem.NewGoAllocator())
	reg := allocator.NewRegistry()
	for _, loc := range plan {
		if _, ok := reg.Allocator(loc); ok {
			continue
		}
		var mem memory.Allocator = backing
		if limit > 0 {
			mem = memory.NewLimitedAllocator(backing, limit)
		}
		reg.Register(loc, mem)
	}

	a, err := allocator.New(plan, reg,
		allocator.WithAlignment(alignment),
		allocator.WithStrategy(strategy),
		allocator.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer a.Release()

	if err := tr.Replay(tracer{a}, alignment); err != nil {
		return nil, err
	}
	if err := a.Finalize(); err != nil {
		return nil, err
	}

	for id := range plan {
		if _, err := a.Lookup(id); err != nil {
			return nil, err
		}
	}
	return a.Patterns(), nil
}

func printPatterns(w io.Writer, g *pattern.Group) error {
	for _, loc := range g.Locations() {
		p, _ := g.GetPattern(loc)
		_, err := fmt.Fprintf(w, "%s\tpeak=%s\tlive=%s\tvalues=%d\tfingerprint=%016x\n",
			loc, humanize.IBytes(uint64(p.PeakSize())), humanize.IBytes(uint64(p.MaxLiveBytes())),
			p.NumBlocks(), p.Fingerprint())
		if err != nil {
			return err
		}
		for _, id := range p.ValueIDs() {
			blk, _ := p.GetBlock(id)
			if _, err := fmt.Fprintf(w, "  value %d\t%s\t%s\n", id, blk, humanize.IBytes(uint64(blk.Size))); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "total\t%s\n", humanize.IBytes(uint64(g.TotalPeakSize())))
	return err
}
