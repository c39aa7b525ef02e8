// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Data bank: loads result files described by evaluation plan into in-memory summary and
// per-frame tables.
package bank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/evolution-gaming/edc/internal/encoding"
	"github.com/evolution-gaming/edc/internal/logging"
	"github.com/evolution-gaming/edc/internal/metric"
	"github.com/evolution-gaming/edc/internal/vqm"
)

// Progress is notified once per processed run.
type Progress interface {
	Add(int) error
}

// Options tweak loading behaviour.
type Options struct {
	// Optional progress sink.
	Progress Progress
}

// DataBank holds plan and tables loaded from result files.
type DataBank struct {
	Plan    encoding.Plan
	Summary *metric.Store[metric.Summary]
	Frames  *metric.Store[metric.Frame]
}

// New creates empty DataBank for given plan.
func New(plan encoding.Plan) *DataBank {
	return &DataBank{
		Plan:    plan,
		Summary: metric.NewStore[metric.Summary](),
		Frames:  metric.NewStore[metric.Frame](),
	}
}

// AddResult appends summary row for given run.
func (b *DataBank) AddResult(run encoding.Run, r vqm.Result) metric.ID {
	var realBitrate float64
	if r.RealBitrate != nil {
		realBitrate = *r.RealBitrate
	}
	return b.Summary.Insert(metric.Summary{
		Tool:        run.Tool.Name(),
		Stream:      run.Stream.Name(),
		Point:       run.Point,
		RealBitrate: realBitrate,
		Values:      r.Metrics.Values(),
	})
}

// AddDetails appends per-frame rows for given run.
func (b *DataBank) AddDetails(run encoding.Run, fm vqm.FrameMetrics) {
	for i, f := range fm {
		b.Frames.Insert(metric.Frame{
			Tool:      run.Tool.Name(),
			Stream:    run.Stream.Name(),
			Point:     run.Point,
			Frame:     i,
			FrameSize: f.FrameSize,
			Values:    f.Values(),
		})
	}
}

// HasFrameSizes reports whether any loaded frame carries its encoded size.
func (b *DataBank) HasFrameSizes() bool {
	return len(b.Frames.Select(func(f metric.Frame) bool { return f.FrameSize != nil })) != 0
}

// Load reads result files of all plan runs into a new DataBank.
//
// Missing files are reported as warnings and skipped, malformed files are errors.
func Load(ctx context.Context, plan encoding.Plan, opts Options) (*DataBank, error) {
	b := New(plan)

	var lastTool string
	for _, run := range plan.Runs() {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		if name := run.Tool.Name(); name != lastTool {
			logging.Infof("Loading %s results", name)
			lastTool = name
		}
		logging.Debugf("%s %s at %s", run.Tool, run.Stream, run.Point)

		if err := b.loadRun(run); err != nil {
			return b, err
		}

		if opts.Progress != nil {
			if err := opts.Progress.Add(1); err != nil {
				logging.Debugf("Progress update: %s", err)
			}
		}
	}

	logging.Infof("Loaded %d summary and %d per-frame records", b.Summary.Len(), b.Frames.Len())
	return b, nil
}

func (b *DataBank) loadRun(run encoding.Run) error {
	var r vqm.Result
	switch err := readFile(run.ResultFile, r.FromYAML); {
	case errors.Is(err, fs.ErrNotExist):
		logging.Warnf("%q does not exist", run.ResultFile)
	case err != nil:
		return err
	default:
		b.AddResult(run, r)
	}

	if !b.Plan.PerFrame() {
		return nil
	}

	var fm vqm.FrameMetrics
	switch err := readFile(run.DetailsFile, fm.FromYAML); {
	case errors.Is(err, fs.ErrNotExist):
		logging.Warnf("%q does not exist", run.DetailsFile)
	case err != nil:
		return err
	default:
		b.AddDetails(run, fm)
	}

	return nil
}

// readFile opens file and hands it over to parse function.
func readFile(path string, parse func(io.Reader) error) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()

	if err := parse(fd); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
