// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"

	"github.com/evolution-gaming/edc/internal/analysis"
	"github.com/evolution-gaming/edc/internal/bank"
	"github.com/evolution-gaming/edc/internal/chart"
	"github.com/evolution-gaming/edc/internal/encoding"
	"github.com/evolution-gaming/edc/internal/metric"
	"github.com/evolution-gaming/edc/internal/vqm"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// Snapshot writes static PNG with mean rate-distortion plots of stream's available
// metrics (luma component only) and, when per-frame data is present, distribution of
// per-frame values of the last of them.
func Snapshot(b *bank.DataBank, s encoding.Stream, sc chart.StreamCharts, outFile string) error {
	summary := b.Summary.Select(metric.InStream[metric.Summary](s.Name()))
	frames := b.Frames.Select(metric.InStream[metric.Frame](s.Name()))

	var plots []*plot.Plot
	var lastCol string
	for _, k := range sc.AvailableMetrics {
		col := vqm.Column(k, vqm.Y)
		series := rdSeries(summary, col)
		if len(series) == 0 {
			continue
		}
		p, err := analysis.CreateRDPlot(series, "Mean "+col)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		plots = append(plots, p)
		lastCol = col
	}

	if samples := frameSamples(frames, lastCol); len(samples) != 0 {
		p, err := analysis.CreateCDFPlot(samples, "Per frame "+lastCol)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		plots = append(plots, p)
	}

	if err := analysis.MultiPlot(plots, s.Name(), outFile); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// rdSeries groups summary rows into per-tool (real bitrate, value) curves, tools in order
// of appearance.
func rdSeries(rows []metric.Summary, col string) []analysis.Series {
	idx := make(map[string]int)
	var series []analysis.Series
	for _, r := range rows {
		v, ok := r.Value(col)
		if !ok {
			continue
		}
		i, found := idx[r.Tool]
		if !found {
			i = len(series)
			idx[r.Tool] = i
			series = append(series, analysis.Series{Name: r.Tool})
		}
		series[i].XYs = append(series[i].XYs, plotter.XY{X: r.RealBitrate, Y: v})
	}
	return series
}

// frameSamples groups per-frame values by tool.
func frameSamples(frames []metric.Frame, col string) []analysis.Sample {
	if col == "" {
		return nil
	}
	idx := make(map[string]int)
	var samples []analysis.Sample
	for _, f := range frames {
		v, ok := f.Value(col)
		if !ok {
			continue
		}
		i, found := idx[f.Tool]
		if !found {
			i = len(samples)
			idx[f.Tool] = i
			samples = append(samples, analysis.Sample{Name: f.Tool})
		}
		samples[i].Values = append(samples[i].Values, v)
	}
	return samples
}
