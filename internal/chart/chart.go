// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Vega-Lite chart specs generated from loaded data bank, per stream.
package chart

import (
	"fmt"

	"github.com/evolution-gaming/edc/internal/bank"
	"github.com/evolution-gaming/edc/internal/encoding"
	"github.com/evolution-gaming/edc/internal/metric"
	"github.com/evolution-gaming/edc/internal/vqm"
	"gonum.org/v1/gonum/floats"
)

const (
	toolField        = "tool"
	pointField       = "br_or_qp"
	realBitrateField = "real_bitrate"
	frameField       = "frame"
	frameSizeField   = "frame_size"

	bitrateTitle = "Bitrate (Kb/s)"
	bitrateFmt   = ",.1f"
)

// StreamCharts contains all charts of a single stream.
type StreamCharts struct {
	Stream string
	// Metrics that have at least one mean chart.
	AvailableMetrics []vqm.Kind
	Mean             []Chart
	Worst            []Chart
	Frame            []Chart
	FrameSize        []Chart
	// Operating points offered for per-frame charts.
	Bitrates []encoding.Point
	QPs      []encoding.Point
}

// slice is a single chartable metric column.
type slice struct {
	kind   vqm.Kind
	column string
	// Human readable name, e.g. "PSNR Y".
	name   string
	format string
}

// slices enumerates chartable columns for given metrics.
func slices(kinds []vqm.Kind) []slice {
	var s []slice
	for _, k := range kinds {
		if !k.HasComponents() {
			s = append(s, slice{kind: k, column: string(k), name: string(k), format: tooltipFormat(k)})
			continue
		}
		for _, c := range vqm.Components {
			s = append(s, slice{
				kind:   k,
				column: vqm.Column(k, c),
				name:   fmt.Sprintf("%s %s", k, c),
				format: tooltipFormat(k),
			})
		}
	}
	return s
}

func tooltipFormat(k vqm.Kind) string {
	switch k {
	case vqm.PSNR:
		return ".2f"
	case vqm.VMAF:
		return ".1f"
	default:
		return ".4f"
	}
}

// valueTooltip is a tooltip of metric value, VMAF goes untitled.
func (s slice) valueTooltip() Field {
	title := s.name
	if !s.kind.HasComponents() {
		title = ""
	}
	return quantitative(s.column, title, s.format)
}

// Options tweak chart appearance.
type Options struct {
	// Width of per-frame charts in pixels, DefaultFrameWidth when not set.
	FrameWidth int
}

func (o Options) frameWidth() int {
	if o.FrameWidth <= 0 {
		return DefaultFrameWidth
	}
	return o.FrameWidth
}

// ForStream generates all charts of given stream.
func ForStream(b *bank.DataBank, s encoding.Stream, opts Options) StreamCharts {
	sc := StreamCharts{
		Stream: s.Name(),
		Mean:   Mean(b, s),
		Worst:  Worst(b, s),
	}
	sc.AvailableMetrics = availableMetrics(b.Plan.ExtraMetrics, sc.Mean)
	sc.Bitrates, sc.QPs, sc.Frame = Frames(b, s, opts)
	sc.FrameSize = FrameSizes(b, s, opts)

	return sc
}

// Mean generates rate-distortion charts of mean metric values.
func Mean(b *bank.DataBank, s encoding.Stream) []Chart {
	rows := b.Summary.Select(metric.InStream[metric.Summary](s.Name()))

	var charts []Chart
	for _, sl := range slices(b.Plan.ExtraMetrics) {
		values, ok := summaryRows(rows, sl.column, func(r metric.Summary) (float64, bool) {
			return r.Value(sl.column)
		})
		if !ok {
			continue
		}
		charts = append(charts, rdChart(sl, "Mean", values))
	}
	return charts
}

// Worst generates rate-distortion charts of the worst (minimal) per-frame value of each
// run.
func Worst(b *bank.DataBank, s encoding.Stream) []Chart {
	frames := b.Frames.Select(metric.InStream[metric.Frame](s.Name()))
	if len(frames) == 0 {
		return nil
	}
	rows := b.Summary.Select(metric.InStream[metric.Summary](s.Name()))

	var charts []Chart
	for _, sl := range slices(b.Plan.ExtraMetrics) {
		worst := worstValues(frames, sl.column)
		values, ok := summaryRows(rows, sl.column, func(r metric.Summary) (float64, bool) {
			return worst(r.Key())
		})
		if !ok {
			continue
		}
		charts = append(charts, rdChart(sl, "Worst", values))
	}
	return charts
}

// Frames generates per-frame charts for each operating point of the stream. Also
// returns bitrates and QPs the charts were generated for.
func Frames(b *bank.DataBank, s encoding.Stream, opts Options) (bitrates, qps []encoding.Point, charts []Chart) {
	frames := b.Frames.Select(metric.InStream[metric.Frame](s.Name()))
	if len(frames) == 0 {
		return nil, nil, nil
	}

	bitrates, qps = streamPoints(b.Plan, s)
	for _, pt := range append(append([]encoding.Point{}, qps...), bitrates...) {
		for _, sl := range slices(b.Plan.ExtraMetrics) {
			values, ok := frameRows(frames, pt, sl.column, func(f metric.Frame) (float64, bool) {
				return f.Value(sl.column)
			})
			if !ok {
				continue
			}
			title := sl.name
			if !sl.kind.HasComponents() {
				title = ""
			}
			charts = append(charts, frameChart(
				fmt.Sprintf("%s_%s", sl.column, pt),
				opts.frameWidth(),
				axis(sl.column, title),
				sl.valueTooltip(),
				values,
			))
		}
	}
	return bitrates, qps, dedupe(charts)
}

// FrameSizes generates per-frame encoded size charts for each operating point of the
// stream. Nothing is generated when no frame sizes were loaded at all.
func FrameSizes(b *bank.DataBank, s encoding.Stream, opts Options) []Chart {
	if !b.HasFrameSizes() {
		return nil
	}
	frames := b.Frames.Select(metric.InStream[metric.Frame](s.Name()))

	bitrates, qps := streamPoints(b.Plan, s)
	var charts []Chart
	for _, pt := range append(append([]encoding.Point{}, qps...), bitrates...) {
		values, ok := frameRows(frames, pt, frameSizeField, func(f metric.Frame) (float64, bool) {
			if f.FrameSize == nil {
				return 0, false
			}
			return *f.FrameSize, true
		})
		if !ok {
			continue
		}
		charts = append(charts, frameChart(
			fmt.Sprintf("%s_%s", frameSizeField, pt),
			opts.frameWidth(),
			axis(frameSizeField, "frame size"),
			quantitative(frameSizeField, "", ""),
			values,
		))
	}
	return dedupe(charts)
}

func rdChart(sl slice, prefix string, rows []Row) Chart {
	return Chart{
		Key: sl.column,
		Spec: withTopLegend(newLineSpec(
			axis(realBitrateField, bitrateTitle),
			axis(sl.column, fmt.Sprintf("%s %s", prefix, sl.name)),
			[]Field{
				quantitative(realBitrateField, "Bitrate", bitrateFmt),
				sl.valueTooltip(),
			},
			rows,
		)),
	}
}

func frameChart(key string, width int, y Field, valueTooltip Field, rows []Row) Chart {
	spec := newLineSpec(
		Field{Field: frameField, Type: "quantitative"},
		y,
		[]Field{
			quantitative(frameField, "", ""),
			valueTooltip,
			quantitative(pointField, "Bitrate or QP", ""),
		},
		rows,
	)
	spec.Width = width
	return Chart{Key: key, Spec: spec}
}

func withTopLegend(s Spec) Spec {
	s.Config = &Config{Legend: &Legend{Orient: "top"}}
	return s
}

// summaryRows builds data rows from summary rows with column value obtained via get.
// Missing values become nulls, ok is false when no row has a value.
func summaryRows(rows []metric.Summary, col string, get func(metric.Summary) (float64, bool)) (values []Row, ok bool) {
	for _, r := range rows {
		row := Row{
			toolField:        r.Tool,
			pointField:       float64(r.Point),
			realBitrateField: r.RealBitrate,
			col:              nil,
		}
		if v, found := get(r); found {
			row[col] = v
			ok = true
		}
		values = append(values, row)
	}
	return values, ok
}

// frameRows builds data rows from frames of given operating point.
func frameRows(frames []metric.Frame, pt encoding.Point, col string, get func(metric.Frame) (float64, bool)) (values []Row, ok bool) {
	for _, f := range frames {
		if f.Point != pt {
			continue
		}
		row := Row{
			toolField:  f.Tool,
			pointField: float64(f.Point),
			frameField: f.Frame,
			col:        nil,
		}
		if v, found := get(f); found {
			row[col] = v
			ok = true
		}
		values = append(values, row)
	}
	return values, ok
}

// worstValues returns lookup of minimal column value per run.
func worstValues(frames []metric.Frame, col string) func(metric.Key) (float64, bool) {
	series := make(map[metric.Key][]float64)
	for _, f := range frames {
		if v, ok := f.Value(col); ok {
			series[f.Key()] = append(series[f.Key()], v)
		}
	}
	return func(k metric.Key) (float64, bool) {
		s, ok := series[k]
		if !ok {
			return 0, false
		}
		return floats.Min(s), true
	}
}

// streamPoints returns unique bitrates and QPs of all tools for given stream, in order
// of first appearance.
func streamPoints(p encoding.Plan, s encoding.Stream) (bitrates, qps []encoding.Point) {
	seenBR := make(map[encoding.Point]bool)
	seenQP := make(map[encoding.Point]bool)
	for _, t := range p.Tools {
		for _, pt := range p.Points(t, s) {
			switch {
			case t.QP && !seenQP[pt]:
				seenQP[pt] = true
				qps = append(qps, pt)
			case !t.QP && !seenBR[pt]:
				seenBR[pt] = true
				bitrates = append(bitrates, pt)
			}
		}
	}
	return bitrates, qps
}

// availableMetrics lists metrics having at least one chart.
func availableMetrics(kinds []vqm.Kind, charts []Chart) []vqm.Kind {
	keys := make(map[string]bool, len(charts))
	for _, c := range charts {
		keys[c.Key] = true
	}
	var available []vqm.Kind
	for _, k := range kinds {
		for _, col := range vqm.Columns(k) {
			if keys[col] {
				available = append(available, k)
				break
			}
		}
	}
	return available
}

// dedupe drops charts with repeated keys, first one wins. Same value may be both a
// bitrate and a QP.
func dedupe(charts []Chart) []Chart {
	seen := make(map[string]bool, len(charts))
	out := charts[:0]
	for _, c := range charts {
		if seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		out = append(out, c)
	}
	return out
}
