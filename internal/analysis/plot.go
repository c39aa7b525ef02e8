// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Static plot generation: rate-distortion curves and per-frame metric distributions.

package analysis

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var ErrNoPlots = errors.New("nothing to plot")

var (
	defaultPlotWidth  = vg.Centimeter * 24
	defaultPlotHeight = vg.Centimeter * 9
)

// A custom color palette: color1 as base color and color2 as a darker variant.
var ColorPalette = []color.RGBA{
	// red1
	{R: 230, G: 57, B: 70, A: 255},
	// red2
	{R: 143, G: 35, B: 43, A: 255},
	// green1
	{R: 84, G: 184, B: 50, A: 255},
	// green2
	{R: 50, G: 110, B: 30, A: 255},
	// blue1
	{R: 63, G: 55, B: 201, A: 255},
	// blue2
	{R: 51, G: 45, B: 163, A: 255},
	// purple1
	{R: 86, G: 11, B: 173, A: 255},
	// purple2
	{R: 62, G: 8, B: 125, A: 255},
	// cyan1
	{R: 31, G: 180, B: 206, A: 255},
	// cyan2
	{R: 11, G: 123, B: 143, A: 255},
	// orange1
	{R: 255, G: 174, B: 0, A: 255},
	// orange2
	{R: 173, G: 118, B: 0, A: 255},
}

// Series is a named set of points, e.g. a single tool's curve.
type Series struct {
	Name string
	XYs  plotter.XYs
}

// Sample is a named set of values, e.g. per-frame VMAF of a single tool.
type Sample struct {
	Name   string
	Values []float64
}

// seriesColor picks base color for i-th series, wrapping around the palette.
func seriesColor(i int) color.RGBA {
	return ColorPalette[i*2%len(ColorPalette)]
}

// CreateRDPlot creates rate-distortion plot with one line per series.
func CreateRDPlot(series []Series, name string) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Bitrate (Kb/s)"
	p.Y.Label.Text = name

	for i, s := range series {
		// Curves are drawn in bitrate order.
		xys := make(plotter.XYs, len(s.XYs))
		copy(xys, s.XYs)
		sort.Slice(xys, func(i, j int) bool { return xys[i].X < xys[j].X })

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return p, fmt.Errorf("CreateRDPlot() creating line for %s: %w", s.Name, err)
		}
		line.Color = seriesColor(i)
		points.Color = seriesColor(i)
		points.Shape = draw.CircleGlyph{}

		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10

	return p, nil
}

// CreateCDFPlot creates Cumulative Distribution Function plot with one line per sample.
func CreateCDFPlot(samples []Sample, name string) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = name
	p.Y.Label.Text = "Probability"
	p.Y.Min = 0

	for i, s := range samples {
		if len(s.Values) == 0 {
			continue
		}
		// We are going to mutate values slice, so make a copy to avoid mangling
		// underlying array and creating unexpected sideffect in caller's scope.
		lValues := make([]float64, len(s.Values))
		copy(lValues, s.Values)
		sort.Float64s(lValues)

		cdfValues := make(plotter.XYs, len(lValues))
		for i, v := range lValues {
			cdfValues[i].X = v
			cdfValues[i].Y = stat.CDF(v, stat.Empirical, lValues, nil)
		}

		cdfLine, err := plotter.NewLine(cdfValues)
		if err != nil {
			return p, fmt.Errorf("CreateCDFPlot() creating new Line: %w", err)
		}
		cdfLine.Color = seriesColor(i)

		p.Add(cdfLine)
		p.Legend.Add(fmt.Sprintf("%s (mean=%.3f)", s.Name, stat.Mean(lValues, nil)), cdfLine)
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10

	return p, nil
}

// MultiPlot will stack given plots vertically on a single canvas and save it to a PNG
// file. Title goes on top of the first plot.
func MultiPlot(plots []*plot.Plot, title, outFile string) error {
	if len(plots) == 0 {
		return ErrNoPlots
	}

	// A 2D slice to hold subplots as plot.Align wants.
	rows, cols := len(plots), 1
	tiles := make([][]*plot.Plot, rows)
	for i := range tiles {
		tiles[i] = []*plot.Plot{plots[i]}
	}
	tiles[0][0].Title.Text = title + "\n\n" + tiles[0][0].Title.Text

	img := vgimg.New(defaultPlotWidth, defaultPlotHeight*vg.Length(rows))
	dc := draw.New(img)

	t := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadY: vg.Points(10),
	}

	canvases := plot.Align(tiles, t, dc)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			if tiles[j][i] != nil {
				tiles[j][i].Draw(canvases[j][i])
			}
		}
	}

	w, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("MultiPlot() error from os.Create(): %w", err)
	}
	defer w.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("MultiPlot() failed writing png file: %w", err)
	}

	return nil
}
