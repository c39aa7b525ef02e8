// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Report generation: a self-contained HTML page with interactive charts per stream and
// optional static PNG snapshot.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/evolution-gaming/edc/internal/analysis"
	"github.com/evolution-gaming/edc/internal/bank"
	"github.com/evolution-gaming/edc/internal/chart"
	"github.com/evolution-gaming/edc/internal/encoding"
	"github.com/evolution-gaming/edc/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	htmlExt = ".html"
	pngExt  = ".png"

	DefaultVegaVersion      = "5"
	DefaultVegaLiteVersion  = "4"
	DefaultVegaEmbedVersion = "6"
)

// Options configure report generation.
type Options struct {
	// Directory to write reports to, created when missing.
	OutDir string
	// Also write PNG snapshot next to each HTML page.
	PNG bool
	// Library versions loaded by report pages.
	VegaVersion      string
	VegaLiteVersion  string
	VegaEmbedVersion string
	Charts           chart.Options
}

// page is the template data of a single stream report.
type page struct {
	Title            string
	VegaVersion      string
	VegaLiteVersion  string
	VegaEmbedVersion string
	AvailableMetrics template.JS
	Mean             template.JS
	Worst            template.JS
	Frame            template.JS
	FrameSize        template.JS
	Bitrates         template.JS
	QPs              template.JS
}

// Generator renders reports of all plan streams.
type Generator struct {
	opts Options
}

// NewGenerator creates Generator, unset library versions get defaults.
func NewGenerator(opts Options) *Generator {
	if opts.VegaVersion == "" {
		opts.VegaVersion = DefaultVegaVersion
	}
	if opts.VegaLiteVersion == "" {
		opts.VegaLiteVersion = DefaultVegaLiteVersion
	}
	if opts.VegaEmbedVersion == "" {
		opts.VegaEmbedVersion = DefaultVegaEmbedVersion
	}
	return &Generator{opts: opts}
}

// FileName returns report file name of given stream.
func FileName(s encoding.Stream) string {
	return s.Name() + htmlExt
}

// Run renders reports of all streams concurrently. Returns written HTML files in stream
// order.
func (g *Generator) Run(ctx context.Context, b *bank.DataBank) ([]string, error) {
	if err := os.MkdirAll(g.opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating charts directory: %w", err)
	}

	files := make([]string, len(b.Plan.Streams))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for i, s := range b.Plan.Streams {
		i, s := i, s
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out, err := g.writeStream(b, s)
			if err != nil {
				return fmt.Errorf("stream %s: %w", s.Name(), err)
			}
			files[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (g *Generator) writeStream(b *bank.DataBank, s encoding.Stream) (string, error) {
	sc := chart.ForStream(b, s, g.opts.Charts)

	var buf bytes.Buffer
	if err := g.Render(&buf, sc); err != nil {
		return "", err
	}

	out := filepath.Join(g.opts.OutDir, FileName(s))
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	logging.Infof("Wrote %s (%s)", out, humanize.Bytes(uint64(buf.Len())))

	if g.opts.PNG {
		png := filepath.Join(g.opts.OutDir, s.Name()+pngExt)
		switch err := Snapshot(b, s, sc, png); {
		case errors.Is(err, analysis.ErrNoPlots):
			logging.Warnf("No data for %s snapshot", s.Name())
		case err != nil:
			return "", err
		default:
			logging.Infof("Wrote %s", png)
		}
	}

	return out, nil
}

// Render writes HTML page of given stream charts.
func (g *Generator) Render(w io.Writer, sc chart.StreamCharts) error {
	p := page{
		Title:            sc.Stream,
		VegaVersion:      g.opts.VegaVersion,
		VegaLiteVersion:  g.opts.VegaLiteVersion,
		VegaEmbedVersion: g.opts.VegaEmbedVersion,
	}

	var err error
	jsValues := []struct {
		dst *template.JS
		v   interface{}
	}{
		{&p.AvailableMetrics, nonNil(sc.AvailableMetrics)},
		{&p.Bitrates, nonNil(sc.Bitrates)},
		{&p.QPs, nonNil(sc.QPs)},
	}
	for _, jv := range jsValues {
		if *jv.dst, err = toJS(jv.v); err != nil {
			return err
		}
	}

	chartSets := []struct {
		dst    *template.JS
		charts []chart.Chart
	}{
		{&p.Mean, sc.Mean},
		{&p.Worst, sc.Worst},
		{&p.Frame, sc.Frame},
		{&p.FrameSize, sc.FrameSize},
	}
	for _, cs := range chartSets {
		if *cs.dst, err = chartsJS(cs.charts); err != nil {
			return err
		}
	}

	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

// chartsJS serialises charts into a JS object keyed by chart key.
func chartsJS(charts []chart.Chart) (template.JS, error) {
	obj := make(map[string]json.RawMessage, len(charts))
	for _, c := range charts {
		js, err := c.JSON()
		if err != nil {
			return "", err
		}
		obj[c.Key] = json.RawMessage(js)
	}
	return toJS(obj)
}

func toJS(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal report data: %w", err)
	}
	return template.JS(b), nil //#nosec G203
}

// nonNil makes sure empty lists serialise as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
