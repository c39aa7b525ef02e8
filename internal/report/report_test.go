// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/evolution-gaming/edc/internal/bank"
	"github.com/evolution-gaming/edc/internal/chart"
	"github.com/evolution-gaming/edc/internal/encoding"
	"github.com/evolution-gaming/edc/internal/vqm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// fixBank provides data bank with two tools and two streams, per-frame data is loaded
// for the first stream only.
func fixBank(t *testing.T) *bank.DataBank {
	t.Helper()
	pc, err := encoding.NewPlanConfigFromYAML([]byte(`
bitrates: [1000, 2000]
extra-metrics: [vmaf]
per-frame-metrics: [vmaf]
tools:
  - label: x264
    command-line: x264 --bitrate %BITRATE%
  - label: x265
    command-line: x265 --bitrate %BITRATE%
streams:
  - stream: /streams/foreman.yuv
  - stream: /streams/akiyo.yuv
`))
	require.NoError(t, err)
	b := bank.New(encoding.NewPlan(pc, "/artifacts"))

	for i, run := range b.Plan.Runs() {
		m := vqm.Metrics{
			VMAF: ptr(80 + float64(i)),
			PSNR: &vqm.Planes{Y: ptr(38 + float64(i)), U: ptr(42), V: ptr(43)},
		}
		b.AddResult(run, vqm.Result{RealBitrate: ptr(float64(run.Point) * 1.01), Metrics: m})
		if run.Stream.Name() == "foreman.yuv" {
			b.AddDetails(run, vqm.FrameMetrics{
				{Metrics: vqm.Metrics{VMAF: ptr(78)}, FrameSize: ptr(10000)},
				{Metrics: vqm.Metrics{VMAF: ptr(84)}, FrameSize: ptr(2500)},
			})
		}
	}
	return b
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "foreman.yuv.html", FileName(encoding.Stream{Path: "/streams/foreman.yuv"}))
}

func TestGenerator_Run(t *testing.T) {
	b := fixBank(t)
	outDir := filepath.Join(t.TempDir(), "charts")

	g := NewGenerator(Options{OutDir: outDir, PNG: true})
	files, err := g.Run(context.Background(), b)
	require.NoError(t, err)

	want := []string{
		filepath.Join(outDir, "foreman.yuv.html"),
		filepath.Join(outDir, "akiyo.yuv.html"),
	}
	assert.Equal(t, want, files)

	t.Run("Page with per-frame data", func(t *testing.T) {
		doc, err := os.ReadFile(files[0])
		require.NoError(t, err)
		page := string(doc)

		assert.Contains(t, page, "https://cdn.jsdelivr.net/npm/vega@5")
		assert.Contains(t, page, "https://cdn.jsdelivr.net/npm/vega-lite@4")
		assert.Contains(t, page, "https://cdn.jsdelivr.net/npm/vega-embed@6")
		assert.Contains(t, page, `const availableMetrics = ["PSNR","VMAF"];`)
		assert.Contains(t, page, `const bitrates = [1000,2000];`)
		assert.Contains(t, page, `const qps = [];`)
		assert.Contains(t, page, `"VMAF_1000":{`)
		assert.Contains(t, page, `"frame_size_2000":{`)
	})

	t.Run("Page without per-frame data", func(t *testing.T) {
		doc, err := os.ReadFile(files[1])
		require.NoError(t, err)
		page := string(doc)

		assert.Contains(t, page, `const frameCharts = {};`)
		assert.Contains(t, page, `const worstCharts = {};`)
		assert.Contains(t, page, `const bitrates = [];`)
		assert.Contains(t, page, `"PSNR_YUV":{`)
	})

	t.Run("PNG snapshots", func(t *testing.T) {
		for _, name := range []string{"foreman.yuv.png", "akiyo.yuv.png"} {
			fi, err := os.Stat(filepath.Join(outDir, name))
			require.NoError(t, err)
			assert.Greater(t, fi.Size(), int64(10))
		}
	})
}

func TestGenerator_Render(t *testing.T) {
	g := NewGenerator(Options{VegaLiteVersion: "4.17.0"})

	t.Run("Empty stream", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, g.Render(&buf, chart.StreamCharts{Stream: "empty.yuv"}))
		page := buf.String()

		assert.Contains(t, page, "<title>empty.yuv</title>")
		assert.Contains(t, page, "vega-lite@4.17.0")
		assert.Contains(t, page, `const availableMetrics = [];`)
		assert.Contains(t, page, `const meanCharts = {};`)
	})

	t.Run("Tool names are escaped", func(t *testing.T) {
		b := fixBank(t)
		sc := chart.ForStream(b, b.Plan.Streams[0], chart.Options{})
		sc.Mean[0].Spec.Data.Values[0]["tool"] = "</script><b>"

		var buf bytes.Buffer
		require.NoError(t, g.Render(&buf, sc))
		assert.NotContains(t, buf.String(), "</script><b>")
	})
}

func TestGenerator_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator(Options{OutDir: t.TempDir()})
	_, err := g.Run(ctx, fixBank(t))
	assert.ErrorIs(t, err, context.Canceled)
}
