// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package encoding

import (
	"path/filepath"
	"testing"

	"github.com/evolution-gaming/edc/internal/vqm"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixPlanConfig fixture provides a plan with one tool in both modes and two streams,
// one of which overrides bitrates.
func fixPlanConfig(t *testing.T) PlanConfig {
	pc, err := NewPlanConfigFromYAML([]byte(`
bitrates: [1000, 2000]
qp: [22]
extra-metrics: [vmaf, ssim, VMAF]
tools:
  - label: x264
    command-line: x264 --preset fast --bitrate %BITRATE% -o %OUT% %IN%
    command-line-cqp: x264 --preset fast --qp %QP% -o %OUT% %IN%
streams:
  - stream: /streams/foreman.yuv
  - stream: /streams/akiyo.y4m
    bitrates: [500]
`))
	require.NoError(t, err)
	return pc
}

func TestPoint_String(t *testing.T) {
	tests := map[string]struct {
		given Point
		want  string
	}{
		"Integer":  {given: 1500, want: "1500"},
		"Fraction": {given: 2.5, want: "2.5"},
		"Zero":     {given: 0, want: "0"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.given.String())
		})
	}
}

func TestPlan_Runs_PointFileName(t *testing.T) {
	// Points are numbers, their YAML spelling does not leak into file names.
	pc, err := NewPlanConfigFromYAML([]byte(`bitrates: [1000.0, 2500.50]
tools:
  - label: copy
    command-line: cp in out
streams:
  - stream: foreman.yuv
`))
	require.NoError(t, err)

	runs := NewPlan(pc, "/artifacts").Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "1000.foreman.yuv.yaml", filepath.Base(runs[0].ResultFile))
	assert.Equal(t, "2500.5.foreman.yuv.details.yaml", filepath.Base(runs[1].DetailsFile))
}

func TestTool(t *testing.T) {
	br := Tool{
		Label:         "x264",
		CommandLine:   "x264 --preset fast --bitrate %BITRATE% -o %OUT% %IN%",
		ArtifactsPath: "/artifacts",
	}
	qp := Tool{
		Label:         "x264",
		CommandLine:   "x264 --preset fast --qp %QP% -o %OUT% %IN%",
		QP:            true,
		ArtifactsPath: "/artifacts",
	}

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "x264", br.Name())
		assert.Equal(t, "x264.qp", qp.Name())
		assert.Equal(t, "x264.qp", qp.String())
	})

	t.Run("MD5 ignores spaces", func(t *testing.T) {
		assert.Equal(t, "a6ef2aff2e66342cdf9b37bc7499391b", br.MD5())
		assert.Equal(t, "5c0f97cad8b41931bde4f9cecd4d1a28", qp.MD5())

		spaced := br
		spaced.CommandLine = "x264  --preset fast --bitrate %BITRATE%  -o %OUT% %IN% "
		assert.Equal(t, br.MD5(), spaced.MD5())
	})

	t.Run("Folder", func(t *testing.T) {
		assert.Equal(t, "/artifacts/.cache/x264.a6ef2aff2e66342cdf9b37bc7499391b", br.Folder())
		assert.Equal(t, "/artifacts/.cache/x264.qp.5c0f97cad8b41931bde4f9cecd4d1a28", qp.Folder())
	})
}

func TestNewPlan(t *testing.T) {
	plan := NewPlan(fixPlanConfig(t), "/artifacts")

	t.Run("Tool config expands into bitrate and QP tools", func(t *testing.T) {
		require.Len(t, plan.Tools, 2)
		assert.False(t, plan.Tools[0].QP)
		assert.True(t, plan.Tools[1].QP)
		assert.Equal(t, "/artifacts", plan.Tools[1].ArtifactsPath)
	})

	t.Run("Extra metrics include PSNR, are unique and ordered", func(t *testing.T) {
		want := []vqm.Kind{vqm.PSNR, vqm.SSIM, vqm.VMAF}
		if diff := cmp.Diff(want, plan.ExtraMetrics); diff != "" {
			t.Errorf("ExtraMetrics mismatch (-want +got):\n%s", diff)
		}
		assert.True(t, plan.HasMetric(vqm.VMAF))
		assert.False(t, plan.HasMetric(vqm.MSSIM))
	})

	t.Run("Per-frame loading disabled without per-frame metrics", func(t *testing.T) {
		assert.False(t, plan.PerFrame())
	})

	t.Run("Stream override takes precedence", func(t *testing.T) {
		foreman, akiyo := plan.Streams[0], plan.Streams[1]
		assert.Equal(t, []Point{1000, 2000}, plan.Points(plan.Tools[0], foreman))
		assert.Equal(t, []Point{500}, plan.Points(plan.Tools[0], akiyo))
		// No QP override, fall back to global QP list.
		assert.Equal(t, []Point{22}, plan.Points(plan.Tools[1], akiyo))
	})
}

func TestPlan_Runs(t *testing.T) {
	plan := NewPlan(fixPlanConfig(t), "/artifacts")
	runs := plan.Runs()

	// x264: foreman (1000, 2000) + akiyo (500); x264.qp: foreman (22) + akiyo (22).
	require.Len(t, runs, 5)

	brFolder := "/artifacts/.cache/x264.a6ef2aff2e66342cdf9b37bc7499391b"
	qpFolder := "/artifacts/.cache/x264.qp.5c0f97cad8b41931bde4f9cecd4d1a28"

	tests := map[string]struct {
		run         Run
		wantResult  string
		wantDetails string
	}{
		"Bitrate run": {
			run:         runs[0],
			wantResult:  filepath.Join(brFolder, "1000.foreman.yuv.yaml"),
			wantDetails: filepath.Join(brFolder, "1000.foreman.yuv.details.yaml"),
		},
		"Bitrate run with override": {
			run:         runs[2],
			wantResult:  filepath.Join(brFolder, "500.akiyo.y4m.yaml"),
			wantDetails: filepath.Join(brFolder, "500.akiyo.y4m.details.yaml"),
		},
		"QP run": {
			run:         runs[4],
			wantResult:  filepath.Join(qpFolder, "qp-22.akiyo.y4m.yaml"),
			wantDetails: filepath.Join(qpFolder, "qp-22.akiyo.y4m.details.yaml"),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.wantResult, tc.run.ResultFile)
			assert.Equal(t, tc.wantDetails, tc.run.DetailsFile)
		})
	}
}

func TestPlan_Runs_Empty(t *testing.T) {
	t.Run("No points means no runs", func(t *testing.T) {
		plan := NewPlan(PlanConfig{
			Tools:   []ToolConfig{{Label: "a", CommandLine: "a"}},
			Streams: []StreamConfig{{Stream: "s.yuv"}},
		}, "")
		assert.Empty(t, plan.Runs())
	})
}
