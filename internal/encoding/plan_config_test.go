// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Evaluation plan configuration related tests.

package encoding

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlanConfigFromYAML(t *testing.T) {
	tests := map[string]struct {
		want    PlanConfig
		given   []byte
		wantErr bool
	}{
		"Positive": {
			given: []byte(`
bitrates: [1000, 2000]
qp: [22, 27]
extra-metrics: [ssim, VMAF]
per-frame-metrics: [psnr]
tools:
  - label: x264
    command-line: x264 --bitrate %BITRATE%
    command-line-cqp: x264 --qp %QP%
streams:
  - stream: /streams/foreman.yuv
    bitrates: [500]
`),
			want: PlanConfig{
				Bitrates:        []Point{1000, 2000},
				QP:              []Point{22, 27},
				ExtraMetrics:    []string{"ssim", "VMAF"},
				PerFrameMetrics: []string{"psnr"},
				Tools: []ToolConfig{
					{Label: "x264", CommandLine: "x264 --bitrate %BITRATE%", CommandLineCQP: "x264 --qp %QP%"},
				},
				Streams: []StreamConfig{
					{Stream: "/streams/foreman.yuv", Bitrates: []Point{500}},
				},
			},
		},
		"Positive incomplete YAML": {
			given: []byte(`bitrates: [1500.5]`),
			want:  PlanConfig{Bitrates: []Point{1500.5}},
		},
		"Negative invalid YAML": {
			given:   []byte("tools: [label: x"),
			wantErr: true,
		},
		"Negative wrong type": {
			given:   []byte("bitrates: fast"),
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewPlanConfigFromYAML(tc.given)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			// Source document is kept only for validation purposes.
			got.doc = nil
			assert.Equal(t, tc.want, got, "PlanConfig mismatch")
		})
	}
}

func TestPlanConfigIsValid(t *testing.T) {
	t.Run("Valid plan", func(t *testing.T) {
		pc, err := NewPlanConfigFromYAML([]byte(`
bitrates: [1000]
extra-metrics: [SSIM]
tools:
  - label: x264
    command-line: x264 --preset "very fast"
streams:
  - stream: foreman.yuv
`))
		require.NoError(t, err)
		ok, err := pc.IsValid()
		assert.True(t, ok)
		assert.NoError(t, err)
	})

	tests := map[string]struct {
		given       []byte
		wantReasons []string
	}{
		"Empty plan": {
			given:       []byte(`{}`),
			wantReasons: []string{"Tools missing", "Streams missing"},
		},
		"Missing label": {
			given: []byte(`
tools:
  - label: a
    command-line: a
  - command-line: b
streams: [{stream: s.yuv}]
`),
			wantReasons: []string{"There is no label in the 2nd tool section"},
		},
		"Missing command line": {
			given: []byte(`
tools: [{label: a}]
streams: [{stream: s.yuv}]
`),
			wantReasons: []string{"No command-line nor command-line-cqp in the 1st tool section"},
		},
		"Malformed command line": {
			given: []byte(`
tools: [{label: a, command-line-cqp: "enc --name \"unterminated"}]
streams: [{stream: s.yuv}]
`),
			wantReasons: []string{"Malformed command line in the 1st tool section: EOF found when expecting closing quote"},
		},
		"Duplicates": {
			given: []byte(`
tools: [{label: a, command-line: a}, {label: a, command-line: b}]
streams: [{stream: x/s.yuv}, {stream: y/s.yuv}]
`),
			wantReasons: []string{"Duplicate tool labels detected", "Duplicate streams detected"},
		},
		"Unknown metric": {
			given: []byte(`
extra-metrics: [psnr-hvs]
tools: [{label: a, command-line: a}]
streams: [{stream: s.yuv}]
`),
			wantReasons: []string{`"psnr-hvs": unknown metric`},
		},
		"Schema violation": {
			given: []byte(`
bitrates: [-1]
tools: [{label: a, command-line: a}]
streams: [{stream: s.yuv}]
`),
			wantReasons: []string{"bitrates.0"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			pc, err := NewPlanConfigFromYAML(tc.given)
			require.NoError(t, err)

			ok, err := pc.IsValid()
			assert.False(t, ok)

			var pcErr *PlanConfigError
			require.True(t, errors.As(err, &pcErr), "expecting PlanConfigError")
			for _, r := range tc.wantReasons {
				assert.True(t, hasReason(pcErr.Reasons(), r), "reason %q not in %v", r, pcErr.Reasons())
			}
		})
	}
}

// hasReason checks if any of reasons contains given substring.
func hasReason(reasons []string, sub string) bool {
	for _, r := range reasons {
		if strings.Contains(r, sub) {
			return true
		}
	}
	return false
}

func TestHasDuplicates(t *testing.T) {
	assert.False(t, hasDuplicates(nil))
	assert.False(t, hasDuplicates([]string{"a", "b"}))
	assert.True(t, hasDuplicates([]string{"a", "b", "a"}))
}
