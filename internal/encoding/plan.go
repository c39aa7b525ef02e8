// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package encoding

import (
	"crypto/md5" //#nosec G501
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evolution-gaming/edc/internal/vqm"
)

const (
	// Directory inside artifacts path where tool results are kept.
	cacheDir      = ".cache"
	qpSuffix      = ".qp"
	qpPrefix      = "qp-"
	resultExt     = ".yaml"
	detailsExt    = ".details.yaml"
	defaultMetric = vqm.PSNR
)

// Point is an operating point: target bitrate (Kb/s) for bitrate tools or QP value for
// constant QP tools.
type Point float64

// String formats Point in its shortest form, e.g. 1500 rather than 1500.000000.
func (p Point) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

// Tool is a single evaluated tool mode, either bitrate or constant QP.
type Tool struct {
	Label string
	// Command line used to produce results, identifies tool's result folder.
	CommandLine string
	QP          bool
	// Root directory of result artifacts.
	ArtifactsPath string
}

// Name is a tool name as it appears in reports.
func (t Tool) Name() string {
	if t.QP {
		return t.Label + qpSuffix
	}
	return t.Label
}

// MD5 is a hex digest of tool's command line with spaces stripped.
func (t Tool) MD5() string {
	sum := md5.Sum([]byte(strings.ReplaceAll(t.CommandLine, " ", ""))) //#nosec G401
	return hex.EncodeToString(sum[:])
}

// Folder is a directory containing result files of this tool.
func (t Tool) Folder() string {
	return filepath.Join(t.ArtifactsPath, cacheDir, fmt.Sprintf("%s.%s", t.Name(), t.MD5()))
}

func (t Tool) String() string {
	return t.Name()
}

// Stream is a source video stream.
type Stream struct {
	Path     string
	Bitrates []Point
	QP       []Point
}

// Name is a stream name as used in result file names and reports.
func (s Stream) Name() string {
	return streamName(s.Path)
}

func (s Stream) String() string {
	return s.Name()
}

// overrides returns stream specific points for given tool mode.
func (s Stream) overrides(t Tool) []Point {
	if t.QP {
		return s.QP
	}
	return s.Bitrates
}

// Run is a single (tool, stream, point) combination and its result files.
type Run struct {
	Tool   Tool
	Stream Stream
	Point  Point
	// Summary result file.
	ResultFile string
	// Per-frame details file.
	DetailsFile string
}

// Plan is a resolved evaluation plan.
type Plan struct {
	Tools    []Tool
	Streams  []Stream
	Bitrates []Point
	QP       []Point
	// Metrics to report, always includes PSNR, in canonical order.
	ExtraMetrics []vqm.Kind
	// When non-empty, per-frame details are expected next to results.
	PerFrameMetrics []vqm.Kind
}

// NewPlan will create Plan instance from given PlanConfig.
//
// Results of all tools are looked up relative to artifactsPath. Unknown metric names
// are ignored here, PlanConfig.IsValid() reports them.
func NewPlan(pc PlanConfig, artifactsPath string) Plan {
	p := Plan{
		Bitrates:        pc.Bitrates,
		QP:              pc.QP,
		ExtraMetrics:    parseKinds(append([]string{string(defaultMetric)}, pc.ExtraMetrics...)),
		PerFrameMetrics: parseKinds(pc.PerFrameMetrics),
	}

	for _, tc := range pc.Tools {
		if tc.CommandLine != "" {
			p.Tools = append(p.Tools, Tool{
				Label:         tc.Label,
				CommandLine:   tc.CommandLine,
				ArtifactsPath: artifactsPath,
			})
		}
		if tc.CommandLineCQP != "" {
			p.Tools = append(p.Tools, Tool{
				Label:         tc.Label,
				CommandLine:   tc.CommandLineCQP,
				QP:            true,
				ArtifactsPath: artifactsPath,
			})
		}
	}

	for _, sc := range pc.Streams {
		p.Streams = append(p.Streams, Stream{
			Path:     sc.Stream,
			Bitrates: sc.Bitrates,
			QP:       sc.QP,
		})
	}

	return p
}

// Points returns operating points for given tool and stream: stream overrides take
// precedence over plan's global lists.
func (p Plan) Points(t Tool, s Stream) []Point {
	if pts := s.overrides(t); len(pts) != 0 {
		return pts
	}
	if t.QP {
		return p.QP
	}
	return p.Bitrates
}

// Runs enumerates all (tool, stream, point) combinations in tool, stream, point order.
func (p Plan) Runs() []Run {
	var runs []Run
	for _, t := range p.Tools {
		for _, s := range p.Streams {
			for _, pt := range p.Points(t, s) {
				runs = append(runs, newRun(t, s, pt))
			}
		}
	}
	return runs
}

// HasMetric reports whether metric is part of the report.
func (p Plan) HasMetric(k vqm.Kind) bool {
	for _, v := range p.ExtraMetrics {
		if v == k {
			return true
		}
	}
	return false
}

// PerFrame reports whether per-frame details should be loaded.
func (p Plan) PerFrame() bool {
	return len(p.PerFrameMetrics) != 0
}

func newRun(t Tool, s Stream, pt Point) Run {
	base := fmt.Sprintf("%s.%s", pt, s.Name())
	if t.QP {
		base = qpPrefix + base
	}
	return Run{
		Tool:        t,
		Stream:      s,
		Point:       pt,
		ResultFile:  filepath.Join(t.Folder(), base+resultExt),
		DetailsFile: filepath.Join(t.Folder(), base+detailsExt),
	}
}

// parseKinds maps names to metric kinds, deduplicated and in canonical order.
func parseKinds(names []string) []vqm.Kind {
	seen := make(map[vqm.Kind]bool, len(names))
	for _, n := range names {
		if k, err := vqm.ParseKind(n); err == nil {
			seen[k] = true
		}
	}
	var kinds []vqm.Kind
	for _, k := range vqm.Kinds {
		if seen[k] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func streamName(path string) string {
	return filepath.Base(path)
}
