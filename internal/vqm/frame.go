// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Result file abstractions: per-run summary and per-frame details.

package vqm

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var ErrMissingBitrate = errors.New("real_bitrate missing")

// Metrics contains VQMs as found in result files. Any metric may be absent.
type Metrics struct {
	VMAF  *float64 `yaml:"VMAF,omitempty"`
	PSNR  *Planes  `yaml:"PSNR,omitempty"`
	SSIM  *Planes  `yaml:"SSIM,omitempty"`
	MSSIM *Planes  `yaml:"MSSIM,omitempty"`
}

// Values flattens Metrics into table columns.
//
// Absent metrics and planes produce no column at all, so that downstream a missing
// measurement is never mistaken for a zero.
func (m Metrics) Values() map[string]float64 {
	v := make(map[string]float64)
	if m.VMAF != nil {
		v[string(VMAF)] = *m.VMAF
	}
	for k, p := range map[Kind]*Planes{PSNR: m.PSNR, SSIM: m.SSIM, MSSIM: m.MSSIM} {
		if p == nil {
			continue
		}
		if p.Y != nil {
			v[Column(k, Y)] = *p.Y
		}
		if p.U != nil {
			v[Column(k, U)] = *p.U
		}
		if p.V != nil {
			v[Column(k, V)] = *p.V
		}
		if c, ok := p.Composite(); ok {
			v[Column(k, YUV)] = c
		}
	}
	return v
}

// Result is a summary of a single encoding run (tool, stream, bitrate or QP).
type Result struct {
	RealBitrate *float64 `yaml:"real_bitrate"`
	Metrics     Metrics  `yaml:"metrics,omitempty"`
}

// FromYAML will Unmarshal result file contents into Result.
func (r *Result) FromYAML(rd io.Reader) error {
	data, err := io.ReadAll(rd)
	if err != nil {
		return fmt.Errorf("FromYAML() read from io.Reader: %w", err)
	}

	if err := yaml.Unmarshal(data, r); err != nil {
		return fmt.Errorf("FromYAML() YAML unmarshal: %w", err)
	}

	if r.RealBitrate == nil {
		return fmt.Errorf("FromYAML(): %w", ErrMissingBitrate)
	}

	return nil
}

// FrameMetric contains VQMs and optionally encoded size (in bytes) for a single frame.
type FrameMetric struct {
	Metrics   `yaml:",inline"`
	FrameSize *float64 `yaml:"frame_size,omitempty"`
}

// FrameMetrics is an ordered list of per-frame measurements, index into slice is a
// frame number.
type FrameMetrics []FrameMetric

// FromYAML will Unmarshal details file contents into FrameMetrics.
func (fm *FrameMetrics) FromYAML(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("FromYAML() read from io.Reader: %w", err)
	}

	if err := yaml.Unmarshal(data, fm); err != nil {
		return fmt.Errorf("FromYAML() YAML unmarshal: %w", err)
	}

	return nil
}
