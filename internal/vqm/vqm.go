// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Video quality metric kinds, color plane components and aggregations over measured
// values.

package vqm

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrNoValues      = errors.New("no values to aggregate")
)

// Kind is a video quality metric name as it appears in result files.
type Kind string

const (
	PSNR  Kind = "PSNR"
	SSIM  Kind = "SSIM"
	MSSIM Kind = "MSSIM"
	VMAF  Kind = "VMAF"
)

// Kinds lists all supported metrics in canonical (report) order.
var Kinds = []Kind{PSNR, SSIM, MSSIM, VMAF}

// ParseKind will map metric name to Kind, name matching is case-insensitive.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(name)))
	for _, v := range Kinds {
		if k == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownMetric)
}

// HasComponents reports whether metric is measured per color plane.
//
// VMAF is a single luma-based score, everything else has Y, U, V values.
func (k Kind) HasComponents() bool {
	return k != VMAF
}

// Component is a color plane or the weighted composite of all planes.
type Component string

const (
	Y   Component = "Y"
	U   Component = "U"
	V   Component = "V"
	YUV Component = "YUV"
)

// Components lists components in the order they are presented.
var Components = []Component{Y, U, V, YUV}

// Column returns table column name for given metric and component. Component is
// ignored for metrics without components.
func Column(k Kind, c Component) string {
	if !k.HasComponents() {
		return string(k)
	}
	return fmt.Sprintf("%s_%s", k, c)
}

// Columns returns all table columns for given metric.
func Columns(k Kind) []string {
	if !k.HasComponents() {
		return []string{string(k)}
	}
	cols := make([]string, 0, len(Components))
	for _, c := range Components {
		cols = append(cols, Column(k, c))
	}
	return cols
}

// AllColumns returns every metric column known, in canonical order.
func AllColumns() []string {
	var cols []string
	for _, k := range Kinds {
		cols = append(cols, Columns(k)...)
	}
	return cols
}

// Planes holds per-plane values of a single metric. Absent plane is nil.
type Planes struct {
	Y *float64 `yaml:"Y,omitempty"`
	U *float64 `yaml:"U,omitempty"`
	V *float64 `yaml:"V,omitempty"`
}

// Composite calculates YUV-weighted composite value (4*Y + U + V) / 6.
//
// Composite is defined only when all three planes are present.
func (p Planes) Composite() (float64, bool) {
	if p.Y == nil || p.U == nil || p.V == nil {
		return 0, false
	}
	return (4*(*p.Y) + *p.U + *p.V) / 6, true
}

// Stats is an aggregate over a series of metric values.
type Stats struct {
	Mean         float64 `csv:"mean"`
	HarmonicMean float64 `csv:"harmonic_mean"`
	Min          float64 `csv:"min"`
	Max          float64 `csv:"max"`
	StDev        float64 `csv:"stdev"`
	Variance     float64 `csv:"variance"`
}

// Aggregate calculates Stats for given values.
func Aggregate(values []float64) (Stats, error) {
	var s Stats
	if len(values) == 0 {
		return s, ErrNoValues
	}

	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.HarmonicMean = stat.HarmonicMean(values, nil)
	s.Variance = stat.Variance(values, nil)
	s.Mean, s.StDev = stat.MeanStdDev(values, nil)

	return s, nil
}
