// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metric

import "github.com/evolution-gaming/edc/internal/encoding"

// Summary is a row of summary table, one per (tool, stream, point).
type Summary struct {
	Tool        string
	Stream      string
	Point       encoding.Point
	RealBitrate float64
	// Metric columns, see vqm.Column(). Absent column means metric was not measured.
	Values map[string]float64
}

// Value returns value of given metric column.
func (s Summary) Value(col string) (float64, bool) {
	v, ok := s.Values[col]
	return v, ok
}

// Frame is a row of per-frame table.
type Frame struct {
	Tool   string
	Stream string
	Point  encoding.Point
	// Frame number, 0-based.
	Frame int
	// Encoded frame size in bytes, nil when not reported.
	FrameSize *float64
	Values    map[string]float64
}

// Value returns value of given metric column.
func (f Frame) Value(col string) (float64, bool) {
	v, ok := f.Values[col]
	return v, ok
}

// Key identifies a single run: tool at operating point.
type Key struct {
	Tool  string
	Point encoding.Point
}

func (s Summary) Key() Key { return Key{Tool: s.Tool, Point: s.Point} }

func (f Frame) Key() Key { return Key{Tool: f.Tool, Point: f.Point} }

// InStream returns predicate matching rows of given stream.
func InStream[R interface{ stream() string }](name string) func(R) bool {
	return func(r R) bool { return r.stream() == name }
}

func (s Summary) stream() string { return s.Stream }

func (f Frame) stream() string { return f.Stream }
