// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chart

import (
	"encoding/json"
	"fmt"
)

const (
	schemaURL = "https://vega.github.io/schema/vega-lite/v4.17.0.json"

	toolSelection  = "selector001"
	scaleSelection = "selector002"

	// DefaultFrameWidth is a width of per-frame charts in pixels.
	DefaultFrameWidth = 1450
)

// Spec is a subset of Vega-Lite v4 top-level unit specification needed for line charts.
type Spec struct {
	Schema    string               `json:"$schema"`
	Config    *Config              `json:"config,omitempty"`
	Data      Data                 `json:"data"`
	Mark      Mark                 `json:"mark"`
	Encoding  Encoding             `json:"encoding"`
	Selection map[string]Selection `json:"selection"`
	Width     int                  `json:"width,omitempty"`
}

type Config struct {
	Legend *Legend `json:"legend,omitempty"`
}

type Legend struct {
	Orient string `json:"orient"`
}

// Data holds inline data rows, a nil value in a row serialises as null.
type Data struct {
	Values []Row `json:"values"`
}

type Row map[string]interface{}

type Mark struct {
	Type        string `json:"type"`
	Point       bool   `json:"point"`
	Interpolate string `json:"interpolate"`
}

type Encoding struct {
	X       Field   `json:"x"`
	Y       Field   `json:"y"`
	Color   Field   `json:"color"`
	Opacity Opacity `json:"opacity"`
	Tooltip []Field `json:"tooltip"`
}

type Field struct {
	Field  string `json:"field"`
	Type   string `json:"type"`
	Title  string `json:"title,omitempty"`
	Format string `json:"format,omitempty"`
	Scale  *Scale `json:"scale,omitempty"`
}

type Scale struct {
	Zero bool `json:"zero"`
}

// Opacity is a conditional value driven by a selection.
type Opacity struct {
	Condition OpacityCondition `json:"condition"`
	Value     float64          `json:"value"`
}

type OpacityCondition struct {
	Selection string  `json:"selection"`
	Value     float64 `json:"value"`
}

type Selection struct {
	Type      string   `json:"type"`
	Fields    []string `json:"fields,omitempty"`
	Encodings []string `json:"encodings,omitempty"`
	Bind      string   `json:"bind,omitempty"`
}

// Chart is a keyed chart spec as referenced from the report page.
type Chart struct {
	Key  string
	Spec Spec
}

// JSON returns compact JSON representation of chart spec.
func (c Chart) JSON() (string, error) {
	b, err := json.Marshal(c.Spec)
	if err != nil {
		return "", fmt.Errorf("marshal chart %s: %w", c.Key, err)
	}
	return string(b), nil
}

// newLineSpec creates a line chart with tool colored series, legend-bound tool selection
// and scales bound to zoom/pan.
func newLineSpec(x, y Field, tooltip []Field, rows []Row) Spec {
	return Spec{
		Schema: schemaURL,
		Data:   Data{Values: rows},
		Mark:   Mark{Type: "line", Point: true, Interpolate: "monotone"},
		Encoding: Encoding{
			X:     x,
			Y:     y,
			Color: Field{Field: "tool", Type: "nominal"},
			Opacity: Opacity{
				Condition: OpacityCondition{Selection: toolSelection, Value: 1},
				Value:     0.1,
			},
			Tooltip: tooltip,
		},
		Selection: map[string]Selection{
			toolSelection:  {Type: "multi", Fields: []string{"tool"}, Bind: "legend"},
			scaleSelection: {Type: "interval", Encodings: []string{"x", "y"}, Bind: "scales"},
		},
	}
}

func quantitative(field, title, format string) Field {
	return Field{Field: field, Type: "quantitative", Title: title, Format: format}
}

func axis(field, title string) Field {
	return Field{Field: field, Type: "quantitative", Title: title, Scale: &Scale{Zero: false}}
}
