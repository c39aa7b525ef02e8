// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Evaluation plan configuration related abstractions.
package encoding

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/evolution-gaming/edc/internal/vqm"
	"github.com/google/shlex"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// planSchema describes the shape of a plan document. Semantic checks that schema can
// not express are done in PlanConfig.IsValid().
const planSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "bitrates": {"type": "array", "items": {"type": "number", "exclusiveMinimum": 0}},
    "qp": {"type": "array", "items": {"type": "number", "minimum": 0}},
    "extra-metrics": {"type": "array", "items": {"type": "string"}},
    "per-frame-metrics": {"type": "array", "items": {"type": "string"}},
    "tools": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "label": {"type": "string"},
          "command-line": {"type": "string"},
          "command-line-cqp": {"type": "string"}
        }
      }
    },
    "streams": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "stream": {"type": "string"},
          "bitrates": {"type": "array", "items": {"type": "number", "exclusiveMinimum": 0}},
          "qp": {"type": "array", "items": {"type": "number", "minimum": 0}}
        }
      }
    }
  }
}`

// PlanConfigError error type defines PlanConfig validation failures.
type PlanConfigError struct {
	msg     string
	reasons []string
}

func (e *PlanConfigError) Error() string {
	if len(e.reasons) > 0 {
		return fmt.Sprintf("%s with reasons:\n%s", e.msg, strings.Join(e.reasons, "\n"))
	}
	return e.msg
}

func (e *PlanConfigError) Reasons() []string {
	return e.reasons
}

func (e *PlanConfigError) addReason(reason string) {
	e.reasons = append(e.reasons, reason)
}

// ToolConfig describes an encoding tool. A tool with both command lines set is
// evaluated twice: in bitrate mode and in constant QP mode.
type ToolConfig struct {
	Label          string `yaml:"label"`
	CommandLine    string `yaml:"command-line,omitempty"`
	CommandLineCQP string `yaml:"command-line-cqp,omitempty"`
}

// StreamConfig describes a source stream with optional bitrate/QP overrides.
type StreamConfig struct {
	Stream   string  `yaml:"stream"`
	Bitrates []Point `yaml:"bitrates,omitempty"`
	QP       []Point `yaml:"qp,omitempty"`
}

// PlanConfig holds configuration for new Plan creation.
type PlanConfig struct {
	// Global bitrate (Kb/s) and QP sweeps, streams may override these.
	Bitrates []Point `yaml:"bitrates,omitempty"`
	QP       []Point `yaml:"qp,omitempty"`
	// Metrics charted in addition to PSNR.
	ExtraMetrics []string `yaml:"extra-metrics,omitempty"`
	// Non-empty list enables loading of per-frame details.
	PerFrameMetrics []string       `yaml:"per-frame-metrics,omitempty"`
	Tools           []ToolConfig   `yaml:"tools"`
	Streams         []StreamConfig `yaml:"streams"`

	// Generic representation of source document for schema validation.
	doc interface{}
}

// NewPlanConfigFromYAML will unmarshal YAML into PlanConfig instance.
func NewPlanConfigFromYAML(doc []byte) (PlanConfig, error) {
	var pc PlanConfig
	if err := yaml.Unmarshal(doc, &pc); err != nil {
		return pc, err
	}
	if err := yaml.Unmarshal(doc, &pc.doc); err != nil {
		return pc, err
	}
	return pc, nil
}

func (p *PlanConfig) IsValid() (bool, error) {
	errPlanConfig := &PlanConfigError{msg: "validation error"}

	if p.doc != nil {
		for _, r := range validateSchema(p.doc) {
			errPlanConfig.addReason(r)
		}
	}

	if len(p.Tools) == 0 {
		errPlanConfig.addReason("Tools missing")
	}
	if len(p.Streams) == 0 {
		errPlanConfig.addReason("Streams missing")
	}

	labels := make([]string, 0, len(p.Tools))
	for i, t := range p.Tools {
		ordinal := humanize.Ordinal(i + 1)
		if t.Label == "" {
			errPlanConfig.addReason(fmt.Sprintf("There is no label in the %s tool section", ordinal))
		} else {
			labels = append(labels, t.Label)
		}
		if t.CommandLine == "" && t.CommandLineCQP == "" {
			errPlanConfig.addReason(fmt.Sprintf("No command-line nor command-line-cqp in the %s tool section", ordinal))
		}
		for _, cl := range []string{t.CommandLine, t.CommandLineCQP} {
			if cl == "" {
				continue
			}
			if _, err := shlex.Split(cl); err != nil {
				errPlanConfig.addReason(fmt.Sprintf("Malformed command line in the %s tool section: %s", ordinal, err))
			}
		}
	}
	if hasDuplicates(labels) {
		errPlanConfig.addReason("Duplicate tool labels detected")
	}

	streams := make([]string, 0, len(p.Streams))
	for i, s := range p.Streams {
		if s.Stream == "" {
			errPlanConfig.addReason(fmt.Sprintf("There is no stream path in the %s stream section", humanize.Ordinal(i+1)))
			continue
		}
		streams = append(streams, streamName(s.Stream))
	}
	if hasDuplicates(streams) {
		errPlanConfig.addReason("Duplicate streams detected")
	}

	for _, m := range append(append([]string{}, p.ExtraMetrics...), p.PerFrameMetrics...) {
		if _, err := vqm.ParseKind(m); err != nil {
			errPlanConfig.addReason(err.Error())
		}
	}

	// Check if there were any validation errors?
	if len(errPlanConfig.reasons) != 0 {
		return false, errPlanConfig
	}
	return true, nil
}

// validateSchema checks generic document against planSchema and returns violations.
func validateSchema(doc interface{}) []string {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(planSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return []string{fmt.Sprintf("schema validation: %s", err)}
	}

	var reasons []string
	for _, desc := range result.Errors() {
		reasons = append(reasons, desc.String())
	}
	return reasons
}

// hasDuplicates checks if slice has duplicate elements.
func hasDuplicates(items []string) bool {
	// Create a poor man's seen
	seen := make(map[string]struct{}, len(items))
	for _, v := range items {
		if _, ok := seen[v]; ok {
			return true
		} else {
			seen[v] = struct{}{}
		}
	}
	return false
}
